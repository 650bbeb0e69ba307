//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/server"
	"github.com/cloo-solutions/draftwise/internal/service"
	"github.com/cloo-solutions/draftwise/internal/storage"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
	"github.com/cloo-solutions/draftwise/internal/testutil"
	"github.com/cloo-solutions/draftwise/internal/vectorizer"
	"github.com/jackc/pgx/v5/pgxpool"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	App          *server.App
	Generator    *ScriptedGenerator
	S3Client     *storage.S3Client
	ServerURL    string
	ServerCloser func()
	BinaryDir    string
	HTTPClient   *http.Client
}

// ScriptedGenerator returns a fixed completion, or fails when Err is set.
// It records the prompts it received.
type ScriptedGenerator struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []string
}

func (g *ScriptedGenerator) Name() string { return "scripted" }

func (g *ScriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Response, nil
}

// Set replaces the scripted response and error.
func (g *ScriptedGenerator) Set(response string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Response = response
	g.Err = err
}

// SetupE2EEnv creates a full E2E test environment with containers and server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "test-deliverables",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	vec, err := vectorizer.New(ctx, vectorizer.NewHashingBackend(domain.DefaultEmbeddingDimension))
	if err != nil {
		t.Fatalf("failed to create vectorizer: %v", err)
	}

	gen := &ScriptedGenerator{}
	app, err := server.NewApp(server.AppConfig{
		Pool:              pool,
		Logger:            telemetry.NewLogger("json", false),
		Vectorizer:        vec,
		Generator:         gen,
		Archiver:          s3Client,
		Search:            service.DefaultSearchSettings(),
		Fallback:          true,
		GenerationTimeout: 10 * time.Second,
		BackfillWorkers:   2,
		BackfillBatchSize: 10,
	})
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}
	serverURL, serverCloser := startServer(t, app.Router, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		App:          app,
		Generator:    gen,
		S3Client:     s3Client,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup stops the server and removes containers and binaries.
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.App != nil {
		e.App.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		_ = e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		_ = e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		_ = os.RemoveAll(e.BinaryDir)
	}
}

// BuildCLI compiles the draftwise client into a temp dir.
func (e *E2ETestEnv) BuildCLI() {
	tmpDir, err := os.MkdirTemp("", "draftwise-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "draftwise"), "./cmd/draftwise")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build draftwise: %v\n%s", err, out)
	}
}

// RunDraftwise runs the CLI against the test server with an isolated config dir.
func (e *E2ETestEnv) RunDraftwise(input string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "draftwise"), args...)
	if input != "" {
		cmd.Stdin = bytes.NewReader([]byte(input))
	}
	cmd.Env = append(os.Environ(),
		"DRAFTWISE_API_URL="+e.ServerURL,
		"XDG_CONFIG_HOME="+e.BinaryDir,
		"HOME="+e.BinaryDir,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Status int
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error,omitempty"`
}

// Decode unmarshals the data envelope into dst.
func (r *APIResponse) Decode(t *testing.T, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Data, dst); err != nil {
		t.Fatalf("failed to decode response data: %v (%s)", err, r.Data)
	}
}

func (e *E2ETestEnv) Get(path string) *APIResponse {
	return e.doRequest(http.MethodGet, path, nil)
}

func (e *E2ETestEnv) Post(path string, body interface{}) *APIResponse {
	return e.doRequest(http.MethodPost, path, body)
}

func (e *E2ETestEnv) Delete(path string) *APIResponse {
	return e.doRequest(http.MethodDelete, path, nil)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) *APIResponse {
	e.T.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		e.T.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response: %v", err)
	}

	apiResp := &APIResponse{Status: resp.StatusCode}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, apiResp); err != nil {
			e.T.Fatalf("%s %s returned non-JSON body (%d): %s", method, path, resp.StatusCode, respBody)
		}
	}
	return apiResp
}

// MustCreate posts body and fails the test unless the server answers 201.
func (e *E2ETestEnv) MustCreate(path string, body interface{}) int64 {
	e.T.Helper()
	resp := e.Post(path, body)
	if resp.Status != http.StatusCreated {
		e.T.Fatalf("POST %s: expected 201, got %d: %s", path, resp.Status, resp.Error)
	}
	var created struct {
		ID    int64 `json:"id"`
		Entry *struct {
			ID int64 `json:"id"`
		} `json:"entry"`
	}
	resp.Decode(e.T, &created)
	if created.Entry != nil {
		return created.Entry.ID
	}
	return created.ID
}

// DownloadFile fetches a presigned URL.
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func startServer(t *testing.T, handler http.Handler, port int) (string, func()) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not become ready within %v", timeout)
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
