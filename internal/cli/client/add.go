package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// IngestRequest mirrors the knowledge ingest API body.
type IngestRequest struct {
	ClientID      int64  `json:"client_id"`
	EngagementID  *int64 `json:"engagement_id,omitempty"`
	StakeholderID *int64 `json:"stakeholder_id,omitempty"`
	Type          string `json:"entry_type"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	SourceURL     string `json:"source_url,omitempty"`
	MeetingDate   string `json:"meeting_date,omitempty"`
}

// KnowledgeEntry is the subset of the knowledge response the CLI prints.
type KnowledgeEntry struct {
	ID           int64  `json:"id"`
	ClientID     int64  `json:"client_id"`
	Type         string `json:"entry_type"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	MeetingDate  string `json:"meeting_date,omitempty"`
	HasEmbedding bool   `json:"has_embedding"`
	CreatedAt    string `json:"created_at"`
}

type ingestResponse struct {
	Entry    *KnowledgeEntry `json:"entry"`
	Embedded bool            `json:"embedded"`
}

// BatchResult represents a single result in a batch ingest.
type BatchResult struct {
	ID       int64  `json:"id,omitempty"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Title    string `json:"title,omitempty"`
	Embedded bool   `json:"embedded,omitempty"`
}

// BatchResponse summarizes a batch ingest.
type BatchResponse struct {
	Results   []BatchResult `json:"results"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

const maxBatchSize = 100

type addOptions struct {
	file          string
	content       string
	entryType     string
	title         string
	sourceURL     string
	meetingDate   string
	engagementID  int64
	stakeholderID int64
	batch         bool
	noEmbed       bool
}

// AddCmd creates the add command.
func AddCmd() *cobra.Command {
	var opts addOptions

	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"ingest"},
		Short:   "Ingest knowledge from stdin, a file or --content",
		Long: `Ingest a knowledge entry and embed it.

Input may be JSON (one entry, or a JSON Lines stream with --batch) or plain
text combined with --type and --title.

Examples:
  # Meeting notes from a markdown file
  draftwise add --client 1 --file notes.md --type meeting_transcript --title "Steering committee" --meeting-date 2026-03-02

  # JSON on stdin
  echo '{"client_id":1,"entry_type":"note","title":"Churn","content":"..."}' | draftwise add

  # JSON Lines batch
  cat entries.jsonl | draftwise add --batch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			clientID, err := resolveClientID(cmd)
			if err != nil {
				return err
			}
			if opts.batch {
				return runBatchAdd(api, opts, clientID, outputJSON)
			}
			return runAdd(api, opts, clientID, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Input file (JSON or text)")
	cmd.Flags().StringVar(&opts.content, "content", "", "Entry content given inline")
	cmd.Flags().StringVarP(&opts.entryType, "type", "t", "", "Entry type (meeting_transcript, email, document, note)")
	cmd.Flags().StringVar(&opts.title, "title", "", "Title (defaults to the file name)")
	cmd.Flags().StringVar(&opts.sourceURL, "source-url", "", "Source URL")
	cmd.Flags().StringVar(&opts.meetingDate, "meeting-date", "", "Meeting date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&opts.engagementID, "engagement", 0, "Engagement ID")
	cmd.Flags().Int64Var(&opts.stakeholderID, "stakeholder", 0, "Stakeholder ID")
	cmd.Flags().Int64("client", 0, "Client ID (defaults to the configured client)")
	cmd.Flags().BoolVar(&opts.batch, "batch", false, "Read JSON Lines, one entry per line")
	cmd.Flags().BoolVar(&opts.noEmbed, "no-embed", false, "Store without embedding; backfill picks it up later")

	return cmd
}

func readInput(file string) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

// buildIngestRequest turns raw input plus flags into a request. Flags fill
// fields the JSON left empty.
func buildIngestRequest(data []byte, opts addOptions, clientID int64) (IngestRequest, error) {
	var req IngestRequest
	if isJSONInput(data) {
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("invalid JSON input: %w", err)
		}
	} else {
		req.Content = strings.TrimSpace(string(data))
	}

	if req.ClientID == 0 {
		req.ClientID = clientID
	}
	if req.Type == "" {
		req.Type = opts.entryType
	}
	if req.Title == "" {
		req.Title = opts.title
	}
	if req.Title == "" && opts.file != "" {
		req.Title = strings.TrimSuffix(filepath.Base(opts.file), filepath.Ext(opts.file))
	}
	if req.SourceURL == "" {
		req.SourceURL = opts.sourceURL
	}
	if req.MeetingDate == "" {
		req.MeetingDate = opts.meetingDate
	}
	if req.EngagementID == nil && opts.engagementID > 0 {
		req.EngagementID = &opts.engagementID
	}
	if req.StakeholderID == nil && opts.stakeholderID > 0 {
		req.StakeholderID = &opts.stakeholderID
	}

	switch {
	case req.ClientID <= 0:
		return req, fmt.Errorf("--client is required (or run 'draftwise config set-client')")
	case req.Type == "":
		return req, fmt.Errorf("--type is required")
	case req.Title == "":
		return req, fmt.Errorf("--title is required")
	case strings.TrimSpace(req.Content) == "":
		return req, fmt.Errorf("content is empty")
	}
	return req, nil
}

func ingestPath(noEmbed bool) string {
	if noEmbed {
		return "/knowledge/ingest?embed=false"
	}
	return "/knowledge/ingest"
}

func runAdd(api *APIClient, opts addOptions, clientID int64, outputJSON bool) error {
	data := []byte(opts.content)
	if opts.content == "" {
		var err error
		if data, err = readInput(opts.file); err != nil {
			return err
		}
	}

	req, err := buildIngestRequest(data, opts, clientID)
	if err != nil {
		return err
	}

	var resp ingestResponse
	if err := api.PostInto(ingestPath(opts.noEmbed), req, &resp); err != nil {
		return err
	}

	if outputJSON {
		printJSON(resp)
		return nil
	}
	fmt.Printf("Created knowledge entry %d: %s\n", resp.Entry.ID, resp.Entry.Title)
	if resp.Embedded {
		fmt.Println("Embedding stored.")
	} else {
		fmt.Println("Embedding pending; run 'draftwise knowledge backfill' later.")
	}
	return nil
}

// runBatchAdd ingests one entry per JSON line and keeps going past failures.
func runBatchAdd(api *APIClient, opts addOptions, clientID int64, outputJSON bool) error {
	var r io.Reader = os.Stdin
	if opts.file != "" {
		f, err := os.Open(opts.file)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out BatchResponse
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if out.Total >= maxBatchSize {
			return fmt.Errorf("batch exceeds %d entries", maxBatchSize)
		}
		out.Total++

		result := BatchResult{Status: "created"}
		req, err := buildIngestRequest([]byte(line), addOptions{entryType: opts.entryType}, clientID)
		if err == nil {
			result.Title = req.Title
			var resp ingestResponse
			if err = api.PostInto(ingestPath(opts.noEmbed), req, &resp); err == nil {
				result.ID = resp.Entry.ID
				result.Embedded = resp.Embedded
			}
		}
		if err != nil {
			result.Status = "failed"
			result.Error = err.Error()
			out.Failed++
		} else {
			out.Succeeded++
		}
		out.Results = append(out.Results, result)

		if !outputJSON {
			if result.Status == "failed" {
				fmt.Printf("[%d] failed: %s\n", out.Total, result.Error)
			} else {
				fmt.Printf("[%d] created %d: %s\n", out.Total, result.ID, result.Title)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if outputJSON {
		printJSON(out)
	} else {
		fmt.Printf("\n%d succeeded, %d failed\n", out.Succeeded, out.Failed)
	}
	if out.Failed > 0 {
		return fmt.Errorf("%d of %d entries failed", out.Failed, out.Total)
	}
	return nil
}

func isJSONInput(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
