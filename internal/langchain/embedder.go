// Package langchain adapts OpenAI-compatible local model servers (Ollama,
// LM Studio, vLLM) through langchaingo.
package langchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Config points at a local OpenAI-compatible server.
type Config struct {
	BaseURL        string
	Token          string
	EmbeddingModel string
	ChatModel      string
}

func (c Config) token() string {
	// Local servers usually ignore auth but the client requires a value.
	if c.Token == "" {
		return "none"
	}
	return c.Token
}

// Embedder implements the vectorizer backend contract over langchaingo.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *slog.Logger
}

// NewEmbedder creates an embedder for cfg.EmbeddingModel at cfg.BaseURL.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.BaseURL == "" || cfg.EmbeddingModel == "" {
		return nil, fmt.Errorf("local embedder requires base url and model")
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.token()),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return newEmbedder(embedder, cfg.EmbeddingModel), nil
}

func newEmbedder(e embeddings.Embedder, model string) *Embedder {
	return &Embedder{
		embedder: e,
		model:    model,
		logger:   slog.Default().With("component", "local-embedder"),
	}
}

// ModelName reports the configured embedding model.
func (e *Embedder) ModelName() string {
	return e.model
}

// EmbedDocuments generates embeddings for texts in one request.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	out, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(out))
	}
	return out, nil
}
