package langchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 2000
)

// ErrEmptyCompletion is returned when the model produced no text.
var ErrEmptyCompletion = errors.New("model returned no content")

// Generator drafts deliverable content with a local chat model in JSON mode.
type Generator struct {
	client       llms.Model
	model        string
	systemPrompt string
	logger       *slog.Logger
}

// NewGenerator creates a generator for cfg.ChatModel at cfg.BaseURL.
func NewGenerator(cfg Config, systemPrompt string) (*Generator, error) {
	if cfg.BaseURL == "" || cfg.ChatModel == "" {
		return nil, fmt.Errorf("local generator requires base url and model")
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.token()),
		openai.WithModel(cfg.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return newGenerator(client, cfg.ChatModel, systemPrompt), nil
}

func newGenerator(client llms.Model, model, systemPrompt string) *Generator {
	return &Generator{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
		logger:       slog.Default().With("component", "local-generator"),
	}
}

// Name identifies the model for logs.
func (g *Generator) Name() string {
	return g.model
}

// Generate sends prompt and returns the first choice's text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	content := make([]llms.MessageContent, 0, 2)
	if g.systemPrompt != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, g.systemPrompt))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := g.client.GenerateContent(ctx, content,
		llms.WithTemperature(defaultTemperature),
		llms.WithMaxTokens(defaultMaxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(resp.Choices) < 1 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
