package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultChatModel   = openai.GPT4
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 2000
)

// DefaultSystemPrompt frames the model as the author of the deliverable.
const DefaultSystemPrompt = "You are an expert management consultant who writes clear, " +
	"evidence-based client deliverables."

// ErrEmptyCompletion is returned when the model produced no text.
var ErrEmptyCompletion = errors.New("completion returned no content")

// ChatAPI is the subset of go-openai used for chat completions.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatConfig configures a ChatGenerator.
type ChatConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	MaxTokens    int
	SystemPrompt string
}

// ChatGenerator produces deliverable drafts from a prompt.
type ChatGenerator struct {
	api          ChatAPI
	model        string
	temperature  float32
	maxTokens    int
	systemPrompt string
}

// NewChatGenerator creates a generator backed by the chat completions API.
func NewChatGenerator(cfg ChatConfig) (*ChatGenerator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return newChatGenerator(NewAPIClient(cfg.APIKey, cfg.BaseURL), cfg), nil
}

func newChatGenerator(api ChatAPI, cfg ChatConfig) *ChatGenerator {
	g := &ChatGenerator{
		api:          api,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		systemPrompt: cfg.SystemPrompt,
	}
	if g.model == "" {
		g.model = DefaultChatModel
	}
	if g.temperature <= 0 {
		g.temperature = DefaultTemperature
	}
	if g.maxTokens <= 0 {
		g.maxTokens = DefaultMaxTokens
	}
	if g.systemPrompt == "" {
		g.systemPrompt = DefaultSystemPrompt
	}
	return g
}

// Name identifies the model for logs.
func (g *ChatGenerator) Name() string {
	return g.model
}

// Generate sends prompt as the user turn and returns the first choice.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
