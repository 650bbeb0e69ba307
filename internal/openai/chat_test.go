package openai

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func TestChatGenerator_Generate(t *testing.T) {
	mockAPI := new(MockChatAPI)
	gen := newChatGenerator(mockAPI, ChatConfig{})

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == openai.GPT4 &&
			req.Temperature == float32(DefaultTemperature) &&
			req.MaxTokens == DefaultMaxTokens &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.Messages[1].Content == "write the summary"
	})).Return(completion("  {\"executive_summary\": \"done\"}\n"), nil)

	out, err := gen.Generate(context.Background(), "write the summary")

	require.NoError(t, err)
	assert.Equal(t, `{"executive_summary": "done"}`, out)
	mockAPI.AssertExpectations(t)
}

func TestChatGenerator_Overrides(t *testing.T) {
	gen := newChatGenerator(new(MockChatAPI), ChatConfig{Model: "gpt-4o", Temperature: 0.7, MaxTokens: 500, SystemPrompt: "sys"})

	assert.Equal(t, "gpt-4o", gen.Name())
	assert.Equal(t, float32(0.7), gen.temperature)
	assert.Equal(t, 500, gen.maxTokens)
	assert.Equal(t, "sys", gen.systemPrompt)
}

func TestChatGenerator_APIError(t *testing.T) {
	mockAPI := new(MockChatAPI)
	gen := newChatGenerator(mockAPI, ChatConfig{})

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("quota exceeded"))

	out, err := gen.Generate(context.Background(), "prompt")

	assert.Empty(t, out)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestChatGenerator_EmptyChoices(t *testing.T) {
	mockAPI := new(MockChatAPI)
	gen := newChatGenerator(mockAPI, ChatConfig{})

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil)

	_, err := gen.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNewChatGenerator_NoAPIKey(t *testing.T) {
	gen, err := NewChatGenerator(ChatConfig{})
	assert.Nil(t, gen)
	assert.Equal(t, ErrNoAPIKey, err)
}
