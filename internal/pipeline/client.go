package pipeline

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	apiError "github.com/armoucar-neon/dspy-memory-leak-repro/api/error"
)

// CompletionClient is the narrow surface of the chat-completion API used by
// pipeline modules.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient builds a client for an OpenAI-compatible endpoint. baseURL
// is optional and exists so runs can be pointed at a local mock server.
func NewOpenAIClient(apiKey, baseURL string) (*openai.Client, error) {
	if apiKey == "" {
		return nil, apiError.ErrMissingAPIKey
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return openai.NewClientWithConfig(cfg), nil
}
