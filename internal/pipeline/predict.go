package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	apiError "github.com/armoucar-neon/dspy-memory-leak-repro/api/error"
)

type (
	// Module is one reasoning pipeline instance. Instances are built fresh for
	// every iteration of the measurement loop and thrown away afterwards.
	Module interface {
		Call(ctx context.Context, inputs map[string]string) (map[string]string, error)
		History() []Exchange
		ClearHistory()
	}

	// Exchange is the per-call record a module appends to its history
	Exchange struct {
		Inputs           map[string]string
		Outputs          map[string]string
		PromptTokens     int
		CompletionTokens int
	}

	// Predict maps a single completion onto the signature's output fields.
	// Safe for concurrent calls, the history is guarded.
	Predict struct {
		sig    Signature
		client CompletionClient
		model  string

		mx      sync.Mutex
		history []Exchange
	}
)

func NewPredict(client CompletionClient, model string, sig Signature) (*Predict, error) {
	if client == nil {
		return nil, apiError.ErrNilClient
	}
	if model == "" {
		return nil, errors.New("model must not be empty")
	}

	return &Predict{sig: sig, client: client, model: model}, nil
}

func (p *Predict) Signature() Signature {
	return p.sig
}

func (p *Predict) Call(ctx context.Context, inputs map[string]string) (map[string]string, error) {
	if ctx == nil {
		return nil, apiError.ErrNilContext
	}

	userPrompt, err := p.sig.UserPrompt(inputs)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.sig.SystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion; %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	outputs := p.sig.ParseOutputs(resp.Choices[0].Message.Content)
	p.mx.Lock()
	p.history = append(p.history, Exchange{
		Inputs:           inputs,
		Outputs:          outputs,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	})
	p.mx.Unlock()

	return outputs, nil
}

func (p *Predict) History() []Exchange {
	p.mx.Lock()
	defer p.mx.Unlock()

	return p.history
}

func (p *Predict) ClearHistory() {
	p.mx.Lock()
	defer p.mx.Unlock()

	p.history = p.history[:0]
}
