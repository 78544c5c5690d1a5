package pipeline

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiError "github.com/armoucar-neon/dspy-memory-leak-repro/api/error"
)

type fakeClient struct {
	content  string
	err      error
	requests []openai.ChatCompletionRequest
}

func (f *fakeClient) CreateChatCompletion(
	_ context.Context, req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.content}},
		},
		Usage: openai.Usage{PromptTokens: 8, CompletionTokens: 4},
	}, nil
}

func testInputs() map[string]string {
	return map[string]string{
		"context": "Context for request 0",
		"query":   "Query number 0",
	}
}

func TestPredictCall(t *testing.T) {
	client := &fakeClient{content: "result: processed"}
	p, err := NewPredict(client, "gpt-3.5-turbo", SimpleSignature())
	require.NoError(t, err)

	outputs, err := p.Call(context.Background(), testInputs())
	require.NoError(t, err)
	assert.Equal(t, "processed", outputs["result"])

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, "gpt-3.5-turbo", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "Query number 0")

	require.Len(t, p.History(), 1)
	assert.Equal(t, 8, p.History()[0].PromptTokens)
}

func TestPredictCallValidation(t *testing.T) {
	p, err := NewPredict(&fakeClient{}, "gpt-3.5-turbo", SimpleSignature())
	require.NoError(t, err)

	_, err = p.Call(nil, testInputs()) //nolint:staticcheck
	assert.ErrorIs(t, err, apiError.ErrNilContext)

	_, err = NewPredict(nil, "gpt-3.5-turbo", SimpleSignature())
	assert.ErrorIs(t, err, apiError.ErrNilClient)
}

func TestPredictCallUpstreamError(t *testing.T) {
	upstream := errors.New("rate limited")
	p, err := NewPredict(&fakeClient{err: upstream}, "gpt-3.5-turbo", SimpleSignature())
	require.NoError(t, err)

	_, err = p.Call(context.Background(), testInputs())
	assert.ErrorIs(t, err, upstream)
	assert.Empty(t, p.History())
}

func TestClearHistory(t *testing.T) {
	p, err := NewPredict(&fakeClient{content: "result: ok"}, "gpt-3.5-turbo", SimpleSignature())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = p.Call(context.Background(), testInputs())
		require.NoError(t, err)
	}
	require.Len(t, p.History(), 3)

	p.ClearHistory()
	assert.Empty(t, p.History())
}

func TestChainOfThoughtExtendsSignature(t *testing.T) {
	client := &fakeClient{content: "reasoning: thought about it\nresult: done"}
	cot, err := NewChainOfThought(client, "gpt-3.5-turbo", SimpleSignature())
	require.NoError(t, err)

	outputs := cot.Signature().Outputs
	require.Len(t, outputs, 2)
	assert.Equal(t, "reasoning", outputs[0].Name)
	assert.Equal(t, "result", outputs[1].Name)

	got, err := cot.Call(context.Background(), testInputs())
	require.NoError(t, err)
	assert.Equal(t, "thought about it", got["reasoning"])
	assert.Equal(t, "done", got["result"])
}

func TestFactory(t *testing.T) {
	client := &fakeClient{}

	m, err := New(KindPredict, client, "gpt-3.5-turbo", SimpleSignature())
	require.NoError(t, err)
	assert.IsType(t, &Predict{}, m)

	m, err = New("", client, "gpt-3.5-turbo", SimpleSignature())
	require.NoError(t, err)
	assert.IsType(t, &ChainOfThought{}, m)

	_, err = New("react", client, "gpt-3.5-turbo", SimpleSignature())
	assert.ErrorIs(t, err, apiError.ErrUnknownModuleKind)
}
