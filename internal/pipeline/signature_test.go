package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	sig := SimpleSignature()
	prompt := sig.SystemPrompt()

	assert.Contains(t, prompt, "Simple test signature.")
	assert.Contains(t, prompt, "- context: Context information")
	assert.Contains(t, prompt, "- query: Query to process")
	assert.Contains(t, prompt, "- result: Processed result")
}

func TestUserPrompt(t *testing.T) {
	sig := SimpleSignature()

	prompt, err := sig.UserPrompt(map[string]string{
		"context": "Context for request 0",
		"query":   "Query number 0",
	})
	require.NoError(t, err)
	assert.Equal(t, "context: Context for request 0\nquery: Query number 0\n", prompt)

	_, err = sig.UserPrompt(map[string]string{"context": "only context"})
	assert.ErrorContains(t, err, `missing value for input field "query"`)
}

func TestParseOutputs(t *testing.T) {
	sig := Signature{
		Outputs: []Field{
			{Name: "reasoning"},
			{Name: "result"},
		},
	}

	outputs := sig.ParseOutputs("reasoning: first step\nsecond step\nresult: done")
	assert.Equal(t, "first step\nsecond step", outputs["reasoning"])
	assert.Equal(t, "done", outputs["result"])
}

func TestParseOutputsCaseInsensitiveLabels(t *testing.T) {
	sig := Signature{Outputs: []Field{{Name: "result"}}}

	outputs := sig.ParseOutputs("Result: ok")
	assert.Equal(t, "ok", outputs["result"])
}

func TestParseOutputsWithoutLabels(t *testing.T) {
	sig := Signature{Outputs: []Field{{Name: "reasoning"}, {Name: "result"}}}

	outputs := sig.ParseOutputs("free form answer")
	assert.Equal(t, map[string]string{"result": "free form answer"}, outputs)
}
