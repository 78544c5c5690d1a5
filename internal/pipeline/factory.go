package pipeline

import (
	"fmt"

	apiError "github.com/armoucar-neon/dspy-memory-leak-repro/api/error"
)

// Module kinds selectable via configuration
const (
	KindPredict        = "predict"
	KindChainOfThought = "chainofthought"
)

// New builds a fresh module instance of the given kind. An empty kind means
// chain of thought.
func New(kind string, client CompletionClient, model string, sig Signature) (Module, error) {
	switch kind {
	case KindPredict:
		return NewPredict(client, model, sig)
	case KindChainOfThought, "":
		return NewChainOfThought(client, model, sig)
	default:
		return nil, fmt.Errorf("%w: %q", apiError.ErrUnknownModuleKind, kind)
	}
}

// DisplayName is the human-readable name of a module kind used in reports.
func DisplayName(kind string) string {
	if kind == KindPredict {
		return "Predict"
	}

	return "ChainOfThought"
}
