package pipeline

// ChainOfThought prepends a reasoning output field to the signature so the
// model lays out its steps before the answer. Everything else is Predict.
type ChainOfThought struct {
	*Predict
}

func NewChainOfThought(client CompletionClient, model string, sig Signature) (*ChainOfThought, error) {
	extended := sig
	extended.Outputs = make([]Field, 0, len(sig.Outputs)+1)
	extended.Outputs = append(extended.Outputs, Field{Name: "reasoning", Desc: "Step by step reasoning leading to the result"})
	extended.Outputs = append(extended.Outputs, sig.Outputs...)

	p, err := NewPredict(client, model, extended)
	if err != nil {
		return nil, err
	}

	return &ChainOfThought{Predict: p}, nil
}
