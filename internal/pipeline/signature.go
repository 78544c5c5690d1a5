package pipeline

import (
	"fmt"
	"strings"
)

type (
	// Field is a named text field of a signature
	Field struct {
		Name string
		Desc string
	}

	// Signature describes the typed text interface of a module: the fields it
	// takes in, the fields it must produce and the instructions sent with
	// every request.
	Signature struct {
		Instructions string
		Inputs       []Field
		Outputs      []Field
	}
)

// SimpleSignature is the fixed signature exercised by the measurement loop.
func SimpleSignature() Signature {
	return Signature{
		Instructions: "Simple test signature.",
		Inputs: []Field{
			{Name: "context", Desc: "Context information"},
			{Name: "query", Desc: "Query to process"},
		},
		Outputs: []Field{
			{Name: "result", Desc: "Processed result"},
		},
	}
}

// SystemPrompt renders the instructions plus the field contract the model is
// asked to honor.
func (s Signature) SystemPrompt() string {
	var b strings.Builder
	b.WriteString(s.Instructions)
	b.WriteString("\n\nInput fields:\n")
	for _, f := range s.Inputs {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Desc)
	}
	b.WriteString("\nProduce exactly the following output fields, one per line, as `name: value`:\n")
	for _, f := range s.Outputs {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Desc)
	}

	return b.String()
}

// UserPrompt renders the given input values. Every input field of the
// signature must be present.
func (s Signature) UserPrompt(inputs map[string]string) (string, error) {
	var b strings.Builder
	for _, f := range s.Inputs {
		v, ok := inputs[f.Name]
		if !ok {
			return "", fmt.Errorf("missing value for input field %q", f.Name)
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Name, v)
	}

	return b.String(), nil
}

// ParseOutputs maps a completion back onto the signature's output fields. The
// expected shape is `name: value` lines, values may span several lines. A
// completion with no recognizable labels is mapped entirely onto the last
// output field so a succeeded call never turns into a parse failure.
func (s Signature) ParseOutputs(completion string) map[string]string {
	ret := make(map[string]string, len(s.Outputs))

	current := ""
	var value strings.Builder
	flush := func() {
		if current != "" {
			ret[current] = strings.TrimSpace(value.String())
			value.Reset()
		}
	}

	for _, line := range strings.Split(completion, "\n") {
		if name, rest, ok := s.matchOutputLabel(line); ok {
			flush()
			current = name
			value.WriteString(rest)
			value.WriteString("\n")
			continue
		}
		if current != "" {
			value.WriteString(line)
			value.WriteString("\n")
		}
	}
	flush()

	if len(ret) == 0 && len(s.Outputs) > 0 {
		ret[s.Outputs[len(s.Outputs)-1].Name] = strings.TrimSpace(completion)
	}

	return ret
}

func (s Signature) matchOutputLabel(line string) (string, string, bool) {
	name, rest, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}

	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range s.Outputs {
		if f.Name == name {
			return name, strings.TrimSpace(rest), true
		}
	}

	return "", "", false
}
