package llm

import "context"

// Request describes a single text-generation call.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Generator defines a pluggable text-generation backend.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
