package tts

import "context"

// Clip is the structured result of a primary synthesis call.
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Synthesizer is the contract for the primary speech backend.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Clip, error)
}

// FallbackProvider fetches compressed audio for a two-letter language code.
type FallbackProvider interface {
	Fetch(ctx context.Context, text, langCode string) ([]byte, error)
}
