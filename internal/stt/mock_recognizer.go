package stt

import (
	"context"
	"fmt"
)

type mockRecognizer struct{}

func NewMockRecognizer() Recognizer {
	return &mockRecognizer{}
}

func (m *mockRecognizer) Transcribe(_ context.Context, samples []float64, _ int) (TranscriptResult, error) {
	return TranscriptResult{
		Text: fmt.Sprintf("[transcript samples=%d]", len(samples)),
	}, nil
}
