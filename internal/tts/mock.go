package tts

import (
	"context"
	"time"
)

type mockSynth struct {
	sampleRate int
}

func NewMockSynth(sampleRate int) Synthesizer {
	return &mockSynth{sampleRate: sampleRate}
}

func (m *mockSynth) Synthesize(ctx context.Context, text string) (Clip, error) {
	select {
	case <-ctx.Done():
		return Clip{}, ctx.Err()
	case <-time.After(50 * time.Millisecond):
	}
	return Clip{
		Samples:    make([]float64, m.sampleRate/10),
		SampleRate: m.sampleRate,
	}, nil
}
