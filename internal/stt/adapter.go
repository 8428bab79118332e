package stt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m0shaban/ai-virtual-teacher/internal/audioio"
	"github.com/m0shaban/ai-virtual-teacher/internal/config"
)

// ErrUnavailable is returned when no recognizer was initialized at startup.
var ErrUnavailable = errors.New("speech-to-text model not available")

const transcribeTimeout = 45 * time.Second

// FromConfig builds the recognizer selected by stt.mode, or nil when the
// subsystem is disabled. A nil recognizer degrades the adapter instead of
// failing startup, mirroring the audio-optional behavior of the app.
func FromConfig(cfg config.STTConfig, token string) (Recognizer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Mode {
	case "mock":
		return NewMockRecognizer(), nil
	case "hf":
		return NewHFRecognizer(cfg.Endpoint, cfg.Model, token), nil
	default:
		return nil, fmt.Errorf("unknown stt mode %q", cfg.Mode)
	}
}

// Adapter normalizes audio and guards against a missing backend.
type Adapter struct {
	recognizer Recognizer
	targetRate int
	logger     *slog.Logger
}

func NewAdapter(cfg config.STTConfig, recognizer Recognizer, logger *slog.Logger) *Adapter {
	return &Adapter{
		recognizer: recognizer,
		targetRate: cfg.SampleRate,
		logger:     logger.With(slog.String("component", "stt-adapter")),
	}
}

// Available reports whether a recognizer was initialized.
func (a *Adapter) Available() bool { return a.recognizer != nil }

// Transcribe resamples mono audio to the backend rate and runs one blocking
// recognition call.
func (a *Adapter) Transcribe(ctx context.Context, samples []float64, sampleRate int) (string, error) {
	if a.recognizer == nil {
		return "", ErrUnavailable
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("transcribe: empty audio input")
	}
	if sampleRate <= 0 {
		return "", fmt.Errorf("transcribe: invalid sample rate %d", sampleRate)
	}

	normalized := audioio.Resample(samples, sampleRate, a.targetRate)

	ctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	start := time.Now()
	result, err := a.recognizer.Transcribe(ctx, normalized, a.targetRate)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	a.logger.Info("transcription complete",
		slog.Int("samples", len(normalized)),
		slog.Duration("latency", time.Since(start)))
	return result.Text, nil
}
