package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/m0shaban/ai-virtual-teacher/internal/audioio"
	"github.com/m0shaban/ai-virtual-teacher/internal/config"
	"github.com/m0shaban/ai-virtual-teacher/internal/prompt"
)

// ErrNoSpeech marks empty input text; callers report a status, not a failure.
var ErrNoSpeech = errors.New("no text to synthesize")

const synthesizeTimeout = 45 * time.Second

// FromConfig builds the primary synthesizer, or nil when tts is disabled so
// the speaker degrades to fallback-only.
func FromConfig(cfg config.TTSConfig, token string) (Synthesizer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Mode {
	case "mock":
		return NewMockSynth(16000), nil
	case "hf":
		return NewHFSynth(cfg.Endpoint, cfg.Model, token), nil
	default:
		return nil, fmt.Errorf("unknown tts mode %q", cfg.Mode)
	}
}

// Speaker turns reply text into an audio artifact on disk, preferring the
// primary backend for Arabic and falling back to the secondary provider
// otherwise or on any primary failure.
type Speaker struct {
	primary  Synthesizer
	fallback FallbackProvider
	dir      string
	logger   *slog.Logger
}

func NewSpeaker(cfg config.TTSConfig, primary Synthesizer, fallback FallbackProvider, logger *slog.Logger) *Speaker {
	dir := cfg.ArtifactDir
	if dir == "" {
		dir = os.TempDir()
	}
	return &Speaker{
		primary:  primary,
		fallback: fallback,
		dir:      dir,
		logger:   logger.With(slog.String("component", "speaker")),
	}
}

// Synthesize produces one audio file per call and returns its path. The
// artifact is ephemeral; reclamation is left to the environment.
func (s *Speaker) Synthesize(ctx context.Context, text string, language prompt.Language) (string, error) {
	if text == "" {
		return "", ErrNoSpeech
	}

	ctx, cancel := context.WithTimeout(ctx, synthesizeTimeout)
	defer cancel()

	if s.primary != nil && language == prompt.LanguageArabic {
		path, err := s.synthesizePrimary(ctx, text)
		if err == nil {
			return path, nil
		}
		s.logger.Warn("primary synthesis failed, using fallback",
			slog.String("error", err.Error()))
	}

	path, err := s.synthesizeFallback(ctx, text, language)
	if err != nil {
		return "", fmt.Errorf("synthesize speech: %w", err)
	}
	return path, nil
}

func (s *Speaker) synthesizePrimary(ctx context.Context, text string) (string, error) {
	clip, err := s.primary.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, "reply-"+uuid.NewString()+".wav")
	if err := audioio.WriteWAVFile(path, clip.Samples, clip.SampleRate); err != nil {
		return "", fmt.Errorf("write audio artifact: %w", err)
	}
	s.logger.Info("synthesized reply", slog.String("provider", "primary"), slog.String("path", path))
	return path, nil
}

func (s *Speaker) synthesizeFallback(ctx context.Context, text string, language prompt.Language) (string, error) {
	data, err := s.fallback.Fetch(ctx, text, language.Code())
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, "reply-"+uuid.NewString()+".mp3")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audio artifact: %w", err)
	}
	s.logger.Info("synthesized reply", slog.String("provider", "fallback"), slog.String("path", path))
	return path, nil
}
