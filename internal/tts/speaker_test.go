package tts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/m0shaban/ai-virtual-teacher/internal/config"
	"github.com/m0shaban/ai-virtual-teacher/internal/prompt"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fixedSynth struct {
	clip Clip
	err  error
}

func (f *fixedSynth) Synthesize(_ context.Context, _ string) (Clip, error) {
	return f.clip, f.err
}

type fixedFallback struct {
	data     []byte
	err      error
	lastCode string
}

func (f *fixedFallback) Fetch(_ context.Context, _ string, langCode string) ([]byte, error) {
	f.lastCode = langCode
	return f.data, f.err
}

func newTestSpeaker(t *testing.T, primary Synthesizer, fallback FallbackProvider) *Speaker {
	t.Helper()
	cfg := config.Default().TTS
	cfg.ArtifactDir = t.TempDir()
	return NewSpeaker(cfg, primary, fallback, newLogger())
}

func TestArabicUsesPrimaryWav(t *testing.T) {
	primary := &fixedSynth{clip: Clip{Samples: make([]float64, 1600), SampleRate: 16000}}
	fallback := &fixedFallback{data: []byte("mp3")}
	speaker := newTestSpeaker(t, primary, fallback)

	path, err := speaker.Synthesize(context.Background(), "مرحبا", prompt.LanguageArabic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, ".wav") {
		t.Fatalf("expected wav artifact, got %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestEnglishUsesFallbackMp3(t *testing.T) {
	primary := &fixedSynth{clip: Clip{Samples: make([]float64, 16), SampleRate: 16000}}
	fallback := &fixedFallback{data: []byte("mp3")}
	speaker := newTestSpeaker(t, primary, fallback)

	path, err := speaker.Synthesize(context.Background(), "hello", prompt.LanguageEnglish)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, ".mp3") {
		t.Fatalf("expected mp3 artifact, got %q", path)
	}
	if fallback.lastCode != "en" {
		t.Fatalf("expected language code en, got %q", fallback.lastCode)
	}
}

func TestPrimaryFailureFallsBack(t *testing.T) {
	primary := &fixedSynth{err: errors.New("malformed response")}
	fallback := &fixedFallback{data: []byte("mp3")}
	speaker := newTestSpeaker(t, primary, fallback)

	path, err := speaker.Synthesize(context.Background(), "مرحبا", prompt.LanguageArabic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, ".mp3") {
		t.Fatalf("expected fallback mp3 artifact, got %q", path)
	}
	if fallback.lastCode != "ar" {
		t.Fatalf("expected language code ar, got %q", fallback.lastCode)
	}
}

func TestNoPrimaryUsesFallbackForArabic(t *testing.T) {
	fallback := &fixedFallback{data: []byte("mp3")}
	speaker := newTestSpeaker(t, nil, fallback)

	path, err := speaker.Synthesize(context.Background(), "مرحبا", prompt.LanguageArabic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, ".mp3") {
		t.Fatalf("expected mp3 artifact, got %q", path)
	}
}

func TestBothPathsFailing(t *testing.T) {
	primary := &fixedSynth{err: errors.New("down")}
	fallback := &fixedFallback{err: errors.New("also down")}
	speaker := newTestSpeaker(t, primary, fallback)

	if _, err := speaker.Synthesize(context.Background(), "مرحبا", prompt.LanguageArabic); err == nil {
		t.Fatal("expected error when both providers fail")
	}
}

func TestEmptyTextShortCircuits(t *testing.T) {
	fallback := &fixedFallback{data: []byte("mp3")}
	speaker := newTestSpeaker(t, nil, fallback)

	_, err := speaker.Synthesize(context.Background(), "", prompt.LanguageEnglish)
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestSplitChunks(t *testing.T) {
	words := strings.Repeat("word ", 100)
	chunks := splitChunks(strings.TrimSpace(words), 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len([]rune(c)) > 50 {
			t.Fatalf("chunk exceeds limit: %q", c)
		}
	}
}

func TestSplitChunksCutsOversizedWords(t *testing.T) {
	long := strings.Repeat("ب", 130)
	chunks := splitChunks("ok "+long+" done", 50)
	var rejoined strings.Builder
	for _, c := range chunks {
		if n := len([]rune(c)); n > 50 {
			t.Fatalf("chunk of %d runes exceeds limit: %q", n, c)
		}
		rejoined.WriteString(strings.ReplaceAll(c, " ", ""))
	}
	if got, want := rejoined.String(), "ok"+long+"done"; got != want {
		t.Fatalf("runes lost while chunking: got %d, want %d", len([]rune(got)), len([]rune(want)))
	}
}
