package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/m0shaban/ai-virtual-teacher/internal/config"
	"github.com/m0shaban/ai-virtual-teacher/internal/prompt"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type captureGenerator struct {
	lastReq Request
	reply   string
	err     error
}

func (c *captureGenerator) Generate(_ context.Context, req Request) (string, error) {
	c.lastReq = req
	return c.reply, c.err
}

func newTestSession(gen Generator) *Session {
	cfg := config.Default().LLM
	return NewSession(cfg, gen, newLogger())
}

func TestGenerateBuildsPrompt(t *testing.T) {
	gen := &captureGenerator{reply: "Objects at rest stay at rest."}
	session := newTestSession(gen)

	reply, err := session.Generate(context.Background(), "What is Newton's first law?", prompt.RoleGeneral, prompt.LanguageEnglish)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Objects at rest stay at rest." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(gen.lastReq.Prompt, "You are a friendly and helpful multi-disciplinary teacher") {
		t.Fatalf("prompt missing general preamble: %q", gen.lastReq.Prompt)
	}
	if !strings.Contains(gen.lastReq.Prompt, "What is Newton's first law?") {
		t.Fatalf("prompt missing literal question: %q", gen.lastReq.Prompt)
	}
	if gen.lastReq.MaxTokens != 500 || gen.lastReq.Temperature != 0.7 {
		t.Fatalf("unexpected sampling parameters: %+v", gen.lastReq)
	}
}

func TestGenerateTrimsAndFillsEmpty(t *testing.T) {
	gen := &captureGenerator{reply: "  \n  "}
	session := newTestSession(gen)
	reply, err := session.Generate(context.Background(), "hi", prompt.RoleGeneral, prompt.LanguageEnglish)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Sorry, I couldn't generate a response." {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestGenerateWrapsBackendError(t *testing.T) {
	gen := &captureGenerator{err: errors.New("boom")}
	session := newTestSession(gen)
	if _, err := session.Generate(context.Background(), "hi", prompt.RoleGeneral, prompt.LanguageEnglish); err == nil {
		t.Fatal("expected error")
	}
}

func TestSwitchEndpoint(t *testing.T) {
	gen := &captureGenerator{reply: "ok"}
	session := newTestSession(gen)

	if err := session.SwitchEndpoint("Mistral 7B Instruct", "mistralai/Mistral-7B-Instruct-v0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := session.Generate(context.Background(), "hi", prompt.RoleGeneral, prompt.LanguageEnglish); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.lastReq.Model != "mistralai/Mistral-7B-Instruct-v0.1" {
		t.Fatalf("generate used %q after switch", gen.lastReq.Model)
	}
}

func TestSwitchEndpointRejectsInvalid(t *testing.T) {
	session := newTestSession(&captureGenerator{})
	before := session.Model()

	for _, bad := range []string{"", "   ", "has whitespace/model"} {
		err := session.SwitchEndpoint("Bad", bad)
		if !errors.Is(err, ErrBadEndpoint) {
			t.Fatalf("expected ErrBadEndpoint for %q, got %v", bad, err)
		}
		if session.Model() != before {
			t.Fatalf("active model changed after failed switch: %q", session.Model())
		}
	}
}
