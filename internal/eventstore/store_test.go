package eventstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/m0shaban/ai-virtual-teacher/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOpenEphemeralIsNoOp(t *testing.T) {
	ctx := context.Background()
	cfg := config.AuditConfig{RetentionMode: "ephemeral"}
	es, err := Open(ctx, cfg, newLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = es.Close() })

	if err := es.AppendTurn(ctx, Turn{SessionID: "s", Question: "q", Reply: "r"}); err != nil {
		t.Fatalf("append turn: %v", err)
	}
	turns, err := es.ListSessionTurns(ctx, "s", 10)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if turns != nil {
		t.Fatalf("ephemeral store should record nothing, got %v", turns)
	}
}

func TestAppendAndQueryTurns(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.AuditConfig{Path: filepath.Join(tmp, "audit.db"), RetentionMode: "session"}
	es, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open audit store: %v", err)
	}
	t.Cleanup(func() { _ = es.Close() })

	sessionID := "session-123"
	if err := es.AppendSession(context.Background(), sessionID, "HuggingFaceH4/zephyr-7b-beta"); err != nil {
		t.Fatalf("append session: %v", err)
	}
	turn := Turn{
		SessionID: sessionID,
		Question:  "What is Newton's first law?",
		Reply:     "Objects at rest stay at rest.",
		Model:     "HuggingFaceH4/zephyr-7b-beta",
		Role:      "general",
		Language:  "english",
	}
	if err := es.AppendTurn(context.Background(), turn); err != nil {
		t.Fatalf("append turn: %v", err)
	}
	if err := es.AppendEvent(context.Background(), Event{SessionID: sessionID, Type: "model_switch", Detail: "Mistral 7B Instruct"}); err != nil {
		t.Fatalf("append event: %v", err)
	}

	turns, err := es.ListSessionTurns(context.Background(), sessionID, 10)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Question != turn.Question || turns[0].Reply != turn.Reply {
		t.Fatalf("unexpected turn: %+v", turns[0])
	}
}

func TestPruneByDaysAndSessions(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.AuditConfig{Path: filepath.Join(tmp, "audit.db"), RetentionMode: "persistent", RetentionDays: 1, MaxSessions: 1}
	es, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open audit store: %v", err)
	}
	t.Cleanup(func() { _ = es.Close() })

	es.clock = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := es.AppendSession(context.Background(), "old-session", "m"); err != nil {
		t.Fatalf("append session: %v", err)
	}
	if err := es.AppendTurn(context.Background(), Turn{SessionID: "old-session", Question: "q", Reply: "r"}); err != nil {
		t.Fatalf("append turn: %v", err)
	}

	es.clock = func() time.Time { return time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC) }
	if err := es.AppendSession(context.Background(), "new-session", "m"); err != nil {
		t.Fatalf("append session: %v", err)
	}
	if err := es.Prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	turns, err := es.ListSessionTurns(context.Background(), "old-session", 10)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected old session pruned, got %d turns", len(turns))
	}
}
