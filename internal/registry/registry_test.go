package registry

import (
	"errors"
	"testing"

	"github.com/m0shaban/ai-virtual-teacher/internal/config"
)

func TestLookupAllDefaults(t *testing.T) {
	catalog := New(config.Default().Models)
	labels := catalog.Labels()
	if len(labels) != 6 {
		t.Fatalf("expected 6 labels, got %d", len(labels))
	}
	for _, label := range labels {
		endpoint, err := catalog.Lookup(label)
		if err != nil {
			t.Fatalf("lookup %q: %v", label, err)
		}
		if endpoint == "" {
			t.Fatalf("empty endpoint for %q", label)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	catalog := New(config.Default().Models)
	if _, err := catalog.Lookup("GPT-9 Ultra"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
