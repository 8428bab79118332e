package registry

import (
	"errors"
	"fmt"

	"github.com/m0shaban/ai-virtual-teacher/internal/config"
)

// ErrNotFound is returned when a label is not part of the catalog.
var ErrNotFound = errors.New("model label not found")

// Catalog is the fixed label -> remote model id mapping built at startup.
type Catalog struct {
	labels    []string
	endpoints map[string]string
}

func New(entries []config.ModelEntry) *Catalog {
	c := &Catalog{endpoints: make(map[string]string, len(entries))}
	for _, e := range entries {
		if _, dup := c.endpoints[e.Label]; dup {
			continue
		}
		c.labels = append(c.labels, e.Label)
		c.endpoints[e.Label] = e.Endpoint
	}
	return c
}

// Lookup resolves a display label to its remote model identifier.
func (c *Catalog) Lookup(label string) (string, error) {
	endpoint, ok := c.endpoints[label]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, label)
	}
	return endpoint, nil
}

// Labels returns the catalog labels in declaration order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}
