package protocol

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces protocol identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator produces hyphenated UUIDv7 protocol IDs. The
// embedded timestamp makes IDs sort by creation time, which keeps
// store listings and audit exports in chronological order for free.
//
// Stateless; safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7. Panics if the system entropy source
// fails.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator hands out a predetermined sequence of IDs, giving
// deterministic protocol IDs to tests and the scenario harness.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator returning the given IDs in
// order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next ID. Panics once the sequence is exhausted:
// a test asking for more IDs than it declared is a broken test.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("FixedGenerator exhausted after %d IDs", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
