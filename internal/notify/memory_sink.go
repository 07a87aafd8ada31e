package notify

import (
	"context"
	"sync"

	"github.com/fieldside/rtp/internal/protocol"
)

// MemorySink captures published events for inspection in tests and in
// the scenario harness trace.
//
// Thread-safety: safe for concurrent use via internal mutex.
type MemorySink struct {
	mu     sync.Mutex
	events []protocol.Event
}

// NewMemorySink creates an empty capture sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Publish appends the events to the capture buffer.
func (s *MemorySink) Publish(_ context.Context, events []protocol.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

// Events returns a copy of everything captured so far, in publish
// order.
func (s *MemorySink) Events() []protocol.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Drain returns the captured events and clears the buffer.
func (s *MemorySink) Drain() []protocol.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}
