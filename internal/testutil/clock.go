// Package testutil provides helpers shared by tests across packages.
package testutil

import (
	"sync"
	"time"

	"github.com/fieldside/rtp/internal/engine"
)

// ManualClock is a settable engine.Clock for deterministic tests.
//
// Tests create the clock at a fixed instant and advance it explicitly,
// so eligibility windows elapse without wall-clock delays.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ engine.Clock = (*ManualClock)(nil)

// NewManualClock creates a clock frozen at the given instant.
func NewManualClock(at time.Time) *ManualClock {
	return &ManualClock{now: at}
}

// Now returns the clock's current instant. It does not advance on read.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations are a bug in
// the test; they would break the stageStartedAt <= now invariant.
func (c *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		panic("ManualClock: cannot advance backwards")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to an absolute instant.
func (c *ManualClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}
