package engine

import "time"

// Clock supplies the current time to protocol operations.
//
// Production code uses SystemClock; tests inject a manual clock and
// advance it explicitly (see internal/testutil). Keeping the clock
// injectable is what makes stage eligibility deterministic to test:
// the minimum-duration gate compares real timestamps, never counters
// or sleeps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
