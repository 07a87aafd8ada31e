package store

import (
	"fmt"
	"time"
)

// Timestamps are stored as RFC 3339 TEXT in UTC. Nanosecond precision
// is kept so a round trip through the store is lossless; RFC3339Nano
// parsing also accepts values written without fractional seconds.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
