// Package notify delivers engine events to downstream consumers.
//
// The engine emits plain event records alongside each successful
// mutation; a Sink is whatever wants to hear about them - a structured
// log, a terminal banner, a test capture. Delivery failures never fail
// the mutation that produced the events: the orchestrator logs and
// moves on.
package notify

import (
	"context"

	"github.com/fieldside/rtp/internal/protocol"
)

// Sink receives the events emitted by a successful mutation, in order.
type Sink interface {
	Publish(ctx context.Context, events []protocol.Event) error
}

// MultiSink fans events out to several sinks in order. The first
// failure stops the fan-out and is returned.
type MultiSink []Sink

// Publish delivers the events to each sink in turn.
func (m MultiSink) Publish(ctx context.Context, events []protocol.Event) error {
	for _, s := range m {
		if err := s.Publish(ctx, events); err != nil {
			return err
		}
	}
	return nil
}

// Discard is a Sink that drops everything.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Publish(context.Context, []protocol.Event) error { return nil }
