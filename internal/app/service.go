package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/fieldside/rtp/internal/engine"
	"github.com/fieldside/rtp/internal/notify"
	"github.com/fieldside/rtp/internal/protocol"
)

// Store is the protocol persistence contract the service depends on.
// Satisfied by store.Store (SQLite) and store.MemStore.
type Store interface {
	Create(ctx context.Context, p *protocol.Protocol) error
	Get(ctx context.Context, protocolID string) (*protocol.Protocol, error)
	PutIfVersion(ctx context.Context, p *protocol.Protocol, expectedVersion int64) error
	ListByPlayer(ctx context.Context, playerID string) ([]*protocol.Protocol, error)
}

// maxConflictRetries bounds transparent retries after a lost optimistic
// race. Two staff members clicking "advance" at once resolves on the
// first retry; anything that keeps conflicting past this bound is
// surfaced to the caller.
const maxConflictRetries = 3

// ProtocolService drives protocol mutations end to end.
type ProtocolService struct {
	store  Store
	clock  engine.Clock
	sink   notify.Sink
	ids    protocol.IDGenerator
	logger *slog.Logger
}

// NewProtocolService creates a service with injected dependencies.
// A nil sink discards events; a nil logger uses slog.Default().
func NewProtocolService(st Store, clock engine.Clock, sink notify.Sink, ids protocol.IDGenerator, logger *slog.Logger) *ProtocolService {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProtocolService{store: st, clock: clock, sink: sink, ids: ids, logger: logger}
}

// Create starts a new protocol at stage_1 for an incident and persists
// it.
func (s *ProtocolService) Create(ctx context.Context, incidentID, playerID string, symptomFreeRequired bool) (*protocol.Protocol, error) {
	p, err := engine.CreateProtocol(s.ids.Generate(), incidentID, playerID, symptomFreeRequired, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the current snapshot.
func (s *ProtocolService) Get(ctx context.Context, protocolID string) (*protocol.Protocol, error) {
	return s.store.Get(ctx, protocolID)
}

// ListByPlayer returns all protocols for a player, newest first.
func (s *ProtocolService) ListByPlayer(ctx context.Context, playerID string) ([]*protocol.Protocol, error) {
	return s.store.ListByPlayer(ctx, playerID)
}

// Eligibility evaluates advancement readiness. Read-only: it never
// writes, so repeated calls cannot change protocol state.
func (s *ProtocolService) Eligibility(ctx context.Context, protocolID string) (engine.Eligibility, error) {
	p, err := s.store.Get(ctx, protocolID)
	if err != nil {
		return engine.Eligibility{}, err
	}
	return engine.EvaluateEligibility(p, s.clock.Now())
}

// Advance moves the protocol to its next stage.
func (s *ProtocolService) Advance(ctx context.Context, protocolID, supervisorID, notes string) (*protocol.Protocol, error) {
	return s.mutate(ctx, protocolID, func(p *protocol.Protocol, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
		return engine.AdvanceStage(p, supervisorID, notes, now)
	})
}

// RecordSymptomCheck records an assessment result, resetting the
// protocol when symptoms returned after stage_1.
func (s *ProtocolService) RecordSymptomCheck(ctx context.Context, protocolID string, symptomFree bool) (*protocol.Protocol, error) {
	return s.mutate(ctx, protocolID, func(p *protocol.Protocol, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
		return engine.RecordSymptomCheck(p, symptomFree, now)
	})
}

// Reset reverts the protocol to stage_1 by explicit staff action.
func (s *ProtocolService) Reset(ctx context.Context, protocolID, reason, supervisorID string) (*protocol.Protocol, error) {
	return s.mutate(ctx, protocolID, func(p *protocol.Protocol, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
		return engine.ResetProtocol(p, reason, supervisorID, now)
	})
}

// RaiseAlert appends an alert to the protocol.
func (s *ProtocolService) RaiseAlert(ctx context.Context, protocolID, alertType, message string, severity protocol.Severity) (*protocol.Protocol, error) {
	return s.mutate(ctx, protocolID, func(p *protocol.Protocol, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
		return engine.RaiseAlert(p, alertType, message, severity, now)
	})
}

// AcknowledgeAlert flips the acknowledged flag on one alert. Permitted
// on cleared protocols.
func (s *ProtocolService) AcknowledgeAlert(ctx context.Context, protocolID string, alertIndex int) (*protocol.Protocol, error) {
	return s.mutate(ctx, protocolID, func(p *protocol.Protocol, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
		return engine.AcknowledgeAlert(p, alertIndex, now)
	})
}

// operation is one pure engine call over a fresh snapshot.
type operation func(p *protocol.Protocol, now time.Time) (*protocol.Protocol, []protocol.Event, error)

// mutate runs the optimistic read-modify-write loop.
//
// Engine failures are returned immediately: they are decisions, not
// races, and re-running them on the same state cannot change the
// answer. Only a version conflict triggers a re-read, because the
// decision may genuinely differ on the fresher snapshot.
func (s *ProtocolService) mutate(ctx context.Context, protocolID string, op operation) (*protocol.Protocol, error) {
	for attempt := 0; ; attempt++ {
		snapshot, err := s.store.Get(ctx, protocolID)
		if err != nil {
			return nil, err
		}

		next, events, err := op(snapshot, s.clock.Now())
		if err != nil {
			return nil, err
		}

		err = s.store.PutIfVersion(ctx, next, snapshot.Version)
		if err == nil {
			s.publish(ctx, events)
			return next, nil
		}
		if protocol.IsConcurrentModification(err) && attempt < maxConflictRetries {
			s.logger.DebugContext(ctx, "optimistic write lost, retrying",
				"protocol_id", protocolID, "attempt", attempt+1)
			continue
		}
		return nil, err
	}
}

// publish forwards events to the sink. Notification is best-effort:
// the mutation is already durable, so a sink failure is logged, not
// propagated.
func (s *ProtocolService) publish(ctx context.Context, events []protocol.Event) {
	if len(events) == 0 {
		return
	}
	if err := s.sink.Publish(ctx, events); err != nil {
		s.logger.ErrorContext(ctx, "event delivery failed", "error", err)
	}
}
