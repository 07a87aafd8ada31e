package engine

import (
	"time"

	"github.com/fieldside/rtp/internal/catalog"
	"github.com/fieldside/rtp/internal/protocol"
)

// AdvanceStage moves an eligible protocol to the next stage, or to the
// terminal cleared state out of stage_6.
//
// The abandoned stage is recorded in the history log with outcome
// "completed" before the move; the version bumps by one. Emits
// StageAdvanced, plus ProtocolCompleted when the move reaches cleared.
//
// Fails with ProtocolAlreadyCleared on a terminal protocol and with
// StageNotEligible when any gate is unmet; on failure the input
// snapshot is unchanged.
func AdvanceStage(p *protocol.Protocol, supervisorID, notes string, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
	if p.Cleared() {
		return nil, nil, &protocol.ProtocolAlreadyClearedError{ProtocolID: p.ProtocolID}
	}
	if supervisorID == "" {
		return nil, nil, protocol.NewValidationError("supervisorId", "must not be empty")
	}

	elig, err := EvaluateEligibility(p, now)
	if err != nil {
		return nil, nil, err
	}
	if !elig.Eligible {
		return nil, nil, notEligibleError(elig)
	}

	nextStage, err := catalog.Next(p.CurrentStage)
	if err != nil {
		return nil, nil, err
	}

	next := p.Clone()
	next.StageHistory = append(next.StageHistory, protocol.StageHistoryEntry{
		Stage:         p.CurrentStage,
		StartedAt:     p.StageStartedAt,
		EndedAt:       now,
		DurationHours: hoursBetween(p.StageStartedAt, now),
		Outcome:       protocol.OutcomeCompleted,
		SupervisorID:  supervisorID,
		Notes:         notes,
	})
	next.CurrentStage = nextStage
	next.StageStartedAt = now
	next.Version++
	next.UpdatedAt = now

	events := []protocol.Event{
		protocol.StageAdvanced{
			ProtocolID: p.ProtocolID,
			PlayerID:   p.PlayerID,
			FromStage:  p.CurrentStage,
			ToStage:    nextStage,
		},
	}
	if nextStage == protocol.StageCleared {
		events = append(events, protocol.ProtocolCompleted{
			ProtocolID: p.ProtocolID,
			PlayerID:   p.PlayerID,
		})
	}

	return next, events, nil
}
