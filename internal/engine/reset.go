package engine

import (
	"fmt"
	"time"

	"github.com/fieldside/rtp/internal/protocol"
)

// ResetReasonSymptomReturn marks resets triggered by a positive symptom
// check rather than explicit staff action.
const ResetReasonSymptomReturn = "symptom_return"

// ResetProtocol reverts an in-progress protocol to stage_1.
//
// The abandoned stage is recorded in the history log with outcome
// "reset"; earlier history from prior cycles is never touched. The last
// symptom check is cleared so the fresh stage_1 requires a new one when
// symptomFreeRequired is set. Emits ProtocolReset.
//
// Valid from any non-cleared stage, including stage_1 itself (staff may
// restart the rest period). Fails with ProtocolAlreadyCleared on a
// terminal protocol.
func ResetProtocol(p *protocol.Protocol, reason, supervisorID string, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
	if p.Cleared() {
		return nil, nil, &protocol.ProtocolAlreadyClearedError{ProtocolID: p.ProtocolID}
	}
	if reason == "" {
		return nil, nil, protocol.NewValidationError("reason", "must not be empty")
	}

	next := p.Clone()
	applyReset(next, reason, supervisorID, now)
	next.Version++
	next.UpdatedAt = now

	events := []protocol.Event{
		protocol.ProtocolReset{
			ProtocolID: p.ProtocolID,
			PlayerID:   p.PlayerID,
			FromStage:  p.CurrentStage,
			Reason:     reason,
		},
	}
	return next, events, nil
}

// RecordSymptomCheck stores the latest externally supplied symptom
// assessment on the protocol.
//
// A symptom-free result simply updates lastSymptomCheck, satisfying the
// symptom gate for the current stage. A positive result (symptoms
// present) outside stage_1 forces an implicit reset back to stage_1 and
// raises a high-severity symptom_return alert; the check itself is kept
// on the snapshot for audit, and being non-symptom-free it cannot
// satisfy the new stage's gate.
//
// Exactly one version bump per call, whether or not a reset fires.
// Fails with ProtocolAlreadyCleared on a terminal protocol.
func RecordSymptomCheck(p *protocol.Protocol, symptomFree bool, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
	if p.Cleared() {
		return nil, nil, &protocol.ProtocolAlreadyClearedError{ProtocolID: p.ProtocolID}
	}

	next := p.Clone()
	next.LastSymptomCheck = &protocol.SymptomCheck{CheckedAt: now, SymptomFree: symptomFree}

	var events []protocol.Event
	if !symptomFree && p.CurrentStage != protocol.Stage1 {
		fromStage := p.CurrentStage
		applyReset(next, ResetReasonSymptomReturn, "", now)
		// applyReset clears the check; the one just recorded stands.
		next.LastSymptomCheck = &protocol.SymptomCheck{CheckedAt: now, SymptomFree: false}

		alert := protocol.Alert{
			Type:     protocol.AlertTypeSymptomReturn,
			Message:  fmt.Sprintf("Symptoms returned during %s; protocol reset to %s.", fromStage, protocol.Stage1),
			Severity: protocol.SeverityHigh,
			RaisedAt: now,
		}
		next.Alerts = append(next.Alerts, alert)

		events = append(events,
			protocol.ProtocolReset{
				ProtocolID: p.ProtocolID,
				PlayerID:   p.PlayerID,
				FromStage:  fromStage,
				Reason:     ResetReasonSymptomReturn,
			},
			protocol.AlertRaised{
				ProtocolID: p.ProtocolID,
				PlayerID:   p.PlayerID,
				AlertType:  alert.Type,
				Severity:   alert.Severity,
				Message:    alert.Message,
			},
		)
	}

	next.Version++
	next.UpdatedAt = now
	return next, events, nil
}

// applyReset rewinds the snapshot to stage_1 in place, logging the
// abandoned stage. Version and updatedAt are the caller's concern.
func applyReset(p *protocol.Protocol, reason, supervisorID string, now time.Time) {
	p.StageHistory = append(p.StageHistory, protocol.StageHistoryEntry{
		Stage:         p.CurrentStage,
		StartedAt:     p.StageStartedAt,
		EndedAt:       now,
		DurationHours: hoursBetween(p.StageStartedAt, now),
		Outcome:       protocol.OutcomeReset,
		SupervisorID:  supervisorID,
		Notes:         reason,
	})
	p.CurrentStage = protocol.Stage1
	p.StageStartedAt = now
	p.LastSymptomCheck = nil
}
