package engine

import (
	"time"

	"github.com/fieldside/rtp/internal/protocol"
)

// RaiseAlert appends a new alert to the protocol.
//
// Alerts are append-only; nothing about an existing alert changes here.
// Emits AlertRaised. Fails with ProtocolAlreadyCleared on a terminal
// protocol: once cleared, only acknowledgement may still mutate state.
func RaiseAlert(p *protocol.Protocol, alertType, message string, severity protocol.Severity, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
	if p.Cleared() {
		return nil, nil, &protocol.ProtocolAlreadyClearedError{ProtocolID: p.ProtocolID}
	}
	if alertType == "" {
		return nil, nil, protocol.NewValidationError("type", "must not be empty")
	}
	if message == "" {
		return nil, nil, protocol.NewValidationError("message", "must not be empty")
	}
	if !protocol.ValidSeverities[severity] {
		return nil, nil, protocol.NewValidationError("severity", "must be one of low, medium, high")
	}

	next := p.Clone()
	next.Alerts = append(next.Alerts, protocol.Alert{
		Type:     alertType,
		Message:  message,
		Severity: severity,
		RaisedAt: now,
	})
	next.Version++
	next.UpdatedAt = now

	events := []protocol.Event{
		protocol.AlertRaised{
			ProtocolID: p.ProtocolID,
			PlayerID:   p.PlayerID,
			AlertType:  alertType,
			Severity:   severity,
			Message:    message,
		},
	}
	return next, events, nil
}

// AcknowledgeAlert flips the acknowledged flag on one alert.
//
// This is the only in-place mutation the data model permits, and the
// only mutation still allowed after clearance. Fails with
// ValidationError on an out-of-range index or an already-acknowledged
// alert.
func AcknowledgeAlert(p *protocol.Protocol, alertIndex int, now time.Time) (*protocol.Protocol, []protocol.Event, error) {
	if alertIndex < 0 || alertIndex >= len(p.Alerts) {
		return nil, nil, protocol.NewValidationError("alertIndex", "out of range")
	}
	if p.Alerts[alertIndex].Acknowledged {
		return nil, nil, protocol.NewValidationError("alertIndex", "alert already acknowledged")
	}

	next := p.Clone()
	next.Alerts[alertIndex].Acknowledged = true
	next.Version++
	next.UpdatedAt = now

	return next, nil, nil
}
