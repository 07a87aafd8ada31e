package engine

import (
	"time"

	"github.com/fieldside/rtp/internal/protocol"
)

// CreateProtocol builds a new protocol at stage_1 for an incident.
//
// The protocol starts with empty history and alerts, version 1, and
// stageStartedAt = now. symptomFreeRequired is fixed for the lifetime
// of the protocol. Returns ValidationError when any identifier is
// absent.
func CreateProtocol(protocolID, incidentID, playerID string, symptomFreeRequired bool, now time.Time) (*protocol.Protocol, error) {
	switch {
	case protocolID == "":
		return nil, protocol.NewValidationError("protocolId", "must not be empty")
	case incidentID == "":
		return nil, protocol.NewValidationError("incidentId", "must not be empty")
	case playerID == "":
		return nil, protocol.NewValidationError("playerId", "must not be empty")
	}

	return &protocol.Protocol{
		ProtocolID:          protocolID,
		IncidentID:          incidentID,
		PlayerID:            playerID,
		CurrentStage:        protocol.Stage1,
		StageStartedAt:      now,
		StageHistory:        []protocol.StageHistoryEntry{},
		SymptomFreeRequired: symptomFreeRequired,
		Alerts:              []protocol.Alert{},
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}
