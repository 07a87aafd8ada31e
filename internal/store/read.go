package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fieldside/rtp/internal/protocol"
)

// Get returns the full protocol snapshot for an ID, including history
// and alerts in append order. Returns ErrProtocolNotFound for an
// unknown ID.
func (s *Store) Get(ctx context.Context, protocolID string) (*protocol.Protocol, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT protocol_id, incident_id, player_id, current_stage, stage_started_at,
		       symptom_free_required, auto_progression_enabled,
		       last_symptom_checked_at, last_symptom_free,
		       version, created_at, updated_at
		FROM protocols
		WHERE protocol_id = ?
	`, protocolID)

	p, err := scanProtocol(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, protocol.ErrProtocolNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.StageHistory, err = s.readHistory(ctx, protocolID); err != nil {
		return nil, err
	}
	if p.Alerts, err = s.readAlerts(ctx, protocolID); err != nil {
		return nil, err
	}

	return p, nil
}

// ListByPlayer returns all protocols for a player, newest first.
func (s *Store) ListByPlayer(ctx context.Context, playerID string) ([]*protocol.Protocol, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT protocol_id
		FROM protocols
		WHERE player_id = ?
		ORDER BY created_at DESC, protocol_id DESC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query protocols: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan protocol id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate protocols: %w", err)
	}

	protocols := make([]*protocol.Protocol, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		protocols = append(protocols, p)
	}
	return protocols, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanProtocol(sc scanner) (*protocol.Protocol, error) {
	var (
		p                            protocol.Protocol
		stageStartedAt               string
		createdAt, updatedAt         string
		symptomFreeReq, autoProgress int64
		checkedAt                    sql.NullString
		symptomFree                  sql.NullInt64
	)

	err := sc.Scan(
		&p.ProtocolID, &p.IncidentID, &p.PlayerID, &p.CurrentStage, &stageStartedAt,
		&symptomFreeReq, &autoProgress,
		&checkedAt, &symptomFree,
		&p.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.SymptomFreeRequired = symptomFreeReq != 0
	p.AutoProgressionEnabled = autoProgress != 0

	if p.StageStartedAt, err = parseTime(stageStartedAt); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	// Both last-check columns are written together; a row with only one
	// set would be a storage bug.
	if checkedAt.Valid != symptomFree.Valid {
		return nil, fmt.Errorf("protocol %s: inconsistent last symptom check columns", p.ProtocolID)
	}
	if checkedAt.Valid {
		at, err := parseTime(checkedAt.String)
		if err != nil {
			return nil, err
		}
		p.LastSymptomCheck = &protocol.SymptomCheck{
			CheckedAt:   at,
			SymptomFree: symptomFree.Int64 != 0,
		}
	}

	return &p, nil
}

func (s *Store) readHistory(ctx context.Context, protocolID string) ([]protocol.StageHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stage, started_at, ended_at, duration_hours, outcome, supervisor_id, notes
		FROM stage_history
		WHERE protocol_id = ?
		ORDER BY seq ASC
	`, protocolID)
	if err != nil {
		return nil, fmt.Errorf("query stage history: %w", err)
	}
	defer rows.Close()

	history := []protocol.StageHistoryEntry{}
	for rows.Next() {
		var (
			entry              protocol.StageHistoryEntry
			startedAt, endedAt string
		)
		if err := rows.Scan(&entry.Stage, &startedAt, &endedAt,
			&entry.DurationHours, &entry.Outcome, &entry.SupervisorID, &entry.Notes); err != nil {
			return nil, fmt.Errorf("scan stage history: %w", err)
		}
		if entry.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if entry.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage history: %w", err)
	}
	return history, nil
}

func (s *Store) readAlerts(ctx context.Context, protocolID string) ([]protocol.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT alert_type, message, severity, raised_at, acknowledged
		FROM alerts
		WHERE protocol_id = ?
		ORDER BY seq ASC
	`, protocolID)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []protocol.Alert{}
	for rows.Next() {
		var (
			alert    protocol.Alert
			raisedAt string
			acked    int64
		)
		if err := rows.Scan(&alert.Type, &alert.Message, &alert.Severity, &raisedAt, &acked); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if alert.RaisedAt, err = parseTime(raisedAt); err != nil {
			return nil, err
		}
		alert.Acknowledged = acked != 0
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}
