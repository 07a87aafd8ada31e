package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/fieldside/rtp/internal/protocol"
)

// Create inserts a freshly created protocol.
//
// The snapshot must be at version 1 (the engine's CreateProtocol
// output). A second active protocol for the same incident violates the
// partial unique index and surfaces as a ValidationError.
func (s *Store) Create(ctx context.Context, p *protocol.Protocol) error {
	if p.ProtocolID == "" {
		return protocol.NewValidationError("protocolId", "must not be empty")
	}
	if p.Version != 1 {
		return protocol.NewValidationError("version", fmt.Sprintf("new protocol must be at version 1, got %d", p.Version))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO protocols
		(protocol_id, incident_id, player_id, current_stage, stage_started_at,
		 symptom_free_required, auto_progression_enabled,
		 last_symptom_checked_at, last_symptom_free,
		 version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, protocolArgs(p)...); err != nil {
		if isUniqueViolation(err) {
			return protocol.NewValidationError("incidentId",
				fmt.Sprintf("an active protocol already exists for incident %s", p.IncidentID))
		}
		return fmt.Errorf("insert protocol: %w", err)
	}

	if err := syncChildren(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create: %w", err)
	}
	return nil
}

// PutIfVersion applies a mutated snapshot if and only if the stored
// version still equals expectedVersion.
//
// The whole apply runs in one transaction: the guarded snapshot UPDATE,
// inserts for newly appended history and alert rows, and acknowledged
// flag updates. On a version mismatch nothing is written and a
// ConcurrentModificationError carrying the stored version is returned;
// the caller re-reads and retries.
func (s *Store) PutIfVersion(ctx context.Context, p *protocol.Protocol, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer tx.Rollback()

	args := protocolArgs(p)
	// Shift protocol_id from the leading INSERT position to the WHERE
	// clause, and append the expected version guard.
	res, err := tx.ExecContext(ctx, `
		UPDATE protocols
		SET incident_id = ?, player_id = ?, current_stage = ?, stage_started_at = ?,
		    symptom_free_required = ?, auto_progression_enabled = ?,
		    last_symptom_checked_at = ?, last_symptom_free = ?,
		    version = ?, created_at = ?, updated_at = ?
		WHERE protocol_id = ? AND version = ?
	`, append(args[1:], p.ProtocolID, expectedVersion)...)
	if err != nil {
		return fmt.Errorf("update protocol: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update protocol: %w", err)
	}
	if affected == 0 {
		var actual int64
		err := tx.QueryRowContext(ctx,
			`SELECT version FROM protocols WHERE protocol_id = ?`, p.ProtocolID).Scan(&actual)
		if errors.Is(err, sql.ErrNoRows) {
			return protocol.ErrProtocolNotFound
		}
		if err != nil {
			return fmt.Errorf("read stored version: %w", err)
		}
		return &protocol.ConcurrentModificationError{
			ProtocolID:      p.ProtocolID,
			ExpectedVersion: expectedVersion,
			ActualVersion:   actual,
		}
	}

	if err := syncChildren(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put: %w", err)
	}
	return nil
}

// protocolArgs flattens a snapshot into the column order shared by the
// INSERT and UPDATE statements, protocol_id first.
func protocolArgs(p *protocol.Protocol) []any {
	var checkedAt, symptomFree any
	if p.LastSymptomCheck != nil {
		checkedAt = formatTime(p.LastSymptomCheck.CheckedAt)
		symptomFree = boolToInt(p.LastSymptomCheck.SymptomFree)
	}
	return []any{
		p.ProtocolID,
		p.IncidentID,
		p.PlayerID,
		string(p.CurrentStage),
		formatTime(p.StageStartedAt),
		boolToInt(p.SymptomFreeRequired),
		boolToInt(p.AutoProgressionEnabled),
		checkedAt,
		symptomFree,
		p.Version,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	}
}

// syncChildren brings the append-only child tables up to date with the
// snapshot. History rows are insert-only (OR IGNORE keeps existing rows
// untouched); alert upserts may additionally flip the acknowledged
// flag, the one in-place mutation the model allows.
func syncChildren(ctx context.Context, tx *sql.Tx, p *protocol.Protocol) error {
	for i, h := range p.StageHistory {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO stage_history
			(protocol_id, seq, stage, started_at, ended_at, duration_hours, outcome, supervisor_id, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ProtocolID, i, string(h.Stage), formatTime(h.StartedAt), formatTime(h.EndedAt),
			h.DurationHours, string(h.Outcome), h.SupervisorID, h.Notes); err != nil {
			return fmt.Errorf("insert stage history: %w", err)
		}
	}

	for i, a := range p.Alerts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO alerts
			(protocol_id, seq, alert_type, message, severity, raised_at, acknowledged)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(protocol_id, seq) DO UPDATE SET acknowledged = excluded.acknowledged
		`, p.ProtocolID, i, a.Type, a.Message, string(a.Severity), formatTime(a.RaisedAt),
			boolToInt(a.Acknowledged)); err != nil {
			return fmt.Errorf("upsert alert: %w", err)
		}
	}

	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
