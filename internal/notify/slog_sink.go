package notify

import (
	"context"
	"log/slog"

	"github.com/fieldside/rtp/internal/protocol"
)

// SlogSink writes one structured log record per event.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink over the given logger. A nil logger uses
// slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Publish logs each event with its typed fields.
func (s *SlogSink) Publish(ctx context.Context, events []protocol.Event) error {
	for _, ev := range events {
		switch e := ev.(type) {
		case protocol.StageAdvanced:
			s.logger.InfoContext(ctx, "stage advanced",
				"protocol_id", e.ProtocolID,
				"player_id", e.PlayerID,
				"from_stage", string(e.FromStage),
				"to_stage", string(e.ToStage))
		case protocol.ProtocolCompleted:
			s.logger.InfoContext(ctx, "protocol completed",
				"protocol_id", e.ProtocolID,
				"player_id", e.PlayerID)
		case protocol.ProtocolReset:
			s.logger.WarnContext(ctx, "protocol reset",
				"protocol_id", e.ProtocolID,
				"player_id", e.PlayerID,
				"from_stage", string(e.FromStage),
				"reason", e.Reason)
		case protocol.AlertRaised:
			s.logger.WarnContext(ctx, "alert raised",
				"protocol_id", e.ProtocolID,
				"player_id", e.PlayerID,
				"type", e.AlertType,
				"severity", string(e.Severity),
				"message", e.Message)
		default:
			s.logger.InfoContext(ctx, "protocol event", "kind", ev.Kind())
		}
	}
	return nil
}
