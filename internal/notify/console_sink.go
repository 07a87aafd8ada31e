package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/fieldside/rtp/internal/protocol"
)

// ConsoleSink prints human-readable event lines, color-graded by how
// much attention the event deserves. Used by the CLI so a reset or a
// high-severity alert stands out from routine advancement output.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

var (
	consoleGood  = color.New(color.FgGreen)
	consoleWarn  = color.New(color.FgYellow)
	consoleAlarm = color.New(color.FgRed, color.Bold)
)

// Publish writes one line per event.
func (s *ConsoleSink) Publish(_ context.Context, events []protocol.Event) error {
	for _, ev := range events {
		var err error
		switch e := ev.(type) {
		case protocol.StageAdvanced:
			_, err = consoleGood.Fprintf(s.w, "advanced %s: %s -> %s\n", e.ProtocolID, e.FromStage, e.ToStage)
		case protocol.ProtocolCompleted:
			_, err = consoleGood.Fprintf(s.w, "protocol %s completed: player %s cleared\n", e.ProtocolID, e.PlayerID)
		case protocol.ProtocolReset:
			_, err = consoleWarn.Fprintf(s.w, "protocol %s reset from %s (%s)\n", e.ProtocolID, e.FromStage, e.Reason)
		case protocol.AlertRaised:
			c := consoleWarn
			if e.Severity == protocol.SeverityHigh {
				c = consoleAlarm
			}
			_, err = c.Fprintf(s.w, "alert [%s/%s] %s\n", e.AlertType, e.Severity, e.Message)
		default:
			_, err = fmt.Fprintf(s.w, "event %s\n", ev.Kind())
		}
		if err != nil {
			return err
		}
	}
	return nil
}
