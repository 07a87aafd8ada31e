package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fieldside/rtp/internal/catalog"
	"github.com/fieldside/rtp/internal/protocol"
)

const timeLayout = "2006-01-02 15:04 MST"

// renderProtocol writes a human-readable snapshot: header, stage state,
// history, and alerts.
func renderProtocol(w io.Writer, p *protocol.Protocol) {
	fmt.Fprintf(w, "Protocol %s\n", p.ProtocolID)
	fmt.Fprintf(w, "  Incident:  %s\n", p.IncidentID)
	fmt.Fprintf(w, "  Player:    %s\n", p.PlayerID)
	fmt.Fprintf(w, "  Stage:     %s\n", describeStage(p.CurrentStage))
	fmt.Fprintf(w, "  Since:     %s\n", p.StageStartedAt.Format(timeLayout))
	fmt.Fprintf(w, "  Version:   %d\n", p.Version)
	fmt.Fprintf(w, "  Created:   %s\n", p.CreatedAt.Format(timeLayout))

	if p.SymptomFreeRequired {
		if p.LastSymptomCheck == nil {
			fmt.Fprintf(w, "  Symptom check: required, none recorded\n")
		} else {
			state := "symptoms present"
			if p.LastSymptomCheck.SymptomFree {
				state = "symptom-free"
			}
			fmt.Fprintf(w, "  Symptom check: %s at %s\n", state, p.LastSymptomCheck.CheckedAt.Format(timeLayout))
		}
	}

	if len(p.StageHistory) > 0 {
		fmt.Fprintf(w, "  History:\n")
		for _, h := range p.StageHistory {
			fmt.Fprintf(w, "    %-8s %s -> %s  %6.1fh  %s",
				h.Stage,
				h.StartedAt.Format(timeLayout),
				h.EndedAt.Format(timeLayout),
				h.DurationHours,
				h.Outcome)
			if h.Notes != "" {
				fmt.Fprintf(w, "  (%s)", h.Notes)
			}
			fmt.Fprintln(w)
		}
	}

	if len(p.Alerts) > 0 {
		fmt.Fprintf(w, "  Alerts:\n")
		for i, a := range p.Alerts {
			ack := "unacknowledged"
			if a.Acknowledged {
				ack = "acknowledged"
			}
			fmt.Fprintf(w, "    [%d] %s/%s %s - %s (%s)\n",
				i, a.Type, a.Severity, a.RaisedAt.Format(timeLayout), a.Message, ack)
		}
	}
}

// describeStage pairs the stage key with its catalog label.
func describeStage(s protocol.Stage) string {
	if s == protocol.StageCleared {
		return "cleared"
	}
	def, err := catalog.Definition(s)
	if err != nil {
		return string(s)
	}
	return fmt.Sprintf("%s (%s)", s, def.Label)
}

// renderStages writes the full catalog table.
func renderStages(w io.Writer) {
	for _, def := range catalog.Definitions() {
		fmt.Fprintf(w, "%s  %s\n", def.Key, def.Label)
		fmt.Fprintf(w, "  %s\n", def.Description)
		fmt.Fprintf(w, "  Allowed:   %s\n", def.AllowedActivities)
		fmt.Fprintf(w, "  Minimum:   %dh\n", def.MinimumDurationHours)
		fmt.Fprintf(w, "  Advance:   %s\n", def.ProgressionCriteria)
		fmt.Fprintln(w, strings.Repeat("-", 60))
	}
	fmt.Fprintln(w, "cleared  Terminal: protocol complete, full participation")
}
