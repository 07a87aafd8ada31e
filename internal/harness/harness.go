package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldside/rtp/internal/app"
	"github.com/fieldside/rtp/internal/notify"
	"github.com/fieldside/rtp/internal/protocol"
	"github.com/fieldside/rtp/internal/store"
	"github.com/fieldside/rtp/internal/testutil"
)

// RunResult captures everything a scenario execution produced.
type RunResult struct {
	Scenario   *Scenario
	ProtocolID string

	// Trace is one entry per step (plus the implicit create), already
	// shaped for canonical JSON serialization.
	Trace []any

	// Final is the protocol snapshot after the last step.
	Final *protocol.Protocol
}

// Run executes a scenario against the engine wired to an in-memory
// store, a manual clock, and a capture sink.
//
// A step whose actual outcome differs from its expect clause fails the
// run; so does a final-state assertion mismatch.
func Run(s *Scenario) (*RunResult, error) {
	ctx := context.Background()

	clock := testutil.NewManualClock(s.Start)
	mem := store.NewMemStore()
	sink := notify.NewMemorySink()
	protocolID := "rtp-" + s.Name
	svc := app.NewProtocolService(mem, clock, sink, protocol.NewFixedGenerator(protocolID), nil)

	result := &RunResult{Scenario: s, ProtocolID: protocolID}

	created, err := svc.Create(ctx, s.Protocol.IncidentID, s.Protocol.PlayerID, s.Protocol.SymptomFreeRequired)
	if err != nil {
		return nil, fmt.Errorf("create protocol: %w", err)
	}
	result.Trace = append(result.Trace, map[string]any{
		"op":      "create",
		"outcome": OutcomeOK,
		"stage":   string(created.CurrentStage),
		"version": created.Version,
	})
	result.Final = created

	for i, step := range s.Steps {
		if step.Tick != "" {
			d, err := time.ParseDuration(step.Tick)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			clock.Advance(d)
			result.Trace = append(result.Trace, map[string]any{
				"hours": d.Hours(),
				"op":    "tick",
			})
			continue
		}

		entry, snapshot, err := runOp(ctx, svc, sink, protocolID, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}

		expect := step.Expect
		if expect == "" {
			expect = OutcomeOK
		}
		if got := entry["outcome"]; got != expect {
			return nil, fmt.Errorf("step %d (%s): outcome %v, expected %v", i, step.Op, got, expect)
		}

		result.Trace = append(result.Trace, entry)
		if snapshot != nil {
			result.Final = snapshot
		}
	}

	// Re-read the stored state so final assertions see what persisted,
	// not what the last operation happened to return.
	final, err := svc.Get(ctx, protocolID)
	if err != nil {
		return nil, fmt.Errorf("read final state: %w", err)
	}
	result.Final = final

	if s.Final != nil {
		if err := checkFinal(s.Final, final); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// runOp executes one op step and shapes its trace entry. The returned
// snapshot is nil when the op failed or does not mutate.
func runOp(ctx context.Context, svc *app.ProtocolService, sink *notify.MemorySink, protocolID string, step Step) (map[string]any, *protocol.Protocol, error) {
	if step.Op == "eligibility" {
		elig, err := svc.Eligibility(ctx, protocolID)
		if err != nil {
			return map[string]any{"op": step.Op, "outcome": outcomeOf(err)}, nil, nil
		}
		entry := map[string]any{
			"eligible": elig.Eligible,
			"op":       step.Op,
			"outcome":  OutcomeOK,
		}
		if !elig.Eligible {
			entry["reason"] = string(elig.Reason)
			if elig.Reason == protocol.ReasonMinimumDuration {
				entry["hours_remaining"] = elig.HoursRemaining
			}
		}
		return entry, nil, nil
	}

	var (
		snapshot *protocol.Protocol
		err      error
	)
	switch step.Op {
	case "advance":
		snapshot, err = svc.Advance(ctx, protocolID, step.Supervisor, step.Notes)
	case "check":
		snapshot, err = svc.RecordSymptomCheck(ctx, protocolID, step.SymptomFree)
	case "reset":
		snapshot, err = svc.Reset(ctx, protocolID, step.Reason, step.Supervisor)
	case "ack":
		snapshot, err = svc.AcknowledgeAlert(ctx, protocolID, step.AlertIndex)
	case "alert":
		snapshot, err = svc.RaiseAlert(ctx, protocolID, step.AlertType, step.Message, protocol.Severity(step.Severity))
	default:
		return nil, nil, fmt.Errorf("unknown op %q", step.Op)
	}

	entry := map[string]any{
		"op":      step.Op,
		"outcome": outcomeOf(err),
	}
	if step.Op == "check" {
		entry["symptom_free"] = step.SymptomFree
	}

	if err != nil {
		if reason, ok := protocol.IsStageNotEligible(err); ok {
			entry["reason"] = string(reason)
		}
		return entry, nil, nil
	}

	entry["stage"] = string(snapshot.CurrentStage)
	entry["version"] = snapshot.Version
	if events := sink.Drain(); len(events) > 0 {
		kinds := make([]any, len(events))
		for i, ev := range events {
			kinds[i] = ev.Kind()
		}
		entry["events"] = kinds
	}
	return entry, snapshot, nil
}

func checkFinal(want *FinalState, got *protocol.Protocol) error {
	if want.Stage != "" && string(got.CurrentStage) != want.Stage {
		return fmt.Errorf("final stage %s, expected %s", got.CurrentStage, want.Stage)
	}
	if want.Version != 0 && got.Version != want.Version {
		return fmt.Errorf("final version %d, expected %d", got.Version, want.Version)
	}
	if len(got.StageHistory) != want.HistoryLen {
		return fmt.Errorf("final history length %d, expected %d", len(got.StageHistory), want.HistoryLen)
	}
	if len(got.Alerts) != want.AlertCount {
		return fmt.Errorf("final alert count %d, expected %d", len(got.Alerts), want.AlertCount)
	}
	acked := 0
	for _, a := range got.Alerts {
		if a.Acknowledged {
			acked++
		}
	}
	if acked != want.Acknowledged {
		return fmt.Errorf("final acknowledged count %d, expected %d", acked, want.Acknowledged)
	}
	return nil
}

// canonicalTrace shapes a run result for golden comparison.
func canonicalTrace(r *RunResult) map[string]any {
	acked := 0
	for _, a := range r.Final.Alerts {
		if a.Acknowledged {
			acked++
		}
	}
	return map[string]any{
		"name":        r.Scenario.Name,
		"protocol_id": r.ProtocolID,
		"steps":       append([]any{}, r.Trace...),
		"final": map[string]any{
			"acknowledged": acked,
			"alerts":       len(r.Final.Alerts),
			"history":      len(r.Final.StageHistory),
			"stage":        string(r.Final.CurrentStage),
			"version":      r.Final.Version,
		},
	}
}
