package engine

import (
	"fmt"
	"time"

	"github.com/fieldside/rtp/internal/catalog"
	"github.com/fieldside/rtp/internal/protocol"
)

// Eligibility is the result of an advancement check.
type Eligibility struct {
	Eligible bool `json:"eligible"`

	// HoursRemaining is how much of the stage's minimum duration is
	// still outstanding. Zero when the duration gate is satisfied.
	HoursRemaining float64 `json:"hoursRemaining"`

	// Reason names the unmet condition when not eligible.
	Reason protocol.IneligibilityReason `json:"reason,omitempty"`
}

// EvaluateEligibility reports whether the protocol may advance at the
// given time. Never mutates; calling it any number of times with the
// same inputs yields the same result and changes nothing.
//
// Gates, in order:
//  1. A cleared protocol never advances (AlreadyCleared).
//  2. The stage's minimum duration must have elapsed since
//     stageStartedAt (MinimumDuration, with hours remaining).
//  3. When symptomFreeRequired is set, a symptom-free check recorded
//     during the current stage is required (SymptomCheckRequired). A
//     check from before stageStartedAt never counts: a stale result
//     from a prior stage must not clear the current one.
func EvaluateEligibility(p *protocol.Protocol, now time.Time) (Eligibility, error) {
	if p.Cleared() {
		return Eligibility{Reason: protocol.ReasonAlreadyCleared}, nil
	}

	def, err := catalog.Definition(p.CurrentStage)
	if err != nil {
		return Eligibility{}, err
	}

	elapsed := hoursBetween(p.StageStartedAt, now)
	required := float64(def.MinimumDurationHours)
	if elapsed < required {
		return Eligibility{
			HoursRemaining: required - elapsed,
			Reason:         protocol.ReasonMinimumDuration,
		}, nil
	}

	if p.SymptomFreeRequired && !hasCurrentSymptomFreeCheck(p) {
		return Eligibility{Reason: protocol.ReasonSymptomCheckRequired}, nil
	}

	return Eligibility{Eligible: true}, nil
}

// hasCurrentSymptomFreeCheck reports whether a symptom-free result was
// recorded at or after the start of the current stage.
func hasCurrentSymptomFreeCheck(p *protocol.Protocol) bool {
	check := p.LastSymptomCheck
	if check == nil {
		return false
	}
	if check.CheckedAt.Before(p.StageStartedAt) {
		return false
	}
	return check.SymptomFree
}

// hoursBetween returns the elapsed hours from start to end as a real
// number. Negative spans are clamped to zero: stageStartedAt <= now is
// an invariant, and a clock read racing a mutation must not produce a
// negative duration in the audit trail.
func hoursBetween(start, end time.Time) float64 {
	h := end.Sub(start).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// notEligibleError converts a negative eligibility into the typed
// failure AdvanceStage returns.
func notEligibleError(e Eligibility) error {
	return &protocol.StageNotEligibleError{
		Reason:         e.Reason,
		HoursRemaining: e.HoursRemaining,
	}
}

// String renders the eligibility for human display.
func (e Eligibility) String() string {
	if e.Eligible {
		return "eligible"
	}
	if e.Reason == protocol.ReasonMinimumDuration {
		return fmt.Sprintf("not eligible: %s (%.1fh remaining)", e.Reason, e.HoursRemaining)
	}
	return fmt.Sprintf("not eligible: %s", e.Reason)
}
