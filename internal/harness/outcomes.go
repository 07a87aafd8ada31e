package harness

import (
	"errors"

	"github.com/fieldside/rtp/internal/protocol"
)

// Outcome codes recorded in traces and used in scenario expect clauses.
const (
	OutcomeOK              = "ok"
	OutcomeValidation      = "validation_error"
	OutcomeNotEligible     = "stage_not_eligible"
	OutcomeAlreadyCleared  = "protocol_already_cleared"
	OutcomeConflict        = "concurrent_modification"
	OutcomeUnknownStage    = "unknown_stage"
	OutcomeNotFound        = "not_found"
	OutcomeUnexpectedError = "error"
)

var knownOutcomes = map[string]bool{
	OutcomeValidation:     true,
	OutcomeNotEligible:    true,
	OutcomeAlreadyCleared: true,
	OutcomeConflict:       true,
	OutcomeUnknownStage:   true,
	OutcomeNotFound:       true,
}

// outcomeOf maps an operation result to its trace outcome code.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case protocol.IsValidation(err):
		return OutcomeValidation
	case protocol.IsAlreadyCleared(err):
		return OutcomeAlreadyCleared
	case protocol.IsConcurrentModification(err):
		return OutcomeConflict
	case protocol.IsUnknownStage(err):
		return OutcomeUnknownStage
	case errors.Is(err, protocol.ErrProtocolNotFound):
		return OutcomeNotFound
	default:
		if _, ok := protocol.IsStageNotEligible(err); ok {
			return OutcomeNotEligible
		}
		return OutcomeUnexpectedError
	}
}
