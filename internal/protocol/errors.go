package protocol

import (
	"errors"
	"fmt"
)

// IneligibilityReason identifies why a protocol cannot advance.
type IneligibilityReason string

const (
	// ReasonAlreadyCleared: the protocol reached the terminal stage.
	ReasonAlreadyCleared IneligibilityReason = "AlreadyCleared"

	// ReasonMinimumDuration: the current stage's minimum duration has
	// not yet elapsed.
	ReasonMinimumDuration IneligibilityReason = "MinimumDuration"

	// ReasonSymptomCheckRequired: SymptomFreeRequired is set and no
	// symptom-free check has been recorded during the current stage.
	ReasonSymptomCheckRequired IneligibilityReason = "SymptomCheckRequired"
)

// ValidationError indicates malformed input. Locally recoverable: the
// caller must fix the input and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError for a named field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StageNotEligibleError indicates an unmet gating condition. This is an
// expected outcome, surfaced to the user as "not yet ready".
type StageNotEligibleError struct {
	Reason IneligibilityReason

	// HoursRemaining is set when Reason is MinimumDuration.
	HoursRemaining float64
}

func (e *StageNotEligibleError) Error() string {
	if e.Reason == ReasonMinimumDuration {
		return fmt.Sprintf("stage not eligible: %s (%.1fh remaining)", e.Reason, e.HoursRemaining)
	}
	return fmt.Sprintf("stage not eligible: %s", e.Reason)
}

// ProtocolAlreadyClearedError indicates an attempted mutation on a
// terminal protocol. Surfaced as a hard block; never retried.
type ProtocolAlreadyClearedError struct {
	ProtocolID string
}

func (e *ProtocolAlreadyClearedError) Error() string {
	return fmt.Sprintf("protocol %s is cleared and cannot be mutated", e.ProtocolID)
}

// ConcurrentModificationError indicates a lost optimistic-concurrency
// race: the stored version moved past the snapshot the caller read.
// Callers re-read and retry transparently.
type ConcurrentModificationError struct {
	ProtocolID      string
	ExpectedVersion int64
	ActualVersion   int64
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("protocol %s modified concurrently (expected version %d, found %d)",
		e.ProtocolID, e.ExpectedVersion, e.ActualVersion)
}

// UnknownStageError indicates a stage key outside the catalog. Treated
// as a programming or configuration error, never user-facing.
type UnknownStageError struct {
	Stage Stage
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage %q", e.Stage)
}

// ErrProtocolNotFound is returned by stores for an unknown protocol ID.
var ErrProtocolNotFound = errors.New("protocol not found")

// IsValidation reports whether err is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStageNotEligible reports whether err is a StageNotEligibleError and,
// when it is, returns the unmet reason.
func IsStageNotEligible(err error) (IneligibilityReason, bool) {
	var se *StageNotEligibleError
	if errors.As(err, &se) {
		return se.Reason, true
	}
	return "", false
}

// IsAlreadyCleared reports whether err is a ProtocolAlreadyClearedError.
func IsAlreadyCleared(err error) bool {
	var ce *ProtocolAlreadyClearedError
	return errors.As(err, &ce)
}

// IsConcurrentModification reports whether err is a
// ConcurrentModificationError.
func IsConcurrentModification(err error) bool {
	var cm *ConcurrentModificationError
	return errors.As(err, &cm)
}

// IsUnknownStage reports whether err is an UnknownStageError.
func IsUnknownStage(err error) bool {
	var ue *UnknownStageError
	return errors.As(err, &ue)
}
