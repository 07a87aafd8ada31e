package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("supervisorId", "must not be empty")
	assert.Equal(t, "validation failed: supervisorId: must not be empty", err.Error())

	bare := &ValidationError{Message: "malformed input"}
	assert.Equal(t, "validation failed: malformed input", bare.Error())
}

func TestStageNotEligibleError_Message(t *testing.T) {
	withHours := &StageNotEligibleError{Reason: ReasonMinimumDuration, HoursRemaining: 1.5}
	assert.Equal(t, "stage not eligible: MinimumDuration (1.5h remaining)", withHours.Error())

	noHours := &StageNotEligibleError{Reason: ReasonSymptomCheckRequired}
	assert.Equal(t, "stage not eligible: SymptomCheckRequired", noHours.Error())
}

func TestConcurrentModificationError_Message(t *testing.T) {
	err := &ConcurrentModificationError{ProtocolID: "rtp-1", ExpectedVersion: 3, ActualVersion: 5}
	assert.Equal(t, "protocol rtp-1 modified concurrently (expected version 3, found 5)", err.Error())
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("field", "bad")))
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", NewValidationError("field", "bad"))))
	assert.False(t, IsValidation(errors.New("other")))
	assert.False(t, IsValidation(nil))
}

func TestIsStageNotEligible(t *testing.T) {
	reason, ok := IsStageNotEligible(&StageNotEligibleError{Reason: ReasonMinimumDuration})
	require.True(t, ok)
	assert.Equal(t, ReasonMinimumDuration, reason)

	reason, ok = IsStageNotEligible(fmt.Errorf("wrapped: %w", &StageNotEligibleError{Reason: ReasonSymptomCheckRequired}))
	require.True(t, ok)
	assert.Equal(t, ReasonSymptomCheckRequired, reason)

	_, ok = IsStageNotEligible(errors.New("other"))
	assert.False(t, ok)
}

func TestIsAlreadyCleared(t *testing.T) {
	assert.True(t, IsAlreadyCleared(&ProtocolAlreadyClearedError{ProtocolID: "rtp-1"}))
	assert.False(t, IsAlreadyCleared(ErrProtocolNotFound))
}

func TestIsConcurrentModification(t *testing.T) {
	err := &ConcurrentModificationError{ProtocolID: "rtp-1", ExpectedVersion: 1, ActualVersion: 2}
	assert.True(t, IsConcurrentModification(err))
	assert.True(t, IsConcurrentModification(fmt.Errorf("store: %w", err)))
	assert.False(t, IsConcurrentModification(errors.New("other")))
}

func TestIsUnknownStage(t *testing.T) {
	assert.True(t, IsUnknownStage(&UnknownStageError{Stage: "stage_9"}))
	assert.False(t, IsUnknownStage(errors.New("other")))
}

// The predicates must not shadow each other: each error type matches
// exactly one predicate.
func TestErrorPredicates_Disjoint(t *testing.T) {
	errs := []error{
		NewValidationError("f", "m"),
		&StageNotEligibleError{Reason: ReasonMinimumDuration},
		&ProtocolAlreadyClearedError{ProtocolID: "rtp-1"},
		&ConcurrentModificationError{ProtocolID: "rtp-1"},
		&UnknownStageError{Stage: "x"},
	}

	for i, err := range errs {
		matches := 0
		if IsValidation(err) {
			matches++
		}
		if _, ok := IsStageNotEligible(err); ok {
			matches++
		}
		if IsAlreadyCleared(err) {
			matches++
		}
		if IsConcurrentModification(err) {
			matches++
		}
		if IsUnknownStage(err) {
			matches++
		}
		assert.Equal(t, 1, matches, "error %d (%v) matched %d predicates", i, err, matches)
	}
}
