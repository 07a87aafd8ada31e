package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldside/rtp/internal/protocol"
)

func TestEvaluateEligibility_MinimumDurationNotMet(t *testing.T) {
	p := newTestProtocol(t)

	// 23h into a 24h stage: one hour short.
	elig, err := EvaluateEligibility(p, baseTime.Add(23*time.Hour))
	require.NoError(t, err)

	assert.False(t, elig.Eligible)
	assert.Equal(t, protocol.ReasonMinimumDuration, elig.Reason)
	assert.InDelta(t, 1.0, elig.HoursRemaining, 1e-9)
}

func TestEvaluateEligibility_SymptomCheckRequired(t *testing.T) {
	p := newTestProtocol(t)

	// Duration satisfied but no check recorded yet.
	elig, err := EvaluateEligibility(p, baseTime.Add(25*time.Hour))
	require.NoError(t, err)

	assert.False(t, elig.Eligible)
	assert.Equal(t, protocol.ReasonSymptomCheckRequired, elig.Reason)
	assert.Zero(t, elig.HoursRemaining)
}

func TestEvaluateEligibility_StaleCheckDoesNotCount(t *testing.T) {
	p := newTestProtocol(t)

	// Check recorded before the current stage started.
	p.LastSymptomCheck = &protocol.SymptomCheck{
		CheckedAt:   baseTime.Add(-time.Hour),
		SymptomFree: true,
	}

	elig, err := EvaluateEligibility(p, baseTime.Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, elig.Eligible)
	assert.Equal(t, protocol.ReasonSymptomCheckRequired, elig.Reason)
}

func TestEvaluateEligibility_NonSymptomFreeCheckDoesNotCount(t *testing.T) {
	p := newTestProtocol(t)
	p.LastSymptomCheck = &protocol.SymptomCheck{
		CheckedAt:   baseTime.Add(24 * time.Hour),
		SymptomFree: false,
	}

	elig, err := EvaluateEligibility(p, baseTime.Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, elig.Eligible)
	assert.Equal(t, protocol.ReasonSymptomCheckRequired, elig.Reason)
}

func TestEvaluateEligibility_AllGatesSatisfied(t *testing.T) {
	p := newTestProtocol(t)
	p.LastSymptomCheck = &protocol.SymptomCheck{
		CheckedAt:   baseTime.Add(24 * time.Hour),
		SymptomFree: true,
	}

	elig, err := EvaluateEligibility(p, baseTime.Add(25*time.Hour))
	require.NoError(t, err)

	assert.True(t, elig.Eligible)
	assert.Zero(t, elig.HoursRemaining)
	assert.Empty(t, elig.Reason)
}

func TestEvaluateEligibility_NoGateWithoutSymptomRequirement(t *testing.T) {
	p, err := CreateProtocol("rtp-3", "HIA-3", "player-3", false, baseTime)
	require.NoError(t, err)

	elig, err := EvaluateEligibility(p, baseTime.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, elig.Eligible)
}

func TestEvaluateEligibility_ClearedProtocol(t *testing.T) {
	p := newTestProtocol(t)
	p.CurrentStage = protocol.StageCleared

	elig, err := EvaluateEligibility(p, baseTime.Add(100*time.Hour))
	require.NoError(t, err)
	assert.False(t, elig.Eligible)
	assert.Equal(t, protocol.ReasonAlreadyCleared, elig.Reason)
}

func TestEvaluateEligibility_UnknownStage(t *testing.T) {
	p := newTestProtocol(t)
	p.CurrentStage = protocol.Stage("stage_9")

	_, err := EvaluateEligibility(p, baseTime)
	assert.True(t, protocol.IsUnknownStage(err))
}

// Eligibility checks are read-only: evaluating repeatedly must not
// change the snapshot in any observable way.
func TestEvaluateEligibility_Idempotent(t *testing.T) {
	p := newTestProtocol(t)
	before, err := protocol.MarshalCanonical(p)
	require.NoError(t, err)

	now := baseTime.Add(10 * time.Hour)
	first, err := EvaluateEligibility(p, now)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := EvaluateEligibility(p, now)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	after, err := protocol.MarshalCanonical(p)
	require.NoError(t, err)
	assert.Equal(t, before, after, "evaluation must not mutate the protocol")
}

func TestEligibility_String(t *testing.T) {
	assert.Equal(t, "eligible", Eligibility{Eligible: true}.String())
	assert.Equal(t, "not eligible: MinimumDuration (2.5h remaining)", Eligibility{
		Reason:         protocol.ReasonMinimumDuration,
		HoursRemaining: 2.5,
	}.String())
	assert.Equal(t, "not eligible: SymptomCheckRequired", Eligibility{
		Reason: protocol.ReasonSymptomCheckRequired,
	}.String())
}
