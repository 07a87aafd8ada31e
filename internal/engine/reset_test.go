package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldside/rtp/internal/protocol"
)

func TestResetProtocol_RevertsToStageOne(t *testing.T) {
	p, err := CreateProtocol("rtp-r1", "HIA-20", "player-20", false, baseTime)
	require.NoError(t, err)
	p, now := advanceThrough(t, p, 2, baseTime)
	require.Equal(t, protocol.Stage3, p.CurrentStage)

	now = now.Add(5 * time.Hour)
	next, events, err := ResetProtocol(p, "precautionary restart", "physio-tran", now)
	require.NoError(t, err)

	assert.Equal(t, protocol.Stage1, next.CurrentStage)
	assert.Equal(t, now, next.StageStartedAt)
	assert.Equal(t, p.Version+1, next.Version)
	assert.Nil(t, next.LastSymptomCheck)

	// Prior history survives; the abandoned stage is appended.
	require.Len(t, next.StageHistory, 3)
	entry := next.StageHistory[2]
	assert.Equal(t, protocol.Stage3, entry.Stage)
	assert.Equal(t, protocol.OutcomeReset, entry.Outcome)
	assert.InDelta(t, 5.0, entry.DurationHours, 1e-9)
	assert.Equal(t, "physio-tran", entry.SupervisorID)
	assert.Equal(t, "precautionary restart", entry.Notes)

	require.Len(t, events, 1)
	reset, ok := events[0].(protocol.ProtocolReset)
	require.True(t, ok)
	assert.Equal(t, protocol.Stage3, reset.FromStage)
	assert.Equal(t, "precautionary restart", reset.Reason)
}

func TestResetProtocol_AllowedAtStageOne(t *testing.T) {
	p := newTestProtocol(t)

	next, _, err := ResetProtocol(p, "restart rest period", "physio-tran", baseTime.Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, protocol.Stage1, next.CurrentStage)
	assert.Len(t, next.StageHistory, 1)
	assert.Equal(t, protocol.OutcomeReset, next.StageHistory[0].Outcome)
}

func TestResetProtocol_RequiresReason(t *testing.T) {
	p := newTestProtocol(t)

	_, _, err := ResetProtocol(p, "", "physio-tran", baseTime)
	assert.True(t, protocol.IsValidation(err))
}

func TestResetProtocol_ClearedIsTerminal(t *testing.T) {
	p := newTestProtocol(t)
	p.CurrentStage = protocol.StageCleared

	_, _, err := ResetProtocol(p, "relapse suspected", "dr-lind", baseTime)
	assert.True(t, protocol.IsAlreadyCleared(err))
}

func TestRecordSymptomCheck_SymptomFree(t *testing.T) {
	p := newTestProtocol(t)
	now := baseTime.Add(10 * time.Hour)

	next, events, err := RecordSymptomCheck(p, true, now)
	require.NoError(t, err)

	require.NotNil(t, next.LastSymptomCheck)
	assert.Equal(t, now, next.LastSymptomCheck.CheckedAt)
	assert.True(t, next.LastSymptomCheck.SymptomFree)
	assert.Equal(t, p.Version+1, next.Version)
	assert.Equal(t, p.CurrentStage, next.CurrentStage)
	assert.Empty(t, events)
	assert.Empty(t, next.Alerts)
}

func TestRecordSymptomCheck_SymptomReturnTriggersReset(t *testing.T) {
	p, err := CreateProtocol("rtp-r2", "HIA-21", "player-21", true, baseTime)
	require.NoError(t, err)
	p, now := advanceThrough(t, p, 2, baseTime)
	require.Equal(t, protocol.Stage3, p.CurrentStage)
	versionBefore := p.Version

	now = now.Add(5 * time.Hour)
	next, events, err := RecordSymptomCheck(p, false, now)
	require.NoError(t, err)

	assert.Equal(t, protocol.Stage1, next.CurrentStage)
	assert.Equal(t, now, next.StageStartedAt)

	// Exactly one version bump even though a reset fired.
	assert.Equal(t, versionBefore+1, next.Version)

	// The failed check stays on the snapshot for audit. It cannot
	// satisfy the new stage's gate: symptomFree is false.
	require.NotNil(t, next.LastSymptomCheck)
	assert.False(t, next.LastSymptomCheck.SymptomFree)
	assert.Equal(t, now, next.LastSymptomCheck.CheckedAt)

	require.Len(t, next.StageHistory, 3)
	entry := next.StageHistory[2]
	assert.Equal(t, protocol.Stage3, entry.Stage)
	assert.Equal(t, protocol.OutcomeReset, entry.Outcome)
	assert.Equal(t, ResetReasonSymptomReturn, entry.Notes)
	assert.Empty(t, entry.SupervisorID)

	require.Len(t, next.Alerts, 1)
	alert := next.Alerts[0]
	assert.Equal(t, protocol.AlertTypeSymptomReturn, alert.Type)
	assert.Equal(t, protocol.SeverityHigh, alert.Severity)
	assert.False(t, alert.Acknowledged)

	require.Len(t, events, 2)
	assert.Equal(t, "protocol_reset", events[0].Kind())
	assert.Equal(t, "alert_raised", events[1].Kind())
}

func TestRecordSymptomCheck_SymptomsAtStageOneDoNotReset(t *testing.T) {
	p := newTestProtocol(t)
	now := baseTime.Add(2 * time.Hour)

	next, events, err := RecordSymptomCheck(p, false, now)
	require.NoError(t, err)

	assert.Equal(t, protocol.Stage1, next.CurrentStage)
	assert.Equal(t, baseTime, next.StageStartedAt, "stage start is not rewound at stage_1")
	assert.Empty(t, next.StageHistory)
	assert.Empty(t, next.Alerts)
	assert.Empty(t, events)
	require.NotNil(t, next.LastSymptomCheck)
	assert.False(t, next.LastSymptomCheck.SymptomFree)
}

func TestRecordSymptomCheck_ClearedIsTerminal(t *testing.T) {
	p := newTestProtocol(t)
	p.CurrentStage = protocol.StageCleared

	_, _, err := RecordSymptomCheck(p, true, baseTime)
	assert.True(t, protocol.IsAlreadyCleared(err))
}

// Logged stage durations plus time spent in the current stage account
// for every hour since creation, across completed stages, an implicit
// symptom-return reset, and an explicit reset.
func TestStageHistory_DurationsAccountForElapsedTime(t *testing.T) {
	p, err := CreateProtocol("rtp-acct", "HIA-30", "player-30", true, baseTime)
	require.NoError(t, err)

	now := baseTime
	p, now = advanceThrough(t, p, 2, now)

	// Symptom return at stage_3 forces an implicit reset.
	now = now.Add(5 * time.Hour)
	p, _, err = RecordSymptomCheck(p, false, now)
	require.NoError(t, err)

	// Climb once more, then reset by staff decision.
	p, now = advanceThrough(t, p, 1, now)
	now = now.Add(3 * time.Hour)
	p, _, err = ResetProtocol(p, "precautionary restart", "physio-tran", now)
	require.NoError(t, err)

	// Time keeps passing in the current stage.
	now = now.Add(7 * time.Hour)

	var logged float64
	for _, h := range p.StageHistory {
		logged += h.DurationHours
	}
	inCurrentStage := hoursBetween(p.StageStartedAt, now)
	sinceCreation := now.Sub(p.CreatedAt).Hours()

	require.Len(t, p.StageHistory, 5)
	assert.InDelta(t, sinceCreation, logged+inCurrentStage, 1e-9,
		"no elapsed hour may be lost or double-counted")
}

// History from earlier cycles is never rewritten, only appended to.
func TestResetProtocol_HistoryConservation(t *testing.T) {
	p, err := CreateProtocol("rtp-r3", "HIA-22", "player-22", false, baseTime)
	require.NoError(t, err)
	p, now := advanceThrough(t, p, 3, baseTime)

	firstCycle := append([]protocol.StageHistoryEntry{}, p.StageHistory...)

	next, _, err := ResetProtocol(p, "graded return abandoned", "dr-osei", now.Add(time.Hour))
	require.NoError(t, err)

	require.Len(t, next.StageHistory, len(firstCycle)+1)
	assert.Equal(t, firstCycle, next.StageHistory[:len(firstCycle)])
}
