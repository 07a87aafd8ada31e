package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProtocol() *Protocol {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return &Protocol{
		ProtocolID:          "rtp-1",
		IncidentID:          "HIA-1",
		PlayerID:            "player-1",
		CurrentStage:        Stage2,
		StageStartedAt:      start.Add(25 * time.Hour),
		SymptomFreeRequired: true,
		StageHistory: []StageHistoryEntry{
			{
				Stage:         Stage1,
				StartedAt:     start,
				EndedAt:       start.Add(25 * time.Hour),
				DurationHours: 25,
				Outcome:       OutcomeCompleted,
				SupervisorID:  "dr-hayes",
				Notes:         "tolerated light activity",
			},
		},
		Alerts: []Alert{
			{
				Type:     "observation",
				Message:  "dizziness reported",
				Severity: SeverityMedium,
				RaisedAt: start.Add(26 * time.Hour),
			},
		},
		Version:   3,
		CreatedAt: start,
		UpdatedAt: start.Add(25 * time.Hour),
	}
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	p := sampleProtocol()

	first, err := MarshalCanonical(p)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(p)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMarshalCanonical_ValidJSON(t *testing.T) {
	data, err := MarshalCanonical(sampleProtocol())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "rtp-1", decoded["protocolId"])
	assert.Equal(t, "stage_2", decoded["currentStage"])
	assert.Equal(t, float64(3), decoded["version"])
}

func TestMarshalCanonical_KeysSorted(t *testing.T) {
	data, err := MarshalCanonicalValue(map[string]any{
		"zebra": "z",
		"alpha": "a",
		"mid":   "m",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"a","mid":"m","zebra":"z"}`, string(data))
}

func TestMarshalCanonical_OmitsAbsentSymptomCheck(t *testing.T) {
	p := sampleProtocol()
	p.LastSymptomCheck = nil

	data, err := MarshalCanonical(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "lastSymptomCheck")
	assert.NotContains(t, string(data), "null")
}

func TestMarshalCanonical_IncludesPresentSymptomCheck(t *testing.T) {
	p := sampleProtocol()
	p.LastSymptomCheck = &SymptomCheck{
		CheckedAt:   time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC),
		SymptomFree: true,
	}

	data, err := MarshalCanonical(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lastSymptomCheck":{"checkedAt":"2026-01-06T10:00:00Z","symptomFree":true}`)
}

func TestMarshalCanonical_TimestampsUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	data, err := MarshalCanonicalValue(map[string]any{
		"at": time.Date(2026, 1, 5, 10, 0, 0, 0, loc),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"at":"2026-01-05T09:00:00Z"}`, string(data))
}

func TestMarshalCanonical_FloatShortestForm(t *testing.T) {
	data, err := MarshalCanonicalValue(map[string]any{
		"whole":    float64(24),
		"fraction": 1.5,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"fraction":1.5,"whole":24}`, string(data))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonicalValue(map[string]any{"note": `cleared <24h> & monitored`})
	require.NoError(t, err)
	assert.Equal(t, `{"note":"cleared <24h> & monitored"}`, string(data))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "é" as combining sequence (U+0065 U+0301) normalizes to the
	// precomposed U+00E9.
	decomposed := "José"
	composed := "José"

	a, err := MarshalCanonicalValue(map[string]any{"name": decomposed})
	require.NoError(t, err)
	b, err := MarshalCanonicalValue(map[string]any{"name": composed})
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestMarshalCanonical_ControlCharacterEscaping(t *testing.T) {
	data, err := MarshalCanonicalValue(map[string]any{"note": "line1\nline2\ttab\x01"})
	require.NoError(t, err)
	assert.Equal(t, `{"note":"line1\nline2\ttab"}`, string(data))
}

func TestMarshalCanonical_RejectsNullAndNaN(t *testing.T) {
	_, err := MarshalCanonicalValue(map[string]any{"bad": nil})
	assert.Error(t, err)

	_, err = MarshalCanonicalValue(map[string]any{"bad": nan()})
	assert.Error(t, err)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

// Canonical equality is the structural-equality test the engine's
// no-mutation guarantees rely on: a clone serializes identically, and
// any mutation changes the bytes.
func TestMarshalCanonical_CloneEquality(t *testing.T) {
	p := sampleProtocol()
	clone := p.Clone()

	a, err := MarshalCanonical(p)
	require.NoError(t, err)
	b, err := MarshalCanonical(clone)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	clone.Version++
	c, err := MarshalCanonical(clone)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
