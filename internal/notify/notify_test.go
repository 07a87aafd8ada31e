package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldside/rtp/internal/protocol"
)

func sampleEvents() []protocol.Event {
	return []protocol.Event{
		protocol.StageAdvanced{
			ProtocolID: "rtp-1",
			PlayerID:   "player-1",
			FromStage:  protocol.Stage1,
			ToStage:    protocol.Stage2,
		},
		protocol.AlertRaised{
			ProtocolID: "rtp-1",
			PlayerID:   "player-1",
			AlertType:  protocol.AlertTypeSymptomReturn,
			Severity:   protocol.SeverityHigh,
			Message:    "symptoms returned",
		},
	}
}

func TestMemorySink_CapturesInOrder(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, sink.Publish(ctx, sampleEvents()[:1]))
	require.NoError(t, sink.Publish(ctx, sampleEvents()[1:]))

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "stage_advanced", events[0].Kind())
	assert.Equal(t, "alert_raised", events[1].Kind())
}

func TestMemorySink_Drain(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.Publish(context.Background(), sampleEvents()))

	drained := sink.Drain()
	assert.Len(t, drained, 2)
	assert.Empty(t, sink.Events())
	assert.Empty(t, sink.Drain())
}

func TestMultiSink_FansOut(t *testing.T) {
	a := NewMemorySink()
	b := NewMemorySink()
	multi := MultiSink{a, b}

	require.NoError(t, multi.Publish(context.Background(), sampleEvents()))

	assert.Len(t, a.Events(), 2)
	assert.Len(t, b.Events(), 2)
}

type failingSink struct{ err error }

func (f failingSink) Publish(context.Context, []protocol.Event) error { return f.err }

func TestMultiSink_StopsOnFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	after := NewMemorySink()
	multi := MultiSink{failingSink{err: boom}, after}

	err := multi.Publish(context.Background(), sampleEvents())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, after.Events())
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Publish(context.Background(), sampleEvents()))
}

func TestSlogSink_LogsEachEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewSlogSink(logger)

	require.NoError(t, sink.Publish(context.Background(), sampleEvents()))

	out := buf.String()
	assert.Contains(t, out, "stage advanced")
	assert.Contains(t, out, "from_stage=stage_1")
	assert.Contains(t, out, "alert raised")
	assert.Contains(t, out, "severity=high")
}
