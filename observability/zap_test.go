package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tailored-agentic-units/taskloop/observability"
)

func TestZapObserver_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := observability.NewZapObserver(zap.New(core))

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	obs.OnEvent(context.Background(), observability.Event{
		Type:      "kernel.dispatch",
		Level:     observability.LevelInfo,
		Timestamp: ts,
		Source:    "kernel.Start",
		Data:      map[string]any{"capability": "list_files", "turn": 2},
	})

	entries := logs.All()
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "kernel.dispatch", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.True(t, entry.Time.Equal(ts))

	fields := entry.ContextMap()
	assert.Equal(t, "kernel.Start", fields["source"])
	assert.Equal(t, "list_files", fields["capability"])
	assert.EqualValues(t, 2, fields["turn"])
}

func TestZapObserver_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	obs := observability.NewZapObserver(zap.New(core))

	for _, level := range []observability.Level{
		observability.LevelVerbose,
		observability.LevelInfo,
		observability.LevelWarning,
		observability.LevelError,
	} {
		obs.OnEvent(context.Background(), observability.Event{Type: "test.event", Level: level})
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestLevel_ZapLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  zapcore.Level
	}{
		{observability.LevelVerbose, zapcore.DebugLevel},
		{observability.LevelInfo, zapcore.InfoLevel},
		{observability.LevelWarning, zapcore.WarnLevel},
		{observability.LevelError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.ZapLevel())
		})
	}
}

func TestRecorder(t *testing.T) {
	r := &observability.Recorder{}
	r.OnEvent(context.Background(), observability.Event{Type: "a"})
	r.OnEvent(context.Background(), observability.Event{Type: "b"})
	r.OnEvent(context.Background(), observability.Event{Type: "a"})

	assert.Equal(t, []observability.EventType{"a", "b", "a"}, r.Types())
	assert.Equal(t, 2, r.Count("a"))
	assert.Len(t, r.Events(), 3)
}
