package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestParseFormat checks accepted encoder names and the console fallback.
func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, ok := ParseFormat(" JSON ")
	require.True(t, ok)
	require.Equal(t, FormatJSON, f)

	f, ok = ParseFormat("")
	require.True(t, ok)
	require.Equal(t, FormatConsole, f)

	f, ok = ParseFormat("xml")
	require.False(t, ok)
	require.Equal(t, FormatConsole, f)
}

// TestContextFields ensures WithName and WithKV decorate the logger carried by the context.
func TestContextFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "room-processor")
	ctx = WithKV(ctx, "room_number", "101")

	InfoKV(ctx, "reading accepted", "temperature", 21.5)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "room-processor", entries[0].LoggerName)
	require.Equal(t, "101", entries[0].ContextMap()["room_number"])
	require.InDelta(t, 21.5, entries[0].ContextMap()["temperature"], 1e-9)
}

// TestFromContext_FallsBackToGlobal verifies a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithLevel_FiltersBelowLevel verifies the level-wrapping option drops lower-level entries.
func TestWithLevel_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core, WithLevel(zapcore.WarnLevel)).Sugar()

	l.Info("dropped")
	l.Warn("kept")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "kept", logs.All()[0].Message)
}

// TestWithLevel_KeepsCoreLevel verifies the floor never lets through what the wrapped core rejects.
func TestWithLevel_KeepsCoreLevel(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	l := zap.New(core, WithLevel(zapcore.WarnLevel)).Sugar().With("component", "paho")

	l.Warn("dropped")
	l.Error("kept")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "kept", logs.All()[0].Message)
	require.Equal(t, "paho", logs.All()[0].ContextMap()["component"])
}
