package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	req := require.New(t)

	req.Equal(Debug, ParseLevel("DEBUG"))
	req.Equal(Info, ParseLevel(""))
	req.Equal(Warn, ParseLevel("warning"))
	req.Equal(Error, ParseLevel(" error "))
	req.Equal(Info, ParseLevel("verbose"))
}

func TestParseFormat(t *testing.T) {
	require.Equal(t, FormatJSON, ParseFormat("JSON"))
	require.Equal(t, FormatText, ParseFormat("logfmt"))
}

func TestZapLogger_WithMergesFields(t *testing.T) {
	req := require.New(t)

	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZap(zap.New(core)).With(map[string]any{"request_id": "r-1"})

	l.Error("lookup failed", map[string]any{
		"medication_id": "m-1",
		"err":           errors.New("boom"),
		"":              "ignored",
	})

	entries := logs.All()
	req.Len(entries, 1)
	req.Equal("lookup failed", entries[0].Message)

	ctx := entries[0].ContextMap()
	req.Equal("r-1", ctx["request_id"])
	req.Equal("m-1", ctx["medication_id"])
	req.Equal("boom", ctx["err"])
	req.NotContains(ctx, "")
}

func TestZapLogger_LevelFilter(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewZap(zap.New(core))

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	l.Warn("shown", nil)

	require.Equal(t, 1, logs.Len())
}
