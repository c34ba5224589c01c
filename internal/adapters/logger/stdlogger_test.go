package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"nonsense", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestStdLogger_Output(t *testing.T) {
	ctx := context.Background()

	t.Run("message with sorted fields", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewStdLoggerTo(&buf, LevelDebug)

		l.Info(ctx, "candles stored", map[string]interface{}{
			"symbol":   "ETHUSDT",
			"inserted": 42,
		})

		out := buf.String()
		assert.Contains(t, out, "[INFO] candles stored")
		assert.Contains(t, out, "inserted=42 symbol=ETHUSDT")
	})

	t.Run("error is rendered", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewStdLoggerTo(&buf, LevelDebug)

		l.Error(ctx, errors.New("connection refused"), "fetch failed")

		out := buf.String()
		assert.Contains(t, out, "[ERROR] fetch failed")
		assert.Contains(t, out, "error: connection refused")
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewStdLoggerTo(&buf, LevelWarn)

		l.Debug(ctx, "suppressed")
		l.Info(ctx, "also suppressed")
		l.Warn(ctx, "visible")

		out := buf.String()
		assert.NotContains(t, out, "suppressed")
		assert.Contains(t, out, "[WARN] visible")
	})
}
