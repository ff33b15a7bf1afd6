package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewZapAdapter(zap.New(core)), logs
}

func TestWrapper_FieldsAndLevels(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	log.Debug("hidden", nil)
	log.Info("application accepted", map[string]interface{}{"applicationId": "abc"})
	log.WithFields(map[string]interface{}{"component": "api"}).Warn("request rejected", map[string]interface{}{"status": 400})
	log.WithError(errors.New("boom")).Error("request failed", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "application accepted", entries[0].Message)
	assert.Equal(t, "abc", entries[0].ContextMap()["applicationId"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "api", entries[1].ContextMap()["component"])
	assert.EqualValues(t, 400, entries[1].ContextMap()["status"])

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestWrapper_ErrorValuedFields(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)

	log.Named("notifier").Info("delivery failed", map[string]interface{}{"cause": errors.New("timeout")})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "notifier", entries[0].LoggerName)
	assert.Equal(t, "timeout", entries[0].ContextMap()["cause"])
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
		want   zapcore.Level
	}{
		{"json info", "info", "json", zapcore.InfoLevel},
		{"console debug", "DEBUG", "console", zapcore.DebugLevel},
		{"unknown level falls back to info", "loud", "json", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.level, tt.format, "stderr")
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			assert.False(t, l.Core().Enabled(tt.want-1))
		})
	}
}

func TestNewStructured_BadOutput(t *testing.T) {
	_, err := NewStructured("info", "json", "/nonexistent-dir/intake.log")
	require.Error(t, err)
}
