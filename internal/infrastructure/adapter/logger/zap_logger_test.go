package logger

import (
	"errors"
	"testing"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerLevels(t *testing.T) {
	zcore, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerFromCore(zcore, core.LogLevelWarn)

	l.Debug("debug", nil)
	l.Info("info", nil)
	l.Warn("warn", map[string]any{"shop_process_id": "123"})
	l.Error("error", map[string]any{"error": errors.New("boom")})

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "warn", entries[0].Message)
	assert.Equal(t, "123", entries[0].ContextMap()["shop_process_id"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	l.SetLevel(core.LogLevelDebug)
	l.Debug("debug again", nil)
	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, core.LogLevelDebug, l.GetLevel())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, core.LogLevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, core.LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, core.LogLevelError, ParseLevel("error"))
	assert.Equal(t, core.LogLevelInfo, ParseLevel("verbose"))
}

func TestLogLevelString(t *testing.T) {
	for _, name := range []string{"debug", "info", "warn", "error"} {
		assert.Equal(t, name, core.ParseLogLevel(name).String())
	}
}

func TestZapLoggerRedactsSecrets(t *testing.T) {
	zcore, logs := observer.New(zapcore.InfoLevel)
	l := NewZapLoggerFromCore(zcore, core.LogLevelInfo)

	l.Info("charge", map[string]any{"alias_token": "tok-123", "token": "abc", "user_id": "7"})

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[redacted]", fields["alias_token"])
	assert.Equal(t, "[redacted]", fields["token"])
	assert.Equal(t, "7", fields["user_id"])
}
