package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@company.io", MaskEmail("jane@company.io"))
	assert.Equal(t, "***", MaskEmail("ab"))
	assert.Equal(t, "***@x.io", MaskEmail("a@x.io"))
}

func TestHashValue(t *testing.T) {
	h := HashValue("jane@company.io")
	assert.Len(t, h, 16)
	assert.Equal(t, h, HashValue("jane@company.io"))
	assert.NotEqual(t, h, HashValue("john@company.io"))
}

func TestSecurityLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewSecurityLogger(zap.New(core), "interview-coach-api", "test")
	ctx := context.Background()

	sl.LogLoginSuccess(ctx, "jane@company.io", "10.0.0.1", "ua", "req-1")
	sl.LogBotDetection(ctx, true, "10.0.0.2", "Googlebot", "req-2", "/v1/auth/login", BotDetectionResult{Score: 45, Reasons: []string{"bot user agent: bot"}})
	sl.LogVerification(ctx, EventVerificationFailed, "jane@company.io", "10.0.0.1", "req-3", 2)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "login_success", entries[0].Message)
	assert.Equal(t, "j***@company.io", entries[0].ContextMap()["subject_value"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "bot_blocked", entries[1].Message)
	assert.Contains(t, entries[1].ContextMap()["details"], `"score":45`)

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "interview-coach-api", entries[2].ContextMap()["service"])
}
