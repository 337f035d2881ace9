package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_RedactsSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("llm request", "model", "gpt-4o-mini", "api_key", "sk-123", "Authorization", "Bearer sk-123")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "gpt-4o-mini", fields["model"])
	assert.Equal(t, "[REDACTED]", fields["api_key"])
	assert.Equal(t, "[REDACTED]", fields["Authorization"])
}

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With("component", "scheduler")

	log.Warn("backup failed", "error", "disk full")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "scheduler", fields["component"])
	assert.Equal(t, "disk full", fields["error"])
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	out := sanitizeKVs([]any{"a", 1, "dangling"})
	assert.Equal(t, []any{"a", 1, "dangling"}, out)
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Debug("discarded", "k", "v")
	log.Sync()
}
