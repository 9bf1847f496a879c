package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestSetLevel(t *testing.T) {
	log := NewLogger("info", "test")
	assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	log.SetLevel("debug")
	assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))

	child := log.With("request_id", "abc")
	child.SetLevel("error")
	assert.False(t, log.Desugar().Core().Enabled(zapcore.WarnLevel))
}

func TestStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar(), level: zap.NewAtomicLevel()}

	log.Info("URL accessed", "code", "Lc4KTFBE", "visits", int64(3))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "URL accessed", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"code": "Lc4KTFBE", "visits": int64(3)}, entries[0].ContextMap())
}
