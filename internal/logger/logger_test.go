package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/axellelanca/linkshortener/internal/config"
)

func TestNew(t *testing.T) {
	l, err := New(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))

	l, err = New(config.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = New(config.LogConfig{Level: "bavard", Format: "json"})
	assert.Error(t, err)
}
