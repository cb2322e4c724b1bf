package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitWithLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	require.NoError(t, InitWithLevel("warn"))
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Log.Core().Enabled(zapcore.WarnLevel))
}

func TestInitWithLevelRejectsUnknown(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	err := InitWithLevel("loud")
	assert.Error(t, err)
	assert.Same(t, prev, Log)
}
