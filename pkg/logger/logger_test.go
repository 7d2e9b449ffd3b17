package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetMode(t *testing.T) {
	t.Cleanup(func() { SetMode("release") })

	SetMode("debug")
	assert.Equal(t, zap.DebugLevel, level.Level())

	SetMode("release")
	assert.Equal(t, zap.InfoLevel, level.Level())
}
