// internal/logger/logger_test.go
package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithComponentTagsEntries(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := &Logger{Logger: zap.New(core)}

	l.WithComponent("launchd").Info("started")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "launchd", entries[0].ContextMap()["component"])
}
