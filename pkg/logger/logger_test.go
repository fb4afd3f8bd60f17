package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithZap(zap.New(core)).With("instance_id", "i-1")

	log.Info("Order created", "store_id", int64(7))

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "Order created", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"instance_id": "i-1", "store_id": int64(7)}, entries[0].ContextMap())
}

func TestNewWithLevel_UnknownFallsBackToInfo(t *testing.T) {
	assert.NotPanics(t, func() {
		log := NewWithLevel("verbose")
		log.Debug("dropped")
		_ = Sync(log)
	})
}

func TestSync_NonZapLogger(t *testing.T) {
	var l Logger
	assert.NoError(t, Sync(l))
}
