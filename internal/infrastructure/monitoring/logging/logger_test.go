package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func newObserved(t *testing.T) (Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLoggerFromCore(core), logs
}

func TestZapLogger_EmitsFields(t *testing.T) {
	log, logs := newObserved(t)

	log.Info("run finished",
		String("source", "chembl.smi"),
		Int("accepted", 41),
		Float64("success_rate", 0.82),
		Bool("dedup", true),
		Duration("elapsed", 3*time.Second),
		Err(errors.New("boom")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "run finished", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "chembl.smi", ctx["source"])
	assert.Equal(t, int64(41), ctx["accepted"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	log, logs := newObserved(t)

	child := log.Named("pipeline").With(String("run_id", "r1"))
	child.Warn("molecule rejected")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pipeline", entries[0].LoggerName)
	assert.Equal(t, "r1", entries[0].ContextMap()["run_id"])
}

func TestNewLogger_Defaults(t *testing.T) {
	log, err := NewLogger(Config{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestDefault_ReplaceAndRestore(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	log, logs := newObserved(t)
	SetDefault(log)
	Default().Info("hello")
	assert.Equal(t, 1, logs.Len())

	// nil is ignored
	SetDefault(nil)
	assert.NotNil(t, Default())
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	nop := NewNopLogger()
	nop.Debug("x")
	nop.Info("x")
	nop.Warn("x")
	nop.Error("x")
	assert.NotNil(t, nop.With(String("k", "v")).Named("n"))
}
