package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vocabuddy/progress/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("WARNING"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel(" error "))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
}

func TestValidLevel(t *testing.T) {
	assert.True(t, logger.ValidLevel("info"))
	assert.False(t, logger.ValidLevel(""))
	assert.False(t, logger.ValidLevel("TRACE"))
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN), logger.WithColors(false))

	log.Info("hidden")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown 1")
}

func TestLogger_PrefixAndSortedFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.DEBUG), logger.WithColors(false))

	log.WithPrefix("ledger").WithFields(map[string]any{"b": 2, "a": 1}).Debug("hello")

	line := buf.String()
	assert.Contains(t, line, "[ledger]")
	assert.True(t, strings.Index(line, "a=1") < strings.Index(line, "b=2"))
}

func TestLogger_ChildSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithColors(false))

	log.WithField("k", "v").Info("from child")

	assert.Contains(t, buf.String(), "from child k=v")
}

func TestFromContext(t *testing.T) {
	log := logger.Discard()
	ctx := logger.NewContext(context.Background(), log)

	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
