package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestContextValues(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithStage(ctx, "cleaning")
	ctx = WithFile(ctx, "OpenUSD@a.h.cpp.symbols.json")

	lc := GetContext(ctx)
	assert.Equal(t, "run-1", lc.RunID)
	assert.Equal(t, "cleaning", lc.Stage)
	assert.Equal(t, "OpenUSD@a.h.cpp.symbols.json", lc.File)

	// Later values override earlier ones without dropping the rest.
	ctx = WithStage(ctx, "assembling")
	lc = GetContext(ctx)
	assert.Equal(t, "assembling", lc.Stage)
	assert.Equal(t, "run-1", lc.RunID)
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestLogHelpersIncludeContext(t *testing.T) {
	buf := captureLogs(t)
	ctx := WithStage(WithRunID(context.Background(), "run-9"), "extracting-native")

	InfoContext(ctx, "info message", slog.String("extra", "x"))
	WarnContext(ctx, "warn message")
	ErrorContext(ctx, "error message")
	DebugContext(ctx, "debug message")

	out := buf.String()
	for _, want := range []string{"info message", "warn message", "error message", "debug message", "run_id=run-9", "stage=extracting-native", "extra=x"} {
		assert.Contains(t, out, want)
	}
}

func TestSpan(t *testing.T) {
	buf := captureLogs(t)
	s := StartSpan(context.Background(), "clean-graph")
	d := s.End(errors.New("boom"))

	assert.GreaterOrEqual(t, int64(d), int64(0))
	out := buf.String()
	assert.Contains(t, out, "Span started")
	assert.Contains(t, out, "Span ended")
	assert.Contains(t, out, "name=clean-graph")
	assert.Contains(t, out, "error=boom")
}
