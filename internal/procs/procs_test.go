//go:build unix

package procs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroup(stdout *bytes.Buffer) *Group {
	return NewGroup(200*time.Millisecond).WithOutput(stdout, &bytes.Buffer{})
}

func sh(script string) Command {
	return Command{Tool: "sh", Argv: []string{"sh", "-c", script}}
}

func TestRunSuccess(t *testing.T) {
	var out bytes.Buffer
	g := newTestGroup(&out)

	require.NoError(t, g.Run(context.Background(), sh("echo hello")))
	assert.Equal(t, "hello\n", out.String())
	assert.Zero(t, g.Live())
}

func TestRunUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	g := newTestGroup(&bytes.Buffer{})
	cmd := sh("touch marker")
	cmd.Dir = dir

	require.NoError(t, g.Run(context.Background(), cmd))
	_, err := os.Stat(filepath.Join(dir, "marker"))
	assert.NoError(t, err)
}

func TestRunExitStatus(t *testing.T) {
	g := newTestGroup(&bytes.Buffer{})
	err := g.Run(context.Background(), sh("exit 3"))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "sh exited with status 3", exitErr.Error())
}

func TestRunMissingBinary(t *testing.T) {
	g := newTestGroup(&bytes.Buffer{})
	err := g.Run(context.Background(), Command{Tool: "nope", Argv: []string{"doctool-no-such-binary"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start nope")
	assert.False(t, errors.Is(err, ErrCanceled))
}

func TestRunEmptyCommand(t *testing.T) {
	g := newTestGroup(&bytes.Buffer{})
	assert.Error(t, g.Run(context.Background(), Command{Tool: "empty"}))
}

func TestStreamDeliversLines(t *testing.T) {
	g := newTestGroup(&bytes.Buffer{})
	var lines []string
	err := g.Stream(context.Background(), sh("printf 'a\\nb\\nc'"), func(l string) { lines = append(lines, l) })
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}

func TestCancelTerminatesChild(t *testing.T) {
	g := newTestGroup(&bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx, sh("sleep 30")) }()

	require.Eventually(t, func() bool { return g.Live() == 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCanceled)
	case <-time.After(5 * time.Second):
		t.Fatal("child was not terminated")
	}
	assert.Zero(t, g.Live())
}

func TestCancelEscalatesToKill(t *testing.T) {
	g := newTestGroup(&bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx, sh("trap '' TERM; sleep 30")) }()

	require.Eventually(t, func() bool { return g.Live() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond) // let the trap install
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCanceled)
	case <-time.After(5 * time.Second):
		t.Fatal("child ignoring SIGTERM was not killed")
	}
}

func TestRunAfterCancelDoesNotStart(t *testing.T) {
	g := newTestGroup(&bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Run(ctx, sh("echo never"))
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "xcrun docc preview", strings.TrimSpace(Command{Argv: []string{"xcrun", "docc", "preview"}}.String()))
}
