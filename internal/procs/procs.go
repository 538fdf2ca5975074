// Package procs runs external tools. A Group owns every child it starts: when the run's
// context is canceled each live child gets SIGTERM, then SIGKILL once the grace period
// has passed.
package procs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/metrics"
	"github.com/swiftusd/doctool/internal/observability"
)

// ErrCanceled is returned for a child that was stopped because the run was interrupted.
var ErrCanceled = errors.New("interrupted")

// Command is one external invocation.
type Command struct {
	Tool string   // short label for logs and metrics, e.g. "clang"
	Argv []string // program and arguments
	Dir  string   // working directory; empty means the current one
}

func (c Command) String() string { return strings.Join(c.Argv, " ") }

// ExitError reports a child that ran and exited unsuccessfully.
type ExitError struct {
	Command Command
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command.Tool, e.Code)
}

// Runner abstracts process execution so extraction and catalog steps can be tested with
// a fake.
type Runner interface {
	// Run starts cmd and waits for it. Its output goes to the runner's writers.
	Run(ctx context.Context, cmd Command) error
	// Stream is Run with stdout delivered to onLine one line at a time.
	Stream(ctx context.Context, cmd Command, onLine func(string)) error
}

// Group is the Runner that spawns real children.
type Group struct {
	grace    time.Duration
	recorder metrics.Recorder
	stdout   io.Writer
	stderr   io.Writer

	mu       sync.Mutex
	children map[int]Command
}

// NewGroup returns a group that waits grace between SIGTERM and SIGKILL.
func NewGroup(grace time.Duration) *Group {
	return &Group{
		grace:    grace,
		recorder: metrics.NoopRecorder{},
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		children: make(map[int]Command),
	}
}

// WithRecorder sets the metrics recorder.
func (g *Group) WithRecorder(r metrics.Recorder) *Group {
	if r != nil {
		g.recorder = r
	}
	return g
}

// WithOutput redirects child output.
func (g *Group) WithOutput(stdout, stderr io.Writer) *Group {
	g.stdout, g.stderr = stdout, stderr
	return g
}

// Live returns the number of children currently running.
func (g *Group) Live() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.children)
}

func (g *Group) Run(ctx context.Context, cmd Command) error {
	return g.run(ctx, cmd, nil)
}

func (g *Group) Stream(ctx context.Context, cmd Command, onLine func(string)) error {
	return g.run(ctx, cmd, onLine)
}

func (g *Group) run(ctx context.Context, cmd Command, onLine func(string)) error {
	if len(cmd.Argv) == 0 {
		return fmt.Errorf("%s: empty command", cmd.Tool)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s not started", ErrCanceled, cmd.Tool)
	}

	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	c.Stderr = g.stderr
	c.WaitDelay = g.grace
	configureTermination(c)

	var stdout io.ReadCloser
	if onLine == nil {
		c.Stdout = g.stdout
	} else {
		var err error
		if stdout, err = c.StdoutPipe(); err != nil {
			return fmt.Errorf("%s: %w", cmd.Tool, err)
		}
	}

	start := time.Now()
	if err := c.Start(); err != nil {
		g.recorder.ObserveProcess(cmd.Tool, time.Since(start), false)
		return fmt.Errorf("start %s: %w", cmd.Tool, err)
	}
	pid := c.Process.Pid
	g.register(pid, cmd)
	defer g.unregister(pid)
	observability.DebugContext(ctx, "Started process",
		logfields.Tool(cmd.Tool), logfields.PID(pid), logfields.Args(cmd.Argv))

	if stdout != nil {
		sc := bufio.NewScanner(stdout)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			onLine(sc.Text())
		}
		// Drain so the child never blocks on a full pipe after a scanner error.
		_, _ = io.Copy(io.Discard, stdout)
	}

	err := c.Wait()
	elapsed := time.Since(start)
	g.recorder.ObserveProcess(cmd.Tool, elapsed, err == nil)

	switch {
	case err == nil:
		observability.DebugContext(ctx, "Process finished",
			logfields.Tool(cmd.Tool), logfields.PID(pid), logfields.DurationMS(float64(elapsed.Milliseconds())))
		return nil
	case ctx.Err() != nil:
		observability.WarnContext(ctx, "Process interrupted", logfields.Tool(cmd.Tool), logfields.PID(pid))
		return fmt.Errorf("%w: %s", ErrCanceled, cmd.Tool)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		observability.ErrorContext(ctx, "Process failed",
			logfields.Tool(cmd.Tool), logfields.PID(pid), logfields.ExitCode(code), logfields.Args(cmd.Argv))
		return &ExitError{Command: cmd, Code: code}
	}
	return fmt.Errorf("%s: %w", cmd.Tool, err)
}

func (g *Group) register(pid int, cmd Command) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children[pid] = cmd
}

func (g *Group) unregister(pid int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.children, pid)
}
