// Package procstest provides a scripted procs.Runner for tests.
package procstest

import (
	"context"
	"strings"
	"sync"

	"github.com/swiftusd/doctool/internal/procs"
)

// Handler simulates one invocation. It returns the stdout lines to stream and an error.
type Handler func(cmd procs.Command) ([]string, error)

// Runner records every command and answers with the first handler whose prefix matches
// the command line.
type Runner struct {
	mu       sync.Mutex
	commands []procs.Command
	handlers []prefixHandler
}

type prefixHandler struct {
	prefix string
	fn     Handler
}

// On registers fn for command lines starting with prefix.
func (r *Runner) On(prefix string, fn Handler) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, prefixHandler{prefix: prefix, fn: fn})
	return r
}

// Commands returns the recorded commands in call order.
func (r *Runner) Commands() []procs.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]procs.Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Lines returns the recorded command lines.
func (r *Runner) Lines() []string {
	cmds := r.Commands()
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.String()
	}
	return out
}

func (r *Runner) Run(ctx context.Context, cmd procs.Command) error {
	_, err := r.dispatch(ctx, cmd)
	return err
}

func (r *Runner) Stream(ctx context.Context, cmd procs.Command, onLine func(string)) error {
	lines, err := r.dispatch(ctx, cmd)
	for _, l := range lines {
		onLine(l)
	}
	return err
}

func (r *Runner) dispatch(ctx context.Context, cmd procs.Command) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, procs.ErrCanceled
	}
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	var fn Handler
	line := cmd.String()
	for _, h := range r.handlers {
		if strings.HasPrefix(line, h.prefix) {
			fn = h.fn
			break
		}
	}
	r.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(cmd)
}

// Exit returns a handler that fails with the given status.
func Exit(code int) Handler {
	return func(cmd procs.Command) ([]string, error) {
		return nil, &procs.ExitError{Command: cmd, Code: code}
	}
}
