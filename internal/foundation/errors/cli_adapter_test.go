package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitOK},
		{"validation", ValidationError("bad flag").Build(), ExitUsage},
		{"config", ConfigError("bad config").Build(), ExitConfig},
		{"process", ProcessError("clang failed").Build(), ExitProcess},
		{"filesystem", FileSystemError("rename failed").Build(), ExitFileSystem},
		{"codec", CodecError("bad json").Build(), ExitFileSystem},
		{"shape", ShapeError("no semicolon").Build(), ExitShape},
		{"canceled", CanceledError("interrupted").Build(), ExitCanceled},
		{"internal", InternalError("illegal transition").Build(), ExitInternal},
		{"wrapped shape", fmt.Errorf("stage cleaning: %w", ShapeError("x").Build()), ExitShape},
		{"unclassified", &customError{msg: "unknown error"}, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"internal hides details", InternalError("internal issue").Build(), "Internal error occurred (use -v for details)"},
		{"canceled", CanceledError("interrupted").Build(), "Interrupted"},
		{"message with cause", WrapError(errors.New("exit status 1"), CategoryProcess, "clang failed").Build(), "Error: clang failed: exit status 1"},
		{"message only", ConfigError("bad config").Build(), "Error: bad config"},
		{"unclassified", &customError{msg: "unknown error"}, "Error: unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.FormatError(tt.err); got != tt.expected {
				t.Errorf("FormatError() = %q, want %q", got, tt.expected)
			}
		})
	}

	verbose := NewCLIErrorAdapter(true, slog.Default())
	if got := verbose.FormatError(InternalError("internal issue").Build()); got != "[internal:fatal] internal issue" {
		t.Errorf("verbose FormatError() = %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ProcessError("swift build failed").WithContext("tool", "swift").Build())

	if code != ExitProcess {
		t.Errorf("exit code = %d, want %d", code, ExitProcess)
	}
	if !strings.Contains(out.String(), "Error: swift build failed") {
		t.Errorf("stderr = %q", out.String())
	}
	if !strings.Contains(logs.String(), "category=process") || !strings.Contains(logs.String(), "tool=swift") {
		t.Errorf("log = %q", logs.String())
	}

	code = -1
	adapter.HandleError(nil)
	if code != -1 {
		t.Error("nil error must not exit")
	}
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
