package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyState      = "state"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyHeader     = "header"
	KeyMode       = "mode"
	KeySymbol     = "symbol"
	KeyKind       = "kind"
	KeyTool       = "tool"
	KeyArgs       = "args"
	KeyExitCode   = "exit_code"
	KeyPID        = "pid"
	KeyCount      = "count"
	KeyName       = "name"
	KeyURL        = "url"
	KeyReason     = "reason"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Header(h string) slog.Attr       { return slog.String(KeyHeader, h) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Symbol(id string) slog.Attr      { return slog.String(KeySymbol, id) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Tool(name string) slog.Attr      { return slog.String(KeyTool, name) }
func Args(a []string) slog.Attr       { return slog.Any(KeyArgs, a) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func PID(pid int) slog.Attr           { return slog.Int(KeyPID, pid) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Name(n string) slog.Attr         { return slog.String(KeyName, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Reason(r string) slog.Attr       { return slog.String(KeyReason, r) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
