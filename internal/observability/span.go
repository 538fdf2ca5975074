package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/swiftusd/doctool/internal/logfields"
)

// Span times one unit of work and logs its outcome at debug level.
type Span struct {
	ctx   context.Context
	name  string
	start time.Time
	attrs []slog.Attr
}

// StartSpan begins a span named name.
func StartSpan(ctx context.Context, name string, attrs ...slog.Attr) *Span {
	DebugContext(ctx, "Span started", append([]slog.Attr{logfields.Name(name)}, attrs...)...)
	return &Span{ctx: ctx, name: name, start: time.Now(), attrs: attrs}
}

// End logs the span duration and err, if any, and returns the elapsed time.
func (s *Span) End(err error) time.Duration {
	d := time.Since(s.start)
	attrs := append([]slog.Attr{
		logfields.Name(s.name),
		logfields.DurationMS(float64(d.Microseconds()) / 1000),
	}, s.attrs...)
	if err != nil {
		attrs = append(attrs, logfields.Error(err))
	}
	DebugContext(s.ctx, "Span ended", attrs...)
	return d
}
