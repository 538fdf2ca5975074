package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swiftusd/doctool/internal/config"
	"github.com/swiftusd/doctool/internal/foundation/errors"
	"github.com/swiftusd/doctool/internal/layout"
	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/metrics"
	"github.com/swiftusd/doctool/internal/observability"
	"github.com/swiftusd/doctool/internal/pipeline"
	"github.com/swiftusd/doctool/internal/procs"
)

// Global carries state shared by every command.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: ./doctool.yaml if present)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Root    string           `help:"Repository root (default: walk up from the working directory)"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Extract, clean and assemble the documentation catalog"`
	Preview PreviewCmd `cmd:"" help:"Serve the catalog locally and open it in a browser"`
	Update  UpdateCmd  `cmd:"" help:"Convert the catalog into the archive and the static site"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
}

// AfterApply installs a bootstrap logger so configuration loading can log. Commands
// replace it once the configuration is known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(NewLogHandler(os.Stderr, config.LogFormatPretty, level)))
	return nil
}

// NewLogHandler returns the slog handler for format.
func NewLogHandler(w io.Writer, format config.LogFormat, level slog.Level) slog.Handler {
	switch format {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case config.LogFormatText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    !isTerminal(w),
		})
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// session is everything a pipeline command needs: configuration, layout, the process
// group bound to the signal-aware context, and metrics.
type session struct {
	cfg      *config.Config
	layout   *layout.Layout
	group    *procs.Group
	prom     *metrics.PrometheusRecorder
	recorder metrics.Recorder
	runID    string
	ctx      context.Context
	stop     context.CancelFunc
}

func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, errors.ConfigError("load configuration").WithCause(err).WithContext("path", root.Config).Build()
	}
	if root.Root != "" {
		cfg.Paths.Root = root.Root
	}
	level := cfg.Logging.Level.SlogLevel()
	if root.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(NewLogHandler(os.Stderr, cfg.Logging.Format, level)))
	return cfg, nil
}

func newSession(g *Global, root *CLI) (*session, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.FileSystemError("determine working directory").WithCause(err).Build()
	}
	l, err := layout.Resolve(cfg, wd)
	if err != nil {
		return nil, errors.ConfigError("locate repository").WithCause(err).Build()
	}

	s := &session{cfg: cfg, layout: l, recorder: metrics.NoopRecorder{}, runID: observability.NewRunID()}
	if cfg.Metrics.Textfile != "" {
		s.prom = metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		s.recorder = s.prom
	}
	s.ctx, s.stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	s.ctx = observability.WithRunID(s.ctx, s.runID)
	s.group = procs.NewGroup(cfg.Tools.KillGraceDuration()).
		WithRecorder(s.recorder).
		WithOutput(g.Stdout, g.Stderr)
	return s, nil
}

func (s *session) pipeline() *pipeline.Pipeline {
	return pipeline.New(s.cfg, s.layout, s.group,
		pipeline.WithRecorder(s.recorder),
		pipeline.WithRunID(s.runID))
}

// close releases the signal handler and writes the metrics textfile. A failed write is
// logged only.
func (s *session) close() {
	s.stop()
	if s.prom == nil {
		return
	}
	if err := s.prom.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
		slog.Warn("Failed to write metrics", logfields.Path(s.cfg.Metrics.Textfile), logfields.Error(err))
	}
}

func elapsed(r *pipeline.Report) time.Duration {
	if r == nil || r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start).Round(time.Millisecond)
}
