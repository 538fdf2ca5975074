// Package pipeline drives a documentation build: native and host extraction, saving the
// raw graphs, cleaning them and assembling the catalog. It also runs the conversion and
// preview commands that consume the catalog.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/swiftusd/doctool/internal/catalog"
	"github.com/swiftusd/doctool/internal/clean"
	"github.com/swiftusd/doctool/internal/config"
	"github.com/swiftusd/doctool/internal/extract"
	"github.com/swiftusd/doctool/internal/foundation/errors"
	"github.com/swiftusd/doctool/internal/identfix"
	"github.com/swiftusd/doctool/internal/layout"
	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/metrics"
	"github.com/swiftusd/doctool/internal/observability"
	"github.com/swiftusd/doctool/internal/procs"
	"github.com/swiftusd/doctool/internal/watch"
)

// Pipeline runs doctool commands against one repository.
type Pipeline struct {
	cfg      *config.Config
	layout   *layout.Layout
	runner   procs.Runner
	recorder metrics.Recorder
	runID    string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithRunID sets the id reported for the run.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// New returns a pipeline that starts external tools through runner.
func New(cfg *config.Config, l *layout.Layout, runner procs.Runner, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, layout: l, runner: runner, recorder: metrics.NoopRecorder{}}
	for _, o := range opts {
		o(p)
	}
	if p.runID == "" {
		p.runID = observability.NewRunID()
	}
	return p
}

func (p *Pipeline) newRun() *Run {
	return &Run{Report: newReport(p.runID), recorder: p.recorder}
}

// BuildOptions selects the build entry point.
type BuildOptions struct {
	// CleanOnly skips extraction and re-cleans the raw graphs saved by an earlier build.
	CleanOnly bool
}

// BuildStages returns the stages Build runs, in order.
func (p *Pipeline) BuildStages(opts BuildOptions) []StageDef {
	ex := extract.New(p.layout, p.cfg, p.runner)
	var stages []StageDef
	if !opts.CleanOnly {
		stages = append(stages,
			StageDef{Name: StageExtractNative, State: StateExtractingNative, Fn: func(ctx context.Context, run *Run) error {
				if err := p.layout.RemoveStale(); err != nil {
					return err
				}
				n, err := ex.Native(ctx)
				run.Report.Headers = n
				return err
			}},
			StageDef{Name: StageExtractHost, State: StateExtractingHost, Fn: func(ctx context.Context, _ *Run) error {
				return ex.Host(ctx)
			}},
			StageDef{Name: StageSaveRaw, State: StateSavingRaw, Fn: func(ctx context.Context, run *Run) error {
				n, err := ex.SaveRaw(ctx)
				run.Report.RawSaved = n
				return err
			}},
		)
	}
	return append(stages,
		StageDef{Name: StageClean, State: StateCleaning, Fn: p.cleanStage},
		StageDef{Name: StageAssemble, State: StateAssembling, Fn: func(ctx context.Context, run *Run) error {
			rep, err := catalog.LinkArticles(ctx, p.layout)
			run.Report.Articles = rep
			return err
		}},
	)
}

// Build runs a full build, or only cleaning and assembly with CleanOnly. The report is
// returned even when the build fails.
func (p *Pipeline) Build(ctx context.Context, opts BuildOptions) (*Report, error) {
	ctx = observability.WithRunID(ctx, p.runID)
	run := p.newRun()
	observability.InfoContext(ctx, "Starting documentation build",
		logfields.Path(p.layout.Root), logfields.Mode(buildMode(opts)))

	err := RunStages(ctx, run, p.BuildStages(opts))
	if err == nil {
		err = run.Machine.Transition(StateDone)
	}
	run.finish(err)
	if err != nil {
		return run.Report, err
	}

	totals := run.Report.Clean.Totals()
	observability.InfoContext(ctx, "Documentation build finished",
		logfields.Count(len(run.Report.Clean.Files)),
		logfields.DurationMS(float64(run.Report.End.Sub(run.Report.Start).Milliseconds())),
		logfields.Reason(fmt.Sprintf("%d remapped, %d unconverted", totals.Remapped, totals.Unconverted)))
	return run.Report, nil
}

func buildMode(opts BuildOptions) string {
	if opts.CleanOnly {
		return "clean-only"
	}
	return "full"
}

func (p *Pipeline) cleanStage(ctx context.Context, run *Run) error {
	c, err := p.Cleaner()
	if err != nil {
		return err
	}
	rep, err := c.Run(ctx)
	run.Report.Clean = rep
	return err
}

// Fixer builds the identifier fixer from the namespace header and the configured rules.
func (p *Pipeline) Fixer() (*identfix.Fixer, error) {
	ns, err := identfix.ReadInternalNamespace(p.layout.NamespaceHeader)
	if err != nil {
		return nil, errors.ConfigError("cannot determine the internal namespace").
			WithCause(err).WithContext("path", p.layout.NamespaceHeader).Build()
	}
	extra := make([]identfix.Rule, 0, len(p.cfg.Clean.Rules))
	for _, r := range p.cfg.Clean.Rules {
		extra = append(extra, identfix.Rule{From: r.From, To: r.To})
	}
	return identfix.NewFixer(identfix.DefaultRules(ns, extra...)...), nil
}

// Cleaner returns a cleaner for the repository's raw graphs.
func (p *Pipeline) Cleaner() (*clean.Cleaner, error) {
	fixer, err := p.Fixer()
	if err != nil {
		return nil, err
	}
	return clean.New(p.layout.SymbolGraphs, fixer, clean.Options{
		Concurrency: p.cfg.Clean.Concurrency,
		DumpSkipped: p.cfg.Clean.DumpSkipped,
		Recorder:    p.recorder,
	}), nil
}

// UpdateOptions controls Update.
type UpdateOptions struct {
	// Bundle, when set, is where a gzipped tarball of the static site is written.
	Bundle string
}

// Update converts the catalog into the archive and the static site.
func (p *Pipeline) Update(ctx context.Context, opts UpdateOptions) (*Report, error) {
	ctx = observability.WithRunID(ctx, p.runID)
	run := p.newRun()
	docc := catalog.NewDocc(p.layout, p.cfg, p.runner)

	stages := []StageDef{{Name: StageConvert, Fn: func(ctx context.Context, _ *Run) error {
		return docc.Convert(ctx)
	}}}
	if opts.Bundle != "" {
		stages = append(stages, StageDef{Name: StageBundle, Fn: func(ctx context.Context, run *Run) error {
			n, err := catalog.Bundle(ctx, p.layout.Docs, p.cfg.Product.HostingBasePath, opts.Bundle)
			run.Report.BundleFiles = n
			return err
		}})
	}

	err := RunStages(ctx, run, stages)
	run.finish(err)
	return run.Report, err
}

// PreviewOptions controls Preview.
type PreviewOptions struct {
	Out   io.Writer
	Open  bool
	Watch bool
}

// Preview serves the catalog until the preview server exits or ctx is canceled. With
// Watch, raw graphs saved while the server runs are cleaned again and generated articles
// are relinked.
func (p *Pipeline) Preview(ctx context.Context, opts PreviewOptions) error {
	ctx = observability.WithRunID(ctx, p.runID)
	docc := catalog.NewDocc(p.layout, p.cfg, p.runner)
	previewOpts := catalog.PreviewOptions{Out: opts.Out, Open: opts.Open}

	if !opts.Watch {
		if err := docc.Preview(ctx, previewOpts); err != nil {
			return classify(StagePreview, err)
		}
		return nil
	}

	watchers, err := p.watchers()
	if err != nil {
		return err
	}
	wctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(wctx)
	for _, w := range watchers {
		g.Go(func() error { return w.Run(gctx) })
	}
	g.Go(func() error {
		defer stop()
		return docc.Preview(gctx, previewOpts)
	})
	if err := g.Wait(); err != nil {
		return classify(StagePreview, err)
	}
	if ctx.Err() != nil {
		return errors.CanceledError("preview interrupted").WithCause(ctx.Err()).Build()
	}
	return nil
}

func (p *Pipeline) watchers() ([]*watch.Watcher, error) {
	c, err := p.Cleaner()
	if err != nil {
		return nil, err
	}
	if err := p.layout.EnsureSymbolGraphs(); err != nil {
		return nil, errors.FileSystemError("prepare symbol graph directory").WithCause(err).Build()
	}

	graphs, err := watch.New(p.layout.SymbolGraphs, isRawGraph, func(ctx context.Context, names []string) error {
		for _, name := range names {
			if _, err := c.CleanFile(observability.WithFile(ctx, name), name); err != nil {
				return err
			}
		}
		observability.InfoContext(ctx, "Re-cleaned changed symbol graphs", logfields.Count(len(names)))
		return nil
	})
	if err != nil {
		return nil, errors.FileSystemError("watch symbol graphs").WithCause(err).Build()
	}
	out := []*watch.Watcher{graphs}

	if _, err := os.Stat(p.layout.GeneratedArticles); err == nil {
		articles, err := watch.New(p.layout.GeneratedArticles, isArticle, func(ctx context.Context, _ []string) error {
			_, err := catalog.LinkArticles(ctx, p.layout)
			return err
		})
		if err != nil {
			_ = graphs.Close()
			return nil, errors.FileSystemError("watch generated articles").WithCause(err).Build()
		}
		out = append(out, articles)
	}
	return out, nil
}

func isRawGraph(name string) bool {
	_, ok := layout.CleanName(name)
	return ok
}

func isArticle(name string) bool { return strings.HasSuffix(name, ".md") }
