// Package clean turns the raw symbol graphs saved after extraction into the graphs the
// documentation compiler reads: Swift-mode remapping, generic parameter substitution, the
// passthrough patch and identifier normalization.
package clean

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/swiftusd/doctool/internal/foundation/errors"
	"github.com/swiftusd/doctool/internal/fragment"
	"github.com/swiftusd/doctool/internal/identfix"
	"github.com/swiftusd/doctool/internal/layout"
	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/metrics"
	"github.com/swiftusd/doctool/internal/observability"
	"github.com/swiftusd/doctool/internal/remap"
	"github.com/swiftusd/doctool/internal/symbolgraph"
)

// Options configure a Cleaner.
type Options struct {
	Concurrency int
	DumpSkipped bool
	Recorder    metrics.Recorder
}

// Cleaner cleans every raw graph in one directory.
type Cleaner struct {
	dir   string
	fixer *identfix.Fixer
	opts  Options
}

// New returns a cleaner for the raw graphs in dir.
func New(dir string, fixer *identfix.Fixer, opts Options) *Cleaner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Cleaner{dir: dir, fixer: fixer, opts: opts}
}

// FileReport summarizes one cleaned graph.
type FileReport struct {
	Name        string
	Swift       bool
	Symbols     int
	Remapped    int
	Unconverted int
	Generics    int
	Patched     int
}

// Report summarizes a cleaning run. Files are sorted by name.
type Report struct {
	Files []FileReport
}

// Totals adds up the per-file counts.
func (r Report) Totals() FileReport {
	var t FileReport
	for _, f := range r.Files {
		t.Symbols += f.Symbols
		t.Remapped += f.Remapped
		t.Unconverted += f.Unconverted
		t.Generics += f.Generics
		t.Patched += f.Patched
	}
	return t
}

// RawGraphs lists the raw graph names in dir, sorted.
func RawGraphs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if _, ok := layout.CleanName(e.Name()); ok && !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Run cleans every raw graph, each on its own goroutine, at most Concurrency at a time.
// The first failure cancels the remaining work.
func (c *Cleaner) Run(ctx context.Context) (Report, error) {
	names, err := RawGraphs(c.dir)
	if err != nil {
		return Report{}, errors.FileSystemError("list raw symbol graphs").
			WithCause(err).WithContext("dir", c.dir).Build()
	}
	if len(names) == 0 {
		return Report{}, errors.ValidationError("no raw symbol graphs to clean; run a full build first").
			WithContext("dir", c.dir).Build()
	}
	c.opts.Recorder.SetCleanConcurrency(c.opts.Concurrency)
	observability.InfoContext(ctx, "Cleaning symbol graphs", logfields.Count(len(names)))

	var (
		mu      sync.Mutex
		reports = make([]FileReport, 0, len(names))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for _, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := c.CleanFile(observability.WithFile(gctx, name), name)
			if err != nil {
				return err
			}
			mu.Lock()
			reports = append(reports, rep)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return Report{}, errors.CanceledError("cleaning interrupted").WithCause(ctx.Err()).Build()
		}
		return Report{}, err
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Name < reports[j].Name })
	return Report{Files: reports}, nil
}

// CleanFile reads the raw graph rawName and writes its cleaned form next to it.
func (c *Cleaner) CleanFile(ctx context.Context, rawName string) (FileReport, error) {
	name, ok := layout.CleanName(rawName)
	if !ok {
		return FileReport{}, errors.InternalError("not a raw symbol graph").WithContext("file", rawName).Build()
	}
	span := observability.StartSpan(ctx, "clean-graph", logfields.File(name))

	g, err := symbolgraph.ReadFile(filepath.Join(c.dir, rawName))
	if err != nil {
		span.End(err)
		return FileReport{}, errors.CodecError("read symbol graph").WithCause(err).WithContext("file", rawName).Build()
	}

	rep, err := c.cleanGraph(ctx, name, g)
	if err != nil {
		span.End(err)
		return FileReport{}, err
	}

	if err := symbolgraph.WriteFile(filepath.Join(c.dir, name), g); err != nil {
		span.End(err)
		return FileReport{}, errors.CodecError("write symbol graph").WithCause(err).WithContext("file", name).Build()
	}
	mode := string(layout.ModeCpp)
	if rep.Swift {
		mode = string(layout.ModeSwift)
	}
	c.opts.Recorder.IncGraphsCleaned(mode)
	span.End(nil)
	return rep, nil
}

func (c *Cleaner) cleanGraph(ctx context.Context, name string, g *symbolgraph.Graph) (FileReport, error) {
	rep := FileReport{Name: name, Swift: layout.IsSwiftGraph(name), Symbols: len(g.Symbols)}

	if rep.Swift {
		outcomes, err := ToSwift(g)
		if err != nil {
			if stderrors.Is(err, fragment.ErrShape) {
				return rep, errors.ShapeError("declaration has an unexpected shape").
					WithCause(err).WithContext("file", name).Build()
			}
			return rep, errors.InternalError("remap symbols").WithCause(err).WithContext("file", name).Build()
		}
		for _, o := range outcomes {
			c.record(ctx, o, &rep)
		}
	}

	rep.Generics = SubstituteGenericParameters(g)

	patch := PatchPassthrough(g)
	rep.Patched = len(patch.Patched)
	for _, id := range patch.Missing {
		observability.WarnContext(ctx, "Passthrough helper has no rvalue SmartPointer parameter", logfields.Symbol(id))
	}

	c.fixer.Graph(g)
	observability.DebugContext(ctx, "Cleaned symbol graph",
		logfields.Count(rep.Symbols), slog.Int("remapped", rep.Remapped), slog.Int("unconverted", rep.Unconverted))
	return rep, nil
}

func (c *Cleaner) record(ctx context.Context, o Outcome, rep *FileReport) {
	kind := o.Result.Symbol.Kind.Kind.String()
	switch {
	case o.Result.Converted:
		rep.Remapped++
		c.opts.Recorder.IncSymbolsRemapped(kind)
	case o.Result.Skipped == remap.SkipUnsupportedKind:
		rep.Unconverted++
		c.opts.Recorder.IncUnconverted(o.Kind.Raw, string(o.Result.Skipped))
		attrs := []slog.Attr{logfields.Symbol(o.ID), logfields.Kind(o.Kind.Raw)}
		if c.opts.DumpSkipped {
			attrs = append(attrs, slog.String("fragments", o.Kind.Raw+"\n"+o.Before.Dump()))
		}
		observability.WarnContext(ctx, "Declaration is not converted to Swift", attrs...)
	case o.Result.Skipped == remap.SkipTemplate, o.Result.Skipped == remap.SkipConversionOperator:
		rep.Unconverted++
		c.opts.Recorder.IncUnconverted(o.Kind.Raw, string(o.Result.Skipped))
		observability.DebugContext(ctx, "Declaration kept in C++ form",
			logfields.Symbol(o.ID), logfields.Kind(o.Kind.Raw), logfields.Reason(string(o.Result.Skipped)))
	}
}
