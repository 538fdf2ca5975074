package catalog

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sync"

	"github.com/swiftusd/doctool/internal/config"
	"github.com/swiftusd/doctool/internal/layout"
	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/observability"
	"github.com/swiftusd/doctool/internal/procs"
)

var previewAddress = regexp.MustCompile(`^\s*Address: (http://localhost:.*?)\s*$`)

// PreviewAddress returns the local URL announced by a `docc preview` output line.
func PreviewAddress(line string) (string, bool) {
	m := previewAddress.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Docc runs the documentation compiler against the catalog.
type Docc struct {
	layout  *layout.Layout
	tools   config.ToolsConfig
	product config.ProductConfig
	runner  procs.Runner
}

// NewDocc returns a compiler driver that starts tools through runner.
func NewDocc(l *layout.Layout, cfg *config.Config, runner procs.Runner) *Docc {
	return &Docc{layout: l, tools: cfg.Tools, product: cfg.Product, runner: runner}
}

func (d *Docc) command(args ...string) procs.Command {
	argv := append([]string{}, d.tools.Docc...)
	argv = append(argv, args...)
	return procs.Command{Tool: "docc", Argv: argv, Dir: d.layout.Root}
}

// ArchiveCommand converts the catalog into the archive with a search index.
func (d *Docc) ArchiveCommand() procs.Command {
	return d.command("convert",
		"--emit-lmdb-index",
		"--output-path", d.layout.Archive,
		d.layout.Catalog,
		"--additional-symbol-graph-dir", d.layout.SymbolGraphs,
	)
}

// StaticCommand converts the catalog into a static site served below the hosting base
// path.
func (d *Docc) StaticCommand() procs.Command {
	return d.command("convert",
		"--emit-lmdb-index",
		"--output-path", d.layout.Docs,
		d.layout.Catalog,
		"--additional-symbol-graph-dir", d.layout.SymbolGraphs,
		"--transform-for-static-hosting",
		"--hosting-base-path", d.product.HostingBasePath,
	)
}

// PreviewCommand serves the catalog locally.
func (d *Docc) PreviewCommand() procs.Command {
	return d.command("preview",
		"--additional-symbol-graph-dir", d.layout.SymbolGraphs,
		d.layout.Catalog,
	)
}

// Convert writes the archive and then the static site.
func (d *Docc) Convert(ctx context.Context) error {
	observability.InfoContext(ctx, "Converting catalog to archive", logfields.Path(d.layout.Rel(d.layout.Archive)))
	if err := d.runner.Run(ctx, d.ArchiveCommand()); err != nil {
		return fmt.Errorf("convert archive: %w", err)
	}
	observability.InfoContext(ctx, "Converting catalog to static site", logfields.Path(d.layout.Rel(d.layout.Docs)))
	if err := d.runner.Run(ctx, d.StaticCommand()); err != nil {
		return fmt.Errorf("convert static site: %w", err)
	}
	return nil
}

// PreviewOptions controls Preview.
type PreviewOptions struct {
	Out  io.Writer // every output line is copied here
	Open bool      // open the announced address in a browser
}

// Preview runs the preview server until it exits or ctx is canceled. The first announced
// address is opened once when requested.
func (d *Docc) Preview(ctx context.Context, opts PreviewOptions) error {
	var once sync.Once
	var openErr error
	onLine := func(line string) {
		if opts.Out != nil {
			_, _ = fmt.Fprintln(opts.Out, line)
		}
		if !opts.Open {
			return
		}
		url, ok := PreviewAddress(line)
		if !ok {
			return
		}
		once.Do(func() { openErr = d.open(ctx, url) })
	}

	err := d.runner.Stream(ctx, d.PreviewCommand(), onLine)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return openErr
}

func (d *Docc) open(ctx context.Context, url string) error {
	observability.InfoContext(ctx, "Opening preview", logfields.URL(url))
	argv := append(append([]string{}, d.tools.Open...), url)
	if err := d.runner.Run(ctx, procs.Command{Tool: "open", Argv: argv}); err != nil {
		return fmt.Errorf("open preview address: %w", err)
	}
	return nil
}
