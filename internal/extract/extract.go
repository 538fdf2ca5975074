// Package extract produces the raw symbol graphs: one clang -extract-api run per header
// per language mode, and one swift build for the host-language module.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/swiftusd/doctool/internal/config"
	"github.com/swiftusd/doctool/internal/layout"
	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/observability"
	"github.com/swiftusd/doctool/internal/procs"
)

// Extractor runs the extraction tools for one repository.
type Extractor struct {
	layout *layout.Layout
	tools  config.ToolsConfig
	opts   config.ExtractConfig
	target string
	runner procs.Runner
}

// New returns an extractor that starts tools through runner.
func New(l *layout.Layout, cfg *config.Config, runner procs.Runner) *Extractor {
	return &Extractor{
		layout: l,
		tools:  cfg.Tools,
		opts:   cfg.Extract,
		target: cfg.Product.Target,
		runner: runner,
	}
}

// Native extracts every header listed in the umbrella header, C++-mode headers first.
// clang's output depends on the order headers are seen in, so each header gets its own
// invocation.
func (e *Extractor) Native(ctx context.Context) (int, error) {
	u, err := ReadUmbrella(e.layout, e.opts.HeaderPrefix)
	if err != nil {
		return 0, err
	}
	if err := e.layout.EnsureSymbolGraphs(); err != nil {
		return 0, err
	}
	headers := u.All()
	observability.InfoContext(ctx, "Extracting native symbol graphs",
		logfields.Count(len(headers)))
	for _, h := range headers {
		if err := e.clang(ctx, h); err != nil {
			return 0, err
		}
	}
	return len(headers), nil
}

// ClangCommand builds the invocation for one header writing to dest.
func (e *Extractor) ClangCommand(h Header, dest string) procs.Command {
	argv := append([]string{}, e.tools.Clang...)
	argv = append(argv,
		"-extract-api",
		"-o", dest,
		"-x", e.opts.Language,
		"-isystem", e.layout.Include,
		"-isystem", e.layout.Source,
		"-std="+e.opts.Std,
		"--product-name="+e.layout.Module,
	)
	for _, d := range e.opts.Defines {
		argv = append(argv, "-D"+d)
	}
	argv = append(argv, h.Path)
	return procs.Command{Tool: "clang", Argv: argv, Dir: e.layout.Root}
}

func (e *Extractor) clang(ctx context.Context, h Header) error {
	dest := e.layout.ClangOutput(h.Path, h.Mode)
	observability.DebugContext(ctx, "Extracting header",
		logfields.Header(e.layout.Rel(h.Path)), logfields.Mode(string(h.Mode)), logfields.File(filepath.Base(dest)))
	if err := e.runner.Run(ctx, e.ClangCommand(h, dest)); err != nil {
		return fmt.Errorf("extract %s (%s): %w", h.Rel, h.Mode, err)
	}
	return nil
}

// HostCommand builds the swift build invocation that emits the module's symbol graphs.
func (e *Extractor) HostCommand() procs.Command {
	argv := append([]string{}, e.tools.Swift...)
	argv = append(argv,
		"build",
		"--target", e.target,
		"-Xswiftc", "-emit-symbol-graph",
		"-Xswiftc", "-emit-symbol-graph-dir",
		"-Xswiftc", e.layout.SymbolGraphs,
		"-Xswiftc", "-emit-extension-block-symbols",
	)
	for _, d := range e.opts.Defines {
		argv = append(argv, "-Xswiftc", "-D"+d)
	}
	for _, d := range e.opts.Defines {
		argv = append(argv, "-Xcxx", "-D"+d)
	}
	return procs.Command{Tool: "swift", Argv: argv, Dir: e.layout.Root}
}

// Host builds the module with symbol graph emission, renames the C++ interop graph from
// `<Module>@__ObjC` to `<Module>@C++` and deletes graphs for every other module the build
// emitted.
func (e *Extractor) Host(ctx context.Context) error {
	if err := e.layout.EnsureSymbolGraphs(); err != nil {
		return err
	}
	observability.InfoContext(ctx, "Building host module symbol graphs", logfields.Name(e.target))
	if err := e.runner.Run(ctx, e.HostCommand()); err != nil {
		return fmt.Errorf("build %s: %w", e.target, err)
	}
	if err := os.Rename(e.layout.HostObjCGraph(), e.layout.HostCppGraph()); err != nil {
		return fmt.Errorf("rename C++ interop graph: %w", err)
	}
	return e.pruneForeignGraphs(ctx)
}

func (e *Extractor) pruneForeignGraphs(ctx context.Context) error {
	entries, err := os.ReadDir(e.layout.SymbolGraphs)
	if err != nil {
		return fmt.Errorf("list symbol graphs: %w", err)
	}
	removed := 0
	for _, ent := range entries {
		if e.layout.BelongsToModule(ent.Name()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(e.layout.SymbolGraphs, ent.Name())); err != nil {
			return fmt.Errorf("remove foreign graph %s: %w", ent.Name(), err)
		}
		removed++
	}
	if removed > 0 {
		observability.DebugContext(ctx, "Removed symbol graphs of other modules", logfields.Count(removed))
	}
	return nil
}

// SaveRaw renames every extracted graph to its raw name so that cleaning can be rerun
// from the untouched output.
func (e *Extractor) SaveRaw(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(e.layout.SymbolGraphs)
	if err != nil {
		return 0, fmt.Errorf("list symbol graphs: %w", err)
	}
	saved := 0
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || strings.HasSuffix(name, layout.RawSuffix) {
			continue
		}
		from := filepath.Join(e.layout.SymbolGraphs, name)
		if err := os.Rename(from, from+layout.RawSuffix); err != nil {
			return saved, fmt.Errorf("save raw graph: %w", err)
		}
		saved++
	}
	observability.InfoContext(ctx, "Saved raw symbol graphs", logfields.Count(saved))
	return saved, nil
}
