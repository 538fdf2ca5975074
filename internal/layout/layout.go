// Package layout resolves every path doctool reads or writes inside the repository and
// allocates output names for extracted symbol graphs.
package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/swiftusd/doctool/internal/config"
	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/util/sets"
)

// Mode is the language a header is extracted for.
type Mode string

const (
	ModeCpp   Mode = "cpp"
	ModeSwift Mode = "swift"
)

const (
	// RawSuffix marks an extracted graph that has not been cleaned yet.
	RawSuffix     = ".safe"
	graphSuffix   = ".symbols.json"
	objcModuleTag = "__ObjC"
	cppModuleTag  = "C++"
)

// ErrRootNotFound is returned when no ancestor of the start directory holds every marker.
var ErrRootNotFound = errors.New("repository root not found")

// Layout holds absolute paths below the repository root.
type Layout struct {
	Root              string
	SymbolGraphs      string
	Build             string
	PackageResolved   string
	Docs              string
	Catalog           string
	CatalogGenerated  string
	Archive           string
	Source            string
	UmbrellaHeader    string
	GeneratedArticles string
	Include           string
	NamespaceHeader   string

	Module string

	mu   sync.Mutex
	used sets.Set[string]
}

// New builds a layout for root from the configured relative paths.
func New(root string, cfg *config.Config) *Layout {
	p := cfg.Paths
	at := func(rel string) string {
		if filepath.IsAbs(rel) {
			return filepath.Clean(rel)
		}
		return filepath.Join(root, rel)
	}
	catalog := at(cfg.Product.Name + ".docc")
	include := at(p.Include)
	return &Layout{
		Root:              root,
		SymbolGraphs:      at(p.SymbolGraphs),
		Build:             at(p.Build),
		PackageResolved:   at(p.PackageResolved),
		Docs:              at(p.Docs),
		Catalog:           catalog,
		CatalogGenerated:  filepath.Join(catalog, "generated"),
		Archive:           at(cfg.Product.Name + ".doccarchive"),
		Source:            at(p.Source),
		UmbrellaHeader:    at(p.UmbrellaHeader),
		GeneratedArticles: at(p.GeneratedArticles),
		Include:           include,
		NamespaceHeader:   filepath.Join(include, p.NamespaceHeader),
		Module:            cfg.Product.Module,
		used:              sets.New[string](),
	}
}

// Resolve picks the root (configured, else discovered upward from wd), checks that it
// looks like the repository and returns its layout.
func Resolve(cfg *config.Config, wd string) (*Layout, error) {
	root := cfg.Paths.Root
	if root == "" {
		found, err := FindRoot(wd, cfg.Paths.Markers)
		if err != nil {
			return nil, err
		}
		root = found
	} else if !filepath.IsAbs(root) {
		root = filepath.Join(wd, root)
	}
	root = filepath.Clean(root)
	if err := CheckMarkers(root, cfg.Paths.Markers); err != nil {
		return nil, err
	}
	slog.Debug("Resolved repository root", logfields.Path(root))
	return New(root, cfg), nil
}

// FindRoot walks up from start until a directory contains every marker entry.
func FindRoot(start string, markers []string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if CheckMarkers(dir, markers) == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no ancestor of %s contains %s", ErrRootNotFound, start, strings.Join(markers, ", "))
		}
		dir = parent
	}
}

// CheckMarkers verifies that root contains every marker entry.
func CheckMarkers(root string, markers []string) error {
	var missing []string
	for _, m := range markers {
		if _, err := os.Lstat(filepath.Join(root, m)); err != nil {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s does not look like the repository root, missing %s", root, strings.Join(missing, ", "))
	}
	return nil
}

// ClangOutput allocates the output file for a header. The first header with a given
// basename gets `<Module>@<base>.<mode>.symbols.json`; later ones get `.1`, `.2`, ...
// inserted before the mode. Safe for concurrent use.
func (l *Layout) ClangOutput(header string, mode Mode) string {
	base := filepath.Base(header)
	l.mu.Lock()
	defer l.mu.Unlock()
	name := l.graphName(base, 0, mode)
	for i := 1; !l.used.TryAdd(name); i++ {
		name = l.graphName(base, i, mode)
	}
	return filepath.Join(l.SymbolGraphs, name)
}

func (l *Layout) graphName(base string, n int, mode Mode) string {
	var sb strings.Builder
	sb.WriteString(l.Module)
	sb.WriteByte('@')
	sb.WriteString(base)
	if n > 0 {
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(n))
	}
	sb.WriteByte('.')
	sb.WriteString(string(mode))
	sb.WriteString(graphSuffix)
	return sb.String()
}

// HostObjCGraph is the file the host compiler writes for the module's C++ interop symbols.
func (l *Layout) HostObjCGraph() string {
	return filepath.Join(l.SymbolGraphs, l.Module+"@"+objcModuleTag+graphSuffix)
}

// HostCppGraph is where HostObjCGraph is renamed to.
func (l *Layout) HostCppGraph() string {
	return filepath.Join(l.SymbolGraphs, l.Module+"@"+cppModuleTag+graphSuffix)
}

// BelongsToModule reports whether a symbol graph file name was produced for the module.
func (l *Layout) BelongsToModule(name string) bool {
	return strings.HasPrefix(name, l.Module)
}

// IsSwiftGraph reports whether a cleaned graph name was extracted in Swift mode.
func IsSwiftGraph(name string) bool {
	return strings.HasSuffix(name, "."+string(ModeSwift)+graphSuffix)
}

// RawName returns the name a graph is saved under before cleaning.
func RawName(name string) string { return name + RawSuffix }

// CleanName strips RawSuffix. ok is false when name is not a raw graph.
func CleanName(name string) (string, bool) {
	if !strings.HasSuffix(name, RawSuffix) {
		return "", false
	}
	return strings.TrimSuffix(name, RawSuffix), true
}

// RemoveStale deletes extraction output from a previous run: the symbol graph directory,
// the host build directory and the package resolution file. Output names allocated so far
// are released.
func (l *Layout) RemoveStale() error {
	l.mu.Lock()
	l.used = sets.New[string]()
	l.mu.Unlock()
	for _, p := range []string{l.SymbolGraphs, l.Build, l.PackageResolved} {
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
		slog.Info("Removed stale output", logfields.Path(p))
	}
	return nil
}

// EnsureSymbolGraphs creates the symbol graph directory.
func (l *Layout) EnsureSymbolGraphs() error {
	if err := os.MkdirAll(l.SymbolGraphs, 0o750); err != nil {
		return fmt.Errorf("create symbol graph directory: %w", err)
	}
	return nil
}

// Rel returns p relative to the root for log output, or p itself if that fails.
func (l *Layout) Rel(p string) string {
	if rel, err := filepath.Rel(l.Root, p); err == nil {
		return rel
	}
	return p
}
