// Package watch reruns work when files in a directory change. It backs `preview --watch`,
// where re-saved raw symbol graphs are cleaned again and new generated articles are linked
// while the preview server keeps running.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/observability"
	"github.com/swiftusd/doctool/internal/util/sets"
)

// DefaultDebounce is how long a directory has to stay quiet before the handler runs.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the sorted base names that changed since its last call.
type Handler func(ctx context.Context, names []string) error

// Watcher batches changes to matching files in one directory.
type Watcher struct {
	dir      string
	match    func(name string) bool
	handle   Handler
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New watches dir for files whose base name satisfies match.
func New(dir string, match func(name string) bool, handle Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &Watcher{dir: dir, match: match, handle: handle, debounce: DefaultDebounce, fsw: fsw}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Close stops watching without running. Run closes the watcher itself.
func (w *Watcher) Close() error { return w.fsw.Close() }

// Run delivers batches until ctx is canceled. Handler errors are logged and watching
// continues. The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()
	observability.InfoContext(ctx, "Watching for changes", logfields.Path(w.dir))

	pending := sets.New[string]()
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !w.match(name) {
				continue
			}
			observability.DebugContext(ctx, "Change detected", logfields.File(name), logfields.Kind(ev.Op.String()))
			pending.Add(name)
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			observability.ErrorContext(ctx, "File watcher error", logfields.Error(err))
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			names := sets.Sorted(pending)
			pending = sets.New[string]()
			if err := w.handle(ctx, names); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				observability.ErrorContext(ctx, "Rerun after change failed",
					logfields.Count(len(names)), logfields.Error(err))
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
