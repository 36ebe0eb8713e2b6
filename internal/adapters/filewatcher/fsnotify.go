// Package filewatcher provides file system monitoring adapters.
// Clean Architecture: Adapter implementing ports.FileWatcher.
package filewatcher

import (
	"context"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xcro3dile/minirag/internal/domain/ports"
)

// DefaultSettle is how long a path must stay quiet before its event is emitted.
const DefaultSettle = 250 * time.Millisecond

// FSNotifyWatcher implements ports.FileWatcher using fsnotify. Bursts of
// events for one path (an editor's create, truncate and write) collapse
// into a single event once the path has been quiet for the settle period.
type FSNotifyWatcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
	settle     time.Duration
}

// NewFSNotifyWatcher creates a watcher for files with the given extensions.
func NewFSNotifyWatcher(extensions []string) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = []string{".txt", ".md", ".markdown"}
	}
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = true
	}

	return &FSNotifyWatcher{watcher: w, extensions: set, settle: DefaultSettle}, nil
}

// Watch starts monitoring dir. The returned channel closes when ctx ends or
// the watcher is stopped.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}
	log.Printf("[INFO] Watching %s", dir)

	out := make(chan ports.FileEvent, 100)
	go w.run(ctx, out)
	return out, nil
}

// run batches raw notifications per path and flushes them after the settle period.
func (w *FSNotifyWatcher) run(ctx context.Context, out chan<- ports.FileEvent) {
	defer close(out)

	pending := make(map[string]ports.FileOperation)
	timer := time.NewTimer(w.settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case raw, ok := <-w.watcher.Events:
			if !ok {
				w.flush(ctx, pending, out)
				return
			}
			op, relevant := w.classify(raw)
			if !relevant {
				continue
			}
			pending[raw.Name] = coalesce(pending, raw.Name, op)
			timer.Reset(w.settle)

		case <-timer.C:
			if !w.flush(ctx, pending, out) {
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] File watcher error: %v", err)
		}
	}
}

// flush emits pending events in path order and clears them. It reports
// false if ctx ended first.
func (w *FSNotifyWatcher) flush(ctx context.Context, pending map[string]ports.FileOperation, out chan<- ports.FileEvent) bool {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		select {
		case out <- ports.FileEvent{Path: p, Operation: pending[p]}:
		case <-ctx.Done():
			return false
		}
		delete(pending, p)
	}
	return true
}

// classify maps an fsnotify event onto a FileOperation. Renames count as
// deletions since fsnotify reports the old name.
func (w *FSNotifyWatcher) classify(ev fsnotify.Event) (ports.FileOperation, bool) {
	if !w.extensions[strings.ToLower(filepath.Ext(ev.Name))] {
		return 0, false
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return ports.FileDeleted, true
	case ev.Has(fsnotify.Create):
		return ports.FileCreated, true
	case ev.Has(fsnotify.Write):
		return ports.FileModified, true
	}
	return 0, false
}

// coalesce merges op into the pending state for path. A file created and then
// written is still a creation; otherwise the latest operation wins.
func coalesce(pending map[string]ports.FileOperation, path string, op ports.FileOperation) ports.FileOperation {
	prev, seen := pending[path]
	if seen && prev == ports.FileCreated && op == ports.FileModified {
		return ports.FileCreated
	}
	return op
}

// Stop releases the underlying fsnotify watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}
