// Package watch provides continuous sync: a recursive filesystem watcher
// over the content directory and a debouncing engine that serializes sync
// runs triggered by change bursts.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rjeczalik/notify"

	"github.com/rulekit/rulekit/internal/logging"
)

const eventBufferSize = 64

// Watcher observes a content root recursively and emits changed paths.
// Hidden files, metadata stores, and backup files are filtered out so a
// sync run never retriggers itself.
type Watcher struct {
	root   string
	raw    chan notify.EventInfo
	events chan string
	done   chan struct{}
	wg     sync.WaitGroup

	filterMu sync.RWMutex
	filter   func(path string) bool
}

// NewWatcher creates a watcher for the given content root.
func NewWatcher(root string) *Watcher {
	return &Watcher{
		root: root,
		done: make(chan struct{}),
	}
}

// FilterPaths sets an additional filter. The callback returns true when
// the path should be ignored.
func (w *Watcher) FilterPaths(filter func(path string) bool) {
	w.filterMu.Lock()
	defer w.filterMu.Unlock()
	w.filter = filter
}

// Start begins watching. Events are delivered on Events until Stop is
// called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	logging.Info("watching for changes", logging.Path(w.root))

	w.raw = make(chan notify.EventInfo, eventBufferSize)
	w.events = make(chan string, eventBufferSize)

	recursive := filepath.Join(w.root, "...")
	if err := notify.Watch(recursive, w.raw, notify.Create|notify.Write|notify.Remove|notify.Rename); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.forward(ctx)
	return nil
}

// Stop ends watching and closes the event channel.
func (w *Watcher) Stop() {
	close(w.done)
	if w.raw != nil {
		notify.Stop(w.raw)
	}
	w.wg.Wait()
}

// Events returns the filtered change stream.
func (w *Watcher) Events() <-chan string {
	return w.events
}

func (w *Watcher) forward(ctx context.Context) {
	defer func() {
		w.wg.Done()
		close(w.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.raw:
			if !ok {
				return
			}
			path := event.Path()
			if w.ignored(path) {
				continue
			}
			select {
			case w.events <- path:
				logging.Debug("change detected", logging.Path(path))
			default:
				logging.Warn("event buffer full, dropping change", logging.Path(path))
			}
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.Contains(base, ".backup.") {
		return true
	}
	w.filterMu.RLock()
	defer w.filterMu.RUnlock()
	return w.filter != nil && w.filter(path)
}
