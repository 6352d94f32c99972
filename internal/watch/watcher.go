// Package watch triggers registry reloads when the agents tree changes
// on disk.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/agentry-ai/agentry/internal/logging"
	"github.com/agentry-ai/agentry/internal/registry"
)

const (
	// DebounceInterval coalesces a burst of file events into one reload.
	DebounceInterval = 500 * time.Millisecond
	// RewatchInitialInterval is the initial interval for re-establishing
	// a dead watch.
	RewatchInitialInterval = time.Second
	// RewatchMaxInterval is the maximum interval between re-establish
	// attempts.
	RewatchMaxInterval = 30 * time.Second
)

// Watcher reloads a registry whenever files under the agents root
// change. A reload failure keeps the previous index serving; the
// watcher itself is re-established with exponential backoff if the
// underlying watch dies.
type Watcher struct {
	root     string
	reg      *registry.Registry
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher over root that reloads reg on changes.
func New(root string, reg *registry.Registry) *Watcher {
	return &Watcher{
		root:     root,
		reg:      reg,
		debounce: DebounceInterval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start establishes the watch and begins reloading on changes. It
// returns an error when the agents root cannot be watched.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	if err := w.attach(); err != nil {
		return err
	}

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()

	logging.Info().Str("root", w.root).Msg("watching agents tree")
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}

	if started {
		<-w.doneCh
	}

	w.mu.Lock()
	watcher := w.watcher
	w.watcher = nil
	w.mu.Unlock()
	if watcher != nil {
		return watcher.Close()
	}
	return nil
}

// attach creates a fresh fsnotify watcher over the agents tree,
// replacing any previous one.
func (w *Watcher) attach() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.root); err != nil {
		watcher.Close()
		return err
	}
	addTree(watcher, w.root)

	w.mu.Lock()
	old := w.watcher
	w.watcher = watcher
	w.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// addTree watches every directory under root. Hidden and
// underscore-prefixed directories are skipped, matching discovery.
func addTree(watcher *fsnotify.Watcher, root string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return filepath.SkipDir
		}
		watcher.Add(path)
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		w.mu.Lock()
		watcher := w.watcher
		w.mu.Unlock()
		if watcher == nil {
			return
		}

		alive := true
		for alive {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					alive = false
				} else if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					if ev.Op&fsnotify.Create != 0 {
						// New agent or version directories need their
						// own watch before changes inside them are seen.
						addTree(watcher, ev.Name)
					}
					timer.Reset(w.debounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					alive = false
				} else {
					logging.Warn().Err(err).Msg("agents watcher error")
				}
			case <-timer.C:
				w.reload(ctx)
			}
		}

		if !w.reattach(ctx) {
			return
		}
	}
}

// reload rebuilds the registry and refreshes the watched directory set.
func (w *Watcher) reload(ctx context.Context) {
	w.reg.Reload(ctx)

	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher != nil {
		addTree(watcher, w.root)
	}
}

// reattach re-establishes a dead watch with exponential backoff. It
// returns false when the watcher was stopped while retrying.
func (w *Watcher) reattach(ctx context.Context) bool {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RewatchInitialInterval
	b.MaxInterval = RewatchMaxInterval
	b.MaxElapsedTime = 0

	for {
		wait := time.NewTimer(b.NextBackOff())
		select {
		case <-ctx.Done():
			wait.Stop()
			return false
		case <-w.stopCh:
			wait.Stop()
			return false
		case <-wait.C:
		}

		if err := w.attach(); err != nil {
			logging.Warn().Err(err).Str("root", w.root).Msg("re-establishing agents watch failed")
			continue
		}

		// Catch up on anything that changed while the watch was dead.
		w.reload(ctx)
		return true
	}
}
