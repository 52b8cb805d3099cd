// Package watch re-runs a callback when query or mapping files change.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/satishbabariya/joinsql/internal/debug"
)

// DefaultDebounce is the quiet period before the callback runs
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a set of files for changes
type Watcher struct {
	files    map[string]bool
	callback func() error
	debounce time.Duration
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher creates a watcher calling callback after any of files is written
func NewWatcher(files []string, debounce time.Duration, callback func() error) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		callback: callback,
		debounce: debounce,
		watcher:  watcher,
		done:     make(chan struct{}),
	}
	dirs := map[string]bool{}
	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		w.files[absPath] = true

		// editors replace files, so the directory is watched
		dir := filepath.Dir(absPath)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch directory: %w", err)
		}
	}
	return w, nil
}

// Start runs the callback once and then on every change
func (w *Watcher) Start() error {
	if err := w.callback(); err != nil {
		return fmt.Errorf("initial callback failed: %w", err)
	}

	go func() {
		debounceTimer := time.NewTimer(w.debounce)
		debounceTimer.Stop()
		var debounceCh <-chan time.Time

		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				eventPath, err := filepath.Abs(event.Name)
				if err == nil && w.files[eventPath] {
					debounceTimer.Reset(w.debounce)
					debounceCh = debounceTimer.C
				}

			case <-debounceCh:
				if err := w.callback(); err != nil {
					debug.Error("watch callback failed", "error", err)
				}
				debounceCh = nil

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				debug.Error("watch error", "error", err)

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop stops watching
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
