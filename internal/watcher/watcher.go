// Package watcher detects external edits to a loaded funscript file,
// so the session can offer to reload when another tool rewrites it.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents what happened to the watched script
type ChangeType string

const (
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change reports one external modification of the watched script.
type Change struct {
	Path string
	Type ChangeType
}

// ScriptWatcher watches a single funscript file with debouncing.
// Editors often save via write-temp-then-rename, so the parent
// directory is watched and events are filtered to the script path.
type ScriptWatcher struct {
	debounce time.Duration
	callback func(Change)
	watcher  *fsnotify.Watcher
	done     chan struct{}
	started  bool
	closed   bool
	mu       sync.Mutex

	target   string
	targetMu sync.Mutex

	timer   *time.Timer
	timerMu sync.Mutex
}

// New creates a watcher delivering debounced changes to callback.
func New(debounce time.Duration, callback func(Change)) (*ScriptWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &ScriptWatcher{
		debounce: debounce,
		callback: callback,
		watcher:  fsw,
		done:     make(chan struct{}),
	}, nil
}

// Watch retargets the watcher to the given script path, replacing any
// previous target.
func (w *ScriptWatcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", path, err)
	}

	w.targetMu.Lock()
	prev := w.target
	w.target = abs
	w.targetMu.Unlock()

	if prev != "" && filepath.Dir(prev) != filepath.Dir(abs) {
		// Best effort: the old directory may already be gone.
		w.watcher.Remove(filepath.Dir(prev))
	}
	if prev == "" || filepath.Dir(prev) != filepath.Dir(abs) {
		if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
		}
	}
	return nil
}

// Target returns the currently watched script path.
func (w *ScriptWatcher) Target() string {
	w.targetMu.Lock()
	defer w.targetMu.Unlock()
	return w.target
}

// Start starts watching for events
func (w *ScriptWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}
	w.started = true

	go w.watch()

	return nil
}

// Close stops watching and cleans up resources
func (w *ScriptWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.started {
		close(w.done)
	}

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerMu.Unlock()

	return w.watcher.Close()
}

func (w *ScriptWatcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Log error but continue watching
			fmt.Printf("watcher error: %v\n", err)

		case <-w.done:
			return
		}
	}
}

func (w *ScriptWatcher) handleEvent(event fsnotify.Event) {
	w.targetMu.Lock()
	target := w.target
	w.targetMu.Unlock()

	abs, err := filepath.Abs(event.Name)
	if err != nil || abs != target {
		return
	}

	var changeType ChangeType
	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		changeType = ChangeModified
	case event.Op&fsnotify.Create == fsnotify.Create:
		// A save via write-temp-then-rename lands here.
		changeType = ChangeModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		changeType = ChangeRemoved
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		changeType = ChangeRemoved
	default:
		return
	}

	w.debounceChange(Change{Path: target, Type: changeType})
}

// debounceChange collapses event bursts from a single save into one
// callback.
func (w *ScriptWatcher) debounceChange(c Change) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.timerMu.Lock()
		w.timer = nil
		w.timerMu.Unlock()

		w.callback(c)
	})
}
