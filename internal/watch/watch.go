// Package watch regenerates the embedded header whenever the web UI dist
// directory changes.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a dist directory and calls a regenerate function after
// each burst of changes.
type Watcher struct {
	distDir    string
	debounce   time.Duration
	regenerate func() error
	watcher    *fsnotify.Watcher
	log        *slog.Logger
}

// New creates a watcher for distDir. regenerate is called once per burst
// of events, debounce after the last one.
func New(distDir string, debounce time.Duration, regenerate func() error, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	// Create the dist directory if it doesn't exist so the first build is seen.
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		distDir:    distDir,
		debounce:   debounce,
		regenerate: regenerate,
		watcher:    w,
		log:        log,
	}, nil
}

// Run regenerates once, then on every change until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.distDir); err != nil {
		return err
	}
	w.addSubdirs(w.distDir)

	w.fire()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)

		case <-timer.C:
			w.fire()
		}
	}
}

// handleEvent starts watching newly created subdirectories, such as the
// assets directory appearing during a clean build.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.log.Debug("dist changed", "path", event.Name, "op", event.Op.String())
	if !event.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(event.Name); err != nil {
		w.log.Warn("failed to watch directory", "path", event.Name, "error", err)
		return
	}
	w.addSubdirs(event.Name)
}

func (w *Watcher) addSubdirs(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		if err := w.watcher.Add(sub); err != nil {
			w.log.Warn("failed to watch directory", "path", sub, "error", err)
			continue
		}
		w.addSubdirs(sub)
	}
}

func (w *Watcher) fire() {
	if err := w.regenerate(); err != nil {
		w.log.Error("regeneration failed", "error", err)
	}
}
