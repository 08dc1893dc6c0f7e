package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"lectern/internal/logging"
)

// EventKind classifies a change notification after translation from the
// platform watcher.
type EventKind int

const (
	// EventUpsert covers creates and writes: the file is re-ingested.
	EventUpsert EventKind = iota
	// EventRemove covers removes and renames of the old path: the record
	// under the derived id is dropped.
	EventRemove
)

// Event is the minimal change descriptor the engine consumes. Watch mode
// translates raw filesystem notifications into these before applying them, so
// the ingestion semantics do not depend on any notification backend.
type Event struct {
	Kind EventKind
	Path string
}

// Apply processes one change event. Events for the same path must be applied
// in the order they occurred; Watch guarantees this by applying events from a
// single goroutine.
func (e *Engine) Apply(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventRemove:
		return e.RemoveFile(ev.Path)
	default:
		return e.SyncFile(ctx, ev.Path)
	}
}

// Watch observes the content root for changes and keeps the store in sync
// until ctx is cancelled. Events are applied sequentially from this goroutine
// so no two operations on the same path interleave. Newly created directories
// are added to the watch set and any files they already contain are ingested.
func (e *Engine) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("loader: create watcher: %w", err)
	}
	defer w.Close()

	dirs := e.watchDirs(e.cfg.Root)
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			e.logger.Warn("watch.add_failed", "dir", dir, "error", err)
		}
	}
	e.logger.Info("watch.start", "root", e.cfg.Root, "dirs", len(dirs))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			e.handleRawEvent(ctx, w, event)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watch.error", "error", err)
		}
	}
}

func (e *Engine) handleRawEvent(ctx context.Context, w *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			e.addDirectory(ctx, w, event.Name)
			return
		}
	}

	if !e.Matches(event.Name) {
		return
	}

	// Rename notifications refer to the old path; treat them like removes so
	// a moved file does not leave a stale record behind. The create event for
	// the new path re-ingests the content.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		e.applyLogged(ctx, Event{Kind: EventRemove, Path: event.Name})
		return
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		// A create may race with the file already being gone again.
		if _, err := os.Stat(event.Name); err != nil {
			if os.IsNotExist(err) {
				e.applyLogged(ctx, Event{Kind: EventRemove, Path: event.Name})
			}
			return
		}
		e.applyLogged(ctx, Event{Kind: EventUpsert, Path: event.Name})
	}
}

// applyLogged applies an event, relying on the engine's per-file logging for
// failure detail. Apply errors never stop the watch loop.
func (e *Engine) applyLogged(ctx context.Context, ev Event) {
	if err := e.Apply(ctx, ev); err != nil && ev.Kind == EventRemove {
		e.logger.Warn("watch.remove_failed", "path", ev.Path, "error", err)
	}
}

// addDirectory registers a new directory with the watcher and ingests any
// eligible files it already holds, covering directories moved into the root
// wholesale.
func (e *Engine) addDirectory(ctx context.Context, w *fsnotify.Watcher, dir string) {
	for _, sub := range e.watchDirs(dir) {
		if err := w.Add(sub); err != nil {
			e.logger.Warn("watch.add_failed", "dir", sub, "error", err)
		}
	}
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if e.Matches(path) {
			e.applyLogged(ctx, Event{Kind: EventUpsert, Path: path})
		}
		return nil
	})
	logging.WithDocumentContext(e.logger, dir, "", "watch").Debug("watch.dir_added")
}

func (e *Engine) watchDirs(root string) []string {
	var dirs []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}
