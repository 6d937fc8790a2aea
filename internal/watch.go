package internal

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/tregex/search"
)

// DefaultDebounce is how long the watcher waits after the last write to a
// file before searching it again.
const DefaultDebounce = 100 * time.Millisecond

// ReportFunc receives the outcome of every re-run.
type ReportFunc func(path string, matches []search.Match, err error)

// Watcher re-runs an engine on treebank files as they are written.
type Watcher struct {
	engine     search.Engine
	extensions []string
	report     ReportFunc
	logger     *zap.Logger
	watcher    *fsnotify.Watcher

	Debounce time.Duration
}

func NewWatcher(engine search.Engine, logger *zap.Logger, extensions []string, report ReportFunc) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(extensions) == 0 {
		extensions = search.DefaultExtensions()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	return &Watcher{
		engine:     engine,
		extensions: extensions,
		report:     report,
		logger:     logger,
		watcher:    fw,
		Debounce:   DefaultDebounce,
	}, nil
}

// Add watches dirs and every directory below them.
func (w *Watcher) Add(dirs ...string) error {
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return nil
}

// Run handles file events until ctx is done, then closes the watcher. Writes
// to the same file within Debounce of each other produce one search.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				pending[event.Name] = true
				timer.Reset(w.Debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		case <-timer.C:
			for _, path := range slices.Sorted(maps.Keys(pending)) {
				matches, err := w.engine.Run(ctx, path)
				w.report(path, matches, err)
			}
			clear(pending)
		}
	}
}

// handleEvent reports whether event should trigger a search. New
// directories are watched as they appear.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.Add(event.Name); err != nil {
				w.logger.Error("watch error", zap.Error(err))
			}
			return false
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return slices.Contains(w.extensions, filepath.Ext(event.Name))
}
