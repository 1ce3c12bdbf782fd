// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package watch re-runs work when schema files change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of events written by editors.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a fixed set of files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	logger   *slog.Logger
}

// New watches the given files. Their parent directories are watched so
// that files replaced by rename are still seen.
func New(files []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{fsw: fsw, files: make(map[string]struct{}), debounce: debounce, logger: logger}
	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run calls onChange with the changed files, sorted, after each debounced
// burst of writes. It returns when ctx is done or onChange fails.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string) error) error {
	defer func() { _ = w.fsw.Close() }()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, tracked := w.files[name]; !tracked {
				continue
			}
			w.logger.Debug("file changed", "path", name, "op", event.Op.String())
			pending[name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			clear(pending)
			slices.Sort(changed)
			if err := onChange(ctx, changed); err != nil {
				return err
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
