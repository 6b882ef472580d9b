// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tidy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tskit-dev/rtidy/o11y/clog"
)

// DefaultDebounce is the quiet period after a change before rerunning.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reruns clang-tidy on input files when they or the files they
// depend on change.
type Watcher struct {
	Dispatcher *Dispatcher

	// Triggers are files whose change reruns all inputs, such as
	// Makevars and the project config.
	Triggers []string

	// Deps returns files that the input fname depends on, such as
	// included headers. Optional.
	Deps func(ctx context.Context, fname string) ([]string, error)

	// Debounce is the quiet period. DefaultDebounce if zero.
	Debounce time.Duration

	// Report is called after each run with the files and the exit code.
	// Optional.
	Report func(files []string, exitCode int)
}

// watchIndex maps a watched absolute path to the inputs it affects.
type watchIndex map[string][]string

func (idx watchIndex) add(path, input string) {
	path = filepath.Clean(path)
	for _, in := range idx[path] {
		if in == input {
			return
		}
	}
	idx[path] = append(idx[path], input)
}

// dirs returns directories to watch.
func (idx watchIndex) dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for path := range idx {
		dir := filepath.Dir(path)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

func (w *Watcher) index(ctx context.Context, files []string) watchIndex {
	idx := make(watchIndex)
	for _, fname := range files {
		idx.add(absPath(fname), fname)
		for _, t := range w.Triggers {
			idx.add(absPath(t), fname)
		}
		if w.Deps == nil {
			continue
		}
		deps, err := w.Deps(ctx, fname)
		if err != nil {
			clog.Warningf(ctx, "deps of %s: %v", fname, err)
			continue
		}
		for _, dep := range deps {
			idx.add(absPath(dep), fname)
		}
	}
	return idx
}

func absPath(fname string) string {
	p, err := filepath.Abs(fname)
	if err != nil {
		return filepath.Clean(fname)
	}
	return p
}

// Watch runs files once, then reruns affected files after changes until
// ctx is done. Runs are serialized.
func (w *Watcher) Watch(ctx context.Context, files, extra []string) error {
	if len(files) == 0 {
		return ErrNoInputs
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	debounce := w.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	idx := w.watch(ctx, watcher, files)
	w.run(ctx, files, extra)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantChange(event) {
				continue
			}
			inputs := idx[filepath.Clean(event.Name)]
			if len(inputs) == 0 {
				continue
			}
			clog.Debugf(ctx, "%s: %s", event.Op, event.Name)
			for _, in := range inputs {
				pending[in] = true
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			clog.Warningf(ctx, "watcher error: %v", err)

		case <-timer.C:
			var batch []string
			for _, fname := range files {
				if pending[fname] {
					batch = append(batch, fname)
				}
			}
			clear(pending)
			w.run(ctx, batch, extra)
			idx = w.watch(ctx, watcher, files)
		}
	}
}

func (w *Watcher) watch(ctx context.Context, watcher *fsnotify.Watcher, files []string) watchIndex {
	idx := w.index(ctx, files)
	for _, dir := range idx.dirs() {
		err := watcher.Add(dir)
		if errors.Is(err, fs.ErrNotExist) {
			clog.Debugf(ctx, "not watching missing dir %s", dir)
			continue
		}
		if err != nil {
			clog.Warningf(ctx, "failed to watch %s: %v", dir, err)
		}
	}
	return idx
}

func (w *Watcher) run(ctx context.Context, files, extra []string) {
	if len(files) == 0 {
		return
	}
	code := w.Dispatcher.Run(ctx, files, extra)
	clog.Infof(ctx, "ran %d files: exit=%d", len(files), code)
	if w.Report != nil {
		w.Report(files, code)
	}
}

func isRelevantChange(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
