// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watch reruns a patch pass whenever its inputs change.
//
// The config file and the mapping file are watched through their parent
// directories so editors that save by rename are noticed too. Bursts of
// events are debounced into one rerun, and a single worker performs the
// reruns so two passes never overlap.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is how long events are collected before a rerun
const DefaultDebounce = 300 * time.Millisecond

// RunFunc performs one pass. Errors are logged and the watch goes on.
type RunFunc func(ctx context.Context) error

// 👀 Watcher reruns a pass when any watched file changes
type Watcher struct {
	files    map[string]bool
	dirs     []string
	run      RunFunc
	debounce time.Duration
	initial  bool
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the debounce window
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithInitialRun makes the watcher perform one pass before waiting for changes
func WithInitialRun() Option {
	return func(w *Watcher) {
		w.initial = true
	}
}

// 🏭 New creates a watcher for the given files
func New(run RunFunc, files []string, opts ...Option) (*Watcher, error) {
	if run == nil {
		return nil, errors.Errorf("run func is required")
	}
	if len(files) == 0 {
		return nil, errors.Errorf("at least one file to watch is required")
	}

	w := &Watcher{
		files:    map[string]bool{},
		run:      run,
		debounce: DefaultDebounce,
	}

	seenDir := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, errors.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !seenDir[dir] {
			seenDir[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}

	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func relevant(ev fsnotify.Event) bool {
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0
}

// 🏃 Watch blocks until ctx is done or the watcher fails
func (w *Watcher) Watch(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			return errors.Errorf("watching %s: %w", dir, err)
		}
		logger.Debug().Str("dir", dir).Msg("watching directory")
	}

	trigger := make(chan struct{}, 1)
	if w.initial {
		trigger <- struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var debounced <-chan time.Time
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-fsw.Events:
				if !ok {
					return nil
				}
				if !w.files[filepath.Clean(ev.Name)] || !relevant(ev) {
					continue
				}
				logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("input changed")
				debounced = time.After(w.debounce)
			case <-debounced:
				debounced = nil
				select {
				case trigger <- struct{}{}:
				default:
					// a rerun is already pending
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return nil
				}
				return errors.Errorf("watching inputs: %w", err)
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-trigger:
				if err := w.run(gctx); err != nil {
					logger.Error().Err(err).Msg("patch run failed")
				}
			}
		}
	})

	return g.Wait()
}
