// Copyright 2025 Kadir Pekel
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

package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file on change and hands the result to a
// caller-supplied callback, debouncing rapid successive writes. Grounded
// on the teacher's pkg/config/provider.FileProvider.Watch, which watches
// the containing directory rather than the file itself since several
// filesystems (and most editors' atomic-save strategies) replace a file
// instead of writing it in place.
type Watcher struct {
	path string
	log  *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// NewWatcher creates a Watcher for the config file at path.
func NewWatcher(path string, log *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve watch path: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{path: abs, log: log}, nil
}

// debounceDelay coalesces the burst of events a single save often
// produces (write + chmod, or remove + create for atomic renames).
const debounceDelay = 100 * time.Millisecond

// Watch blocks until ctx is cancelled, calling onChange with the freshly
// reloaded Config each time the file changes. A reload error is logged
// and does not stop watching — a transiently invalid file (mid-write)
// should not abandon the watch.
func (w *Watcher) Watch(ctx context.Context, onChange func(*Config)) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("config: watcher closed")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("config: create file watcher: %w", err)
	}
	w.watcher = fw
	w.mu.Unlock()
	defer fw.Close()

	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("config: watch directory %s: %w", dir, err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	reload := func() {
		cfg, err := Load(w.path)
		if err != nil {
			w.log.Error("config reload failed", "path", w.path, "error", err)
			return
		}
		w.log.Info("config reloaded", "path", w.path)
		onChange(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, reload)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("config watcher error", "error", err)
		}
	}
}

// Close stops the watcher if it is currently running.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
