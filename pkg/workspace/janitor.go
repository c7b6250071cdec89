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

package workspace

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Janitor runs Cleanup on a schedule against one workspace root.
type Janitor struct {
	cron    *cron.Cron
	root    string
	ageDays int
	log     *slog.Logger
}

// NewJanitor builds a Janitor that removes workspaces under root idle for
// more than ageDays whenever it fires, on the given cron spec (e.g.
// "0 3 * * *" for daily at 03:00).
func NewJanitor(root string, ageDays int, spec string, log *slog.Logger) (*Janitor, error) {
	if log == nil {
		log = slog.Default()
	}
	j := &Janitor{
		cron:    cron.New(),
		root:    root,
		ageDays: ageDays,
		log:     log,
	}
	if _, err := j.cron.AddFunc(spec, j.run); err != nil {
		return nil, err
	}
	return j, nil
}

// Start begins the schedule. Non-blocking; cancel via Stop.
func (j *Janitor) Start() { j.cron.Start() }

// Stop halts the schedule, waiting for an in-flight run to finish.
func (j *Janitor) Stop() { j.cron.Stop() }

func (j *Janitor) run() {
	removed, err := Cleanup(j.root, j.ageDays)
	if err != nil {
		j.log.Error("workspace cleanup failed", "root", j.root, "error", err)
		return
	}
	if removed > 0 {
		j.log.Info("workspace cleanup removed stale sessions", "root", j.root, "count", removed)
	}
}
