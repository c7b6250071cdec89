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

// Package session persists one AgentState per thread across turns. Record
// treats the state as an opaque blob, the way the teacher's session
// service treats a2a messages as an opaque JSON column, so the store
// never needs to know about pkg/agentstate's field layout.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when no record exists for a thread.
var ErrNotFound = errors.New("session: record not found")

// Record is the persisted form of one thread's AgentState. StateBlob is
// opaque to the store — callers marshal/unmarshal it themselves (this
// runtime uses encoding/json, for the same inspectability the teacher
// favors throughout pkg/config).
type Record struct {
	ThreadID     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	StateBlob    []byte
	MessageCount int
}

// Store is the persistence boundary the graph runtime and cmd/agentrt
// depend on. Both the SQLite-backed Store and the in-memory Store satisfy
// it, selected by configuration the way the teacher picks between
// SQLSessionService and an in-memory implementation.
type Store interface {
	// Save upserts the record for threadID, setting UpdatedAt and
	// incrementing-equivalent bookkeeping (MessageCount is caller-supplied,
	// reflecting the full message count at save time, not a delta).
	Save(ctx context.Context, rec Record) error

	// Load returns the record for threadID, or ErrNotFound.
	Load(ctx context.Context, threadID string) (Record, error)

	// Delete removes the record for threadID. Deleting a nonexistent
	// thread is not an error.
	Delete(ctx context.Context, threadID string) error

	// List returns every known thread ID, newest UpdatedAt first.
	List(ctx context.Context) ([]string, error)

	// Close releases any underlying resources (a DB connection, for the
	// SQLite store; a no-op for the in-memory one).
	Close() error
}
