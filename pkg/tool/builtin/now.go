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

// Package builtin implements the runtime's own tools: now, ask_human,
// todo_read, todo_write, compact_context, delegate_task. Unlike a host
// application's domain tools, these read and mutate the AgentState
// attached to the call context (see pkg/agentstate.WithState).
package builtin

import (
	"context"
	"time"

	"github.com/kadirpekel/agentrt/pkg/tool"
)

// nowTool returns the current UTC time in ISO 8601, for timestamps,
// logging, or time-based reasoning where the model has no other way to
// know the wall clock.
type nowTool struct{ base }

// Now creates the "now" builtin tool.
func Now() tool.Tool {
	return &nowTool{base: newBase(
		"now",
		"Returns the current UTC date and time as an ISO 8601 string.",
		emptySchema,
		tool.Metadata{Risk: tool.RiskLow, Tags: []string{"builtin", "time"}, AvailableToSubagent: true},
	)}
}

func (t *nowTool) Run(ctx context.Context, args map[string]any) (any, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}
