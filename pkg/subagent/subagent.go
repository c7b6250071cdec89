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

// Package subagent builds and runs an isolated child AgentState for one
// delegated task, the way pkg/tool/agenttool wraps another agent as a
// tool call in the teacher repo — generalized here to run the SAME graph
// topology recursively instead of invoking a separately configured agent.
package subagent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/message"
)

// contextIDPrefix marks a context_id as belonging to a delegated run, so
// pkg/tool.Registry.VisibleFor and pkg/agentstate.AgentState.IsSubagent can
// filter on it without either package depending on this one.
const contextIDPrefix = "subagent-"

// Runner executes one AgentState through the graph to completion (or
// suspension) and returns the resulting state. Supplied by whatever
// assembles the graph (cmd/agentrt), so this package never imports
// pkg/graph — that would be a import cycle, since a delegate_task tool
// built on this package is itself one of the tools a graph run dispatches.
type Runner func(ctx context.Context, s *agentstate.AgentState) (*agentstate.AgentState, error)

// DefaultMaxLoops bounds a delegated run when the caller doesn't specify
// one.
const DefaultMaxLoops = 50

// shortReplyThreshold: a reply at or under this length is treated as
// possibly truncated or a premature stop, and the delegator asks the
// child to continue once before returning.
const shortReplyThreshold = 200

// Result is what Delegate returns to the calling tool.
type Result struct {
	OK        bool   `json:"ok"`
	Result    string `json:"result"`
	ContextID string `json:"context_id"`
	Loops     int    `json:"loops"`
	Error     string `json:"error,omitempty"`
}

// Delegate builds a fresh AgentState for task — a single UserMessage, a new
// context_id prefixed "subagent-", the parent's workspace, and maxLoops (or
// DefaultMaxLoops if zero) — runs it via run, and continues once if the
// final assistant reply looks too short to be complete.
func Delegate(ctx context.Context, run Runner, parent *agentstate.AgentState, task string, maxLoops int) Result {
	if maxLoops <= 0 {
		maxLoops = DefaultMaxLoops
	}

	contextID := contextIDPrefix + uuid.New().String()[:8]
	child := &agentstate.AgentState{
		Messages:      []message.Message{message.UserMessage{Content: task}},
		MaxLoops:      maxLoops,
		WorkspacePath: parent.WorkspacePath,
		ContextID:     contextID,
		ParentContext: parent.ContextID,
		ThreadID:      contextID,
	}

	final, err := run(ctx, child)
	if err != nil {
		return Result{OK: false, ContextID: contextID, Error: fmt.Sprintf("subagent: run failed: %v", err)}
	}

	reply := lastAssistantText(final.Messages)
	if len(reply) <= shortReplyThreshold {
		final.Messages = append(final.Messages, message.UserMessage{Content: "Continue and provide your complete final answer."})
		final, err = run(ctx, final)
		if err != nil {
			return Result{OK: false, ContextID: contextID, Error: fmt.Sprintf("subagent: continuation failed: %v", err)}
		}
		reply = lastAssistantText(final.Messages)
	}

	return Result{OK: true, Result: reply, ContextID: contextID, Loops: final.Loops}
}

func lastAssistantText(msgs []message.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if am, ok := msgs[i].(message.AssistantMessage); ok && am.Content != "" {
			return am.Content
		}
	}
	return ""
}
