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

// Package agentstate defines the per-session state threaded through every
// graph node: conversation history, todo list, loop budget, token
// accounting, and workspace/mention bookkeeping.
package agentstate

import (
	"fmt"

	"github.com/kadirpekel/agentrt/pkg/message"
)

// TodoStatus is the lifecycle state of a single todo item.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
)

// Todo is one item in the agent's running task list.
type Todo struct {
	ID       string     `json:"id"`
	Content  string     `json:"content"`
	Status   TodoStatus `json:"status"`
	Priority int        `json:"priority"`
}

// DefaultMaxLoops is the host-agent loop ceiling (spec default 100).
// Subagents are supplied their own max_loops by the delegating caller.
const DefaultMaxLoops = 100

// AgentState is the full mutable state of one conversation. It is created
// by a session manager at session start or reset, mutated by each graph
// node's returned update, and persisted after every user-turn boundary.
type AgentState struct {
	Messages []message.Message `json:"messages"`

	Todos []Todo `json:"todos"`

	Loops    int `json:"loops"`
	MaxLoops int `json:"max_loops"`

	CumulativePromptTokens     int `json:"cumulative_prompt_tokens"`
	CumulativeCompletionTokens int `json:"cumulative_completion_tokens"`

	NeedsCompression          bool `json:"needs_compression"`
	AutoCompressedThisRequest bool `json:"auto_compressed_this_request"`

	CompactCount        int     `json:"compact_count"`
	LastCompactRatio    float64 `json:"last_compact_ratio"`
	LastCompactStrategy string  `json:"last_compact_strategy,omitempty"`

	WorkspacePath string `json:"workspace_path"`

	UploadedFiles    []string `json:"uploaded_files"`
	NewUploadedFiles []string `json:"new_uploaded_files"`

	MentionedAgents    []string `json:"mentioned_agents"`
	NewMentionedAgents []string `json:"new_mentioned_agents"`

	ContextID     string `json:"context_id"`
	ParentContext string `json:"parent_context,omitempty"`
	ThreadID      string `json:"thread_id"`

	// PendingNode, PendingCallID and PendingInterruptKind record where a
	// suspended run must resume, surviving a persistence round-trip so a
	// later process can pick the run back up.
	PendingNode          string `json:"pending_node,omitempty"`
	PendingCallID        string `json:"pending_call_id,omitempty"`
	PendingInterruptKind string `json:"pending_interrupt_kind,omitempty"`

	// ResumeValue and ResumeProvided carry a single Resume() call's
	// resolution into the re-entered node; never persisted, since a
	// resume value only makes sense for the one call that supplied it.
	ResumeValue    any  `json:"-"`
	ResumeProvided bool `json:"-"`
}

// ErrMultipleInProgress reports an attempt to set more than one todo to
// in_progress at once, violating I-TODO.
type ErrMultipleInProgress struct {
	IDs []string
}

func (e *ErrMultipleInProgress) Error() string {
	return fmt.Sprintf("agentstate: at most one todo may be in_progress, got %v", e.IDs)
}

// SetTodos replaces the todo list after enforcing I-TODO: at most one item
// may carry TodoInProgress.
func (s *AgentState) SetTodos(todos []Todo) error {
	var inProgress []string
	for _, t := range todos {
		if t.Status == TodoInProgress {
			inProgress = append(inProgress, t.ID)
		}
	}
	if len(inProgress) > 1 {
		return &ErrMultipleInProgress{IDs: inProgress}
	}
	s.Todos = todos
	return nil
}

// IsSubagent reports whether this state belongs to a delegated subagent
// run, identified by the context_id prefix convention "subagent-".
func (s *AgentState) IsSubagent() bool {
	return len(s.ContextID) >= len(subagentPrefix) && s.ContextID[:len(subagentPrefix)] == subagentPrefix
}

const subagentPrefix = "subagent-"

// BudgetExhausted reports whether the loop counter has reached max_loops,
// per I-BUDGET: loops ≤ max_loops must hold when a node returns. A
// MaxLoops of zero or less stands for DefaultMaxLoops, as in graph.Run.
func (s *AgentState) BudgetExhausted() bool {
	maxLoops := s.MaxLoops
	if maxLoops <= 0 {
		maxLoops = DefaultMaxLoops
	}
	return s.Loops >= maxLoops
}
