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

package builtin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/tool"
)

var todoWriteSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"todos": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":       map[string]any{"type": "string"},
					"content":  map[string]any{"type": "string"},
					"status":   map[string]any{"type": "string", "enum": []any{"pending", "in_progress", "completed"}},
					"priority": map[string]any{"type": "integer"},
				},
				"required": []any{"content", "status"},
			},
		},
	},
	"required": []any{"todos"},
}

// todoWriteTool replaces the running todo list. It enforces I-TODO (at most
// one in_progress item) through agentstate.AgentState.SetTodos rather than
// duplicating that rule here.
type todoWriteTool struct{ base }

// TodoWrite creates the "todo_write" builtin tool.
func TodoWrite() tool.Tool {
	return &todoWriteTool{base: newBase(
		"todo_write",
		"Replaces the todo list. Use for multi-step tasks (3+ steps) to track progress; "+
			"at most one item may be in_progress at a time.",
		todoWriteSchema,
		tool.Metadata{Risk: tool.RiskLow, Tags: []string{"builtin", "todo"}, AvailableToSubagent: true},
	)}
}

func (t *todoWriteTool) Run(ctx context.Context, args map[string]any) (any, error) {
	s := agentstate.FromContext(ctx)
	if s == nil {
		return nil, fmt.Errorf("todo_write: no agent state in context")
	}

	raw, ok := args["todos"].([]any)
	if !ok {
		return map[string]any{"ok": false, "error": "todos must be an array"}, nil
	}

	todos := make([]agentstate.Todo, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return map[string]any{"ok": false, "error": "each todo must be an object"}, nil
		}

		content, _ := m["content"].(string)
		status, _ := m["status"].(string)
		if content == "" || status == "" {
			return map[string]any{"ok": false, "error": "each todo must have 'content' and 'status'"}, nil
		}

		id, _ := m["id"].(string)
		if id == "" {
			id = uuid.New().String()[:8]
		}

		priority := 0
		switch v := m["priority"].(type) {
		case float64:
			priority = int(v)
		case int:
			priority = v
		}

		todos = append(todos, agentstate.Todo{
			ID:       id,
			Content:  content,
			Status:   agentstate.TodoStatus(status),
			Priority: priority,
		})
	}

	if err := s.SetTodos(todos); err != nil {
		return map[string]any{"ok": false, "error": err.Error()}, nil
	}

	return map[string]any{"ok": true, "todos": s.Todos, "context": s.ContextID}, nil
}
