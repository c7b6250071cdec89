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

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/subagent"
	"github.com/kadirpekel/agentrt/pkg/tool"
)

var delegateTaskSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"task": map[string]any{
			"type":        "string",
			"description": "Detailed, self-contained task description: what to do and what to return.",
		},
		"max_loops": map[string]any{
			"type":        "integer",
			"description": "Loop budget for the delegated run (default 50).",
		},
	},
	"required": []any{"task"},
}

// delegateTaskTool launches an isolated child run for a self-contained
// subtask, the way Claude Code's own task tool does, returning only the
// final summarized result to the parent turn.
type delegateTaskTool struct {
	base
	run subagent.Runner
}

// DelegateTask creates the "delegate_task" builtin tool, backed by run —
// the graph's own execution entry point, supplied by cmd/agentrt at
// assembly time so this package never imports pkg/graph directly.
func DelegateTask(run subagent.Runner) tool.Tool {
	return &delegateTaskTool{
		base: newBase(
			"delegate_task",
			"Launches an isolated agent for a complex, self-contained subtask. Has access to the "+
				"tools marked available to subagents. The result is not visible to the user — summarize it yourself.",
			delegateTaskSchema,
			tool.Metadata{Risk: tool.RiskMedium, Tags: []string{"builtin", "delegation"}, AvailableToSubagent: false},
		),
		run: run,
	}
}

func (t *delegateTaskTool) Run(ctx context.Context, args map[string]any) (any, error) {
	s := agentstate.FromContext(ctx)
	if s == nil {
		return nil, fmt.Errorf("delegate_task: no agent state in context")
	}

	task, _ := args["task"].(string)
	if task == "" {
		return nil, fmt.Errorf("delegate_task: task is required")
	}

	maxLoops := 0
	switch v := args["max_loops"].(type) {
	case float64:
		maxLoops = int(v)
	case int:
		maxLoops = v
	}

	result := subagent.Delegate(ctx, t.run, s, task, maxLoops)
	return result, nil
}
