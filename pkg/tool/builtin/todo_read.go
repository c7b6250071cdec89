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
	"github.com/kadirpekel/agentrt/pkg/tool"
)

// todoReadTool reports the current todo list and a pending/in_progress/
// completed summary, so the model can check progress without re-deriving
// it from conversation history.
type todoReadTool struct{ base }

// TodoRead creates the "todo_read" builtin tool.
func TodoRead() tool.Tool {
	return &todoReadTool{base: newBase(
		"todo_read",
		"Reads the current todo list and a summary of pending/in_progress/completed counts. "+
			"Takes no parameters.",
		emptySchema,
		tool.Metadata{Risk: tool.RiskLow, Tags: []string{"builtin", "todo"}, AvailableToSubagent: true},
	)}
}

func (t *todoReadTool) Run(ctx context.Context, args map[string]any) (any, error) {
	s := agentstate.FromContext(ctx)
	if s == nil {
		return nil, fmt.Errorf("todo_read: no agent state in context")
	}

	summary := map[string]int{"pending": 0, "in_progress": 0, "completed": 0}
	for _, td := range s.Todos {
		summary[string(td.Status)]++
	}

	return map[string]any{
		"ok":      true,
		"todos":   s.Todos,
		"summary": summary,
		"context": s.ContextID,
	}, nil
}
