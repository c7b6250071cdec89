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

	"github.com/kadirpekel/agentrt/pkg/tool"
)

// ErrInputRequired is returned by ask_human instead of a result: the tool
// dispatcher node recognizes it via errors.As and turns the run into a
// graph.Interrupt carrying Question/Context/Default, suspending the turn
// until the caller supplies an answer and resumes with it substituted for
// this call's ToolResultMessage content.
type ErrInputRequired struct {
	Question string
	Context  string
	Default  string
	Required bool
}

func (e *ErrInputRequired) Error() string {
	return fmt.Sprintf("builtin: human input required: %s", e.Question)
}

var askHumanSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{"type": "string", "description": "The question to ask the user."},
		"context":  map[string]any{"type": "string", "description": "Why this information is needed."},
		"default":  map[string]any{"type": "string", "description": "Value to use if the user gives no answer."},
		"required": map[string]any{"type": "boolean", "description": "Whether an answer is mandatory."},
	},
	"required": []any{"question"},
}

// askHumanTool lets the assistant pause the turn and request information it
// cannot infer on its own.
type askHumanTool struct{ base }

// AskHuman creates the "ask_human" builtin tool.
func AskHuman() tool.Tool {
	return &askHumanTool{base: newBase(
		"ask_human",
		"Asks the user a question when you lack information needed to continue. "+
			"Suspends the current turn until the user answers.",
		askHumanSchema,
		tool.Metadata{Risk: tool.RiskLow, Tags: []string{"builtin", "hitl"}, AvailableToSubagent: false},
	)}
}

func (t *askHumanTool) Run(ctx context.Context, args map[string]any) (any, error) {
	question, _ := args["question"].(string)
	if question == "" {
		return nil, fmt.Errorf("ask_human: question is required")
	}
	askCtx, _ := args["context"].(string)
	def, _ := args["default"].(string)
	required := true
	if v, ok := args["required"].(bool); ok {
		required = v
	}

	return nil, &ErrInputRequired{Question: question, Context: askCtx, Default: def, Required: required}
}
