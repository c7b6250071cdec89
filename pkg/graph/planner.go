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

package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/model"
	"github.com/kadirpekel/agentrt/pkg/observability"
	"github.com/kadirpekel/agentrt/pkg/tokentracker"
	"github.com/kadirpekel/agentrt/pkg/tool"
)

// PlannerNode invokes llm with the tools currently visible for the
// session, appends its reply, and updates the token tracker's
// NeedsCompression flag for route_planner to act on next. One invocation
// is one "loop", so this is where AgentState.Loops increments — the same
// place the teacher's pkg/agent reasoning step counts a turn.
func PlannerNode(llm model.LLM, registry *tool.Registry, tracker *tokentracker.Tracker, metrics *observability.Metrics, log *slog.Logger) Node {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, s *agentstate.AgentState) (NodeResult, error) {
		s.Loops++

		tools := registry.VisibleFor(s.ContextID)
		req := &model.Request{Messages: s.Messages, Tools: tools}

		start := time.Now()
		var resp *model.Response
		for r, err := range llm.GenerateContent(ctx, req, false) {
			if err != nil {
				if metrics != nil {
					metrics.RecordModelError(llm.Name(), string(llm.Provider()), "generate")
				}
				return NodeResult{}, fmt.Errorf("planner: generate content: %w", err)
			}
			resp = r
		}
		if resp == nil {
			return NodeResult{}, fmt.Errorf("planner: model returned no response")
		}

		s.Messages = append(s.Messages, resp.ToMessage())

		if resp.Usage != nil {
			s.CumulativePromptTokens += resp.Usage.PromptTokens
			s.CumulativeCompletionTokens += resp.Usage.CompletionTokens
			if metrics != nil {
				metrics.RecordModelTokens(llm.Name(), string(llm.Provider()), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			}
		}

		if tracker != nil {
			level := tracker.Classify(s.CumulativePromptTokens)
			s.NeedsCompression = level != tokentracker.LevelNormal
		}

		if metrics != nil {
			metrics.RecordGraphStep(NodePlanner)
			metrics.RecordModelCall(llm.Name(), string(llm.Provider()), time.Since(start))
			metrics.RecordLoopsPerTurn(s.Loops)
		}
		log.Debug("planner turn", "loops", s.Loops, "tool_calls", len(resp.ToolCalls))

		return NodeResult{}, nil
	}
}
