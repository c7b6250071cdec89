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
	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/message"
)

// RoutePlanner implements spec.md §4.1's route_planner: budget exhaustion
// (handled generically by Graph.Run's recursion_limit counter, this checks
// the semantic max_loops ceiling early so the synthetic message appears
// right after the planner's own turn rather than after an extra
// compressor/dispatcher hop) wins first, then a pending compression, then
// dispatching any tool calls the model just requested, else END.
func RoutePlanner(s *agentstate.AgentState) string {
	if s.BudgetExhausted() {
		s.Messages = append(s.Messages, message.AssistantMessage{Content: "loop budget exhausted"})
		return End
	}
	if s.NeedsCompression && !s.AutoCompressedThisRequest {
		return NodeCompressor
	}
	if last, ok := lastMessage(s.Messages); ok {
		if am, ok := last.(message.AssistantMessage); ok && am.HasToolCalls() {
			return NodeDispatcher
		}
	}
	return End
}

// NewRouteDispatcher builds route_dispatcher: it ends the run once the
// most recent ToolResultMessage answers a call to one of terminalTools
// (e.g. "done_and_report" in orchestration variants), otherwise always
// returns to the planner for another plan/act cycle.
func NewRouteDispatcher(terminalTools map[string]bool) func(*agentstate.AgentState) string {
	return func(s *agentstate.AgentState) string {
		for i := len(s.Messages) - 1; i >= 0; i-- {
			if tr, ok := s.Messages[i].(message.ToolResultMessage); ok {
				if terminalTools[tr.Name] {
					return End
				}
				break
			}
		}
		return NodePlanner
	}
}

// RouteDispatcher is the default route_dispatcher with no terminal tools
// configured — the host agent always loops back to the planner.
var RouteDispatcher = NewRouteDispatcher(nil)

func lastMessage(msgs []message.Message) (message.Message, bool) {
	if len(msgs) == 0 {
		return nil, false
	}
	return msgs[len(msgs)-1], true
}
