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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/approval"
	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/observability"
	"github.com/kadirpekel/agentrt/pkg/tool"
	"github.com/kadirpekel/agentrt/pkg/tool/builtin"
)

// DispatcherNode executes the pending tool calls on the last
// AssistantMessage in order, consulting engine before each one and
// suspending via Interrupt for either a tool_approval or an ask_human
// (builtin.ErrInputRequired) request. Already-answered calls — from a
// prior partial pass that got interrupted partway through a multi-call
// turn — are skipped.
func DispatcherNode(registry *tool.Registry, engine *approval.Engine, metrics *observability.Metrics, log *slog.Logger) Node {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, s *agentstate.AgentState) (NodeResult, error) {
		am, amIdx := lastAssistantWithToolCalls(s.Messages)
		if am == nil {
			return NodeResult{}, nil
		}

		answered := answeredCount(s.Messages, amIdx)
		resumeValue := s.ResumeValue
		resumeProvided := s.ResumeProvided
		s.ResumeValue, s.ResumeProvided = nil, false

		for i := answered; i < len(am.ToolCalls); i++ {
			call := am.ToolCalls[i]

			if resumeProvided && s.PendingCallID == call.ID {
				kind := s.PendingInterruptKind
				s.PendingCallID, s.PendingInterruptKind = "", ""
				resumeProvided = false // only the first pending call consumes the resume value

				if kind == KindToolApproval && resumeValue != nil {
					if answer, _ := resumeValue.(string); answer == "approve" {
						impl, err := registry.Get(call.Name)
						if err != nil {
							s.Messages = append(s.Messages, errorResult(call, err))
							continue
						}
						out, runErr := runTool(ctx, impl, s, call, metrics)
						if runErr != nil {
							s.Messages = append(s.Messages, errorResult(call, runErr))
							continue
						}
						s.Messages = append(s.Messages, successResult(call, out))
						continue
					}
				}
				s.Messages = append(s.Messages, resolveInterrupt(kind, call, resumeValue))
				continue
			}

			impl, err := registry.Get(call.Name)
			if err != nil {
				s.Messages = append(s.Messages, errorResult(call, err))
				if metrics != nil {
					metrics.RecordToolError(call.Name, "unknown")
				}
				continue
			}

			decision := engine.Check(call.Name, call.Args)
			if metrics != nil {
				metrics.RecordToolApproval(call.Name, approvalDecisionLabel(decision))
			}
			if decision.NeedsApproval {
				s.PendingCallID = call.ID
				s.PendingInterruptKind = KindToolApproval
				return NodeResult{Interrupt: &Interrupt{
					Kind: KindToolApproval,
					Payload: ToolApprovalRequest{
						CallID: call.ID, ToolName: call.Name, Args: call.Args,
						Reason: decision.Reason, RiskLevel: string(decision.RiskLevel),
					},
				}}, nil
			}

			out, runErr := runTool(ctx, impl, s, call, metrics)
			if runErr != nil {
				var needInput *builtin.ErrInputRequired
				if errors.As(runErr, &needInput) {
					s.PendingCallID = call.ID
					s.PendingInterruptKind = KindUserInput
					return NodeResult{Interrupt: &Interrupt{
						Kind: KindUserInput,
						Payload: UserInputRequest{
							CallID: call.ID, Question: needInput.Question,
							Context: needInput.Context, Default: needInput.Default,
						},
					}}, nil
				}
				s.Messages = append(s.Messages, errorResult(call, runErr))
				continue
			}

			s.Messages = append(s.Messages, successResult(call, out))
		}

		if metrics != nil {
			metrics.RecordGraphStep(NodeDispatcher)
		}
		return NodeResult{}, nil
	}
}

func runTool(ctx context.Context, impl tool.Tool, s *agentstate.AgentState, call message.ToolCall, metrics *observability.Metrics) (any, error) {
	start := time.Now()
	out, err := impl.Run(agentstate.WithState(ctx, s), call.Args)
	if metrics != nil {
		metrics.RecordToolCall(call.Name, time.Since(start))
	}
	return out, err
}

// resolveInterrupt turns a Resume() value into the ToolResultMessage for a
// call that was NOT re-run (a rejected approval, an ask_human answer, or
// an explicit cancellation) — the approve-and-actually-run path is
// handled inline in DispatcherNode, since it needs the registry.
func resolveInterrupt(kind string, call message.ToolCall, value any) message.Message {
	if value == nil {
		return message.ToolResultMessage{CallID: call.ID, Name: call.Name, Content: "tool call cancelled", IsError: true}
	}

	switch kind {
	case KindToolApproval:
		return message.ToolResultMessage{CallID: call.ID, Name: call.Name, Content: "tool call rejected by reviewer", IsError: true}
	case KindUserInput:
		answer, _ := value.(string)
		return message.ToolResultMessage{CallID: call.ID, Name: call.Name, Content: answer}
	default:
		return message.ToolResultMessage{CallID: call.ID, Name: call.Name, Content: fmt.Sprintf("%v", value)}
	}
}

func approvalDecisionLabel(d approval.Decision) string {
	if d.NeedsApproval {
		return "required"
	}
	return "not_required"
}

func errorResult(call message.ToolCall, err error) message.ToolResultMessage {
	return message.ToolResultMessage{CallID: call.ID, Name: call.Name, Content: err.Error(), IsError: true}
}

func successResult(call message.ToolCall, out any) message.ToolResultMessage {
	return message.ToolResultMessage{CallID: call.ID, Name: call.Name, Content: fmt.Sprintf("%v", out)}
}

// lastAssistantWithToolCalls returns the most recent AssistantMessage and
// its index when that message requested tool calls. It returns nil, -1
// when the most recent AssistantMessage has no tool calls or when there
// is no AssistantMessage at all.
func lastAssistantWithToolCalls(msgs []message.Message) (*message.AssistantMessage, int) {
	for i := len(msgs) - 1; i >= 0; i-- {
		am, ok := msgs[i].(message.AssistantMessage)
		if !ok {
			continue
		}
		if am.HasToolCalls() {
			return &am, i
		}
		return nil, -1
	}
	return nil, -1
}

// answeredCount returns how many of amIdx's tool calls already have a
// contiguous ToolResultMessage following it in msgs, so a dispatcher
// resuming after a partial interrupt doesn't re-run completed calls.
func answeredCount(msgs []message.Message, amIdx int) int {
	n := 0
	for i := amIdx + 1; i < len(msgs); i++ {
		if _, ok := msgs[i].(message.ToolResultMessage); !ok {
			break
		}
		n++
	}
	return n
}
