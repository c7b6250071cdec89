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

// Interrupt kinds, also used as AgentState.PendingInterruptKind values.
const (
	KindUserInput    = "ask_human"
	KindToolApproval = "tool_approval"
)

// UserInputRequest is the Interrupt payload for the ask_human tool,
// JSON-tagged for any CLI/UI renderer to decode without linking this
// package.
type UserInputRequest struct {
	CallID   string `json:"call_id"`
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
	Default  string `json:"default,omitempty"`
}

// ToolApprovalRequest is the Interrupt payload raised when the approval
// engine decides a pending tool call needs human confirmation.
type ToolApprovalRequest struct {
	CallID    string         `json:"call_id"`
	ToolName  string         `json:"tool_name"`
	Args      map[string]any `json:"args"`
	Reason    string         `json:"reason"`
	RiskLevel string         `json:"risk_level"`
}
