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

// Package model defines the provider-agnostic LLM interface the planner
// node invokes, and the Request/Response types shared by every backend.
//
//   - Unified GenerateContent method with a stream boolean
//   - Returns iter.Seq2[*Response, error]
//   - Uses StreamingAggregator for streaming with a Partial flag
//   - Proper handling of thinking blocks with signatures
package model

import (
	"context"
	"iter"

	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/tool"
)

// LLM is the capability interface a model backend implements.
type LLM interface {
	// Name returns the concrete model identifier (e.g. "claude-sonnet-4-20250514").
	Name() string
	// Provider returns which backend family this LLM belongs to.
	Provider() Provider
	// GenerateContent produces responses for req. When stream is false it
	// yields exactly one Response with Partial=false. When stream is true
	// it yields partial Responses followed by one aggregated Response.
	GenerateContent(ctx context.Context, req *Request, stream bool) iter.Seq2[*Response, error]
	// Close releases any resources held by the client.
	Close() error
}

// Provider identifies which backend family an LLM belongs to.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderUnknown   Provider = "unknown"
)

// Request is a single generation request sent to an LLM.
type Request struct {
	Messages          []message.Message
	Tools             []tool.Tool
	Config            *GenerateConfig
	SystemInstruction string
}

// GenerateConfig tunes a single GenerateContent call.
type GenerateConfig struct {
	Temperature          *float64
	MaxTokens            int
	TopP                 float64
	TopK                 float64
	StopSequences        []string
	ResponseMIMEType     string
	ResponseSchema       map[string]any
	ResponseSchemaName   string
	ResponseSchemaStrict bool
	EnableThinking       bool
	ThinkingBudget       int
	Metadata             map[string]any
}

// Clone deep-copies a GenerateConfig so per-call overrides never mutate a
// shared default configuration.
func (c *GenerateConfig) Clone() *GenerateConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Temperature != nil {
		t := *c.Temperature
		clone.Temperature = &t
	}
	if c.StopSequences != nil {
		clone.StopSequences = append([]string(nil), c.StopSequences...)
	}
	clone.ResponseSchema = deepCopyMap(c.ResponseSchema)
	clone.Metadata = deepCopyMap(c.Metadata)
	return &clone
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case map[string]any:
			out[k] = deepCopyMap(vv)
		case []any:
			out[k] = deepCopySlice(vv)
		default:
			out[k] = vv
		}
	}
	return out
}

func deepCopySlice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		switch vv := v.(type) {
		case map[string]any:
			out[i] = deepCopyMap(vv)
		case []any:
			out[i] = deepCopySlice(vv)
		default:
			out[i] = vv
		}
	}
	return out
}

// Response is one unit of LLM output, either a streamed partial or the
// final aggregated result.
type Response struct {
	Content      string
	Partial      bool
	TurnComplete bool
	ToolCalls    []message.ToolCall
	Usage        *Usage
	Thinking     *ThinkingBlock
	FinishReason FinishReason
	ErrorCode    string
	ErrorMessage string
}

// Usage reports token accounting for a single call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ThinkingTokens   int
}

// ThinkingBlock carries extended-reasoning content some providers emit
// alongside the visible response, with a signature for later replay.
type ThinkingBlock struct {
	ID        string
	Content   string
	Signature string
}

// FinishReason classifies why generation stopped.
type FinishReason string

const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonToolCalls FinishReason = "tool_calls"
	FinishReasonLength    FinishReason = "length"
	FinishReasonError     FinishReason = "error"
)

// HasToolCalls reports whether this Response carries any tool calls.
func (r *Response) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// ToMessage converts a final (non-partial) Response into the
// AssistantMessage the graph appends to AgentState.
func (r *Response) ToMessage() message.AssistantMessage {
	if r == nil {
		return message.AssistantMessage{}
	}
	return message.AssistantMessage{
		Content:   r.Content,
		ToolCalls: r.ToolCalls,
	}
}
