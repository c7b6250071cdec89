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

package model

import (
	"iter"

	"github.com/google/uuid"

	"github.com/kadirpekel/agentrt/pkg/message"
)

// StreamingAggregator accumulates partial streaming responses and
// produces:
//   - partial Responses for real-time UI updates (Partial=true)
//   - one aggregated Response for session persistence (Partial=false)
//
// Usage:
//
//	agg := NewStreamingAggregator()
//	for chunk := range provider.stream(ctx, req) {
//	    for resp, err := range agg.ProcessTextDelta(chunk.text) {
//	        yield(resp, err)
//	    }
//	}
//	if final := agg.Close(); final != nil {
//	    yield(final, nil)
//	}
type StreamingAggregator struct {
	text         string
	thinkingText string
	toolCalls    []message.ToolCall
	usage        *Usage
	finishReason FinishReason

	thinkingID        string
	thinkingSignature string
}

// NewStreamingAggregator creates an empty aggregator.
func NewStreamingAggregator() *StreamingAggregator {
	return &StreamingAggregator{}
}

// ProcessTextDelta accumulates a text chunk and yields it as a partial
// Response for the UI.
func (s *StreamingAggregator) ProcessTextDelta(text string) iter.Seq2[*Response, error] {
	return func(yield func(*Response, error) bool) {
		if text == "" {
			return
		}
		s.text += text
		yield(&Response{Content: text, Partial: true}, nil)
	}
}

// ProcessThinkingDelta accumulates a thinking chunk and yields it as a
// partial Response carrying only Thinking metadata.
func (s *StreamingAggregator) ProcessThinkingDelta(thinking string) iter.Seq2[*Response, error] {
	return func(yield func(*Response, error) bool) {
		if thinking == "" {
			return
		}
		if s.thinkingID == "" {
			s.thinkingID = "thinking_" + uuid.NewString()[:8]
		}
		s.thinkingText += thinking
		yield(&Response{
			Partial:  true,
			Thinking: &ThinkingBlock{ID: s.thinkingID, Content: thinking},
		}, nil)
	}
}

// ProcessThinkingComplete records a non-streamed (or just-finished)
// thinking block together with its verification signature.
func (s *StreamingAggregator) ProcessThinkingComplete(content, signature string) {
	if s.thinkingID == "" {
		s.thinkingID = "thinking_" + uuid.NewString()[:8]
	}
	s.thinkingText = content
	s.thinkingSignature = signature
}

// ThinkingText returns the accumulated thinking text.
func (s *StreamingAggregator) ThinkingText() string {
	return s.thinkingText
}

// ProcessToolCall accumulates a complete tool call and yields it as a
// partial Response.
func (s *StreamingAggregator) ProcessToolCall(tc message.ToolCall) iter.Seq2[*Response, error] {
	return func(yield func(*Response, error) bool) {
		s.toolCalls = append(s.toolCalls, tc)
		yield(&Response{Partial: true, ToolCalls: []message.ToolCall{tc}}, nil)
	}
}

// SetUsage records token usage, typically reported once at stream end.
func (s *StreamingAggregator) SetUsage(usage *Usage) {
	s.usage = usage
}

// SetFinishReason records why generation stopped.
func (s *StreamingAggregator) SetFinishReason(reason FinishReason) {
	s.finishReason = reason
}

// Close produces the final aggregated Response (Partial=false) and resets
// the aggregator's accumulated state. Returns nil if nothing was
// accumulated.
func (s *StreamingAggregator) Close() *Response {
	if s.text == "" && s.thinkingText == "" && len(s.toolCalls) == 0 {
		return nil
	}

	resp := &Response{
		Content:      s.text,
		Partial:      false,
		TurnComplete: true,
		ToolCalls:    s.toolCalls,
		Usage:        s.usage,
		FinishReason: s.finishReason,
	}
	if s.thinkingText != "" {
		resp.Thinking = &ThinkingBlock{
			ID:        s.thinkingID,
			Content:   s.thinkingText,
			Signature: s.thinkingSignature,
		}
	}

	s.clear()
	return resp
}

func (s *StreamingAggregator) clear() {
	s.text = ""
	s.thinkingText = ""
	s.thinkingID = ""
	s.thinkingSignature = ""
	s.toolCalls = nil
	s.usage = nil
	s.finishReason = ""
}
