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

// Package anthropic implements model.LLM against the Anthropic Messages
// API using the official anthropic-sdk-go client for both the
// non-streaming and streaming paths.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/model"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096

	// thinkingTemperature is required by Anthropic whenever thinking is enabled.
	thinkingTemperature = 1.0
)

// Config configures the Anthropic client.
type Config struct {
	APIKey         string
	Model          string
	MaxTokens      int
	Temperature    *float64
	BaseURL        string
	EnableThinking bool
	ThinkingBudget int
}

// Client is an Anthropic-backed model.LLM.
type Client struct {
	sdk            sdk.Client
	model          string
	maxTokens      int
	temperature    *float64
	enableThinking bool
	thinkingBudget int
}

// New creates an Anthropic client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	thinkingBudget := cfg.ThinkingBudget
	if thinkingBudget == 0 {
		thinkingBudget = 10000
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		sdk:            sdk.NewClient(opts...),
		model:          modelName,
		maxTokens:      maxTokens,
		temperature:    cfg.Temperature,
		enableThinking: cfg.EnableThinking,
		thinkingBudget: thinkingBudget,
	}, nil
}

// Name returns the configured model identifier.
func (c *Client) Name() string { return c.model }

// Provider reports this backend as Anthropic.
func (c *Client) Provider() model.Provider { return model.ProviderAnthropic }

// Close releases client resources. The SDK client owns no long-lived
// connections beyond the stdlib transport, so this is a no-op.
func (c *Client) Close() error { return nil }

// GenerateContent issues a request, streaming or not, per the model.LLM
// contract.
func (c *Client) GenerateContent(ctx context.Context, req *model.Request, stream bool) iter.Seq2[*model.Response, error] {
	if stream {
		return c.generateStream(ctx, req)
	}
	return func(yield func(*model.Response, error) bool) {
		resp, err := c.generate(ctx, req)
		yield(resp, err)
	}
}

func (c *Client) generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	msg, err := c.sdk.Messages.New(ctx, *params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: generate: %w", err)
	}

	return parseMessage(msg), nil
}

// generateStream consumes the SDK's server-sent-event stream via
// StreamingAggregator, yielding partial Responses as text/tool-call/
// thinking deltas arrive and one final aggregated Response at the end.
func (c *Client) generateStream(ctx context.Context, req *model.Request) iter.Seq2[*model.Response, error] {
	return func(yield func(*model.Response, error) bool) {
		params, err := c.buildParams(req)
		if err != nil {
			yield(nil, err)
			return
		}

		stream := c.sdk.Messages.NewStreaming(ctx, *params)
		defer stream.Close()

		agg := model.NewStreamingAggregator()
		toolNames := map[int64]string{}
		toolJSON := map[int64]string{}
		thinkingSig := map[int64]string{}

		for stream.Next() {
			event := stream.Current()

			switch variant := event.AsAny().(type) {
			case sdk.ContentBlockStartEvent:
				switch block := variant.ContentBlock.AsAny().(type) {
				case sdk.ToolUseBlock:
					toolNames[variant.Index] = block.Name
					toolJSON[variant.Index] = ""
				}

			case sdk.ContentBlockDeltaEvent:
				switch delta := variant.Delta.AsAny().(type) {
				case sdk.TextDelta:
					for r, err := range agg.ProcessTextDelta(delta.Text) {
						if !yield(r, err) {
							return
						}
					}
				case sdk.ThinkingDelta:
					for r, err := range agg.ProcessThinkingDelta(delta.Thinking) {
						if !yield(r, err) {
							return
						}
					}
				case sdk.SignatureDelta:
					thinkingSig[variant.Index] += delta.Signature
				case sdk.InputJSONDelta:
					toolJSON[variant.Index] += delta.PartialJSON
				}

			case sdk.ContentBlockStopEvent:
				if name, ok := toolNames[variant.Index]; ok {
					var args map[string]any
					_ = json.Unmarshal([]byte(toolJSON[variant.Index]), &args)
					for r, err := range agg.ProcessToolCall(message.ToolCall{Name: name, Args: args}) {
						if !yield(r, err) {
							return
						}
					}
				}

			case sdk.MessageDeltaEvent:
				switch string(variant.Delta.StopReason) {
				case "tool_use":
					agg.SetFinishReason(model.FinishReasonToolCalls)
				case "max_tokens":
					agg.SetFinishReason(model.FinishReasonLength)
				default:
					agg.SetFinishReason(model.FinishReasonStop)
				}
				agg.SetUsage(&model.Usage{
					CompletionTokens: int(variant.Usage.OutputTokens),
				})
			}
		}

		if err := stream.Err(); err != nil {
			yield(nil, fmt.Errorf("anthropic: stream: %w", err))
			return
		}

		if final := agg.Close(); final != nil {
			yield(final, nil)
		}
	}
}

// buildParams translates a provider-agnostic Request into the Anthropic
// SDK's wire parameters.
func (c *Client) buildParams(req *model.Request) (*sdk.MessageNewParams, error) {
	params := &sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(c.maxTokens),
	}

	thinkingEnabled := c.enableThinking || (req.Config != nil && req.Config.EnableThinking)
	if thinkingEnabled {
		params.Temperature = sdk.Float(thinkingTemperature)
		budget := c.thinkingBudget
		if req.Config != nil && req.Config.ThinkingBudget > 0 {
			budget = req.Config.ThinkingBudget
		}
		params.Thinking = sdk.ThinkingConfigParamOfEnabled(int64(budget))
	} else if c.temperature != nil {
		params.Temperature = sdk.Float(*c.temperature)
	}

	if req.SystemInstruction != "" {
		params.System = []sdk.TextBlockParam{{Text: req.SystemInstruction}}
	}

	msgs, err := encodeMessages(req.Messages)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("anthropic: at least one user/assistant message is required")
	}
	params.Messages = msgs

	for _, t := range req.Tools {
		u := sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{ExtraFields: t.ArgsSchemaJSON()}, t.Name())
		if u.OfTool != nil {
			u.OfTool.Description = sdk.String(t.Description())
		}
		params.Tools = append(params.Tools, u)
	}

	return params, nil
}

// encodeMessages sends each system message as a separate user-role message
// (Anthropic has no mid-conversation system role) and translates
// assistant tool calls / tool results into Anthropic content blocks.
func encodeMessages(msgs []message.Message) ([]sdk.MessageParam, error) {
	out := make([]sdk.MessageParam, 0, len(msgs))

	for _, m := range msgs {
		switch v := m.(type) {
		case message.SystemMessage:
			out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(v.Content)))

		case message.UserMessage:
			out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(v.Content)))

		case message.AssistantMessage:
			var blocks []sdk.ContentBlockParamUnion
			if v.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(v.Content))
			}
			for _, tc := range v.ToolCalls {
				blocks = append(blocks, sdk.NewToolUseBlock(tc.ID, tc.Args, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, sdk.NewAssistantMessage(blocks...))
			}

		case message.ToolResultMessage:
			content := v.Content
			if content == "" {
				content = "(no output)"
			}
			if v.CallID == "" {
				return nil, fmt.Errorf("anthropic: tool result missing call id")
			}
			out = append(out, sdk.NewUserMessage(sdk.NewToolResultBlock(v.CallID, content, v.IsError)))
		}
	}

	return out, nil
}

// parseMessage converts an anthropic-sdk-go Message into model.Response.
func parseMessage(msg *sdk.Message) *model.Response {
	result := &model.Response{
		Partial:      false,
		TurnComplete: true,
		Usage: &model.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		FinishReason: model.FinishReasonStop,
	}

	switch string(msg.StopReason) {
	case "tool_use":
		result.FinishReason = model.FinishReasonToolCalls
	case "max_tokens":
		result.FinishReason = model.FinishReasonLength
	}

	var text string
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "thinking":
			result.Thinking = &model.ThinkingBlock{Content: block.Thinking, Signature: block.Signature}
		case "tool_use":
			var args map[string]any
			if len(block.Input) > 0 {
				_ = json.Unmarshal(block.Input, &args)
			}
			result.ToolCalls = append(result.ToolCalls, message.ToolCall{
				ID:   block.ID,
				Name: block.Name,
				Args: args,
			})
		}
	}
	result.Content = text

	return result
}

var _ model.LLM = (*Client)(nil)
