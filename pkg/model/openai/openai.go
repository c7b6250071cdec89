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

// Package openai implements model.LLM against the OpenAI Chat Completions
// API using github.com/sashabaranov/go-openai.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/model"
)

const (
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 4096
)

// Config configures the OpenAI client.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature *float64
	BaseURL     string
}

// Client is an OpenAI-backed model.LLM.
type Client struct {
	sdk         *openai.Client
	model       string
	maxTokens   int
	temperature *float64
}

// New creates an OpenAI client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		sdk:         openai.NewClientWithConfig(clientConfig),
		model:       modelName,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Name returns the configured model identifier.
func (c *Client) Name() string { return c.model }

// Provider reports this backend as OpenAI.
func (c *Client) Provider() model.Provider { return model.ProviderOpenAI }

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
	chatReq := c.buildRequest(req, false)

	resp, err := c.sdk.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai: generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: response had no choices")
	}

	return parseChoice(resp.Choices[0], resp.Usage), nil
}

// generateStream consumes the SDK's chunked stream via StreamingAggregator,
// yielding partial Responses as content/tool-call deltas arrive and one
// final aggregated Response at the end.
func (c *Client) generateStream(ctx context.Context, req *model.Request) iter.Seq2[*model.Response, error] {
	return func(yield func(*model.Response, error) bool) {
		chatReq := c.buildRequest(req, true)

		stream, err := c.sdk.CreateChatCompletionStream(ctx, chatReq)
		if err != nil {
			yield(nil, fmt.Errorf("openai: stream: %w", err))
			return
		}
		defer stream.Close()

		agg := model.NewStreamingAggregator()
		toolCalls := map[int]*message.ToolCall{}
		argBuffers := map[int]string{}
		var order []int

		for {
			chunk, err := stream.Recv()
			if err != nil {
				if err == io.EOF {
					break
				}
				yield(nil, fmt.Errorf("openai: stream recv: %w", err))
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta

			if delta.Content != "" {
				for r, err := range agg.ProcessTextDelta(delta.Content) {
					if !yield(r, err) {
						return
					}
				}
			}

			for _, tc := range delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				if _, ok := toolCalls[idx]; !ok {
					toolCalls[idx] = &message.ToolCall{}
					order = append(order, idx)
				}
				if tc.ID != "" {
					toolCalls[idx].ID = tc.ID
				}
				if tc.Function.Name != "" {
					toolCalls[idx].Name = tc.Function.Name
				}
				if tc.Function.Arguments != "" {
					argBuffers[idx] += tc.Function.Arguments
					var decoded map[string]any
					if json.Unmarshal([]byte(argBuffers[idx]), &decoded) == nil {
						toolCalls[idx].Args = decoded
					}
				}
			}

			if chunk.Choices[0].FinishReason != "" {
				switch chunk.Choices[0].FinishReason {
				case openai.FinishReasonToolCalls:
					agg.SetFinishReason(model.FinishReasonToolCalls)
				case openai.FinishReasonLength:
					agg.SetFinishReason(model.FinishReasonLength)
				default:
					agg.SetFinishReason(model.FinishReasonStop)
				}
			}
			if chunk.Usage != nil {
				agg.SetUsage(&model.Usage{
					PromptTokens:     chunk.Usage.PromptTokens,
					CompletionTokens: chunk.Usage.CompletionTokens,
					TotalTokens:      chunk.Usage.TotalTokens,
				})
			}
		}

		for _, idx := range order {
			tc := toolCalls[idx]
			if tc.ID == "" || tc.Name == "" {
				continue
			}
			for r, err := range agg.ProcessToolCall(*tc) {
				if !yield(r, err) {
					return
				}
			}
		}

		if final := agg.Close(); final != nil {
			yield(final, nil)
		}
	}
}

func (c *Client) buildRequest(req *model.Request, stream bool) openai.ChatCompletionRequest {
	chatReq := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Stream:    stream,
	}
	if c.temperature != nil {
		chatReq.Temperature = float32(*c.temperature)
	}

	if req.SystemInstruction != "" {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}

	for _, msg := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, encodeMessages(msg)...)
	}

	for _, t := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.ArgsSchemaJSON(),
			},
		})
	}

	return chatReq
}

func encodeMessages(m message.Message) []openai.ChatCompletionMessage {
	switch v := m.(type) {
	case message.SystemMessage:
		return []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: v.Content}}

	case message.UserMessage:
		return []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: v.Content}}

	case message.AssistantMessage:
		msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: v.Content}
		for _, tc := range v.ToolCalls {
			args, _ := json.Marshal(tc.Args)
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(args),
				},
			})
		}
		return []openai.ChatCompletionMessage{msg}

	case message.ToolResultMessage:
		return []openai.ChatCompletionMessage{{
			Role:       openai.ChatMessageRoleTool,
			Content:    v.Content,
			ToolCallID: v.CallID,
		}}
	}
	return nil
}

func parseChoice(choice openai.ChatCompletionChoice, usage openai.Usage) *model.Response {
	result := &model.Response{
		Content:      choice.Message.Content,
		Partial:      false,
		TurnComplete: true,
		Usage: &model.Usage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
		FinishReason: model.FinishReasonStop,
	}

	switch choice.FinishReason {
	case openai.FinishReasonToolCalls:
		result.FinishReason = model.FinishReasonToolCalls
	case openai.FinishReasonLength:
		result.FinishReason = model.FinishReasonLength
	}

	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		result.ToolCalls = append(result.ToolCalls, message.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}

	return result
}

var _ model.LLM = (*Client)(nil)
