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

package main

import (
	"context"
	"fmt"

	"github.com/kadirpekel/agentrt/pkg/compress"
	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/model"
)

// llmSummarizer adapts a model.LLM into compress.Summarizer, the same
// system/user-prompt shape the teacher's SummarizationService builds in
// pkg/agent/summarization.go, condensed to this runtime's single-shot
// non-streaming GenerateContent call.
type llmSummarizer struct {
	llm model.LLM
}

func newLLMSummarizer(llm model.LLM) compress.Summarizer {
	return &llmSummarizer{llm: llm}
}

const summarizationSystemPrompt = `You are a conversation summarization assistant. Produce a concise, ` +
	`accurate summary of the conversation below. Preserve key facts, decisions, action items, and any ` +
	`unresolved questions. Use clear, direct prose, not bullet points, aiming for well under half the ` +
	`original length while keeping everything load-bearing.`

func (s *llmSummarizer) Summarize(ctx context.Context, partition []message.Message, instruction string, maxCompletionTokens int) (string, error) {
	prompt := instruction
	if prompt == "" {
		prompt = "Summarize the conversation so far."
	}

	msgs := append(append([]message.Message{}, partition...), message.UserMessage{Content: prompt})
	req := &model.Request{
		Messages:          msgs,
		SystemInstruction: summarizationSystemPrompt,
		Config:            &model.GenerateConfig{MaxTokens: maxCompletionTokens},
	}

	var resp *model.Response
	for r, err := range s.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", fmt.Errorf("summarizer: generate content: %w", err)
		}
		resp = r
	}
	if resp == nil {
		return "", fmt.Errorf("summarizer: model returned no response")
	}
	return resp.Content, nil
}
