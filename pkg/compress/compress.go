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

// Package compress partitions conversation history into system/recent/
// middle/old segments and compresses the non-recent portion, either by
// model-assisted summarization (compact/summarize strategies) or, when
// that fails, by fallback truncation. All operations preserve I-MSG.
package compress

import (
	"context"
	"fmt"

	"github.com/kadirpekel/agentrt/pkg/message"
)

// Strategy selects how aggressively non-recent history is compressed.
type Strategy string

const (
	// StrategyCompact preserves tool calls, file paths, error recoveries,
	// and TODO state — a detailed summary.
	StrategyCompact Strategy = "compact"
	// StrategySummarize keeps only the gist (~200 chars), for when
	// StrategyCompact's output is itself too large to help.
	StrategySummarize Strategy = "summarize"
)

const (
	// DefaultMaxCompletionTokens bounds a single summarization call's
	// output, preventing a runaway summary from defeating the point.
	DefaultMaxCompletionTokens = 1440
	// DefaultRecentMessageFraction is the fraction of the context window
	// recent messages are allowed to occupy when no configured count is
	// supplied.
	DefaultRecentMessageFraction = 0.15
	// DefaultMiddleMessageFraction is the analogous fraction for the
	// "compact" strategy's middle partition.
	DefaultMiddleMessageFraction = 0.30
	// DefaultSummarizeCycle is how many consecutive compactions trigger
	// an escalation to the more aggressive summarize strategy.
	DefaultSummarizeCycle = 3
	// DefaultMaxHistoryMessages bounds the fallback truncation's recent
	// window when summarization itself fails.
	DefaultMaxHistoryMessages = 100
	// CompactionRatioEscalationThreshold: if the previous compression's
	// output/input byte ratio exceeded this, escalate to summarize.
	CompactionRatioEscalationThreshold = 0.4
)

const (
	compactInstruction = "Summarize the following conversation segment concisely but preserve: " +
		"tool calls and their results, file paths touched, error recoveries, and any TODO state. " +
		"This summary replaces the original messages in the ongoing conversation."
	summarizeInstruction = "Summarize the following conversation segment in about 200 characters. " +
		"Keep only what was done and where; discard all other detail."
)

// Summarizer invokes a model to compress a message partition into a short
// text summary, bounded by maxCompletionTokens.
type Summarizer interface {
	Summarize(ctx context.Context, partition []message.Message, instruction string, maxCompletionTokens int) (string, error)
}

// Config tunes partition sizing and cycling behavior. Zero values fall
// back to the spec defaults.
type Config struct {
	ContextWindow       int
	RecentMessageCount  int
	MiddleMessageCount  int
	SummarizeCycle      int
	MaxCompletionTokens int
	MaxHistoryMessages  int
}

func (c Config) recentCount() int {
	if c.RecentMessageCount > 0 {
		return c.RecentMessageCount
	}
	if c.ContextWindow > 0 {
		// Rough heuristic: treat each message as ~50 tokens to turn a
		// token fraction into a message-count floor.
		return int(float64(c.ContextWindow) * DefaultRecentMessageFraction / 50)
	}
	return 10
}

func (c Config) middleCount() int {
	if c.MiddleMessageCount > 0 {
		return c.MiddleMessageCount
	}
	if c.ContextWindow > 0 {
		return int(float64(c.ContextWindow) * DefaultMiddleMessageFraction / 50)
	}
	return 20
}

func (c Config) summarizeCycle() int {
	if c.SummarizeCycle > 0 {
		return c.SummarizeCycle
	}
	return DefaultSummarizeCycle
}

func (c Config) maxCompletionTokens() int {
	if c.MaxCompletionTokens > 0 {
		return c.MaxCompletionTokens
	}
	return DefaultMaxCompletionTokens
}

func (c Config) maxHistoryMessages() int {
	if c.MaxHistoryMessages > 0 {
		return c.MaxHistoryMessages
	}
	return DefaultMaxHistoryMessages
}

// Partition is the result of splitting a message sequence for compression.
type Partition struct {
	System []message.Message
	Recent []message.Message
	Middle []message.Message
	Old    []message.Message
}

// ResolveStrategy applies the consecutive-compaction escalation rule:
// switch compact to summarize when the previous compression's byte ratio
// exceeded the escalation threshold, or the Nth consecutive compaction
// (summarize_cycle) has been reached.
func ResolveStrategy(requested Strategy, compactCount int, previousRatio float64, cfg Config) Strategy {
	if requested != StrategyCompact {
		return requested
	}
	if previousRatio > CompactionRatioEscalationThreshold {
		return StrategySummarize
	}
	if compactCount > 0 && (compactCount+1)%cfg.summarizeCycle() == 0 {
		return StrategySummarize
	}
	return StrategyCompact
}

// Partitioning splits msgs per spec §4.4.2: system messages are always
// preserved, recent is grown minimally beyond its nominal count to avoid
// splitting an unanswered tool-call/tool-result pair, middle only exists
// for StrategyCompact.
func partitionMessages(msgs []message.Message, strategy Strategy, cfg Config) Partition {
	var system, rest []message.Message
	for _, m := range msgs {
		if m.Role() == message.RoleSystem {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	recentN := cfg.recentCount()
	if recentN > len(rest) {
		recentN = len(rest)
	}
	splitAt := growToPreserveInvariant(rest, len(rest)-recentN)

	recent := rest[splitAt:]
	head := rest[:splitAt]

	if strategy == StrategySummarize {
		return Partition{System: system, Recent: recent, Old: head}
	}

	middleN := cfg.middleCount()
	if middleN > len(head) {
		middleN = len(head)
	}
	middleStart := len(head) - middleN
	middleStart = growToPreserveInvariant(head, middleStart)

	return Partition{
		System: system,
		Recent: recent,
		Middle: head[middleStart:],
		Old:    head[:middleStart],
	}
}

// growToPreserveInvariant nudges a split index backward (toward 0) until
// it does not separate an AssistantMessage's tool calls from their
// ToolResultMessages, preserving I-MSG across the boundary.
func growToPreserveInvariant(msgs []message.Message, idx int) int {
	if idx <= 0 || idx >= len(msgs) {
		if idx < 0 {
			return 0
		}
		if idx > len(msgs) {
			return len(msgs)
		}
		return idx
	}

	for idx > 0 {
		if message.ValidateInvariant(msgs[idx:]) == nil {
			return idx
		}
		idx--
	}
	return 0
}

// Result is the outcome of a compression pass.
type Result struct {
	Messages     []message.Message
	Strategy     Strategy
	Truncated    bool
	InputBytes   int
	OutputBytes  int
}

// Ratio returns OutputBytes/InputBytes, used to decide whether the next
// compaction should escalate to summarize (see ResolveStrategy).
func (r Result) Ratio() float64 {
	if r.InputBytes == 0 {
		return 0
	}
	return float64(r.OutputBytes) / float64(r.InputBytes)
}

// Compress partitions msgs and summarizes the old/middle partitions via
// summarizer. On any summarization error it discards partial work and
// falls back to Truncate, which preserves I-MSG without calling the model.
func Compress(ctx context.Context, msgs []message.Message, strategy Strategy, summarizer Summarizer, cfg Config) (Result, error) {
	p := partitionMessages(msgs, strategy, cfg)
	inputBytes := totalBytes(msgs)

	instruction := compactInstruction
	if strategy == StrategySummarize {
		instruction = summarizeInstruction
	}

	var summaries []message.Message

	if len(p.Old) > 0 {
		text, err := summarizer.Summarize(ctx, p.Old, instruction, cfg.maxCompletionTokens())
		if err != nil {
			return Truncate(msgs, cfg), nil
		}
		summaries = append(summaries, message.SystemMessage{Content: "Previous conversation summary: " + text})
	}

	if len(p.Middle) > 0 {
		text, err := summarizer.Summarize(ctx, p.Middle, instruction, cfg.maxCompletionTokens())
		if err != nil {
			return Truncate(msgs, cfg), nil
		}
		summaries = append(summaries, message.SystemMessage{Content: "Conversation summary: " + text})
	}

	out := make([]message.Message, 0, len(p.System)+len(summaries)+len(p.Recent))
	out = append(out, p.System...)
	out = append(out, summaries...)
	out = append(out, p.Recent...)

	if err := message.ValidateInvariant(out); err != nil {
		return Result{}, fmt.Errorf("compress: compressed output violates message invariant: %w", err)
	}

	return Result{
		Messages:    out,
		Strategy:    strategy,
		InputBytes:  inputBytes,
		OutputBytes: totalBytes(out),
	}, nil
}

// Truncate is the fallback path: keep system messages plus the last
// max_history_messages, dropping any leading AssistantMessage whose tool
// calls are no longer fully answered within that window.
func Truncate(msgs []message.Message, cfg Config) Result {
	var system, rest []message.Message
	for _, m := range msgs {
		if m.Role() == message.RoleSystem {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	maxN := cfg.maxHistoryMessages()
	start := 0
	if len(rest) > maxN {
		start = len(rest) - maxN
	}
	start = growToPreserveInvariant(rest, start)
	recent := message.PruneUnanswered(rest[start:])

	out := make([]message.Message, 0, len(system)+len(recent))
	out = append(out, system...)
	out = append(out, recent...)

	return Result{
		Messages:    out,
		Truncated:   true,
		InputBytes:  totalBytes(msgs),
		OutputBytes: totalBytes(out),
	}
}

func totalBytes(msgs []message.Message) int {
	total := 0
	for _, m := range msgs {
		switch v := m.(type) {
		case message.SystemMessage:
			total += len(v.Content)
		case message.UserMessage:
			total += len(v.Content)
		case message.AssistantMessage:
			total += len(v.Content)
			for _, tc := range v.ToolCalls {
				total += len(tc.Name) + len(fmt.Sprint(tc.Args))
			}
		case message.ToolResultMessage:
			total += len(v.Content)
		}
	}
	return total
}
