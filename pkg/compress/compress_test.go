package compress_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/compress"
	"github.com/kadirpekel/agentrt/pkg/message"
)

type stubSummarizer struct {
	text string
	err  error
}

func (s stubSummarizer) Summarize(_ context.Context, _ []message.Message, _ string, _ int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func buildConversation(n int) []message.Message {
	msgs := []message.Message{message.SystemMessage{Content: "you are a helpful agent"}}
	for i := 0; i < n; i++ {
		msgs = append(msgs, message.UserMessage{Content: "do thing"})
		msgs = append(msgs, message.AssistantMessage{
			Content:   "on it",
			ToolCalls: []message.ToolCall{{ID: "call-1", Name: "noop"}},
		})
		msgs = append(msgs, message.ToolResultMessage{CallID: "call-1", Name: "noop", Content: "done"})
	}
	return msgs
}

func TestCompress_PreservesMessageInvariant(t *testing.T) {
	msgs := buildConversation(30)
	cfg := compress.Config{RecentMessageCount: 5, MiddleMessageCount: 10}

	result, err := compress.Compress(context.Background(), msgs, compress.StrategyCompact, stubSummarizer{text: "summary of old work"}, cfg)
	require.NoError(t, err)

	require.NoError(t, message.ValidateInvariant(result.Messages))
	assert.Less(t, len(result.Messages), len(msgs))
}

func TestCompress_SummarizeStrategyHasNoMiddlePartition(t *testing.T) {
	msgs := buildConversation(20)
	cfg := compress.Config{RecentMessageCount: 5}

	result, err := compress.Compress(context.Background(), msgs, compress.StrategySummarize, stubSummarizer{text: "gist"}, cfg)
	require.NoError(t, err)
	require.NoError(t, message.ValidateInvariant(result.Messages))

	summaryCount := 0
	for _, m := range result.Messages {
		if sm, ok := m.(message.SystemMessage); ok && strings.Contains(sm.Content, "gist") {
			summaryCount++
		}
	}
	assert.Equal(t, 1, summaryCount, "summarize strategy should produce exactly one summary message (no separate middle)")
}

func TestCompress_FallsBackToTruncateOnSummarizerError(t *testing.T) {
	msgs := buildConversation(30)
	cfg := compress.Config{RecentMessageCount: 5, MaxHistoryMessages: 12}

	result, err := compress.Compress(context.Background(), msgs, compress.StrategyCompact, stubSummarizer{err: errors.New("model unavailable")}, cfg)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	require.NoError(t, message.ValidateInvariant(result.Messages))
}

func TestTruncate_PreservesInvariantAtBoundary(t *testing.T) {
	msgs := buildConversation(50)
	cfg := compress.Config{MaxHistoryMessages: 7}

	result := compress.Truncate(msgs, cfg)
	require.NoError(t, message.ValidateInvariant(result.Messages))
	assert.True(t, result.Truncated)
}

func TestTruncate_KeepsAllSystemMessages(t *testing.T) {
	msgs := append([]message.Message{
		message.SystemMessage{Content: "first"},
		message.SystemMessage{Content: "second"},
	}, buildConversation(20)...)
	cfg := compress.Config{MaxHistoryMessages: 5}

	result := compress.Truncate(msgs, cfg)
	systemCount := 0
	for _, m := range result.Messages {
		if m.Role() == message.RoleSystem {
			systemCount++
		}
	}
	assert.Equal(t, 3, systemCount)
}

func TestResolveStrategy_EscalatesOnHighPreviousRatio(t *testing.T) {
	cfg := compress.Config{}
	got := compress.ResolveStrategy(compress.StrategyCompact, 1, 0.5, cfg)
	assert.Equal(t, compress.StrategySummarize, got)
}

func TestResolveStrategy_EscalatesOnNthConsecutiveCompaction(t *testing.T) {
	cfg := compress.Config{SummarizeCycle: 3}
	got := compress.ResolveStrategy(compress.StrategyCompact, 2, 0.1, cfg)
	assert.Equal(t, compress.StrategySummarize, got)
}

func TestResolveStrategy_StaysCompactUnderThresholds(t *testing.T) {
	cfg := compress.Config{SummarizeCycle: 3}
	got := compress.ResolveStrategy(compress.StrategyCompact, 1, 0.1, cfg)
	assert.Equal(t, compress.StrategyCompact, got)
}

func TestResolveStrategy_PassesThroughNonCompactRequest(t *testing.T) {
	cfg := compress.Config{}
	got := compress.ResolveStrategy(compress.StrategySummarize, 0, 0, cfg)
	assert.Equal(t, compress.StrategySummarize, got)
}
