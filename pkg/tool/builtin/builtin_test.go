package builtin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/compress"
	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/subagent"
	"github.com/kadirpekel/agentrt/pkg/tool/builtin"
)

func TestNow_ReturnsRFC3339(t *testing.T) {
	out, err := builtin.Now().Run(context.Background(), nil)
	require.NoError(t, err)
	_, err = time.Parse(time.RFC3339, out.(string))
	assert.NoError(t, err)
}

func TestAskHuman_ReturnsInputRequiredError(t *testing.T) {
	_, err := builtin.AskHuman().Run(context.Background(), map[string]any{"question": "which city?"})
	var needed *builtin.ErrInputRequired
	require.True(t, errors.As(err, &needed))
	assert.Equal(t, "which city?", needed.Question)
	assert.True(t, needed.Required)
}

func TestAskHuman_RequiresQuestion(t *testing.T) {
	_, err := builtin.AskHuman().Run(context.Background(), map[string]any{})
	require.Error(t, err)
}

func TestTodoWrite_EnforcesSingleInProgress(t *testing.T) {
	s := &agentstate.AgentState{ContextID: "main"}
	ctx := agentstate.WithState(context.Background(), s)

	out, err := builtin.TodoWrite().Run(ctx, map[string]any{
		"todos": []any{
			map[string]any{"content": "a", "status": "in_progress"},
			map[string]any{"content": "b", "status": "in_progress"},
		},
	})
	require.NoError(t, err)
	result := out.(map[string]any)
	assert.False(t, result["ok"].(bool))
}

func TestTodoWrite_ThenTodoRead(t *testing.T) {
	s := &agentstate.AgentState{ContextID: "main"}
	ctx := agentstate.WithState(context.Background(), s)

	_, err := builtin.TodoWrite().Run(ctx, map[string]any{
		"todos": []any{map[string]any{"content": "a", "status": "pending"}},
	})
	require.NoError(t, err)

	out, err := builtin.TodoRead().Run(ctx, nil)
	require.NoError(t, err)
	result := out.(map[string]any)
	assert.True(t, result["ok"].(bool))
	summary := result["summary"].(map[string]int)
	assert.Equal(t, 1, summary["pending"])
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, partition []message.Message, instruction string, maxCompletionTokens int) (string, error) {
	return "summary", nil
}

func TestCompactContext_UpdatesStateAndResetsTokenCounters(t *testing.T) {
	s := &agentstate.AgentState{
		ContextID:              "main",
		CumulativePromptTokens: 500,
		Messages: []message.Message{
			message.UserMessage{Content: "a"},
			message.AssistantMessage{Content: "b"},
			message.UserMessage{Content: "c"},
		},
	}
	ctx := agentstate.WithState(context.Background(), s)

	out, err := builtin.CompactContext(stubSummarizer{}, compress.Config{}).Run(ctx, map[string]any{"strategy": "summarize"})
	require.NoError(t, err)
	result := out.(map[string]any)
	assert.True(t, result["ok"].(bool))
	assert.Equal(t, 0, s.CumulativePromptTokens)
	assert.Equal(t, 1, s.CompactCount)
}

func TestDelegateTask_RequiresState(t *testing.T) {
	run := subagent.Runner(func(ctx context.Context, s *agentstate.AgentState) (*agentstate.AgentState, error) {
		return s, nil
	})
	_, err := builtin.DelegateTask(run).Run(context.Background(), map[string]any{"task": "x"})
	require.Error(t, err)
}

func TestDelegateTask_RunsIsolated(t *testing.T) {
	run := subagent.Runner(func(ctx context.Context, s *agentstate.AgentState) (*agentstate.AgentState, error) {
		s.Messages = append(s.Messages, message.AssistantMessage{Content: "done with a fully complete answer here"})
		return s, nil
	})

	parent := &agentstate.AgentState{ContextID: "main"}
	ctx := agentstate.WithState(context.Background(), parent)

	out, err := builtin.DelegateTask(run).Run(ctx, map[string]any{"task": "investigate"})
	require.NoError(t, err)
	result := out.(subagent.Result)
	assert.True(t, result.OK)
}
