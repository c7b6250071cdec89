package subagent_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/subagent"
)

func TestDelegate_BuildsIsolatedChildState(t *testing.T) {
	var seenContextID string
	run := func(ctx context.Context, s *agentstate.AgentState) (*agentstate.AgentState, error) {
		seenContextID = s.ContextID
		s.Messages = append(s.Messages, message.AssistantMessage{Content: strings.Repeat("x", 500)})
		s.Loops = 3
		return s, nil
	}

	parent := &agentstate.AgentState{ContextID: "main", WorkspacePath: "/ws"}
	result := subagent.Delegate(context.Background(), run, parent, "find the bug", 10)

	require.True(t, result.OK)
	assert.True(t, strings.HasPrefix(seenContextID, "subagent-"))
	assert.Equal(t, seenContextID, result.ContextID)
	assert.Equal(t, 3, result.Loops)
	assert.Len(t, result.Result, 500)
}

func TestDelegate_ContinuesOnShortReply(t *testing.T) {
	calls := 0
	run := func(ctx context.Context, s *agentstate.AgentState) (*agentstate.AgentState, error) {
		calls++
		if calls == 1 {
			s.Messages = append(s.Messages, message.AssistantMessage{Content: "ok"})
			return s, nil
		}
		s.Messages = append(s.Messages, message.AssistantMessage{Content: "final complete answer"})
		return s, nil
	}

	parent := &agentstate.AgentState{ContextID: "main"}
	result := subagent.Delegate(context.Background(), run, parent, "task", 0)

	require.True(t, result.OK)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "final complete answer", result.Result)
}

func TestDelegate_PropagatesRunError(t *testing.T) {
	run := func(ctx context.Context, s *agentstate.AgentState) (*agentstate.AgentState, error) {
		return nil, assert.AnError
	}

	result := subagent.Delegate(context.Background(), run, &agentstate.AgentState{}, "task", 5)
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Error)
}
