package agentstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
)

func TestSetTodos_RejectsMultipleInProgress(t *testing.T) {
	s := &agentstate.AgentState{}
	err := s.SetTodos([]agentstate.Todo{
		{ID: "1", Status: agentstate.TodoInProgress},
		{ID: "2", Status: agentstate.TodoInProgress},
	})
	require.Error(t, err)
	var multi *agentstate.ErrMultipleInProgress
	assert.ErrorAs(t, err, &multi)
	assert.Empty(t, s.Todos, "rejected update must not mutate state")
}

func TestSetTodos_AllowsSingleInProgress(t *testing.T) {
	s := &agentstate.AgentState{}
	err := s.SetTodos([]agentstate.Todo{
		{ID: "1", Status: agentstate.TodoCompleted},
		{ID: "2", Status: agentstate.TodoInProgress},
		{ID: "3", Status: agentstate.TodoPending},
	})
	require.NoError(t, err)
	assert.Len(t, s.Todos, 3)
}

func TestIsSubagent(t *testing.T) {
	host := &agentstate.AgentState{ContextID: "ctx-abc"}
	sub := &agentstate.AgentState{ContextID: "subagent-abc", ParentContext: "ctx-abc"}
	assert.False(t, host.IsSubagent())
	assert.True(t, sub.IsSubagent())
}

func TestBudgetExhausted(t *testing.T) {
	s := &agentstate.AgentState{Loops: 99, MaxLoops: 100}
	assert.False(t, s.BudgetExhausted())
	s.Loops = 100
	assert.True(t, s.BudgetExhausted())
}
