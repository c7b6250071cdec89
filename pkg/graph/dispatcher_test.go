package graph_test

import (
	"context"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/approval"
	"github.com/kadirpekel/agentrt/pkg/graph"
	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/tool"
	"github.com/kadirpekel/agentrt/pkg/tool/builtin"
)

type fakeTool struct {
	name string
	out  any
	err  error
}

func (f *fakeTool) Name() string                     { return f.name }
func (f *fakeTool) Description() string              { return "fake" }
func (f *fakeTool) ArgsSchema() *jsonschema.Schema    { return nil }
func (f *fakeTool) ArgsSchemaJSON() map[string]any    { return map[string]any{"type": "object"} }
func (f *fakeTool) Metadata() tool.Metadata           { return tool.Metadata{Risk: tool.RiskLow, AvailableToSubagent: true} }
func (f *fakeTool) Run(ctx context.Context, args map[string]any) (any, error) {
	return f.out, f.err
}

func newState(toolCall message.ToolCall) *agentstate.AgentState {
	return &agentstate.AgentState{
		Messages: []message.Message{message.AssistantMessage{ToolCalls: []message.ToolCall{toolCall}}},
	}
}

func TestDispatcherNode_RunsToolAndAppendsResult(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, reg.RegisterEnabled(&fakeTool{name: "now", out: "2026-01-01T00:00:00Z"}))

	node := graph.DispatcherNode(reg, approval.NewEngine(), nil, nil)
	s := newState(message.ToolCall{ID: "1", Name: "now"})

	result, err := node(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, result.Interrupt)

	tr := s.Messages[len(s.Messages)-1].(message.ToolResultMessage)
	assert.Equal(t, "1", tr.CallID)
	assert.False(t, tr.IsError)
}

func TestDispatcherNode_UnknownToolProducesErrorResult(t *testing.T) {
	reg := tool.NewRegistry()
	node := graph.DispatcherNode(reg, approval.NewEngine(), nil, nil)
	s := newState(message.ToolCall{ID: "1", Name: "missing"})

	_, err := node(context.Background(), s)
	require.NoError(t, err)

	tr := s.Messages[len(s.Messages)-1].(message.ToolResultMessage)
	assert.True(t, tr.IsError)
}

func TestDispatcherNode_ApprovalRequiredSuspends(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, reg.RegisterEnabled(&fakeTool{name: "danger", out: "ok"}))

	engine := approval.NewEngine()
	engine.RegisterCustomChecker("danger", func(args map[string]any) approval.Decision {
		return approval.Decision{NeedsApproval: true, Reason: "risky", RiskLevel: approval.RiskHigh}
	})

	node := graph.DispatcherNode(reg, engine, nil, nil)
	s := newState(message.ToolCall{ID: "1", Name: "danger"})

	result, err := node(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, result.Interrupt)
	assert.Equal(t, graph.KindToolApproval, result.Interrupt.Kind)
	assert.Equal(t, "1", s.PendingCallID)
}

func TestDispatcherNode_AskHumanSuspendsWithQuestion(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, reg.RegisterEnabled(builtin.AskHuman()))

	node := graph.DispatcherNode(reg, approval.NewEngine(), nil, nil)
	s := newState(message.ToolCall{ID: "1", Name: "ask_human", Args: map[string]any{"question": "which city?"}})

	result, err := node(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, result.Interrupt)
	assert.Equal(t, graph.KindUserInput, result.Interrupt.Kind)

	payload := result.Interrupt.Payload.(graph.UserInputRequest)
	assert.Equal(t, "which city?", payload.Question)
}

func TestDispatcherNode_ResumeApproveRunsToolForReal(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, reg.RegisterEnabled(&fakeTool{name: "danger", out: "done"}))

	engine := approval.NewEngine()
	engine.RegisterCustomChecker("danger", func(args map[string]any) approval.Decision {
		return approval.Decision{NeedsApproval: true}
	})

	node := graph.DispatcherNode(reg, engine, nil, nil)
	s := newState(message.ToolCall{ID: "1", Name: "danger"})

	result, err := node(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, result.Interrupt)

	s.ResumeValue = "approve"
	s.ResumeProvided = true
	result, err = node(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, result.Interrupt)

	tr := s.Messages[len(s.Messages)-1].(message.ToolResultMessage)
	assert.False(t, tr.IsError)
	assert.Equal(t, "done", tr.Content)
}

func TestDispatcherNode_ResumeRejectProducesErrorResult(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, reg.RegisterEnabled(&fakeTool{name: "danger", out: "done"}))

	engine := approval.NewEngine()
	engine.RegisterCustomChecker("danger", func(args map[string]any) approval.Decision {
		return approval.Decision{NeedsApproval: true}
	})

	node := graph.DispatcherNode(reg, engine, nil, nil)
	s := newState(message.ToolCall{ID: "1", Name: "danger"})

	_, err := node(context.Background(), s)
	require.NoError(t, err)

	s.ResumeValue = "reject"
	s.ResumeProvided = true
	result, err := node(context.Background(), s)
	require.NoError(t, err)
	assert.Nil(t, result.Interrupt)

	tr := s.Messages[len(s.Messages)-1].(message.ToolResultMessage)
	assert.True(t, tr.IsError)
}
