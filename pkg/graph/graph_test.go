package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/graph"
	"github.com/kadirpekel/agentrt/pkg/message"
)

func countingNode(name string, calls *[]string) graph.Node {
	return func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		*calls = append(*calls, name)
		return graph.NodeResult{}, nil
	}
}

func TestRun_FollowsRoutingToEnd(t *testing.T) {
	var calls []string
	planner := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		calls = append(calls, "planner")
		s.Messages = append(s.Messages, message.AssistantMessage{Content: "done"})
		return graph.NodeResult{}, nil
	}
	dispatcher := countingNode("dispatcher", &calls)
	compressor := countingNode("compressor", &calls)

	g := graph.New(planner, compressor, dispatcher, graph.RoutePlanner, graph.RouteDispatcher)
	s := &agentstate.AgentState{MaxLoops: 10}

	interrupt, err := g.Run(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Nil(t, interrupt)
	assert.Equal(t, []string{"planner"}, calls)
}

func TestRun_RoutesToDispatcherOnToolCalls(t *testing.T) {
	var calls []string
	first := true
	planner := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		calls = append(calls, "planner")
		if first {
			first = false
			s.Messages = append(s.Messages, message.AssistantMessage{
				Content:   "",
				ToolCalls: []message.ToolCall{{ID: "1", Name: "now"}},
			})
			return graph.NodeResult{}, nil
		}
		s.Messages = append(s.Messages, message.AssistantMessage{Content: "done"})
		return graph.NodeResult{}, nil
	}
	dispatcher := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		calls = append(calls, "dispatcher")
		s.Messages = append(s.Messages, message.ToolResultMessage{CallID: "1", Name: "now", Content: "ok"})
		return graph.NodeResult{}, nil
	}
	compressor := countingNode("compressor", &calls)

	g := graph.New(planner, compressor, dispatcher, graph.RoutePlanner, graph.RouteDispatcher)
	s := &agentstate.AgentState{MaxLoops: 10}

	_, err := g.Run(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"planner", "dispatcher", "planner"}, calls)
}

func TestRun_BudgetExhaustedEndsWithSyntheticMessage(t *testing.T) {
	planner := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		s.Messages = append(s.Messages, message.AssistantMessage{
			ToolCalls: []message.ToolCall{{ID: "1", Name: "now"}},
		})
		return graph.NodeResult{}, nil
	}
	dispatcher := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		s.Messages = append(s.Messages, message.ToolResultMessage{CallID: "1", Name: "now", Content: "ok"})
		return graph.NodeResult{}, nil
	}
	compressor := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		return graph.NodeResult{}, nil
	}

	g := graph.New(planner, compressor, dispatcher, graph.RoutePlanner, graph.RouteDispatcher)
	s := &agentstate.AgentState{MaxLoops: 1}

	_, err := g.Run(context.Background(), s, nil)
	require.NoError(t, err)

	last := s.Messages[len(s.Messages)-1].(message.AssistantMessage)
	assert.Contains(t, last.Content, "loop budget exhausted")
}

func TestRun_InterruptSuspendsAndResumeContinues(t *testing.T) {
	asked := false
	planner := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		if !asked {
			s.Messages = append(s.Messages, message.AssistantMessage{
				ToolCalls: []message.ToolCall{{ID: "1", Name: "ask_human"}},
			})
			return graph.NodeResult{}, nil
		}
		s.Messages = append(s.Messages, message.AssistantMessage{Content: "done"})
		return graph.NodeResult{}, nil
	}
	dispatcher := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		if !asked {
			asked = true
			return graph.NodeResult{Interrupt: &graph.Interrupt{Kind: graph.KindUserInput}}, nil
		}
		s.Messages = append(s.Messages, message.ToolResultMessage{CallID: "1", Name: "ask_human", Content: "answer"})
		return graph.NodeResult{}, nil
	}
	compressor := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		return graph.NodeResult{}, nil
	}

	g := graph.New(planner, compressor, dispatcher, graph.RoutePlanner, graph.RouteDispatcher)
	s := &agentstate.AgentState{MaxLoops: 10}

	interrupt, err := g.Run(context.Background(), s, nil)
	require.NoError(t, err)
	require.NotNil(t, interrupt)
	assert.Equal(t, graph.NodeDispatcher, s.PendingNode)

	interrupt, err = g.Resume(context.Background(), s, "some answer", nil)
	require.NoError(t, err)
	assert.Nil(t, interrupt)
	assert.Equal(t, "", s.PendingNode)
}

func TestRun_EmitsSnapshotsPerNode(t *testing.T) {
	planner := func(ctx context.Context, s *agentstate.AgentState) (graph.NodeResult, error) {
		s.Messages = append(s.Messages, message.AssistantMessage{Content: "done"})
		return graph.NodeResult{}, nil
	}
	dispatcher := countingNode("dispatcher", &[]string{})
	compressor := countingNode("compressor", &[]string{})

	g := graph.New(planner, compressor, dispatcher, graph.RoutePlanner, graph.RouteDispatcher)
	s := &agentstate.AgentState{MaxLoops: 10}

	snaps := make(chan graph.Snapshot, 4)
	_, err := g.Run(context.Background(), s, snaps)
	require.NoError(t, err)
	close(snaps)

	var names []string
	for snap := range snaps {
		names = append(names, snap.NodeName)
	}
	assert.Equal(t, []string{"planner"}, names)
}
