package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/message"
)

func TestValidateInvariant_ValidConversation(t *testing.T) {
	msgs := []message.Message{
		message.SystemMessage{Content: "you are an agent"},
		message.UserMessage{Content: "list files"},
		message.AssistantMessage{
			ToolCalls: []message.ToolCall{{ID: "c1", Name: "list_files", Args: map[string]any{}}},
		},
		message.ToolResultMessage{CallID: "c1", Name: "list_files", Content: "a.go b.go"},
		message.AssistantMessage{Content: "you have two files"},
	}
	require.NoError(t, message.ValidateInvariant(msgs))
}

func TestValidateInvariant_UnansweredCall(t *testing.T) {
	msgs := []message.Message{
		message.UserMessage{Content: "run it"},
		message.AssistantMessage{
			ToolCalls: []message.ToolCall{{ID: "c1", Name: "run"}},
		},
	}
	err := message.ValidateInvariant(msgs)
	require.Error(t, err)
	var unanswered *message.ErrUnansweredToolCall
	assert.ErrorAs(t, err, &unanswered)
	assert.Equal(t, "c1", unanswered.CallID)
}

func TestValidateInvariant_OrphanResult(t *testing.T) {
	msgs := []message.Message{
		message.ToolResultMessage{CallID: "ghost", Content: "nope"},
	}
	err := message.ValidateInvariant(msgs)
	require.Error(t, err)
	var orphan *message.ErrOrphanToolResult
	assert.ErrorAs(t, err, &orphan)
}

func TestValidateInvariant_InterleavedCallBreaksInvariant(t *testing.T) {
	msgs := []message.Message{
		message.AssistantMessage{ToolCalls: []message.ToolCall{{ID: "c1", Name: "run"}}},
		message.UserMessage{Content: "are you done?"},
		message.ToolResultMessage{CallID: "c1", Name: "run", Content: "done"},
	}
	require.Error(t, message.ValidateInvariant(msgs))
}

func TestPruneUnanswered_DropsDanglingCall(t *testing.T) {
	msgs := []message.Message{
		message.UserMessage{Content: "go"},
		message.AssistantMessage{
			ToolCalls: []message.ToolCall{{ID: "c1", Name: "a"}, {ID: "c2", Name: "b"}},
		},
		message.ToolResultMessage{CallID: "c1", Name: "a", Content: "ok"},
	}

	pruned := message.PruneUnanswered(msgs)
	require.NoError(t, message.ValidateInvariant(pruned))

	am, ok := pruned[1].(message.AssistantMessage)
	require.True(t, ok)
	require.Len(t, am.ToolCalls, 1)
	assert.Equal(t, "c1", am.ToolCalls[0].ID)
}

func TestPruneUnanswered_DropsEmptyAssistantTurn(t *testing.T) {
	msgs := []message.Message{
		message.AssistantMessage{ToolCalls: []message.ToolCall{{ID: "c1", Name: "a"}}},
	}
	pruned := message.PruneUnanswered(msgs)
	assert.Empty(t, pruned)
}
