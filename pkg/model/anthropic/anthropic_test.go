package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/message"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestEncodeMessages_SendsSystemAsSeparateUserMessage(t *testing.T) {
	msgs := []message.Message{
		message.SystemMessage{Content: "be terse"},
		message.UserMessage{Content: "hello"},
	}

	encoded, err := encodeMessages(msgs)
	require.NoError(t, err)
	require.Len(t, encoded, 2)
}

func TestEncodeMessages_RejectsToolResultWithoutCallID(t *testing.T) {
	msgs := []message.Message{
		message.ToolResultMessage{Content: "oops"},
	}

	_, err := encodeMessages(msgs)
	require.Error(t, err)
}

func TestEncodeMessages_CarriesToolCallsAndResults(t *testing.T) {
	msgs := []message.Message{
		message.UserMessage{Content: "search for eggs"},
		message.AssistantMessage{ToolCalls: []message.ToolCall{{ID: "c1", Name: "search", Args: map[string]any{"q": "eggs"}}}},
		message.ToolResultMessage{CallID: "c1", Content: "found 3"},
	}

	encoded, err := encodeMessages(msgs)
	require.NoError(t, err)
	assert.Len(t, encoded, 3)
}
