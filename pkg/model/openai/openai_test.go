package openai

import (
	"encoding/json"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/message"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestEncodeMessages_PreservesToolCallRoundTrip(t *testing.T) {
	msgs := []message.Message{
		message.UserMessage{Content: "find eggs"},
		message.AssistantMessage{
			Content:   "",
			ToolCalls: []message.ToolCall{{ID: "call_123", Name: "search", Args: map[string]any{"query": "eggs"}}},
		},
		message.ToolResultMessage{CallID: "call_123", Name: "search", Content: "3 results found"},
	}

	var encoded []openai.ChatCompletionMessage
	for _, m := range msgs {
		encoded = append(encoded, encodeMessages(m)...)
	}

	require.Len(t, encoded, 3)
	assert.Equal(t, openai.ChatMessageRoleUser, encoded[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, encoded[1].Role)
	require.Len(t, encoded[1].ToolCalls, 1)
	assert.Equal(t, "search", encoded[1].ToolCalls[0].Function.Name)

	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(encoded[1].ToolCalls[0].Function.Arguments), &args))
	assert.Equal(t, "eggs", args["query"])

	assert.Equal(t, openai.ChatMessageRoleTool, encoded[2].Role)
	assert.Equal(t, "call_123", encoded[2].ToolCallID)
}

func TestParseChoice_MapsToolCallsAndFinishReason(t *testing.T) {
	choice := openai.ChatCompletionChoice{
		Message: openai.ChatCompletionMessage{
			Content: "",
			ToolCalls: []openai.ToolCall{
				{ID: "call_1", Type: openai.ToolTypeFunction, Function: openai.FunctionCall{Name: "now", Arguments: `{}`}},
			},
		},
		FinishReason: openai.FinishReasonToolCalls,
	}

	resp := parseChoice(choice, openai.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12})
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "now", resp.ToolCalls[0].Name)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
}
