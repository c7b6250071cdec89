package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/compress"
	"github.com/kadirpekel/agentrt/pkg/graph"
	"github.com/kadirpekel/agentrt/pkg/message"
)

type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, partition []message.Message, instruction string, maxCompletionTokens int) (string, error) {
	return "summary", nil
}

func TestCompressorNode_SetsAutoCompressedThisRequest(t *testing.T) {
	node := graph.CompressorNode(stubSummarizer{}, compress.Config{}, nil, nil)
	s := &agentstate.AgentState{
		NeedsCompression: true,
		Messages: []message.Message{
			message.UserMessage{Content: "a"},
			message.AssistantMessage{Content: "b"},
			message.UserMessage{Content: "c"},
		},
	}

	_, err := node(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, s.AutoCompressedThisRequest)
	assert.False(t, s.NeedsCompression)
	assert.Equal(t, 1, s.CompactCount)
	assert.Equal(t, 0, s.CumulativePromptTokens)
}
