package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/model"
)

func TestGenerateConfig_CloneIsIndependent(t *testing.T) {
	temp := 0.5
	cfg := &model.GenerateConfig{
		Temperature:    &temp,
		StopSequences:  []string{"STOP"},
		ResponseSchema: map[string]any{"type": "object"},
		Metadata:       map[string]any{"nested": map[string]any{"a": 1}},
	}

	clone := cfg.Clone()
	*clone.Temperature = 0.9
	clone.StopSequences[0] = "MUTATED"
	clone.ResponseSchema["type"] = "mutated"
	clone.Metadata["nested"].(map[string]any)["a"] = 2

	assert.Equal(t, 0.5, *cfg.Temperature)
	assert.Equal(t, "STOP", cfg.StopSequences[0])
	assert.Equal(t, "object", cfg.ResponseSchema["type"])
	assert.Equal(t, 1, cfg.Metadata["nested"].(map[string]any)["a"])
}

func TestResponse_HasToolCalls(t *testing.T) {
	var nilResp *model.Response
	assert.False(t, nilResp.HasToolCalls())

	assert.False(t, (&model.Response{}).HasToolCalls())
	assert.True(t, (&model.Response{ToolCalls: []message.ToolCall{{Name: "x"}}}).HasToolCalls())
}

func TestResponse_ToMessage(t *testing.T) {
	resp := &model.Response{Content: "hi", ToolCalls: []message.ToolCall{{ID: "1", Name: "now"}}}
	msg := resp.ToMessage()
	assert.Equal(t, "hi", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "now", msg.ToolCalls[0].Name)
}

func TestStreamingAggregator_AccumulatesThenCloses(t *testing.T) {
	agg := model.NewStreamingAggregator()

	for range agg.ProcessTextDelta("hello ") {
	}
	for range agg.ProcessTextDelta("world") {
	}
	for range agg.ProcessToolCall(message.ToolCall{ID: "c1", Name: "now"}) {
	}
	agg.SetUsage(&model.Usage{PromptTokens: 10, CompletionTokens: 5})
	agg.SetFinishReason(model.FinishReasonToolCalls)

	final := agg.Close()
	require.NotNil(t, final)
	assert.Equal(t, "hello world", final.Content)
	assert.False(t, final.Partial)
	require.Len(t, final.ToolCalls, 1)
	assert.Equal(t, model.FinishReasonToolCalls, final.FinishReason)

	assert.Nil(t, model.NewStreamingAggregator().Close())
}
