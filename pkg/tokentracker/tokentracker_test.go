package tokentracker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/tokentracker"
)

func TestTracker_Classify(t *testing.T) {
	tr := tokentracker.NewTracker(1000)

	cases := []struct {
		tokens int
		want   tokentracker.Level
	}{
		{700, tokentracker.LevelNormal},
		{750, tokentracker.LevelInfo},
		{849, tokentracker.LevelInfo},
		{850, tokentracker.LevelWarning},
		{949, tokentracker.LevelWarning},
		{950, tokentracker.LevelCritical},
		{1000, tokentracker.LevelCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, tr.Classify(c.tokens), "tokens=%d", c.tokens)
	}
}

func TestLevel_RecommendedStrategy(t *testing.T) {
	assert.Equal(t, "", tokentracker.LevelNormal.RecommendedStrategy())
	assert.Equal(t, "compact", tokentracker.LevelInfo.RecommendedStrategy())
	assert.Equal(t, "compact", tokentracker.LevelWarning.RecommendedStrategy())
	assert.Equal(t, "summarize", tokentracker.LevelCritical.RecommendedStrategy())
}

func TestCounter_CachesEncodingAcrossInstances(t *testing.T) {
	c1, err := tokentracker.NewCounter("gpt-4")
	require.NoError(t, err)
	c2, err := tokentracker.NewCounter("gpt-4")
	require.NoError(t, err)

	assert.Equal(t, c1.Count("hello world"), c2.Count("hello world"))
	assert.Greater(t, c1.Count("a somewhat longer sentence with more tokens"), 0)
}

func TestCounter_FallsBackToCl100kBase(t *testing.T) {
	c, err := tokentracker.NewCounter("some-unrecognized-model-xyz")
	require.NoError(t, err)
	assert.Greater(t, c.Count("hello"), 0)
}
