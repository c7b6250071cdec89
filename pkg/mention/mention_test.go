package mention_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kadirpekel/agentrt/pkg/mention"
)

func TestParse_OrdersByPosition(t *testing.T) {
	mentions := mention.Parse("see #docs/readme.md then ask @research.analyst")
	require := assert.New(t)
	require.Len(mentions, 2)
	require.Equal(mention.KindPath, mentions[0].Kind)
	require.Equal("docs/readme.md", mentions[0].Value)
	require.Equal(mention.KindAgent, mentions[1].Kind)
	require.Equal("research.analyst", mentions[1].Value)
}

func TestNames_Dedupes(t *testing.T) {
	names := mention.Names("@bot hello @bot again @other")
	assert.Equal(t, []string{"bot", "other"}, names)
}

func TestPaths_IgnoresEmailLikeText(t *testing.T) {
	paths := mention.Paths("contact user@example.com for details")
	assert.Empty(t, paths)
}

func TestParse_Idempotent(t *testing.T) {
	text := "@alpha review #a/b.go and @beta too"
	first := mention.Parse(text)
	second := mention.Parse(text)
	assert.Equal(t, first, second)
}
