package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/config"
)

func TestModelRoutingConfig_ResolveFallsBackToBase(t *testing.T) {
	cfg := config.ModelRoutingConfig{
		Models: map[config.ModelSlot]config.ModelSlotConfig{
			config.SlotBase: {ID: "claude-sonnet-4-20250514", ContextWindow: 200000},
		},
	}

	slot, err := cfg.Resolve(config.SlotReason)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", slot.ID)
}

func TestModelRoutingConfig_ResolveErrorsWithNoBase(t *testing.T) {
	cfg := config.ModelRoutingConfig{}
	_, err := cfg.Resolve(config.SlotCode)
	assert.Error(t, err)
}

func TestModelSlotConfig_SetDefaultsExpandsEnv(t *testing.T) {
	os.Setenv("AGENTRT_TEST_API_KEY", "secret-value")
	defer os.Unsetenv("AGENTRT_TEST_API_KEY")

	slot := config.ModelSlotConfig{APIKey: "${AGENTRT_TEST_API_KEY}"}
	slot.SetDefaults()
	assert.Equal(t, "secret-value", slot.APIKey)
}

func TestContextConfig_SetDefaultsFillsZeroValues(t *testing.T) {
	var cfg config.ContextConfig
	cfg.SetDefaults()

	assert.Greater(t, cfg.WarningThreshold, 0.0)
	assert.Greater(t, cfg.ForceCompactThreshold, cfg.WarningThreshold)
	assert.Greater(t, cfg.CompactMiddleMessages, 0)
	assert.Greater(t, cfg.SummarizeCycle, 0)
}

func TestContextConfig_CompressConfigCarriesSizing(t *testing.T) {
	cfg := config.ContextConfig{KeepRecentMessages: 12, CompactMiddleMessages: 40, SummarizeCycle: 5}
	cc := cfg.CompressConfig(100000, 2000)

	assert.Equal(t, 100000, cc.ContextWindow)
	assert.Equal(t, 12, cc.RecentMessageCount)
	assert.Equal(t, 40, cc.MiddleMessageCount)
	assert.Equal(t, 5, cc.SummarizeCycle)
	assert.Equal(t, 2000, cc.MaxCompletionTokens)
}
