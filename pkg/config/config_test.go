package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/config"
)

const sampleConfig = `
tools:
  core:
    now:
      category: utility
  optional:
    delegate_task:
      enabled: true
      available_to_subagent: false
hitl:
  global:
    risk_patterns:
      critical:
        patterns: ["rm\\s+-rf"]
        reason: "destructive shell command"
skills:
  core: ["general"]
  global:
    auto_load_on_file_upload: true
routing:
  models:
    base:
      id: claude-sonnet-4-20250514
      api_key: ${AGENTRT_CONFIG_TEST_KEY}
      context_window: 200000
context:
  warning_threshold: 0.8
  keep_recent_messages: 20
`

func writeSampleConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))
	return path
}

func TestLoad_ParsesAndExpandsEnv(t *testing.T) {
	os.Setenv("AGENTRT_CONFIG_TEST_KEY", "sk-test-123")
	defer os.Unsetenv("AGENTRT_CONFIG_TEST_KEY")

	path := writeSampleConfig(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Tools.IsCore("now"))
	assert.True(t, cfg.Tools.Optional["delegate_task"].IsEnabled())
	assert.Equal(t, "sk-test-123", cfg.Routing.Models[config.SlotBase].APIKey)
	assert.Equal(t, 0.8, cfg.Context.WarningThreshold)
	assert.Equal(t, 20, cfg.Context.KeepRecentMessages)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeSampleConfig(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Greater(t, cfg.Context.ForceCompactThreshold, cfg.Context.WarningThreshold)
	assert.Greater(t, cfg.Context.SummarizeCycle, 0)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidHITLPatternFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	bad := `
hitl:
  global:
    risk_patterns:
      high:
        patterns: ["("]
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
