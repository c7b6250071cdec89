package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/approval"
	"github.com/kadirpekel/agentrt/pkg/config"
)

func TestHITLConfig_BuildEngineAppliesGlobalPatterns(t *testing.T) {
	cfg := config.HITLConfig{}
	cfg.Global.RiskPatterns = map[string]config.RiskPatternConfig{
		"critical": {Patterns: []string{`rm\s+-rf`}, Reason: "destructive shell command"},
	}

	engine, err := cfg.BuildEngine()
	require.NoError(t, err)

	decision := engine.Check("execute_command", map[string]any{"command": "rm -rf /tmp/x"})
	assert.True(t, decision.NeedsApproval)
	assert.Equal(t, approval.RiskCritical, decision.RiskLevel)
}

func TestHITLConfig_BuildEngineAppliesToolPatterns(t *testing.T) {
	cfg := config.HITLConfig{
		Tools: map[string]config.ToolHITLConfig{
			"web_request": {
				Patterns: map[string][]string{"high": {`169\.254\.`}},
				Actions:  map[string]string{"high": "possible SSRF to link-local address"},
			},
		},
	}

	engine, err := cfg.BuildEngine()
	require.NoError(t, err)

	decision := engine.Check("web_request", map[string]any{"url": "http://169.254.169.254/latest/meta-data"})
	assert.True(t, decision.NeedsApproval)
	assert.Equal(t, "possible SSRF to link-local address", decision.Reason)
}

func TestHITLConfig_BuildEngineRejectsInvalidPattern(t *testing.T) {
	cfg := config.HITLConfig{}
	cfg.Global.RiskPatterns = map[string]config.RiskPatternConfig{
		"high": {Patterns: []string{"("}},
	}

	_, err := cfg.BuildEngine()
	assert.Error(t, err)
}
