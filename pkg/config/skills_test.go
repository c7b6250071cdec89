package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kadirpekel/agentrt/pkg/config"
)

func TestSkillsConfig_AutoLoadForMatchesExtension(t *testing.T) {
	cfg := config.SkillsConfig{
		Optional: map[string]config.OptionalSkillConfig{
			"pdf-reader": {AutoLoadOnFileTypes: []string{".pdf"}},
			"csv-tools":  {AutoLoadOnFileTypes: []string{".csv"}},
		},
	}
	cfg.Global.AutoLoadOnFileUpload = true

	assert.ElementsMatch(t, []string{"pdf-reader"}, cfg.AutoLoadFor("report.pdf"))
}

func TestSkillsConfig_AutoLoadForDisabledGlobally(t *testing.T) {
	cfg := config.SkillsConfig{
		Optional: map[string]config.OptionalSkillConfig{
			"pdf-reader": {AutoLoadOnFileTypes: []string{".pdf"}},
		},
	}

	assert.Empty(t, cfg.AutoLoadFor("report.pdf"))
}

func TestSkillsConfig_AutoLoadForNoMatch(t *testing.T) {
	cfg := config.SkillsConfig{
		Optional: map[string]config.OptionalSkillConfig{
			"pdf-reader": {AutoLoadOnFileTypes: []string{".pdf"}},
		},
	}
	cfg.Global.AutoLoadOnFileUpload = true

	assert.Empty(t, cfg.AutoLoadFor("notes.txt"))
}
