// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the runtime's YAML configuration documents —
// tools, HITL rules, skills, and model routing/context sizing — applying
// ${VAR} environment expansion and sane defaults the way the teacher's own
// config loader does, minus the agent/server/database vocabulary this
// runtime has no use for.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document: spec.md §6.4's four
// documents folded into one file for a single runtime instance to load.
type Config struct {
	Tools   ToolsConfig        `yaml:"tools,omitempty"`
	HITL    HITLConfig         `yaml:"hitl,omitempty"`
	Skills  SkillsConfig       `yaml:"skills,omitempty"`
	Routing ModelRoutingConfig `yaml:"routing,omitempty"`
	Context ContextConfig      `yaml:"context,omitempty"`
}

// SetDefaults fills the zero-valued fields of every sub-document,
// matching the teacher's per-struct SetDefaults convention.
func (c *Config) SetDefaults() {
	c.Context.SetDefaults()
	for slot, mc := range c.Routing.Models {
		mc.SetDefaults()
		c.Routing.Models[slot] = mc
	}
}

// Validate checks the loaded config for structural problems a loader
// should fail fast on, rather than surfacing as a confusing runtime error
// much later.
func (c *Config) Validate() error {
	if _, err := c.HITL.BuildEngine(); err != nil {
		return fmt.Errorf("config: invalid hitl rules: %w", err)
	}
	return nil
}

// Load reads path, expands ${VAR}/$VAR environment references throughout
// the document (via ExpandEnvVarsInData, so a model's api_key or a tool's
// url can reference the environment without a templating layer), applies
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	expanded := ExpandEnvVarsInData(raw)

	reencoded, err := yaml.Marshal(expanded)
	if err != nil {
		return nil, fmt.Errorf("config: re-encode expanded %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(reencoded, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
