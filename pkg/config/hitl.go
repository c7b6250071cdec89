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

package config

import (
	"fmt"
	"regexp"

	"github.com/kadirpekel/agentrt/pkg/approval"
)

// RiskPatternConfig is one entry of the HITL global.risk_patterns map:
// a severity level's list of regexes scanned against a tool call's
// stringified args, with the reason surfaced in the resulting
// ToolApprovalRequest.
type RiskPatternConfig struct {
	Patterns []string `yaml:"patterns,omitempty"`
	Action   string   `yaml:"action,omitempty"`
	Reason   string   `yaml:"reason,omitempty"`
}

// ToolHITLConfig is one entry of the HITL tools.<name> map: per-tool
// pattern overrides layered above the global patterns.
type ToolHITLConfig struct {
	Enabled  *bool               `yaml:"enabled,omitempty"`
	Patterns map[string][]string `yaml:"patterns,omitempty"`
	Actions  map[string]string   `yaml:"actions,omitempty"`
}

// HITLConfig is spec.md §6.4's HITL rules document: a severity-keyed
// global.risk_patterns table plus per-tool overrides, loaded from YAML and
// compiled into an approval.Engine by BuildEngine.
type HITLConfig struct {
	Global struct {
		RiskPatterns map[string]RiskPatternConfig `yaml:"risk_patterns,omitempty"`
	} `yaml:"global,omitempty"`
	Tools map[string]ToolHITLConfig `yaml:"tools,omitempty"`
}

// BuildEngine compiles this config's patterns into a fresh approval.Engine.
// Custom checkers and builtin fallbacks are not config-driven — they're
// registered by the caller afterward, since they carry Go logic the YAML
// document has no way to express.
func (c HITLConfig) BuildEngine() (*approval.Engine, error) {
	engine := approval.NewEngine()

	for level, rule := range c.Global.RiskPatterns {
		patterns, err := compilePatterns(rule.Patterns)
		if err != nil {
			return nil, fmt.Errorf("config: global risk pattern %q: %w", level, err)
		}
		engine.AddGlobalPattern(approval.GlobalPattern{
			RiskLevel: approval.RiskLevel(level),
			Patterns:  patterns,
			Reason:    rule.Reason,
		})
	}

	for toolName, tc := range c.Tools {
		for level, raw := range tc.Patterns {
			patterns, err := compilePatterns(raw)
			if err != nil {
				return nil, fmt.Errorf("config: tool %q risk pattern %q: %w", toolName, level, err)
			}
			reason := tc.Actions[level]
			engine.AddToolPattern(toolName, approval.ToolPattern{
				RiskLevel: approval.RiskLevel(level),
				Patterns:  patterns,
				Reason:    reason,
			})
		}
	}

	return engine, nil
}

func compilePatterns(raw []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(raw))
	for _, p := range raw {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
