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

	"github.com/kadirpekel/agentrt/pkg/compress"
	"github.com/kadirpekel/agentrt/pkg/tokentracker"
)

// ModelSlot names one of the five routing roles spec.md §6.4 defines —
// base is the default planner model, the rest are opt-in overrides a
// caller can route specific requests to.
type ModelSlot string

const (
	SlotBase   ModelSlot = "base"
	SlotReason ModelSlot = "reason"
	SlotVision ModelSlot = "vision"
	SlotCode   ModelSlot = "code"
	SlotChat   ModelSlot = "chat"
)

// ModelSlotConfig configures one model slot: which provider/model backs
// it and the context-window bookkeeping tokentracker needs for that model.
type ModelSlotConfig struct {
	ID                  string `yaml:"id,omitempty"`
	APIKey              string `yaml:"api_key,omitempty"`
	BaseURL             string `yaml:"base_url,omitempty"`
	ContextWindow       int    `yaml:"context_window,omitempty"`
	MaxCompletionTokens int    `yaml:"max_completion_tokens,omitempty"`
}

// SetDefaults expands ${VAR} references in APIKey, matching env.go's
// expansion convention for values loaded from YAML.
func (c *ModelSlotConfig) SetDefaults() {
	c.APIKey = expandEnvVars(c.APIKey)
}

// ModelRoutingConfig maps each ModelSlot to its backing model, per
// spec.md §6.4. A slot absent from Models falls back to SlotBase at the
// call site.
type ModelRoutingConfig struct {
	Models map[ModelSlot]ModelSlotConfig `yaml:"models,omitempty"`
}

// Resolve returns the configured slot, or the base slot if the requested
// one isn't configured, or an error if neither is.
func (c ModelRoutingConfig) Resolve(slot ModelSlot) (ModelSlotConfig, error) {
	if cfg, ok := c.Models[slot]; ok {
		return cfg, nil
	}
	if cfg, ok := c.Models[SlotBase]; ok {
		return cfg, nil
	}
	return ModelSlotConfig{}, fmt.Errorf("config: model slot %q not configured and no base fallback", slot)
}

// ContextConfig holds the context-window thresholds and compaction sizing
// spec.md §6.4 names: warning_threshold/force_compact_threshold feed
// tokentracker.Thresholds, keep_recent_messages/compact_middle_messages/
// summarize_cycle feed compress.Config.
type ContextConfig struct {
	WarningThreshold      float64 `yaml:"warning_threshold,omitempty"`
	ForceCompactThreshold float64 `yaml:"force_compact_threshold,omitempty"`
	KeepRecentMessages    int     `yaml:"keep_recent_messages,omitempty"`
	CompactMiddleMessages int     `yaml:"compact_middle_messages,omitempty"`
	SummarizeCycle        int     `yaml:"summarize_cycle,omitempty"`
}

// SetDefaults fills zero fields with spec-mandated defaults, matching the
// teacher's SetDefaults idiom of never overwriting an explicit value.
func (c *ContextConfig) SetDefaults() {
	if c.WarningThreshold == 0 {
		c.WarningThreshold = tokentracker.DefaultThresholds().Warning
	}
	if c.ForceCompactThreshold == 0 {
		c.ForceCompactThreshold = tokentracker.DefaultThresholds().Critical
	}
	if c.CompactMiddleMessages == 0 {
		c.CompactMiddleMessages = 30
	}
	if c.KeepRecentMessages == 0 {
		c.KeepRecentMessages = compress.DefaultMaxHistoryMessages
	}
	if c.SummarizeCycle == 0 {
		c.SummarizeCycle = compress.DefaultSummarizeCycle
	}
}

// Thresholds builds a tokentracker.Thresholds from this config's warning
// and force-compact boundaries, holding the "info" boundary at the
// tokentracker default since the config document only exposes two of the
// three ratio cut points.
func (c ContextConfig) Thresholds() tokentracker.Thresholds {
	d := tokentracker.DefaultThresholds()
	return tokentracker.Thresholds{Info: d.Info, Warning: c.WarningThreshold, Critical: c.ForceCompactThreshold}
}

// CompressConfig builds a compress.Config for the given model slot's
// context window, folding in this document's sizing fields.
func (c ContextConfig) CompressConfig(contextWindow, maxCompletionTokens int) compress.Config {
	return compress.Config{
		ContextWindow:       contextWindow,
		RecentMessageCount:  c.KeepRecentMessages,
		MiddleMessageCount:  c.CompactMiddleMessages,
		SummarizeCycle:      c.SummarizeCycle,
		MaxCompletionTokens: maxCompletionTokens,
	}
}
