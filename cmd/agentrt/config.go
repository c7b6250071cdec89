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

package main

import (
	"fmt"
	"strings"

	"github.com/kadirpekel/agentrt/pkg/config"
	"github.com/kadirpekel/agentrt/pkg/model"
)

// loadConfig resolves the runtime's configuration: a YAML document when
// --config is given, or a zero-config document built straight from CLI
// flags — mirroring the teacher's ServeCmd.loadConfig split between a
// file-backed Loader and CreateZeroConfig, simplified since this runtime
// carries one model-routing document instead of the teacher's full
// agents/servers/databases tree.
func loadConfig(f cliFlags) (*config.Config, error) {
	if f.configPath != "" {
		cfg, err := config.Load(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", f.configPath, err)
		}
		applyFlagOverrides(cfg, f)
		return cfg, nil
	}

	cfg := zeroConfig(f)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid zero-config: %w", err)
	}
	return cfg, nil
}

// zeroConfig builds the minimal Config a bare CLI invocation needs: one
// base model slot, the builtin tool set enabled, and no HITL/skills rules
// — the same "no config file, just flags" mode the teacher's
// isZeroConfig/CreateZeroConfig path supports.
func zeroConfig(f cliFlags) *config.Config {
	return &config.Config{
		Routing: config.ModelRoutingConfig{
			Models: map[config.ModelSlot]config.ModelSlotConfig{
				config.SlotBase: {
					ID:      f.model,
					APIKey:  f.apiKey,
					BaseURL: f.baseURL,
				},
			},
		},
		Tools: config.ToolsConfig{
			Optional: map[string]config.OptionalToolConfig{
				"delegate_task": {Enabled: boolPtr(true)},
			},
		},
	}
}

func boolPtr(b bool) *bool { return &b }

// applyFlagOverrides lets CLI flags win over a loaded config file's base
// model slot, matching the teacher's "CLI flags override config" rule for
// --port in cmd/hector/main.go's ServeCmd.Run.
func applyFlagOverrides(cfg *config.Config, f cliFlags) {
	if f.model == "" && f.apiKey == "" && f.baseURL == "" {
		return
	}
	if cfg.Routing.Models == nil {
		cfg.Routing.Models = map[config.ModelSlot]config.ModelSlotConfig{}
	}
	slot := cfg.Routing.Models[config.SlotBase]
	if f.model != "" {
		slot.ID = f.model
	}
	if f.apiKey != "" {
		slot.APIKey = f.apiKey
	}
	if f.baseURL != "" {
		slot.BaseURL = f.baseURL
	}
	cfg.Routing.Models[config.SlotBase] = slot
}

// providerForModel infers a model.Provider from an explicit --provider
// flag, falling back to a model-id prefix heuristic (teacher's
// detectProviderFromEnv picks a provider from which API key env var is
// set; this runtime's config carries no per-slot provider field, so the
// id itself is the next best signal).
func providerForModel(explicit, modelID string) (model.Provider, error) {
	switch strings.ToLower(explicit) {
	case "anthropic":
		return model.ProviderAnthropic, nil
	case "openai":
		return model.ProviderOpenAI, nil
	case "":
		// fall through to heuristic
	default:
		return model.ProviderUnknown, fmt.Errorf("agentrt: unknown provider %q", explicit)
	}

	lower := strings.ToLower(modelID)
	switch {
	case strings.HasPrefix(lower, "claude"):
		return model.ProviderAnthropic, nil
	case strings.HasPrefix(lower, "gpt"), strings.HasPrefix(lower, "o1"), strings.HasPrefix(lower, "o3"):
		return model.ProviderOpenAI, nil
	case lower == "":
		return model.ProviderAnthropic, nil // spec default base model is Anthropic's
	default:
		return model.ProviderUnknown, fmt.Errorf("agentrt: cannot infer provider for model %q, pass --provider", modelID)
	}
}
