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

import "github.com/kadirpekel/agentrt/pkg/tool"

// CoreToolConfig describes a tool the runtime always scans and enables.
type CoreToolConfig struct {
	Category string   `yaml:"category,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

// OptionalToolConfig describes a tool that is discovered but only enabled
// (or made visible to subagents) when configured so.
type OptionalToolConfig struct {
	Enabled             *bool    `yaml:"enabled,omitempty"`
	AvailableToSubagent bool     `yaml:"available_to_subagent,omitempty"`
	Category            string   `yaml:"category,omitempty"`
	Tags                []string `yaml:"tags,omitempty"`
}

// IsEnabled reports whether the optional tool is enabled, defaulting to
// false when unset — optional tools are opt-in by construction.
func (c OptionalToolConfig) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// DirectoriesConfig names the filesystem roots the tool registry scans for
// discoverable tool packages at boot, mirroring the teacher's
// builtin/custom scan-root split.
type DirectoriesConfig struct {
	Builtin string `yaml:"builtin,omitempty"`
	Custom  string `yaml:"custom,omitempty"`
}

// ToolsConfig is spec.md §6.4's tools config: core tools are always
// scanned and enabled, optional tools are discovered but need an explicit
// enabled:true (or a mention-triggered LoadOnDemand) to become selectable.
// Tool names absent from both maps still register, with zero-value
// metadata (empty risk, no tags).
type ToolsConfig struct {
	Directories DirectoriesConfig             `yaml:"directories,omitempty"`
	Core        map[string]CoreToolConfig     `yaml:"core,omitempty"`
	Optional    map[string]OptionalToolConfig `yaml:"optional,omitempty"`
}

// MetadataFor returns the tool.Metadata this config describes for name:
// the declared tags, plus AvailableToSubagent for an optional tool. Risk
// is left empty in every case, and a tool declared nowhere in the config
// gets the zero-value tool.Metadata (empty risk, no tags).
func (c ToolsConfig) MetadataFor(name string) tool.Metadata {
	if core, ok := c.Core[name]; ok {
		return tool.Metadata{Tags: core.Tags}
	}
	if opt, ok := c.Optional[name]; ok {
		return tool.Metadata{Tags: opt.Tags, AvailableToSubagent: opt.AvailableToSubagent}
	}
	return tool.Metadata{}
}

// IsCore reports whether name is declared in the core tool list.
func (c ToolsConfig) IsCore(name string) bool {
	_, ok := c.Core[name]
	return ok
}
