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

import "path/filepath"

// OptionalSkillConfig is one entry of skills.optional.<id>: a skill that's
// discovered but only mounted into a session workspace when enabled, or
// automatically when an uploaded file's extension matches
// AutoLoadOnFileTypes.
type OptionalSkillConfig struct {
	Enabled             *bool    `yaml:"enabled,omitempty"`
	AutoLoadOnFileTypes []string `yaml:"auto_load_on_file_types,omitempty"`
}

// IsEnabled reports whether the optional skill is enabled by default.
func (c OptionalSkillConfig) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// SkillsConfig is spec.md §6.4's skills config: a core list always
// mounted, an optional map of opt-in or auto-loading skills, and a global
// switch for whether any file upload should trigger auto-load scanning at
// all.
type SkillsConfig struct {
	Core     []string                       `yaml:"core,omitempty"`
	Optional map[string]OptionalSkillConfig `yaml:"optional,omitempty"`
	Global   struct {
		AutoLoadOnFileUpload bool `yaml:"auto_load_on_file_upload,omitempty"`
	} `yaml:"global,omitempty"`
}

// AutoLoadFor returns the optional skill IDs that should auto-mount for an
// uploaded file named filename, per Global.AutoLoadOnFileUpload and each
// skill's AutoLoadOnFileTypes extension list.
func (c SkillsConfig) AutoLoadFor(filename string) []string {
	if !c.Global.AutoLoadOnFileUpload {
		return nil
	}
	ext := filepath.Ext(filename)

	var ids []string
	for id, sc := range c.Optional {
		for _, t := range sc.AutoLoadOnFileTypes {
			if t == ext {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}
