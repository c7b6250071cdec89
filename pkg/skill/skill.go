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

// Package skill loads skill manifests — named, versioned bundles of
// instructions and reference files mounted into a session's workspace —
// from a directory of skill.yaml documents.
package skill

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Skill is one loaded skill manifest.
type Skill struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
	Path        string `yaml:"-"`
}

// ErrInvalidSkill reports a manifest missing a required field.
type ErrInvalidSkill struct {
	Path   string
	Reason string
}

func (e *ErrInvalidSkill) Error() string {
	return fmt.Sprintf("skill: invalid manifest %q: %s", e.Path, e.Reason)
}

// Load parses a single skill.yaml file at path.
func Load(path string) (Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Skill{}, fmt.Errorf("skill: read %q: %w", path, err)
	}

	var s Skill
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Skill{}, fmt.Errorf("skill: parse %q: %w", path, err)
	}
	if s.ID == "" {
		return Skill{}, &ErrInvalidSkill{Path: path, Reason: "missing id"}
	}
	if s.Name == "" {
		return Skill{}, &ErrInvalidSkill{Path: path, Reason: "missing name"}
	}
	s.Path = filepath.Dir(path)
	return s, nil
}

// Discover walks root looking for skill.yaml files one directory deep
// (root/<skill-dir>/skill.yaml), the layout a workspace's skills/ directory
// mounts skills under.
func Discover(root string) ([]Skill, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("skill: read dir %q: %w", root, err)
	}

	var skills []Skill
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest := filepath.Join(root, entry.Name(), "skill.yaml")
		if _, err := os.Stat(manifest); err != nil {
			continue
		}
		s, err := Load(manifest)
		if err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, nil
}

// Registry indexes loaded skills by ID for mention resolution.
type Registry struct {
	byID map[string]Skill
}

// NewRegistry builds a Registry from a slice of loaded skills.
func NewRegistry(skills []Skill) *Registry {
	r := &Registry{byID: make(map[string]Skill, len(skills))}
	for _, s := range skills {
		r.byID[s.ID] = s
	}
	return r
}

// Get looks up a skill by ID.
func (r *Registry) Get(id string) (Skill, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// List returns every registered skill.
func (r *Registry) List() []Skill {
	out := make([]Skill, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}
