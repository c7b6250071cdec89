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

// Package tool defines the Tool capability interface and a three-tier
// registry: discovered tools found by directory scan, enabled tools
// selectable by the planner, and tools promoted on demand for a single
// session.
package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/kadirpekel/agentrt/pkg/registry"
)

// Risk classifies how dangerous a tool's effects can be; consumed by the
// approval engine's builtin fallback layer.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Metadata carries the non-functional facts the registry and approval
// engine need about a tool, independent of its Run behavior.
type Metadata struct {
	Risk                Risk
	Tags                []string
	AvailableToSubagent bool
}

// Tool is the capability interface every tool implements. ArgsSchema is
// validated against incoming Args before Run is called. ArgsSchemaJSON
// returns the same schema as a raw document, for providers that need to
// advertise it verbatim in a tool-use request.
type Tool interface {
	Name() string
	Description() string
	ArgsSchema() *jsonschema.Schema
	ArgsSchemaJSON() map[string]any
	Run(ctx context.Context, args map[string]any) (any, error)
	Metadata() Metadata
}

// MustCompileSchema compiles an inline JSON Schema document (as produced by
// an args struct's schema map) into a *jsonschema.Schema, panicking on a
// malformed schema. Intended for use in tool constructors, where the
// schema is a compile-time constant and a compile failure is a programmer
// error, not a runtime one.
func MustCompileSchema(uri string, doc map[string]any) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(uri, doc); err != nil {
		panic(fmt.Sprintf("tool: add schema resource %q: %v", uri, err))
	}
	schema, err := c.Compile(uri)
	if err != nil {
		panic(fmt.Sprintf("tool: compile schema %q: %v", uri, err))
	}
	return schema
}

// ErrUnknownTool is returned when a caller asks for a tool name the
// registry has never seen.
type ErrUnknownTool struct {
	Name string
}

func (e *ErrUnknownTool) Error() string {
	return fmt.Sprintf("tool: unknown tool %q", e.Name)
}

// ErrNotEnabled is returned when a discovered tool is invoked before being
// enabled or promoted for the calling session.
type ErrNotEnabled struct {
	Name string
}

func (e *ErrNotEnabled) Error() string {
	return fmt.Sprintf("tool: %q is discovered but not enabled for this session", e.Name)
}

// State is a tool's lifecycle position within one session's registry view.
type State string

const (
	Discovered State = "discovered"
	Enabled    State = "enabled"
	Promoted   State = "promoted"
)

// entry pairs a Tool with its per-registry lifecycle state.
type entry struct {
	tool  Tool
	state State
}

// Registry tracks every tool the runtime knows about and which ones are
// currently selectable. It wraps registry.BaseRegistry for the underlying
// name-indexed storage and layers lifecycle transitions on top with its
// own lock, since promoting an entry mutates state in place.
type Registry struct {
	mu   sync.Mutex
	base *registry.BaseRegistry[*entry]
}

// NewRegistry creates an empty tool Registry.
func NewRegistry() *Registry {
	return &Registry{base: registry.NewBaseRegistry[*entry]()}
}

// Scan registers a Tool as Discovered. Call RegisterEnabled instead to
// make it selectable by default, or leave it discovered-only so it can
// only be reached via LoadOnDemand (mention promotion).
func (r *Registry) Scan(t Tool) error {
	return r.base.Register(t.Name(), &entry{tool: t, state: Discovered})
}

// RegisterEnabled scans and immediately enables a tool, the common path
// for tools configured on at boot.
func (r *Registry) RegisterEnabled(t Tool) error {
	return r.base.Register(t.Name(), &entry{tool: t, state: Enabled})
}

// LoadOnDemand promotes a Discovered tool to Promoted for the remainder of
// the session, used when a user @-mentions a tool name or a threshold
// condition fires.
func (r *Registry) LoadOnDemand(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.base.Get(name)
	if !ok {
		return &ErrUnknownTool{Name: name}
	}
	e.state = Promoted
	return nil
}

// VisibleFor returns the tools selectable by the planner for the given
// context_id. Subagent contexts (prefixed "subagent-") only see tools
// whose Metadata().AvailableToSubagent is true.
func (r *Registry) VisibleFor(contextID string) []Tool {
	isSubagent := len(contextID) >= len(subagentPrefix) && contextID[:len(subagentPrefix)] == subagentPrefix

	var out []Tool
	for _, e := range r.base.List() {
		if e.state != Enabled && e.state != Promoted {
			continue
		}
		if isSubagent && !e.tool.Metadata().AvailableToSubagent {
			continue
		}
		out = append(out, e.tool)
	}
	return out
}

const subagentPrefix = "subagent-"

// Get returns the tool registered under name regardless of lifecycle
// state, or ErrUnknownTool.
func (r *Registry) Get(name string) (Tool, error) {
	e, ok := r.base.Get(name)
	if !ok {
		return nil, &ErrUnknownTool{Name: name}
	}
	return e.tool, nil
}

// StateOf reports the lifecycle state of a registered tool.
func (r *Registry) StateOf(name string) (State, error) {
	e, ok := r.base.Get(name)
	if !ok {
		return "", &ErrUnknownTool{Name: name}
	}
	return e.state, nil
}

// MetadataFor returns the Metadata of a registered tool.
func (r *Registry) MetadataFor(name string) (Metadata, error) {
	e, ok := r.base.Get(name)
	if !ok {
		return Metadata{}, &ErrUnknownTool{Name: name}
	}
	return e.tool.Metadata(), nil
}

// Discovered lists every tool name known to the registry regardless of
// lifecycle state, for catalog introspection.
func (r *Registry) Discovered() []string {
	var names []string
	for _, e := range r.base.List() {
		names = append(names, e.tool.Name())
	}
	return names
}
