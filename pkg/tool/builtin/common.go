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

package builtin

import (
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/kadirpekel/agentrt/pkg/tool"
)

var emptySchema = map[string]any{"type": "object", "properties": map[string]any{}}

// base carries the bookkeeping every builtin tool needs (name, description,
// compiled schema, metadata), so each tool file only implements Run.
type base struct {
	name        string
	description string
	schemaJSON  map[string]any
	schema      *jsonschema.Schema
	metadata    tool.Metadata
}

func newBase(name, description string, schemaJSON map[string]any, metadata tool.Metadata) base {
	return base{
		name:        name,
		description: description,
		schemaJSON:  schemaJSON,
		schema:      tool.MustCompileSchema("builtin://"+name, schemaJSON),
		metadata:    metadata,
	}
}

func (b base) Name() string                     { return b.name }
func (b base) Description() string              { return b.description }
func (b base) ArgsSchema() *jsonschema.Schema    { return b.schema }
func (b base) ArgsSchemaJSON() map[string]any    { return b.schemaJSON }
func (b base) Metadata() tool.Metadata           { return b.metadata }
