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

package agentstate

import "context"

// ctxKey is an unexported type so values stored by this package can never
// collide with keys set by another package, mirroring the teacher's
// pkg/agent/context.go convention.
type ctxKey int

const stateKey ctxKey = iota

// WithState attaches s to ctx so tool bodies invoked by the dispatcher
// node can reach the state they're running against without threading an
// extra parameter through every Tool.Run call.
func WithState(ctx context.Context, s *AgentState) context.Context {
	return context.WithValue(ctx, stateKey, s)
}

// FromContext retrieves the AgentState attached by WithState, or nil if
// none was attached (e.g. a tool invoked outside a graph run, such as in
// a unit test that doesn't need state access).
func FromContext(ctx context.Context) *AgentState {
	s, _ := ctx.Value(stateKey).(*AgentState)
	return s
}
