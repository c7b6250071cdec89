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

// Package graph runs a static, named-node graph against an AgentState:
// planner, compressor, dispatcher, wired by routing functions instead of
// a fixed chain, suspension modeled as a typed Interrupt return rather
// than a panic/goroutine trick — mirroring the pause/resume split the
// teacher's pkg/checkpoint draws between Manager and RecoveryManager, and
// streaming progress via a Snapshot channel the way pkg/agent/event.go
// streams its own turn events.
package graph

import (
	"context"
	"fmt"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/observability"
)

// Node names used by the host-agent topology (spec.md §4.1).
const (
	NodePlanner    = "planner"
	NodeCompressor = "compressor"
	NodeDispatcher = "dispatcher"
	End            = "END"
)

// RecursionFactor scales MaxLoops into the platform-level recursion_limit,
// a safety valve accounting for helper nodes (compressor hops) that don't
// themselves count against the semantic loop budget.
const RecursionFactor = 3

// Node is one step of the graph: it may mutate s in place and either
// completes normally or raises an Interrupt to suspend the run.
type Node func(ctx context.Context, s *agentstate.AgentState) (NodeResult, error)

// NodeResult is a node's outcome: either normal completion (zero value)
// or a suspension carrying Interrupt.
type NodeResult struct {
	Interrupt *Interrupt
}

// Interrupt suspends a run, carrying a JSON-able payload for a CLI/UI
// renderer to present (see UserInputRequest, ToolApprovalRequest).
type Interrupt struct {
	Kind    string
	Payload any
}

// Snapshot is emitted on the caller's channel after every node runs, for
// a streaming UI to render progress — state is the same pointer the
// caller passed to Run, already mutated by NodeName's step.
type Snapshot struct {
	NodeName string
	State    *agentstate.AgentState
}

// ErrBudgetExhausted describes a run that hit its loop budget. Run does
// not return it: RoutePlanner and Run report budget exhaustion by
// appending a synthetic "loop budget exhausted" AssistantMessage instead.
type ErrBudgetExhausted struct {
	Loops, MaxLoops int
}

func (e *ErrBudgetExhausted) Error() string {
	return fmt.Sprintf("graph: loop budget exhausted (%d/%d)", e.Loops, e.MaxLoops)
}

// Graph is a static set of named nodes wired by two routing functions,
// exactly spec.md's host-agent topology: START → planner, planner routes
// to {compressor, dispatcher, END}, compressor always returns to planner,
// dispatcher routes to {planner, END}.
type Graph struct {
	Nodes           map[string]Node
	Start           string
	RoutePlanner    func(s *agentstate.AgentState) string
	RouteDispatcher func(s *agentstate.AgentState) string

	// Metrics is an optional observability hook; Run and node-error paths
	// record against it when non-nil. Left unset by New — assign it
	// directly on the returned *Graph when metrics are available.
	Metrics *observability.Metrics
}

// New builds the host-agent Graph from its three nodes.
func New(planner, compressor, dispatcher Node, routePlanner, routeDispatcher func(*agentstate.AgentState) string) *Graph {
	return &Graph{
		Nodes: map[string]Node{
			NodePlanner:    planner,
			NodeCompressor: compressor,
			NodeDispatcher: dispatcher,
		},
		Start:           NodePlanner,
		RoutePlanner:    routePlanner,
		RouteDispatcher: routeDispatcher,
	}
}

// next resolves the node to run after node completes normally.
func (g *Graph) next(node string, s *agentstate.AgentState) string {
	switch node {
	case NodePlanner:
		return g.RoutePlanner(s)
	case NodeCompressor:
		return NodePlanner
	case NodeDispatcher:
		return g.RouteDispatcher(s)
	default:
		return End
	}
}

// Run executes the graph starting at s.PendingNode (if the state was left
// suspended) or g.Start otherwise, streaming a Snapshot after every node
// on snapshots (nil is fine — it's an optional observability hook).
//
// Run returns a non-nil Interrupt when a node suspends; s.PendingNode is
// left set to the interrupting node's name so a later Resume re-enters
// the same logical position. Run returns (nil, nil) on normal completion.
func (g *Graph) Run(ctx context.Context, s *agentstate.AgentState, snapshots chan<- Snapshot) (*Interrupt, error) {
	node := g.Start
	if s.PendingNode != "" {
		node = s.PendingNode
	}

	limit := s.MaxLoops * RecursionFactor
	if limit <= 0 {
		limit = agentstate.DefaultMaxLoops * RecursionFactor
	}

	steps := 0
	for node != End {
		if steps >= limit {
			s.Messages = append(s.Messages, message.AssistantMessage{Content: "loop budget exhausted"})
			s.PendingNode = ""
			if g.Metrics != nil {
				g.Metrics.RecordBudgetExhaustion()
			}
			return nil, nil
		}
		steps++

		fn, ok := g.Nodes[node]
		if !ok {
			return nil, fmt.Errorf("graph: no such node %q", node)
		}

		result, err := fn(ctx, s)
		if err != nil {
			if g.Metrics != nil {
				g.Metrics.RecordGraphStepError(node, "node_error")
			}
			return nil, fmt.Errorf("graph: node %q: %w", node, err)
		}

		if snapshots != nil {
			select {
			case snapshots <- Snapshot{NodeName: node, State: s}:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if result.Interrupt != nil {
			s.PendingNode = node
			return result.Interrupt, nil
		}

		s.PendingNode = ""
		node = g.next(node, s)
	}

	return nil, nil
}

// Resume re-enters a suspended run with the caller's resolution value —
// a human's typed answer for an ask_human interrupt, or "approve"/
// anything-else for a tool_approval interrupt. A nil value (and
// resumed=true) models explicit cancellation of the pending tool call,
// per spec §4.1's "resume with null aborts this call" rule.
func (g *Graph) Resume(ctx context.Context, s *agentstate.AgentState, value any, snapshots chan<- Snapshot) (*Interrupt, error) {
	s.ResumeValue = value
	s.ResumeProvided = true
	return g.Run(ctx, s, snapshots)
}
