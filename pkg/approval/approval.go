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

// Package approval implements the four-layer human-in-the-loop decision
// engine: a per-tool custom checker, global risk patterns, per-tool
// patterns, and builtin fallbacks for known-risky tool classes. The
// engine is pure: the same (tool name, args) always yields the same
// Decision given its rules and registered checkers, and it never executes
// anything itself.
package approval

import (
	"fmt"
	"regexp"
	"sort"
)

// RiskLevel orders the severity an approval rule can carry.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// severityOrder is the scan order for layers 2 and 3: most severe first.
var severityOrder = []RiskLevel{RiskCritical, RiskHigh, RiskMedium, RiskLow}

// Decision is the outcome of an approval check.
type Decision struct {
	NeedsApproval bool
	Reason        string
	RiskLevel     RiskLevel
}

// approved is the zero-value "no approval needed" Decision, returned
// whenever a layer finds nothing worth flagging.
var approved = Decision{}

// GlobalPattern is a cross-tool risk rule: if any Patterns regex matches
// the stringified args of ANY tool call, the Decision fires.
type GlobalPattern struct {
	RiskLevel RiskLevel
	Patterns  []*regexp.Regexp
	Reason    string
}

// ToolPattern is the same shape as GlobalPattern but scoped to one tool
// name via the Engine's per-tool pattern map.
type ToolPattern struct {
	RiskLevel RiskLevel
	Patterns  []*regexp.Regexp
	Reason    string
}

// CustomChecker is a programmatic, highest-priority override for one tool.
type CustomChecker func(args map[string]any) Decision

// Engine evaluates approval decisions against its configured rules.
type Engine struct {
	customCheckers map[string]CustomChecker
	globalByLevel  map[RiskLevel][]GlobalPattern
	toolByLevel    map[string]map[RiskLevel][]ToolPattern
	builtins       map[string]func(args map[string]any) Decision
}

// NewEngine creates an Engine with no rules. Configure it with
// RegisterCustomChecker, AddGlobalPattern and AddToolPattern, and call
// RegisterBuiltinFallbacks to install the shell/HTTP builtin heuristics.
func NewEngine() *Engine {
	return &Engine{
		customCheckers: map[string]CustomChecker{},
		globalByLevel:  map[RiskLevel][]GlobalPattern{},
		toolByLevel:    map[string]map[RiskLevel][]ToolPattern{},
		builtins:       map[string]func(args map[string]any) Decision{},
	}
}

// RegisterCustomChecker installs the highest-priority layer for one tool.
func (e *Engine) RegisterCustomChecker(toolName string, checker CustomChecker) {
	e.customCheckers[toolName] = checker
}

// AddGlobalPattern adds a cross-tool risk pattern.
func (e *Engine) AddGlobalPattern(p GlobalPattern) {
	e.globalByLevel[p.RiskLevel] = append(e.globalByLevel[p.RiskLevel], p)
}

// AddToolPattern adds a risk pattern scoped to one tool name.
func (e *Engine) AddToolPattern(toolName string, p ToolPattern) {
	if e.toolByLevel[toolName] == nil {
		e.toolByLevel[toolName] = map[RiskLevel][]ToolPattern{}
	}
	e.toolByLevel[toolName][p.RiskLevel] = append(e.toolByLevel[toolName][p.RiskLevel], p)
}

// RegisterBuiltinFallback installs a layer-4 heuristic for a known tool
// name, consulted only when no custom checker, global pattern, or
// per-tool pattern fired.
func (e *Engine) RegisterBuiltinFallback(toolName string, fn func(args map[string]any) Decision) {
	e.builtins[toolName] = fn
}

// Check evaluates the four layers in priority order. A custom checker
// registered for toolName decides alone and its Decision is returned as
// is; otherwise the first matching global pattern, then the first
// matching per-tool pattern, decides; otherwise a builtin fallback for
// toolName decides, again returned as is. If no layer applies, Check
// returns the default approved Decision.
func (e *Engine) Check(toolName string, args map[string]any) Decision {
	if checker, ok := e.customCheckers[toolName]; ok {
		return checker(args)
	}

	argsStr := stringifyArgs(args)

	if d, ok := scanByLevel(e.globalByLevel, argsStr); ok {
		return d
	}

	if toolPatterns, ok := e.toolByLevel[toolName]; ok {
		if d, ok := scanToolByLevel(toolPatterns, argsStr); ok {
			return d
		}
	}

	if fn, ok := e.builtins[toolName]; ok {
		return fn(args)
	}

	return approved
}

func scanByLevel(byLevel map[RiskLevel][]GlobalPattern, argsStr string) (Decision, bool) {
	for _, level := range severityOrder {
		for _, p := range byLevel[level] {
			for _, re := range p.Patterns {
				if re.MatchString(argsStr) {
					return Decision{NeedsApproval: true, Reason: p.Reason, RiskLevel: p.RiskLevel}, true
				}
			}
		}
	}
	return approved, false
}

func scanToolByLevel(byLevel map[RiskLevel][]ToolPattern, argsStr string) (Decision, bool) {
	for _, level := range severityOrder {
		for _, p := range byLevel[level] {
			for _, re := range p.Patterns {
				if re.MatchString(argsStr) {
					return Decision{NeedsApproval: true, Reason: p.Reason, RiskLevel: p.RiskLevel}, true
				}
			}
		}
	}
	return approved, false
}

// stringifyArgs concatenates all arg values in a stable key order, so the
// same args always produce the same scan target regardless of Go's map
// iteration order.
func stringifyArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := ""
	for _, k := range keys {
		s += fmt.Sprintf("%v ", args[k])
	}
	return s
}
