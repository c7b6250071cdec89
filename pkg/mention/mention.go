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

// Package mention parses the @name / #path grammar a user turn can carry:
// "@name" mentions a skill or subagent by name, "#path" mentions a
// workspace-relative file. Classification drives on-demand tool promotion
// (pkg/tool.Registry.LoadOnDemand) and skill mounting; a mentioned name is
// also recorded on the AgentState, but no subagent run is started from a
// mention.
package mention

import "regexp"

// Kind discriminates what a Mention refers to.
type Kind string

const (
	KindAgent Kind = "agent"
	KindPath  Kind = "path"
)

// Mention is one @name or #path reference found in a user message.
type Mention struct {
	Kind  Kind
	Value string
}

var (
	// agentPattern matches @name: letters, digits, underscore, hyphen,
	// optionally dotted (e.g. "@research.analyst"), not starting with a
	// digit. The "@" must open the text or follow a non-word character,
	// so "user@example.com"-shaped text isn't misparsed.
	agentPattern = regexp.MustCompile(`(?:^|\W)@([A-Za-z_][A-Za-z0-9_.\-]*)`)
	// pathPattern matches #path: a relative or absolute filesystem path.
	pathPattern = regexp.MustCompile(`#([A-Za-z0-9_./\-]+)`)
)

// Parse extracts every @name and #path mention from text, in the order
// they appear. Parsing is deterministic: parsing the same text twice
// yields the same mentions.
func Parse(text string) []Mention {
	var out []Mention

	type span struct {
		start, end int
		m          Mention
	}
	var spans []span

	for _, loc := range agentPattern.FindAllStringSubmatchIndex(text, -1) {
		spans = append(spans, span{start: loc[0], end: loc[1], m: Mention{Kind: KindAgent, Value: text[loc[2]:loc[3]]}})
	}
	for _, loc := range pathPattern.FindAllStringSubmatchIndex(text, -1) {
		spans = append(spans, span{start: loc[0], end: loc[1], m: Mention{Kind: KindPath, Value: text[loc[2]:loc[3]]}})
	}

	// Sort by position so callers see mentions in reading order; a
	// simple insertion sort is sufficient since the matched spans are
	// each already sorted within their own pattern and the counts are
	// small relative to a conversational message.
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].start < spans[j-1].start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}

	for _, s := range spans {
		out = append(out, s.m)
	}
	return out
}

// Names returns the deduplicated @name values from text, in first-seen
// order.
func Names(text string) []string {
	return valuesOf(text, KindAgent)
}

// Paths returns the deduplicated #path values from text, in first-seen
// order.
func Paths(text string) []string {
	return valuesOf(text, KindPath)
}

func valuesOf(text string, kind Kind) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range Parse(text) {
		if m.Kind != kind || seen[m.Value] {
			continue
		}
		seen[m.Value] = true
		out = append(out, m.Value)
	}
	return out
}
