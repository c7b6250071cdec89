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

// Package tokentracker accounts for cumulative prompt tokens per model and
// classifies the running ratio against a context window into the level
// that drives the context manager's compression decisions.
package tokentracker

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Level classifies how close a conversation is to its model's context
// window, per spec §4.4.1.
type Level string

const (
	LevelNormal   Level = "normal"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Thresholds are the ratio boundaries separating each Level. Defaults
// match spec §4.4.1 exactly: <0.75 normal, [0.75,0.85) info,
// [0.85,0.95) warning, ≥0.95 critical.
type Thresholds struct {
	Info     float64
	Warning  float64
	Critical float64
}

// DefaultThresholds returns the spec-mandated boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Info: 0.75, Warning: 0.85, Critical: 0.95}
}

// Classify returns the Level for a given usage ratio.
func (t Thresholds) Classify(ratio float64) Level {
	switch {
	case ratio >= t.Critical:
		return LevelCritical
	case ratio >= t.Warning:
		return LevelWarning
	case ratio >= t.Info:
		return LevelInfo
	default:
		return LevelNormal
	}
}

// RecommendedStrategy maps a Level to the compression strategy the
// context manager should recommend when routing to the compressor.
func (l Level) RecommendedStrategy() string {
	switch l {
	case LevelCritical:
		return "summarize"
	case LevelWarning, LevelInfo:
		return "compact"
	default:
		return ""
	}
}

// Counter provides accurate per-model token counting, backed by
// tiktoken-go with an encoding cache shared across Counter instances for
// the same model (avoiding repeated BPE table construction).
type Counter struct {
	encoding *tiktoken.Tiktoken
	model    string
	mu       sync.RWMutex
}

var (
	encodingCache = map[string]*tiktoken.Tiktoken{}
	cacheMu       sync.RWMutex
)

// NewCounter creates a Counter for the given model, falling back to the
// cl100k_base encoding when the model isn't recognized by tiktoken.
func NewCounter(model string) (*Counter, error) {
	cacheMu.RLock()
	cached, ok := encodingCache[model]
	cacheMu.RUnlock()
	if ok {
		return &Counter{encoding: cached, model: model}, nil
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("tokentracker: get encoding for %q: %w", model, err)
		}
	}

	cacheMu.Lock()
	encodingCache[model] = encoding
	cacheMu.Unlock()

	return &Counter{encoding: encoding, model: model}, nil
}

// Count returns the exact token count for text.
func (c *Counter) Count(text string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.encoding.Encode(text, nil, nil))
}

// Model returns the model name this Counter was configured for.
func (c *Counter) Model() string { return c.model }

// Tracker classifies an AgentState's cumulative prompt token count against
// a configured context window; the counts themselves live on the
// AgentState, not on the Tracker.
type Tracker struct {
	ContextWindow int
	Thresholds    Thresholds
}

// NewTracker creates a Tracker for a model with the given context window,
// using spec-default thresholds.
func NewTracker(contextWindow int) *Tracker {
	return &Tracker{ContextWindow: contextWindow, Thresholds: DefaultThresholds()}
}

// Ratio computes cumulative prompt tokens / context window.
func (t *Tracker) Ratio(cumulativePromptTokens int) float64 {
	if t.ContextWindow <= 0 {
		return 0
	}
	return float64(cumulativePromptTokens) / float64(t.ContextWindow)
}

// Classify returns the Level for the given cumulative prompt token count.
func (t *Tracker) Classify(cumulativePromptTokens int) Level {
	return t.Thresholds.Classify(t.Ratio(cumulativePromptTokens))
}
