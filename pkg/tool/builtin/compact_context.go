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
	"context"
	"fmt"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/compress"
	"github.com/kadirpekel/agentrt/pkg/tool"
)

var compactContextSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"strategy": map[string]any{
			"type":        "string",
			"enum":        []any{"auto", "compact", "summarize"},
			"description": "auto picks compact or summarize per the escalation cycle; compact/summarize force one.",
		},
	},
}

// compactContextTool lets the assistant voluntarily compress its own
// conversation history rather than waiting for the context manager to force
// it at a token threshold.
type compactContextTool struct {
	base
	summarizer compress.Summarizer
	cfg        compress.Config
}

// CompactContext creates the "compact_context" builtin tool, backed by
// summarizer for the model-assisted compression calls.
func CompactContext(summarizer compress.Summarizer, cfg compress.Config) tool.Tool {
	return &compactContextTool{
		base: newBase(
			"compact_context",
			"Compresses the conversation history to free up context window space. "+
				"Use 'compact' to preserve detail, 'summarize' when token usage is critical.",
			compactContextSchema,
			tool.Metadata{Risk: tool.RiskLow, Tags: []string{"builtin", "context"}, AvailableToSubagent: true},
		),
		summarizer: summarizer,
		cfg:        cfg,
	}
}

func (t *compactContextTool) Run(ctx context.Context, args map[string]any) (any, error) {
	s := agentstate.FromContext(ctx)
	if s == nil {
		return nil, fmt.Errorf("compact_context: no agent state in context")
	}

	requested := compress.Strategy(argString(args, "strategy", "auto"))
	strategy := requested
	if requested != compress.StrategyCompact && requested != compress.StrategySummarize {
		strategy = compress.ResolveStrategy(compress.StrategyCompact, s.CompactCount, s.LastCompactRatio, t.cfg)
	}

	result, err := compress.Compress(ctx, s.Messages, strategy, t.summarizer, t.cfg)
	if err != nil {
		return map[string]any{"ok": false, "error": err.Error()}, nil
	}

	s.Messages = result.Messages
	s.CompactCount++
	s.LastCompactRatio = result.Ratio()
	s.LastCompactStrategy = string(result.Strategy)
	s.CumulativePromptTokens = 0
	s.CumulativeCompletionTokens = 0

	return map[string]any{
		"ok":          true,
		"strategy":    result.Strategy,
		"truncated":   result.Truncated,
		"input_bytes": result.InputBytes,
		"output_bytes": result.OutputBytes,
		"ratio":       result.Ratio(),
	}, nil
}

func argString(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
