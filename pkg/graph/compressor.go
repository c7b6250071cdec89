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

package graph

import (
	"context"
	"log/slog"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/compress"
	"github.com/kadirpekel/agentrt/pkg/observability"
)

// CompressorNode compresses AgentState.Messages when the planner flagged
// NeedsCompression, honoring I-COMPACT-ONCE by setting
// AutoCompressedThisRequest so route_planner won't loop back here for the
// same request. Always routes back to the planner (static edge, no
// routing function needed).
func CompressorNode(summarizer compress.Summarizer, cfg compress.Config, metrics *observability.Metrics, log *slog.Logger) Node {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, s *agentstate.AgentState) (NodeResult, error) {
		strategy := compress.ResolveStrategy(compress.Strategy(s.LastCompactStrategy), s.CompactCount, s.LastCompactRatio, cfg)

		result, err := compress.Compress(ctx, s.Messages, strategy, summarizer, cfg)
		if err != nil {
			log.Warn("compression failed, falling back to truncation", "error", err)
			result = compress.Truncate(s.Messages, cfg)
		}

		s.Messages = result.Messages
		s.CompactCount++
		s.LastCompactRatio = result.Ratio()
		s.LastCompactStrategy = string(strategy)
		s.AutoCompressedThisRequest = true
		s.NeedsCompression = false
		s.CumulativePromptTokens = 0
		s.CumulativeCompletionTokens = 0

		if metrics != nil {
			metrics.RecordGraphStep(NodeCompressor)
			metrics.RecordCompression(string(strategy), result.Ratio())
		}
		log.Debug("compressed context", "strategy", strategy, "ratio", result.Ratio())

		return NodeResult{}, nil
	}
}
