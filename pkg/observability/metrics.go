// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics collection for the runtime.
type Metrics struct {
	config   *MetricsConfig
	registry *prometheus.Registry

	// Graph/loop metrics
	graphSteps       *prometheus.CounterVec
	graphStepErrors  *prometheus.CounterVec
	loopsPerTurn     *prometheus.HistogramVec
	budgetExhaustion *prometheus.CounterVec
	activeRuns       *prometheus.GaugeVec

	// Model invocation metrics
	modelCalls        *prometheus.CounterVec
	modelCallDuration  *prometheus.HistogramVec
	modelTokensInput   *prometheus.CounterVec
	modelTokensOutput  *prometheus.CounterVec
	modelErrors        *prometheus.CounterVec

	// Tool metrics
	toolCalls        *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	toolErrors       *prometheus.CounterVec
	toolApprovals    *prometheus.CounterVec

	// Compression metrics
	compressionRuns  *prometheus.CounterVec
	compressionRatio *prometheus.HistogramVec

	// Session metrics
	sessionsCreated    *prometheus.CounterVec
	sessionsActive     *prometheus.GaugeVec
	sessionEventsTotal *prometheus.CounterVec

	// Subagent delegation metrics
	subagentRuns     *prometheus.CounterVec
	subagentDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance from configuration.
func NewMetrics(cfg *MetricsConfig) (*Metrics, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	cfg.SetDefaults()

	m := &Metrics{
		config:   cfg,
		registry: prometheus.NewRegistry(),
	}

	m.initGraphMetrics()
	m.initModelMetrics()
	m.initToolMetrics()
	m.initCompressionMetrics()
	m.initSessionMetrics()
	m.initSubagentMetrics()

	return m, nil
}

func (m *Metrics) initGraphMetrics() {
	m.graphSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "graph",
			Name:      "steps_total",
			Help:      "Total number of graph node executions",
		},
		[]string{"node"},
	)

	m.graphStepErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "graph",
			Name:      "step_errors_total",
			Help:      "Total number of graph node execution errors",
		},
		[]string{"node", "error_type"},
	)

	m.loopsPerTurn = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.config.Namespace,
			Subsystem: "graph",
			Name:      "loops_per_turn",
			Help:      "Number of planner/dispatcher loop iterations per turn",
			Buckets:   prometheus.LinearBuckets(1, 2, 15),
		},
		[]string{},
	)

	m.budgetExhaustion = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "graph",
			Name:      "recursion_limit_hit_total",
			Help:      "Total number of turns that hit the recursion limit before completing",
		},
		[]string{},
	)

	m.activeRuns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.config.Namespace,
			Subsystem: "graph",
			Name:      "active_runs",
			Help:      "Number of currently executing graph runs",
		},
		[]string{},
	)

	m.registry.MustRegister(m.graphSteps, m.graphStepErrors, m.loopsPerTurn, m.budgetExhaustion, m.activeRuns)
}

func (m *Metrics) initModelMetrics() {
	m.modelCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "model",
			Name:      "calls_total",
			Help:      "Total number of model invocations",
		},
		[]string{"model", "provider"},
	)

	m.modelCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.config.Namespace,
			Subsystem: "model",
			Name:      "call_duration_seconds",
			Help:      "Model invocation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to 204s
		},
		[]string{"model", "provider"},
	)

	m.modelTokensInput = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "model",
			Name:      "tokens_input_total",
			Help:      "Total number of input tokens consumed",
		},
		[]string{"model", "provider"},
	)

	m.modelTokensOutput = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "model",
			Name:      "tokens_output_total",
			Help:      "Total number of output tokens generated",
		},
		[]string{"model", "provider"},
	)

	m.modelErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "model",
			Name:      "errors_total",
			Help:      "Total number of model invocation errors",
		},
		[]string{"model", "provider", "error_type"},
	)

	m.registry.MustRegister(m.modelCalls, m.modelCallDuration, m.modelTokensInput, m.modelTokensOutput, m.modelErrors)
}

func (m *Metrics) initToolMetrics() {
	m.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Total number of tool invocations",
		},
		[]string{"tool_name"},
	)

	m.toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.config.Namespace,
			Subsystem: "tool",
			Name:      "call_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
		},
		[]string{"tool_name"},
	)

	m.toolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "tool",
			Name:      "errors_total",
			Help:      "Total number of tool errors",
		},
		[]string{"tool_name", "error_type"},
	)

	m.toolApprovals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "tool",
			Name:      "approval_decisions_total",
			Help:      "Total number of HITL approval decisions by outcome",
		},
		[]string{"tool_name", "decision"},
	)

	m.registry.MustRegister(m.toolCalls, m.toolCallDuration, m.toolErrors, m.toolApprovals)
}

func (m *Metrics) initCompressionMetrics() {
	m.compressionRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "compression",
			Name:      "runs_total",
			Help:      "Total number of context compression passes by strategy",
		},
		[]string{"strategy"},
	)

	m.compressionRatio = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.config.Namespace,
			Subsystem: "compression",
			Name:      "token_ratio",
			Help:      "Ratio of tokens after compression to tokens before",
			Buckets:   prometheus.LinearBuckets(0.05, 0.05, 20),
		},
		[]string{"strategy"},
	)

	m.registry.MustRegister(m.compressionRuns, m.compressionRatio)
}

func (m *Metrics) initSessionMetrics() {
	m.sessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "session",
			Name:      "created_total",
			Help:      "Total number of sessions created",
		},
		[]string{},
	)

	m.sessionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.config.Namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of currently active sessions",
		},
		[]string{},
	)

	m.sessionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Total number of session events persisted",
		},
		[]string{"event_type"},
	)

	m.registry.MustRegister(m.sessionsCreated, m.sessionsActive, m.sessionEventsTotal)
}

func (m *Metrics) initSubagentMetrics() {
	m.subagentRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Subsystem: "subagent",
			Name:      "runs_total",
			Help:      "Total number of subagent delegations",
		},
		[]string{"skill"},
	)

	m.subagentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.config.Namespace,
			Subsystem: "subagent",
			Name:      "duration_seconds",
			Help:      "Subagent delegation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"skill"},
	)

	m.registry.MustRegister(m.subagentRuns, m.subagentDuration)
}

// RecordGraphStep records a single graph node execution.
func (m *Metrics) RecordGraphStep(node string) {
	if m == nil {
		return
	}
	m.graphSteps.WithLabelValues(node).Inc()
}

// RecordGraphStepError records a graph node execution error.
func (m *Metrics) RecordGraphStepError(node, errorType string) {
	if m == nil {
		return
	}
	m.graphStepErrors.WithLabelValues(node, errorType).Inc()
}

// RecordLoopsPerTurn records how many planner/dispatcher iterations a turn took.
func (m *Metrics) RecordLoopsPerTurn(loops int) {
	if m == nil {
		return
	}
	m.loopsPerTurn.WithLabelValues().Observe(float64(loops))
}

// RecordBudgetExhaustion records a turn that hit the recursion limit.
func (m *Metrics) RecordBudgetExhaustion() {
	if m == nil {
		return
	}
	m.budgetExhaustion.WithLabelValues().Inc()
}

// IncActiveRuns increments the active graph run gauge.
func (m *Metrics) IncActiveRuns() {
	if m == nil {
		return
	}
	m.activeRuns.WithLabelValues().Inc()
}

// DecActiveRuns decrements the active graph run gauge.
func (m *Metrics) DecActiveRuns() {
	if m == nil {
		return
	}
	m.activeRuns.WithLabelValues().Dec()
}

// RecordModelCall records a completed model invocation.
func (m *Metrics) RecordModelCall(model, provider string, duration time.Duration) {
	if m == nil {
		return
	}
	m.modelCalls.WithLabelValues(model, provider).Inc()
	m.modelCallDuration.WithLabelValues(model, provider).Observe(duration.Seconds())
}

// RecordModelTokens records input/output token usage for a model invocation.
func (m *Metrics) RecordModelTokens(model, provider string, input, output int) {
	if m == nil {
		return
	}
	m.modelTokensInput.WithLabelValues(model, provider).Add(float64(input))
	m.modelTokensOutput.WithLabelValues(model, provider).Add(float64(output))
}

// RecordModelError records a failed model invocation.
func (m *Metrics) RecordModelError(model, provider, errorType string) {
	if m == nil {
		return
	}
	m.modelErrors.WithLabelValues(model, provider, errorType).Inc()
}

// RecordToolCall records a completed tool invocation.
func (m *Metrics) RecordToolCall(toolName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(toolName).Inc()
	m.toolCallDuration.WithLabelValues(toolName).Observe(duration.Seconds())
}

// RecordToolError records a failed tool invocation.
func (m *Metrics) RecordToolError(toolName, errorType string) {
	if m == nil {
		return
	}
	m.toolErrors.WithLabelValues(toolName, errorType).Inc()
}

// RecordToolApproval records an HITL approval decision.
func (m *Metrics) RecordToolApproval(toolName, decision string) {
	if m == nil {
		return
	}
	m.toolApprovals.WithLabelValues(toolName, decision).Inc()
}

// RecordCompression records a context compression pass and its token ratio.
func (m *Metrics) RecordCompression(strategy string, ratio float64) {
	if m == nil {
		return
	}
	m.compressionRuns.WithLabelValues(strategy).Inc()
	m.compressionRatio.WithLabelValues(strategy).Observe(ratio)
}

// RecordSessionCreated records a new session being opened.
func (m *Metrics) RecordSessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.WithLabelValues().Inc()
}

// SetSessionsActive sets the current active session gauge.
func (m *Metrics) SetSessionsActive(count int) {
	if m == nil {
		return
	}
	m.sessionsActive.WithLabelValues().Set(float64(count))
}

// RecordSessionEvent records a persisted session event.
func (m *Metrics) RecordSessionEvent(eventType string) {
	if m == nil {
		return
	}
	m.sessionEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordSubagentRun records a completed subagent delegation.
func (m *Metrics) RecordSubagentRun(skill string, duration time.Duration) {
	if m == nil {
		return
	}
	m.subagentRuns.WithLabelValues(skill).Inc()
	m.subagentDuration.WithLabelValues(skill).Observe(duration.Seconds())
}

// Handler returns an HTTP handler that serves the metrics in Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics not enabled"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
