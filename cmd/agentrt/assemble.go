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

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/compress"
	"github.com/kadirpekel/agentrt/pkg/config"
	"github.com/kadirpekel/agentrt/pkg/graph"
	"github.com/kadirpekel/agentrt/pkg/model"
	"github.com/kadirpekel/agentrt/pkg/model/anthropic"
	"github.com/kadirpekel/agentrt/pkg/model/openai"
	"github.com/kadirpekel/agentrt/pkg/observability"
	"github.com/kadirpekel/agentrt/pkg/session"
	"github.com/kadirpekel/agentrt/pkg/skill"
	"github.com/kadirpekel/agentrt/pkg/tokentracker"
	"github.com/kadirpekel/agentrt/pkg/tool"
	"github.com/kadirpekel/agentrt/pkg/tool/builtin"
	"github.com/kadirpekel/agentrt/pkg/workspace"
)

const (
	defaultContextWindow       = 200000
	defaultMaxCompletionTokens = compress.DefaultMaxCompletionTokens
	defaultWorkspaceTTLDays    = 7
	defaultJanitorCron         = "0 3 * * *"
)

// runtime bundles every long-lived collaborator cmd/agentrt's commands
// drive a graph run through, the assembly cmd/hector/main.go's ServeCmd.Run
// performs inline for its own server/runtime/session trio.
type runtime struct {
	cfg       *config.Config
	llm       model.LLM
	registry  *tool.Registry
	tracker   *tokentracker.Tracker
	sessions  session.Store
	workspace string
	janitor   *workspace.Janitor
	obs       *observability.Manager
	skills    *skill.Registry
	g         *graph.Graph
	log       *slog.Logger
}

// buildRuntime wires every package this command assembles: model backend,
// tool registry with builtins, approval engine, context tracker, session
// store, workspace janitor, observability manager, and finally the graph
// itself — closing the subagent.Runner over the freshly built graph so
// delegate_task can launch isolated child runs without pkg/tool/builtin
// importing pkg/graph.
func buildRuntime(ctx context.Context, f cliFlags, log *slog.Logger) (*runtime, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return nil, err
	}

	slot, err := cfg.Routing.Resolve(config.SlotBase)
	if err != nil {
		return nil, fmt.Errorf("agentrt: %w", err)
	}
	if slot.ContextWindow == 0 {
		slot.ContextWindow = defaultContextWindow
	}
	if slot.MaxCompletionTokens == 0 {
		slot.MaxCompletionTokens = defaultMaxCompletionTokens
	}
	if f.maxTokens > 0 {
		slot.MaxCompletionTokens = f.maxTokens
	}

	provider, err := providerForModel(f.provider, slot.ID)
	if err != nil {
		return nil, err
	}

	llm, err := buildLLM(provider, slot)
	if err != nil {
		return nil, err
	}

	registry := tool.NewRegistry()

	var obsManager *observability.Manager
	var metrics *observability.Metrics
	if f.observe {
		obsCfg := &observability.Config{}
		obsCfg.Metrics.Enabled = true
		obsCfg.Tracing.Enabled = true
		obsManager, err = observability.NewManager(ctx, obsCfg)
		if err != nil {
			return nil, fmt.Errorf("agentrt: observability: %w", err)
		}
		metrics = obsManager.Metrics()
	}

	engine, err := cfg.HITL.BuildEngine()
	if err != nil {
		return nil, fmt.Errorf("agentrt: hitl: %w", err)
	}

	compressCfg := cfg.Context.CompressConfig(slot.ContextWindow, slot.MaxCompletionTokens)
	summarizer := newLLMSummarizer(llm)

	if err := registry.RegisterEnabled(builtin.Now()); err != nil {
		return nil, err
	}
	if err := registry.RegisterEnabled(builtin.TodoRead()); err != nil {
		return nil, err
	}
	if err := registry.RegisterEnabled(builtin.TodoWrite()); err != nil {
		return nil, err
	}
	if err := registry.RegisterEnabled(builtin.AskHuman()); err != nil {
		return nil, err
	}
	if err := registry.RegisterEnabled(builtin.CompactContext(summarizer, compressCfg)); err != nil {
		return nil, err
	}

	var sessions session.Store
	if f.sessionDB != "" {
		sessions, err = session.OpenSQLiteStore(f.sessionDB)
		if err != nil {
			return nil, fmt.Errorf("agentrt: session store: %w", err)
		}
	} else {
		sessions = session.NewMemoryStore()
	}

	var janitor *workspace.Janitor
	if f.workspaceRoot != "" {
		janitor, err = workspace.NewJanitor(f.workspaceRoot, defaultWorkspaceTTLDays, defaultJanitorCron, log)
		if err != nil {
			return nil, fmt.Errorf("agentrt: workspace janitor: %w", err)
		}
	}

	tracker := &tokentracker.Tracker{ContextWindow: slot.ContextWindow, Thresholds: cfg.Context.Thresholds()}

	var skillsReg *skill.Registry
	if f.skillsDir != "" {
		discovered, err := skill.Discover(f.skillsDir)
		if err != nil {
			return nil, fmt.Errorf("agentrt: discover skills: %w", err)
		}
		skillsReg = skill.NewRegistry(discovered)
		log.Debug("discovered skills", "count", len(discovered), "dir", f.skillsDir)
	}

	rt := &runtime{
		cfg:       cfg,
		llm:       llm,
		registry:  registry,
		tracker:   tracker,
		sessions:  sessions,
		workspace: f.workspaceRoot,
		janitor:   janitor,
		obs:       obsManager,
		skills:    skillsReg,
		log:       log,
	}

	// delegate_task is registered last since it closes over rt.g, which
	// New() below assigns only after every node constructor has run —
	// the Runner function value is stable, so the late assignment to
	// rt.g is observed by every later Delegate call.
	if err := registry.RegisterEnabled(builtin.DelegateTask(rt.subagentRunner())); err != nil {
		return nil, err
	}

	planner := graph.PlannerNode(llm, registry, tracker, metrics, log)
	compressor := graph.CompressorNode(summarizer, compressCfg, metrics, log)
	dispatcher := graph.DispatcherNode(registry, engine, metrics, log)

	g := graph.New(planner, compressor, dispatcher, graph.RoutePlanner, graph.RouteDispatcher)
	g.Metrics = metrics
	rt.g = g

	return rt, nil
}

// subagentRunner returns a subagent.Runner closing over rt.g, evaluated
// lazily on each call so it's safe to hand to DelegateTask before rt.g is
// assigned (buildRuntime wires the tool registry before the graph exists,
// matching the teacher's own dependency-injection-by-closure idiom for
// breaking the tool/graph import cycle).
func (rt *runtime) subagentRunner() func(ctx context.Context, s *agentstate.AgentState) (*agentstate.AgentState, error) {
	return func(ctx context.Context, s *agentstate.AgentState) (*agentstate.AgentState, error) {
		if _, err := rt.g.Run(ctx, s, nil); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Close releases every resource buildRuntime opened.
func (rt *runtime) Close(ctx context.Context) {
	if rt.janitor != nil {
		rt.janitor.Stop()
	}
	if rt.sessions != nil {
		rt.sessions.Close()
	}
	if rt.llm != nil {
		rt.llm.Close()
	}
	if rt.obs != nil {
		rt.obs.Shutdown(ctx)
	}
}

func buildLLM(provider model.Provider, slot config.ModelSlotConfig) (model.LLM, error) {
	switch provider {
	case model.ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:    slot.APIKey,
			Model:     slot.ID,
			MaxTokens: slot.MaxCompletionTokens,
			BaseURL:   slot.BaseURL,
		})
	case model.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:    slot.APIKey,
			Model:     slot.ID,
			MaxTokens: slot.MaxCompletionTokens,
			BaseURL:   slot.BaseURL,
		})
	default:
		return nil, fmt.Errorf("agentrt: unsupported provider %q", provider)
	}
}
