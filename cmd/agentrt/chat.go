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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/kadirpekel/agentrt/pkg/agentstate"
	"github.com/kadirpekel/agentrt/pkg/graph"
	"github.com/kadirpekel/agentrt/pkg/mention"
	"github.com/kadirpekel/agentrt/pkg/message"
	"github.com/kadirpekel/agentrt/pkg/session"
	"github.com/kadirpekel/agentrt/pkg/workspace"
)

// runInterruptLoop drives Run/Resume until the graph completes, resolving
// each interrupt by prompting stdin (CLI renderer for UserInputRequest /
// ToolApprovalRequest per spec.md §6.3).
func (rt *runtime) runInterruptLoop(ctx context.Context, state *agentstate.AgentState, reader *bufio.Reader) error {
	runCtx := agentstate.WithState(ctx, state)

	interrupt, err := rt.g.Run(runCtx, state, nil)
	for {
		if err != nil {
			return err
		}
		if interrupt == nil {
			return nil
		}

		value, resumeErr := resolveInterrupt(interrupt, reader)
		if resumeErr != nil {
			return resumeErr
		}
		interrupt, err = rt.g.Resume(runCtx, state, value, nil)
	}
}

// resolveInterrupt renders one Interrupt to the user and blocks for a
// resolution value, the CLI-side half of spec.md §6.3's interrupt
// contract (a web/chat UI would render the same payload as a modal
// instead of a stdin prompt).
func resolveInterrupt(interrupt *graph.Interrupt, reader *bufio.Reader) (any, error) {
	switch interrupt.Kind {
	case graph.KindUserInput:
		req, _ := interrupt.Payload.(graph.UserInputRequest)
		fmt.Printf("\n[agent asks] %s\n> ", req.Question)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line), nil

	case graph.KindToolApproval:
		req, _ := interrupt.Payload.(graph.ToolApprovalRequest)
		argsJSON, _ := json.Marshal(req.Args)
		fmt.Printf("\n[approval required] tool=%s risk=%s reason=%q args=%s\nApprove? [y/N/cancel] ", req.ToolName, req.RiskLevel, req.Reason, argsJSON)
		line, _ := reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes", "approve":
			return "approve", nil
		case "", "n", "no":
			return "rejected by user", nil
		case "cancel":
			return nil, nil
		default:
			return answer, nil
		}

	default:
		return nil, fmt.Errorf("agentrt: unknown interrupt kind %q", interrupt.Kind)
	}
}

// loadOrCreateState loads a persisted AgentState for threadID, or starts a
// fresh one rooted in its own workspace — mirroring the teacher's
// SessionService.GetOrCreate split between resuming and first-turn setup.
func (rt *runtime) loadOrCreateState(ctx context.Context, threadID string, maxLoops int) (*agentstate.AgentState, error) {
	rec, err := rt.sessions.Load(ctx, threadID)
	if err == nil {
		var state agentstate.AgentState
		if jsonErr := json.Unmarshal(rec.StateBlob, &state); jsonErr != nil {
			return nil, fmt.Errorf("agentrt: decode session state: %w", jsonErr)
		}
		return &state, nil
	}
	if err != session.ErrNotFound {
		return nil, fmt.Errorf("agentrt: load session: %w", err)
	}

	if maxLoops <= 0 {
		maxLoops = agentstate.DefaultMaxLoops
	}

	ws, wsErr := workspace.Ensure(rt.workspace, threadID)
	if wsErr != nil {
		return nil, fmt.Errorf("agentrt: ensure workspace: %w", wsErr)
	}

	return &agentstate.AgentState{
		ThreadID:      threadID,
		ContextID:     threadID,
		MaxLoops:      maxLoops,
		WorkspacePath: ws.Root,
	}, nil
}

// saveState persists state back to the session store after a turn
// completes or suspends, the way the teacher checkpoints after every A2A
// task update rather than only at session close.
func (rt *runtime) saveState(ctx context.Context, state *agentstate.AgentState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("agentrt: encode session state: %w", err)
	}
	return rt.sessions.Save(ctx, session.Record{
		ThreadID:     state.ThreadID,
		StateBlob:    blob,
		MessageCount: len(state.Messages),
	})
}

// applyMentions parses @agent/#path mentions out of userText and folds
// them into the state's mention bookkeeping, promoting any @name that
// names a registered tool and mounting any @name that resolves to a known
// skill into the session workspace (spec.md §6.5).
func (rt *runtime) applyMentions(state *agentstate.AgentState, userText string) {
	state.NewMentionedAgents = nil
	state.NewUploadedFiles = nil

	for _, m := range mention.Parse(userText) {
		switch m.Kind {
		case mention.KindAgent:
			state.NewMentionedAgents = append(state.NewMentionedAgents, m.Value)
			if !contains(state.MentionedAgents, m.Value) {
				state.MentionedAgents = append(state.MentionedAgents, m.Value)
			}
			if rt.registry != nil {
				_ = rt.registry.LoadOnDemand(m.Value) // not every @name is a tool
			}
			if rt.skills != nil {
				if sk, ok := rt.skills.Get(m.Value); ok {
					if err := workspace.MountSkill(&workspace.Workspace{Root: state.WorkspacePath}, sk.ID, sk.Path); err != nil {
						rt.log.Warn("failed to mount skill", "skill", sk.ID, "error", err)
					}
				}
			}
		case mention.KindPath:
			state.NewUploadedFiles = append(state.NewUploadedFiles, m.Value)
			if !contains(state.UploadedFiles, m.Value) {
				state.UploadedFiles = append(state.UploadedFiles, m.Value)
			}
		}
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// runOneShot runs a single message to completion and prints the final
// assistant reply to stdout, the teacher's "hector serve --provider ...
// --instruction ..." direct-answer mode condensed to one call.
func runOneShot(ctx context.Context, rt *runtime, threadID, messageText string, maxLoops int) error {
	state, err := rt.loadOrCreateState(ctx, threadID, maxLoops)
	if err != nil {
		return err
	}
	rt.applyMentions(state, messageText)
	state.Messages = append(state.Messages, message.UserMessage{Content: messageText})
	state.AutoCompressedThisRequest = false

	reader := bufio.NewReader(os.Stdin)
	if err := rt.runInterruptLoop(ctx, state, reader); err != nil {
		return err
	}
	if err := rt.saveState(ctx, state); err != nil {
		return err
	}

	fmt.Println(lastAssistantReply(state.Messages))
	return nil
}

// runREPL drives an interactive session, one line of stdin per turn,
// until "exit"/"quit" or EOF — grounded on goclaw's
// agent_chat_standalone.go runStandaloneMode loop.
func runREPL(ctx context.Context, rt *runtime, threadID string, maxLoops int) error {
	fmt.Fprintf(os.Stderr, "agentrt interactive chat — thread %s\n", threadID)
	fmt.Fprintln(os.Stderr, "Type \"exit\" to quit.")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "you> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(os.Stderr, "\ngoodbye")
			return nil
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Fprintln(os.Stderr, "goodbye")
			return nil
		}

		state, err := rt.loadOrCreateState(ctx, threadID, maxLoops)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		rt.applyMentions(state, input)
		state.Messages = append(state.Messages, message.UserMessage{Content: input})
		state.AutoCompressedThisRequest = false

		if err := rt.runInterruptLoop(ctx, state, reader); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if err := rt.saveState(ctx, state); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Printf("\nagent> %s\n\n", lastAssistantReply(state.Messages))
	}
}

func lastAssistantReply(msgs []message.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if am, ok := msgs[i].(message.AssistantMessage); ok && am.Content != "" {
			return am.Content
		}
	}
	return ""
}

// newThreadID generates a fresh thread identifier for a session with no
// explicit --thread flag.
func newThreadID() string {
	return uuid.NewString()
}
