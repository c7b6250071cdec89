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
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kadirpekel/agentrt/pkg/config"
)

// validateCmd parses --config and reports success or failure without
// starting a runtime, mirroring the teacher's InfoCmd/ValidateCmd
// informational commands in cmd/hector/main.go.
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "parse and validate a config file without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.configPath == "" {
				return fmt.Errorf("agentrt validate: --config is required")
			}
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Printf("%s: valid\n", flags.configPath)
			return nil
		},
	}
}

// runCmd executes a single message to completion and prints the final
// reply, the teacher's "hector serve" one-shot analogue condensed to a
// direct graph run instead of an HTTP round trip.
func runCmd() *cobra.Command {
	var threadID string

	cmd := &cobra.Command{
		Use:   "run [message]",
		Short: "run a single message through the agent and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log, closeLog, err := initLogger(flags.logLevel, flags.logFile, flags.logFormat)
			if err != nil {
				return err
			}
			defer closeLog()

			rt, err := buildRuntime(ctx, flags, log)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			if rt.janitor != nil {
				rt.janitor.Start()
			}

			if threadID == "" {
				threadID = newThreadID()
			}
			return runOneShot(ctx, rt, threadID, args[0], flags.maxLoops)
		},
	}

	cmd.Flags().StringVar(&threadID, "thread", "", "resume an existing thread ID instead of starting a fresh one")
	return cmd
}

// chatCmd starts an interactive REPL against the agent, grounded on
// goclaw's agent_chat_standalone.go runStandaloneMode loop.
func chatCmd() *cobra.Command {
	var threadID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "start an interactive chat session with the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log, closeLog, err := initLogger(flags.logLevel, flags.logFile, flags.logFormat)
			if err != nil {
				return err
			}
			defer closeLog()

			rt, err := buildRuntime(ctx, flags, log)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			if rt.janitor != nil {
				rt.janitor.Start()
			}

			if threadID == "" {
				threadID = newThreadID()
			}
			return runREPL(ctx, rt, threadID, flags.maxLoops)
		},
	}

	cmd.Flags().StringVar(&threadID, "thread", "", "resume an existing thread ID instead of starting a fresh one")
	return cmd
}
