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
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags, mirroring the teacher's
// debug.ReadBuildInfo fallback in cmd/hector/main.go.
var Version = "dev"

// cliFlags carries every root-level flag shared across subcommands, the
// way the teacher's CLI struct groups kong flags under one root.
type cliFlags struct {
	configPath string
	logLevel   string
	logFile    string
	logFormat  string

	provider  string
	model     string
	apiKey    string
	baseURL   string
	maxTokens int

	workspaceRoot string
	sessionDB     string
	maxLoops      int
	skillsDir     string

	observe bool
}

var flags cliFlags

var rootCmd = &cobra.Command{
	Use:   "agentrt",
	Short: "agentrt — graph-driven agent execution runtime",
	Long:  "agentrt runs a planner/dispatcher/compressor agent loop against a pluggable model backend, with tool approval, context compaction, and subagent delegation.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "log file path (empty = stderr)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "simple", "log format (simple, verbose)")

	rootCmd.PersistentFlags().StringVar(&flags.provider, "provider", "", "model provider (anthropic, openai); inferred from --model when empty")
	rootCmd.PersistentFlags().StringVar(&flags.model, "model", "", "model identifier (e.g. claude-sonnet-4-20250514, gpt-4o)")
	rootCmd.PersistentFlags().StringVar(&flags.apiKey, "api-key", "", "API key (defaults to provider environment variable)")
	rootCmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "custom API base URL")
	rootCmd.PersistentFlags().IntVar(&flags.maxTokens, "max-tokens", 0, "max completion tokens per model call")

	rootCmd.PersistentFlags().StringVar(&flags.workspaceRoot, "workspace-root", ".agentrt/workspaces", "root directory for per-session workspaces")
	rootCmd.PersistentFlags().StringVar(&flags.sessionDB, "session-db", "", "SQLite session store path (empty = in-memory, not persisted)")
	rootCmd.PersistentFlags().IntVar(&flags.maxLoops, "max-loops", 0, "planner loop budget per turn (0 = spec default)")
	rootCmd.PersistentFlags().StringVar(&flags.skillsDir, "skills-dir", "skills", "directory of skill.yaml manifests available for @mention")

	rootCmd.PersistentFlags().BoolVar(&flags.observe, "observe", false, "enable Prometheus metrics and OTLP tracing")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(chatCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			version := Version
			if version == "dev" {
				if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
					version = info.Main.Version
				}
			}
			fmt.Printf("agentrt version %s\n", version)
			return nil
		},
	}
}

// Execute runs the root cobra command.
func Execute() error {
	return rootCmd.Execute()
}
