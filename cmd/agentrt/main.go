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

// Command agentrt is the CLI for the agent execution runtime.
//
// Usage:
//
//	agentrt chat --config config.yaml
//	agentrt run "summarize this repo" --provider anthropic --model claude-sonnet-4-20250514
//	agentrt validate --config config.yaml
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
