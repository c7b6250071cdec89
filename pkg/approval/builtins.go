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

package approval

import "regexp"

var bashHighRisk = compileAll(
	`(?i)\brm\s+-rf\b`,
	`(?i)\bsudo\b`,
	`(?i)\bchmod\s+777\b`,
	`(?i)\bmkfs\b`,
	`(?i)\bdd\b.*\bif=/dev/`,
	`(?i)>\s*/dev/`,
)

var bashMediumRisk = compileAll(
	`(?i)\bcurl\b`,
	`(?i)\bwget\b`,
	`(?i)\bgit\s+clone\b`,
	`(?i)\bpip\s+install\b`,
	`(?i)\bnpm\s+install\b`,
)

var httpLocalRange = compileAll(
	`(?i)localhost`,
	`127\.0\.0\.1`,
	`192\.168\.`,
	`\b10\.`,
	`172\.(1[6-9]|2[0-9]|3[0-1])\.`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// RegisterBuiltinFallbacks installs the default layer-4 heuristics for
// shell-execution and HTTP-fetch tools: bash commands are scanned for
// destructive operations (rm -rf, sudo, device writes) and
// network/install side effects, HTTP requests are scanned for
// private/local address ranges. bashToolName and httpToolName let callers
// bind these to whatever tool names their registry actually uses.
func (e *Engine) RegisterBuiltinFallbacks(bashToolName, commandArg, httpToolName, urlArg string) {
	if bashToolName != "" {
		e.RegisterBuiltinFallback(bashToolName, func(args map[string]any) Decision {
			command, _ := args[commandArg].(string)
			return checkBashCommand(command)
		})
	}
	if httpToolName != "" {
		e.RegisterBuiltinFallback(httpToolName, func(args map[string]any) Decision {
			url, _ := args[urlArg].(string)
			return checkHTTPFetch(url)
		})
	}
}

func checkBashCommand(command string) Decision {
	for _, re := range bashHighRisk {
		if re.MatchString(command) {
			return Decision{NeedsApproval: true, Reason: "detected high-risk shell operation", RiskLevel: RiskHigh}
		}
	}
	for _, re := range bashMediumRisk {
		if re.MatchString(command) {
			return Decision{NeedsApproval: true, Reason: "detected network or install operation", RiskLevel: RiskMedium}
		}
	}
	return approved
}

func checkHTTPFetch(url string) Decision {
	for _, re := range httpLocalRange {
		if re.MatchString(url) {
			return Decision{NeedsApproval: true, Reason: "request targets a local/private address", RiskLevel: RiskMedium}
		}
	}
	return approved
}
