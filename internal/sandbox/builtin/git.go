// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/loomware/warp/internal/sandbox"
)

// gitAllowedSubcommands is the exhaustive set of git-safe operations:
// read state and stage/commit locally, never push, force, or rewrite
// history.
var gitAllowedSubcommands = map[string]bool{
	"status": true,
	"diff":   true,
	"add":    true,
	"commit": true,
	"log":    true,
	"show":   true,
}

// GitTool runs a restricted subset of git subcommands against the
// working directory. It never allows push, reset --hard, or any
// history-rewriting operation.
type GitTool struct {
	WorkDir string
}

func NewGitTool(workDir string) *GitTool { return &GitTool{WorkDir: workDir} }

func (t *GitTool) Name() string        { return "git_safe" }
func (t *GitTool) Description() string { return "Runs status, diff, add, commit, log, or show against the working tree. Never pushes or rewrites history." }
func (t *GitTool) Backend() sandbox.Backend { return sandbox.BackendGit }

func (t *GitTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"subcommand": sandbox.NewStringSchema("git subcommand to run.").WithEnum("status", "diff", "add", "commit", "log", "show"),
		"args":       sandbox.NewArraySchema(sandbox.NewStringSchema("argument"), "Additional arguments, e.g. file paths or a commit message after -m."),
	}, "subcommand")
}

func (t *GitTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	sub, _ := input["subcommand"].(string)
	risk := sandbox.RiskLow
	if sub == "commit" || sub == "add" {
		risk = sandbox.RiskModerate
	}
	return &sandbox.Operation{OperationType: "git_" + sub, Target: sub, Risk: risk, Summary: "git " + sub}, nil
}

func (t *GitTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	sub, ok := input["subcommand"].(string)
	if !ok || !gitAllowedSubcommands[sub] {
		return nil, &sandbox.Error{Code: "UNSUPPORTED_SUBCOMMAND", Message: fmt.Sprintf("subcommand %q is not in the allowed set", sub)}
	}

	var args []string
	if rawArgs, ok := input["args"].([]interface{}); ok {
		for _, a := range rawArgs {
			s, ok := a.(string)
			if !ok {
				return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "args must be strings"}
			}
			if isDangerousGitFlag(s) {
				return nil, &sandbox.Error{Code: "UNSAFE_FLAG", Message: fmt.Sprintf("flag %q is not allowed", s)}
			}
			args = append(args, s)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", append([]string{sub}, args...)...)
	cmd.Dir = t.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &sandbox.Error{Code: "GIT_FAILED", Message: fmt.Sprintf("%v: %s", err, stderr.String())}
	}

	return &sandbox.Result{
		Output:   stdout.String(),
		Metadata: map[string]interface{}{"subcommand": sub},
	}, nil
}

func isDangerousGitFlag(arg string) bool {
	switch arg {
	case "--force", "-f", "--hard", "--amend", "push", "reset", "rebase", "filter-branch":
		return true
	default:
		return false
	}
}
