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
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/loomware/warp/internal/sandbox"
)

// terminalPrompter is the approval.Prompter the interactive CLI wires in:
// it renders the operation summary and risk the way spec.md §4.D
// describes, puts the orchestrator into approval-bypass so a reply typed
// now reaches this prompt rather than the input queue, and reads a
// y/n/remember answer from stdin. There is no approval timeout loop here
// because warp's REPL is single-threaded and synchronous -- the same
// goroutine that would otherwise service a timer is blocked reading this
// prompt, so a hung terminal already can't make progress either way.
type terminalPrompter struct {
	rt *Runtime
}

func (p *terminalPrompter) Prompt(ctx context.Context, op *sandbox.Operation) (approved bool, remember bool, err error) {
	if p.rt != nil && p.rt.orch != nil {
		if err := p.rt.orch.BeginApproval(); err != nil {
			return false, false, err
		}
		defer func() { _ = p.rt.orch.EndApproval() }()
	}

	fmt.Fprintf(os.Stderr, "\n--- approval required ---\n")
	fmt.Fprintf(os.Stderr, "operation: %s\n", op.OperationType)
	fmt.Fprintf(os.Stderr, "target:    %s\n", op.Target)
	fmt.Fprintf(os.Stderr, "risk:      %s\n", op.Risk)
	if op.Summary != "" {
		fmt.Fprintf(os.Stderr, "summary:   %s\n", op.Summary)
	}
	fmt.Fprint(os.Stderr, "approve? [y/N/a=approve and remember] ")

	reader := bufio.NewReader(os.Stdin)
	line, readErr := reader.ReadString('\n')
	if readErr != nil {
		return false, false, fmt.Errorf("approval prompt: %w", readErr)
	}
	answer := strings.ToLower(strings.TrimSpace(line))

	switch answer {
	case "y", "yes":
		return true, false, nil
	case "a", "always":
		return true, true, nil
	default:
		return false, false, nil
	}
}
