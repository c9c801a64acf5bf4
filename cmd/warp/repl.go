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
	"io"
	"sort"
	"strings"
)

const helpText = `warp commands:
  <text>                 send a message to the primary agent
  @<agent> <text>        send a message to one named agent (primary, frontend, backend)
  /fanout <text>         run the same task across every agent and synthesize a consensus
  /status                show orchestrator state, mode, and queue depth
  /agents                list the configured agent roster
  /diff [file]           show the pending diff for file, or all pending diffs
  /accept [all|file]     clear a pending diff (or all of them) after reviewing it
  /queue status|clear|enable|disable|process
                         inspect or drive the input queue directly
  /mode                  cycle the UI mode (manual -> plan -> auto-accept -> vm -> manual)
  /clear                 clear the in-memory chat history
  /help                  show this message
  /quit, /exit           leave warp
`

// REPL runs the line-oriented interactive loop: read a line, dispatch a
// "/" command or hand the line to the orchestrator as a turn, print
// whatever came back, repeat. Grounded on the teacher's cmd/loom/chat.go
// stdin-reading pattern, looped instead of one-shot and with a "/"
// command table layered on top the way an interactive REPL (rather than
// a single CLI invocation) needs.
func (rt *Runtime) REPL(stdin io.Reader, stdout, stderr io.Writer) error {
	fmt.Fprintln(stdout, "warp is ready. Type /help for commands, /quit to exit.")

	handler, ok := rt.turnHandler()
	if ok {
		handler.out = func(s string) { fmt.Fprintln(stdout, s) }
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	ctx := context.Background()
	for {
		fmt.Fprint(stdout, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "/quit" || line == "/exit" {
			break
		}

		if strings.HasPrefix(line, "/") {
			if err := rt.runCommand(ctx, line, stdout); err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
			}
			continue
		}

		if err := rt.orch.Submit(ctx, line, "user"); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			continue
		}
		if err := rt.orch.DrainQueue(ctx); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// turnHandler recovers the concrete *turnHandler installed on rt.orch so
// the REPL can redirect its printed output to the REPL's own stdout
// instead of the process-wide fmt.Println fallback.
func (rt *Runtime) turnHandler() (*turnHandler, bool) {
	h, ok := rt.handlerRef.(*turnHandler)
	return h, ok
}

func (rt *Runtime) runCommand(ctx context.Context, line string, stdout io.Writer) error {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/help":
		fmt.Fprint(stdout, helpText)
	case "/status":
		rt.printStatus(stdout)
	case "/agents":
		rt.printAgents(stdout)
	case "/diff":
		rt.printDiff(stdout, args)
	case "/accept":
		rt.acceptDiff(stdout, args)
	case "/clear":
		rt.mu.Lock()
		rt.history = nil
		rt.mu.Unlock()
		fmt.Fprintln(stdout, "chat history cleared")
	case "/mode":
		mode := rt.orch.CycleMode()
		fmt.Fprintf(stdout, "mode: %s\n", mode)
	case "/queue":
		return rt.runQueueCommand(ctx, args, stdout)
	default:
		return fmt.Errorf("unknown command %q (try /help)", cmd)
	}
	return nil
}

func (rt *Runtime) printStatus(stdout io.Writer) {
	status := rt.q.GetStatus()
	fmt.Fprintf(stdout, "state:   %s\n", rt.orch.State())
	fmt.Fprintf(stdout, "mode:    %s\n", rt.orch.Mode())
	fmt.Fprintf(stdout, "queue:   %d pending, processing=%v\n", status.QueueLength, status.IsProcessing)
	fmt.Fprintf(stdout, "history: %d messages\n", len(rt.history))
	fmt.Fprintf(stdout, "transcript: %d active message(s)\n", rt.transcript.Len())

	rt.mu.Lock()
	view := rt.hudModel.View()
	rt.mu.Unlock()
	if view != "" {
		fmt.Fprintln(stdout, "---")
		fmt.Fprintln(stdout, view)
	}
}

func (rt *Runtime) printAgents(stdout io.Writer) {
	for _, a := range rt.agents {
		fmt.Fprintf(stdout, "%-10s specialization=%s\n", a.ID(), a.Specialization())
	}
}

func (rt *Runtime) printDiff(stdout io.Writer, args []string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if len(rt.diffs) == 0 {
		fmt.Fprintln(stdout, "no pending diffs")
		return
	}
	if len(args) > 0 {
		diff, ok := rt.diffs[args[0]]
		if !ok {
			fmt.Fprintf(stdout, "no pending diff for %s\n", args[0])
			return
		}
		fmt.Fprintln(stdout, highlightDiff(diff))
		return
	}
	for _, file := range sortedKeys(rt.diffs) {
		fmt.Fprintf(stdout, "--- %s ---\n%s\n", file, highlightDiff(rt.diffs[file]))
	}
}

func (rt *Runtime) acceptDiff(stdout io.Writer, args []string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if len(args) == 0 || args[0] == "all" {
		n := len(rt.diffs)
		rt.diffs = make(map[string]string)
		fmt.Fprintf(stdout, "accepted %d diff(s)\n", n)
		return
	}
	if _, ok := rt.diffs[args[0]]; !ok {
		fmt.Fprintf(stdout, "no pending diff for %s\n", args[0])
		return
	}
	delete(rt.diffs, args[0])
	fmt.Fprintf(stdout, "accepted %s\n", args[0])
}

func (rt *Runtime) runQueueCommand(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: /queue status|clear|enable|disable|process")
	}
	switch args[0] {
	case "status":
		status := rt.q.GetStatus()
		fmt.Fprintf(stdout, "length=%d processing=%v\n", status.QueueLength, status.IsProcessing)
		for _, item := range status.PendingInputs {
			fmt.Fprintf(stdout, "  [%s] (%s) %s\n", item.ID, item.Source, item.Content)
		}
	case "clear":
		n := rt.q.Clear()
		fmt.Fprintf(stdout, "cleared %d queued item(s)\n", n)
	case "enable":
		rt.q.EnableBypass()
		fmt.Fprintln(stdout, "bypass enabled: new input now routes around the queue")
	case "disable":
		rt.q.DisableBypass()
		fmt.Fprintln(stdout, "bypass disabled")
	case "process":
		ran, err := rt.orch.ProcessNext(ctx)
		if err != nil {
			return err
		}
		if !ran {
			fmt.Fprintln(stdout, "queue is empty")
		}
	default:
		return fmt.Errorf("unknown /queue subcommand %q", args[0])
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
