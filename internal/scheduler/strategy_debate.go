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

// strategy_debate.go adapts the teacher's multi-round DebateOrchestrator
// (pkg/collaboration/debate.go) from a protobuf-configured named workflow
// pattern into an alternate per-todo fan-out strategy: this is retained
// functionality the distilled spec dropped (SPEC_FULL.md §4.H SUPPLEMENT)
// rather than something spec.md's invariants require.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/loomware/warp/internal/events"
)

// DefaultDebateRounds is how many back-and-forth rounds RunDebate runs;
// each agent's output from the last round it completed is its closing
// position.
const DefaultDebateRounds = 2

// RunDebate runs agents through DefaultDebateRounds rounds of rebuttal
// before merging their closing positions. Unlike the parallel strategy,
// agents see each other's prior-round output, since disagreement is the
// point of a debate.
func RunDebate(ctx context.Context, topic string, agents []Agent, emit func(events.Event)) (string, error) {
	if len(agents) < 2 {
		return "", fmt.Errorf("scheduler: debate requires at least 2 agents, got %d", len(agents))
	}

	participants := make([]string, len(agents))
	for i, a := range agents {
		participants[i] = a.ID()
	}
	collab := NewCollaborationContext(participants)

	positions := make(map[string]string, len(agents))
	for _, a := range agents {
		positions[a.ID()] = ""
	}

	for round := 1; round <= DefaultDebateRounds; round++ {
		emit(events.Event{Type: events.TypePlanning, Message: fmt.Sprintf("debate round %d/%d", round, DefaultDebateRounds)})

		group, gctx := errgroup.WithContext(ctx)
		next := make(map[string]string, len(agents))
		var mu sync.Mutex

		for _, a := range agents {
			agent := a
			group.Go(func() error {
				prompt := debateRoundPrompt(topic, agent.ID(), positions, round)
				out, err := agent.Run(gctx, prompt, collab)
				if err != nil {
					emit(events.Event{Type: events.TypeError, AgentID: agent.ID(), Message: "debate round failed: " + err.Error()})
					return nil
				}
				collab.Log(agent.ID(), out)
				mu.Lock()
				next[agent.ID()] = out
				mu.Unlock()
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return "", err
		}
		for id, out := range next {
			if out != "" {
				positions[id] = out
			}
		}
	}

	return mergeDebatePositions(topic, positions), nil
}

func debateRoundPrompt(topic, agentID string, positions map[string]string, round int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Debate topic: %s\nRound %d. You are %s.\n", topic, round, agentID)
	if round > 1 {
		b.WriteString("Other agents' prior positions:\n")
		for id, pos := range positions {
			if id == agentID || pos == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", id, pos)
		}
	}
	b.WriteString("State your position, responding to disagreements where relevant.")
	return b.String()
}

func mergeDebatePositions(topic string, positions map[string]string) string {
	ids := sortedKeys(positions)
	var b strings.Builder
	fmt.Fprintf(&b, "## Summary\nDebate on %q across %d agents, %d rounds.\n\n", topic, len(ids), DefaultDebateRounds)
	b.WriteString("## Key Findings\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "- %s's closing position: %s\n", id, truncateForSummary(positions[id]))
	}
	b.WriteString("\n## Implementation Steps\n(synthesize from closing positions above)\n\n")
	b.WriteString("## Code Changes\n(see per-agent output)\n\n")
	b.WriteString("## Risks/Considerations\nUnresolved disagreements across agents were not automatically reconciled.\n\n")
	b.WriteString("## Next Actions\nA human or aggregator should reconcile the closing positions.\n")
	return b.String()
}

func truncateForSummary(s string) string {
	const max = 300
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
