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
	"context"
	"fmt"

	"github.com/loomware/warp/internal/events"
	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/scheduler"
	"github.com/loomware/warp/pkg/types"
)

// maxToolIterations bounds how many tool-call round trips one agent does
// on a single todo before it's forced to return whatever it has, so a
// model that never stops calling tools can't hang a turn forever.
const maxToolIterations = 8

// llmAgent implements scheduler.Agent: it runs a bounded tool-calling
// loop against an LLM provider and the tool sandbox. Grounded on the
// teacher's pkg/agent.Agent execution loop (system prompt, tool-call
// round trip, no special casing per tool), narrowed to what
// scheduler.Agent's contract needs.
type llmAgent struct {
	id             string
	specialization string
	systemPrompt   string
	provider       types.LLMProvider
	registry       *sandbox.Registry
	executor       *sandbox.Executor
	sink           events.Sink
}

func (a *llmAgent) ID() string             { return a.id }
func (a *llmAgent) Specialization() string { return a.specialization }

func (a *llmAgent) emit(ev events.Event) {
	if a.sink != nil {
		a.sink.Emit(ev)
	}
}

// Run executes todoText as a single-agent tool-calling conversation,
// sharing progress through collab so other agents fanned out onto the
// same todo can see what this one is doing.
func (a *llmAgent) Run(ctx context.Context, todoText string, collab *scheduler.CollaborationContext) (string, error) {
	messages := []types.Message{
		{Role: "system", Content: a.systemPrompt},
		{Role: "user", Content: todoText},
	}

	tools := a.registry.List()

	for i := 0; i < maxToolIterations; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		resp, err := a.provider.Chat(ctx, messages, tools)
		if err != nil {
			return "", fmt.Errorf("agent %s: llm call failed: %w", a.id, err)
		}

		if len(resp.ToolCalls) == 0 {
			collab.Log(a.id, "completed")
			return resp.Content, nil
		}

		messages = append(messages, types.Message{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls})

		for _, tc := range resp.ToolCalls {
			a.emit(events.Event{Type: events.TypeTool, AgentID: a.id, Message: "calling " + tc.Name})
			collab.Log(a.id, "tool: "+tc.Name)

			result, execErr := a.executor.Run(ctx, tc.Name, tc.Input)
			toolMsg := types.Message{Role: "tool", ToolUseID: tc.ID}
			if execErr != nil {
				toolMsg.Content = "error: " + execErr.Error()
			} else {
				toolMsg.Content = result.Output
				toolMsg.ToolResult = result
				if result.Diff != "" {
					target, _ := tc.Input["path"].(string)
					a.emit(events.Event{
						Type:    events.TypeDiff,
						AgentID: a.id,
						Message: target,
						Data:    map[string]interface{}{"target": target, "diff": result.Diff},
					})
				}
			}
			messages = append(messages, toolMsg)
		}
	}

	return "", fmt.Errorf("agent %s: exceeded %d tool-call iterations on %q without a final answer", a.id, maxToolIterations, todoText)
}

// llmAggregator synthesizes a consensus artifact from a fan-out's
// per-agent outputs via a single extra LLM call, falling back to
// deterministic concatenation (scheduler.concatenateOutputs, invoked by
// Scheduler.runParallel itself) when this call errors.
type llmAggregator struct {
	provider types.LLMProvider
}

func (g *llmAggregator) Aggregate(ctx context.Context, todoText string, outputs map[string]string) (string, error) {
	prompt := scheduler.BuildAggregationPrompt(todoText, outputs)
	resp, err := g.provider.Chat(ctx, []types.Message{
		{Role: "system", Content: "You synthesize independent agent outputs into one consensus artifact. Respond with the requested headings only, no preamble."},
		{Role: "user", Content: prompt},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("aggregator: %w", err)
	}
	return resp.Content, nil
}
