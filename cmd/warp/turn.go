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
	"strings"

	"github.com/loomware/warp/internal/events"
	"github.com/loomware/warp/internal/log"
	"github.com/loomware/warp/internal/message"
	"github.com/loomware/warp/internal/orchestrator"
	"github.com/loomware/warp/internal/progressive"
	"github.com/loomware/warp/internal/scheduler"
	"github.com/loomware/warp/internal/session"
	"github.com/loomware/warp/internal/tokens"
	"github.com/loomware/warp/pkg/types"
	"go.uber.org/zap"
)

// turnHandler implements orchestrator.TurnHandler: it trims the running
// chat history to the model's context budget, fans the turn out to one or
// more agents via the scheduler, and prints/records the aggregated
// result. Grounded on spec.md §2's control-flow table: G -> I -> (H | C |
// E/F) -> UI sink, with D (approval) reached transitively through the
// sandbox executor each agent calls into.
type turnHandler struct {
	rt  *Runtime
	out func(string) // set by the REPL to redirect printed output
}

var _ orchestrator.TurnHandler = (*turnHandler)(nil)

func (h *turnHandler) HandleTurn(ctx context.Context, o *orchestrator.Orchestrator, content string) error {
	rt := h.rt

	agentList, todoText := h.selectAgents(content)

	userMsg := rt.transcript.Append(message.KindUser, "", todoText)
	_ = rt.transcript.SetStatus(userMsg.ID, message.StatusCompleted)
	agentMsg := rt.transcript.Append(message.KindAgent, primaryAgentID(agentList), todoText)

	rt.mu.Lock()
	rt.history = append(rt.history, types.Message{Role: "user", Content: todoText})
	budget := tokens.LimitsFor(rt.cfg.LLM.AnthropicModel).MaxContextTokens - tokens.LimitsFor(rt.cfg.LLM.AnthropicModel).ReservedOutputTokens
	if rt.cfg.Context.MaxContextTokens > 0 && rt.cfg.Context.MaxContextTokens < budget {
		budget = rt.cfg.Context.MaxContextTokens
	}
	rt.history = progressive.Trim(rt.history, budget, progressive.TrimOptions{
		KeepRecent:          rt.cfg.Context.KeepRecentMessages,
		HeadTail:            rt.cfg.Context.HeadTailWindow,
		EmergencyTokenLimit: rt.cfg.Context.EmergencyTokenLimit,
	})
	todo := &session.Todo{Content: todoText, Status: session.TodoStatusPending}
	rt.sess.Todos = append(rt.sess.Todos, *todo)
	todoIdx := len(rt.sess.Todos) - 1
	rt.hudModel.SetTodos(append([]session.Todo(nil), rt.sess.Todos...))
	rt.mu.Unlock()

	o.Emit(events.Event{Type: events.TypeThinking, Message: "working on: " + todoText})

	if err := rt.transcript.SetStatus(agentMsg.ID, message.StatusProcessing); err != nil {
		log.Warn("transcript: could not mark agent message processing", zap.Error(err))
	}

	strategy := scheduler.Strategy(rt.cfg.Scheduler.DefaultStrategy)
	out, err := rt.sched.RunTodo(ctx, todo, strategy, agentList)

	rt.mu.Lock()
	rt.sess.Todos[todoIdx] = *todo
	rt.hudModel.SetTodos(append([]session.Todo(nil), rt.sess.Todos...))
	if err == nil {
		rt.history = append(rt.history, types.Message{Role: "assistant", Content: out})
	}
	rt.mu.Unlock()

	if err != nil {
		_ = rt.transcript.SetStatus(agentMsg.ID, message.StatusCompleted)
		errMsg := rt.transcript.Append(message.KindError, agentMsg.AgentID, err.Error())
		_ = rt.transcript.SetStatus(errMsg.ID, message.StatusCompleted)
		return err
	}

	_ = rt.transcript.SetMetadata(agentMsg.ID, map[string]interface{}{"output": out})
	_ = rt.transcript.SetStatus(agentMsg.ID, message.StatusCompleted)

	if h.out != nil {
		h.out(out)
	} else {
		fmt.Println(out)
	}
	return nil
}

// primaryAgentID names the agent a turn's transcript entry is attributed
// to: the first agent in the fan-out, or "fanout" when several run at
// once and no single agent owns the result.
func primaryAgentID(agents []scheduler.Agent) string {
	if len(agents) == 1 {
		return agents[0].ID()
	}
	return "fanout"
}

// selectAgents parses an optional "@agent-name " prefix or the "/fanout"
// meta-command off content, per spec.md §6's "@<agent-name> <task>"
// invocation syntax. With no prefix, the turn runs on the single default
// agent rather than the full roster, since most turns are not meant to
// be a multi-agent debate.
func (h *turnHandler) selectAgents(content string) ([]scheduler.Agent, string) {
	rt := h.rt

	if rest, ok := strings.CutPrefix(content, "/fanout "); ok {
		return rt.agents, rest
	}

	if strings.HasPrefix(content, "@") {
		fields := strings.SplitN(content, " ", 2)
		name := strings.TrimPrefix(fields[0], "@")
		if agent, ok := rt.agentsByID[name]; ok {
			rest := ""
			if len(fields) > 1 {
				rest = fields[1]
			}
			return []scheduler.Agent{agent}, rest
		}
	}

	if primary, ok := rt.agentsByID["primary"]; ok {
		return []scheduler.Agent{primary}, content
	}
	return rt.agents, content
}
