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
	"os"
	"path/filepath"
	"sync"

	"github.com/loomware/warp/internal/approval"
	"github.com/loomware/warp/internal/auditlog"
	"github.com/loomware/warp/internal/config"
	"github.com/loomware/warp/internal/events"
	"github.com/loomware/warp/internal/hud"
	"github.com/loomware/warp/internal/message"
	"github.com/loomware/warp/internal/orchestrator"
	"github.com/loomware/warp/internal/progressive"
	"github.com/loomware/warp/internal/queue"
	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/builtin"
	"github.com/loomware/warp/internal/scheduler"
	"github.com/loomware/warp/internal/session"
	"github.com/loomware/warp/internal/tokens"
	"github.com/loomware/warp/pkg/llm/anthropic"
	"github.com/loomware/warp/pkg/llm/bedrock"
	"github.com/loomware/warp/pkg/observability"
	"github.com/loomware/warp/pkg/types"
)

// Runtime holds every wired subsystem for one interactive session, built
// once at startup the way cmd/loom-standalone's runStandalone builds an
// embedded server before handing control to the client loop -- except
// here there is no gRPC split: the orchestrator calls straight into the
// scheduler and sandbox in the same process, per SPEC_FULL.md §9.
type Runtime struct {
	cfg *config.Config

	registry    *sandbox.Registry
	executor    *sandbox.Executor
	approver    *approval.Engine
	audit       *auditlog.Log
	checkpoints *progressive.CheckpointStore
	retention   *progressive.RetentionJob
	bus         *events.Bus
	q          *queue.Queue
	sched      *scheduler.Scheduler
	orch       *orchestrator.Orchestrator
	transcript *message.Store
	provider   types.LLMProvider
	hudModel   hud.Model

	agents     []scheduler.Agent
	agentsByID map[string]scheduler.Agent

	mu      sync.Mutex
	sess    session.Session
	history []types.Message
	diffs   map[string]string

	unsubHUD  func()
	unsubDiff func()

	handlerRef orchestrator.TurnHandler
}

// newRuntime wires config -> token catalog -> sandbox -> approval ->
// audit -> events -> queue -> scheduler -> orchestrator, mirroring the
// dependency order in spec.md §2's control-flow table (leaves first).
func newRuntime(cfg *config.Config) (*Runtime, error) {
	// Warm the token estimator's tiktoken encoder once, process-lifetime,
	// per SPEC_FULL.md §9's sync.Once singleton carve-out.
	_ = tokens.Get()

	workDir := cfg.Sandbox.WorkingDir
	if workDir == "" || workDir == "." {
		wd, err := os.Getwd()
		if err == nil {
			workDir = wd
		}
	}

	registry := sandbox.NewRegistry()
	for _, tool := range []sandbox.Tool{
		builtin.NewFileReadTool(workDir),
		builtin.NewFileWriteTool(workDir),
		builtin.NewFileEditTool(workDir),
		builtin.NewDirectoryListTool(workDir),
		builtin.NewGrepTool(workDir),
		builtin.NewShellExecuteTool(workDir),
		builtin.NewJSONPatchTool(workDir),
		builtin.NewJSONQueryTool(workDir),
		builtin.NewGitTool(workDir),
		builtin.NewVisionTool(workDir),
		builtin.NewClipboardTool(),
	} {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}

	auditPath := cfg.Audit.Path
	if auditPath == "" {
		auditPath = filepath.Join(cfg.DataDir, "audit.jsonl")
	}
	audit, err := auditlog.New(cfg.Audit.MaxEntries, cfg.Audit.PrunePercent, auditPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}

	checkpoints, err := progressive.NewCheckpointStore(filepath.Join(cfg.DataDir, "checkpoints"))
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint store: %w", err)
	}
	retention, err := progressive.StartRetentionJob(checkpoints, progressive.DefaultCheckpointMaxAge, "0 3 * * *")
	if err != nil {
		return nil, fmt.Errorf("starting checkpoint retention job: %w", err)
	}

	bus := events.NewBus()
	q := queue.New()

	// The prompter's rt field is filled in once the Runtime exists below;
	// it has to be constructed first so the approval engine can hold a
	// stable reference rather than being rebuilt.
	prompter := &terminalPrompter{}
	approver := approval.New(approval.Config{
		Tier:     approval.Tier(cfg.Approval.Tier),
		Prompter: prompter,
		Audit:    &auditApprovalSink{audit: audit},
		YOLOMode: yoloMode,
	})

	tracer := observability.NewNoOpTracer()
	executor := sandbox.NewExecutor(registry, approver, tracer)

	llmProvider, err := newLLMProvider(cfg)
	if err != nil {
		return nil, err
	}

	aggregator := &llmAggregator{provider: llmProvider}
	sched := scheduler.New(cfg.Scheduler.Concurrency, aggregator, bus)

	agents, agentsByID := buildAgentRoster(llmProvider, registry, executor, bus)

	rt := &Runtime{
		cfg:         cfg,
		registry:    registry,
		executor:    executor,
		approver:    approver,
		audit:       audit,
		checkpoints: checkpoints,
		retention:   retention,
		bus:         bus,
		q:           q,
		sched:       sched,
		transcript:  message.NewStore(),
		provider:    llmProvider,
		hudModel:    hud.New(),
		agents:      agents,
		agentsByID:  agentsByID,
	}

	// Now that rt exists, the prompter can drive its orchestrator's bypass
	// state, so a reply typed mid-prompt reaches the prompt rather than the
	// input queue (spec.md §4.D).
	prompter.rt = rt

	handler := &turnHandler{rt: rt}
	rt.handlerRef = handler
	orch := orchestrator.New(handler, q, bus, audit)
	if err := orch.Start(); err != nil {
		return nil, err
	}
	rt.orch = orch
	orch.SetAbsorbFunc(func() {
		if n := rt.transcript.Absorb(); n > 0 {
			rt.bus.Emit(events.Event{Type: events.TypeInfo, Message: fmt.Sprintf("absorbed %d completed message(s)", n)})
		}
	})
	rt.unsubHUD = rt.pumpHUD()
	rt.unsubDiff = rt.pumpDiffs()
	rt.applyTerminalWidth()

	rt.sess = session.Session{ID: audit.SessionID(), Title: "warp session", Model: cfg.LLM.AnthropicModel, Provider: cfg.LLM.Provider}

	return rt, nil
}

// buildAgentRoster constructs the fixed set of agents a turn fans out to.
// Every agent shares the same provider and sandbox; only their
// specialization and system prompt differ, matching spec.md scenario 6's
// two-specialization fan-out (frontend/backend) while still supporting a
// single-agent turn when a user addresses one directly with "@name".
func buildAgentRoster(provider types.LLMProvider, registry *sandbox.Registry, executor *sandbox.Executor, bus *events.Bus) ([]scheduler.Agent, map[string]scheduler.Agent) {
	specs := []struct {
		id, specialization, prompt string
	}{
		{"primary", "general", "You are Warp's primary agent: a careful, senior software engineer working directly in the user's terminal. Use the available tools to read, edit, and run things; explain what you did concisely."},
		{"frontend", "frontend", "You are Warp's frontend specialist: focus on UI, client-side code, and user-facing behavior when working a todo. Use the available tools."},
		{"backend", "backend", "You are Warp's backend specialist: focus on services, data, and server-side correctness when working a todo. Use the available tools."},
	}

	agents := make([]scheduler.Agent, 0, len(specs))
	byID := make(map[string]scheduler.Agent, len(specs))
	for _, s := range specs {
		a := &llmAgent{
			id:             s.id,
			specialization: s.specialization,
			systemPrompt:   s.prompt,
			provider:       provider,
			registry:       registry,
			executor:       executor,
			sink:           bus,
		}
		agents = append(agents, a)
		byID[s.id] = a
	}
	return agents, byID
}

func newLLMProvider(cfg *config.Config) (types.LLMProvider, error) {
	switch cfg.LLM.Provider {
	case "", "anthropic":
		apiKey := cfg.LLM.AnthropicAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("no Anthropic API key configured (set llm.anthropic_api_key, WARP_ANTHROPIC_API_KEY, or ANTHROPIC_API_KEY)")
		}
		return anthropic.NewClient(anthropic.Config{
			APIKey:      apiKey,
			Model:       cfg.LLM.AnthropicModel,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		}), nil
	case "bedrock":
		return bedrock.NewClient(context.Background(), bedrock.Config{
			Region:      cfg.LLM.BedrockRegion,
			Profile:     cfg.LLM.BedrockProfile,
			ModelID:     cfg.LLM.BedrockModelID,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	default:
		return nil, fmt.Errorf("unsupported llm.provider %q", cfg.LLM.Provider)
	}
}

// Close flushes the audit log and shuts the orchestrator down.
func (rt *Runtime) Close() {
	if rt.unsubHUD != nil {
		rt.unsubHUD()
	}
	if rt.unsubDiff != nil {
		rt.unsubDiff()
	}
	if rt.retention != nil {
		rt.retention.Stop()
	}
	if rt.orch != nil {
		_ = rt.orch.Shutdown("process exit")
		return
	}
	_ = rt.audit.Close()
}

// auditApprovalSink adapts *auditlog.Log to approval.AuditSink.
type auditApprovalSink struct {
	audit *auditlog.Log
}

func (s *auditApprovalSink) RecordApproval(ctx context.Context, op *sandbox.Operation, decision approval.Decision, remembered bool) {
	action := "prompted"
	if remembered {
		action = "auto_approved"
	}
	s.audit.Append("user", action, fmt.Sprintf("%s %s -> %s (risk=%s)", op.OperationType, op.Target, decision, op.Risk))
}
