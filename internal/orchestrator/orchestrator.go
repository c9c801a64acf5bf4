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

// Package orchestrator is the interactive turn machine: it binds the
// Input Queue to the Agent Scheduler and the Approval Engine, streaming
// typed events to whatever UI is subscribed. Grounded on the teacher's
// internal/app.App facade (a thin struct wiring Sessions/Messages/
// Permissions/AgentCoordinator together and forwarding a channel of
// events to a bubbletea program) and the mode-cycling / todo-pill
// concepts in internal/tui/page/chat, generalized from a gRPC-client
// facade into an in-process state machine since SPEC_FULL.md §9
// collapses the teacher's client/server split into one process.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/loomware/warp/internal/auditlog"
	"github.com/loomware/warp/internal/events"
	"github.com/loomware/warp/internal/log"
	"github.com/loomware/warp/internal/queue"
	"go.uber.org/zap"
)

// State is one of the orchestrator's session-level states, per spec.md §4.I.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingInput    State = "awaiting_input"
	StateProcessing       State = "processing"
	StateAwaitingApproval State = "awaiting_approval"
	StateShuttingDown     State = "shutting_down"
)

// Mode is the UI's interaction mode, cycled by the user (e.g. Shift+Tab).
type Mode string

const (
	ModeManual     Mode = "manual"
	ModePlan       Mode = "plan"
	ModeAutoAccept Mode = "auto_accept"
	ModeVM         Mode = "vm"
)

// Next returns the mode after m in the fixed cycle
// Manual -> Plan -> AutoAccept -> VM -> Manual.
func (m Mode) Next() Mode {
	switch m {
	case ModeManual:
		return ModePlan
	case ModePlan:
		return ModeAutoAccept
	case ModeAutoAccept:
		return ModeVM
	default:
		return ModeManual
	}
}

// DefaultAbsorbGrace is the delay spec.md names before the orchestrator
// sweeps up completed non-user messages once it returns to AwaitingInput.
const DefaultAbsorbGrace = 2 * time.Second

// TurnHandler runs one submitted message's full turn (agent dispatch, tool
// calls, LLM streaming). It is supplied by cmd/warp, which owns the
// concrete LLM provider and scheduler wiring; Orchestrator itself only
// owns the state machine, queue, and event plumbing around it.
type TurnHandler interface {
	HandleTurn(ctx context.Context, o *Orchestrator, content string) error
}

// AbsorbFunc retires any completed non-user messages produced during a
// turn (e.g. background agent chatter) from the primary transcript's
// active view. Called once
// per turn after DefaultAbsorbGrace elapses following a return to
// AwaitingInput.
type AbsorbFunc func()

// transitions enumerates every legal (from, to) state pair. Anything not
// listed is rejected by transitionTo; Shutdown moves any state to
// ShuttingDown directly, outside this table.
var transitions = map[State]map[State]bool{
	StateIdle:            {StateAwaitingInput: true},
	StateAwaitingInput:    {StateProcessing: true},
	StateProcessing:       {StateAwaitingApproval: true, StateAwaitingInput: true},
	StateAwaitingApproval: {StateProcessing: true},
}

// Orchestrator is the per-session turn machine.
type Orchestrator struct {
	mu    sync.Mutex
	state State
	mode  Mode

	queue   *queue.Queue
	bus     *events.Bus
	audit   *auditlog.Log
	handler TurnHandler

	absorbGrace time.Duration
	absorbFn    AbsorbFunc

	activeCancel context.CancelFunc
	vmCleanup    func()
}

// New creates an Orchestrator in StateIdle/ModeManual.
func New(handler TurnHandler, q *queue.Queue, bus *events.Bus, audit *auditlog.Log) *Orchestrator {
	return &Orchestrator{
		state:       StateIdle,
		mode:        ModeManual,
		queue:       q,
		bus:         bus,
		audit:       audit,
		handler:     handler,
		absorbGrace: DefaultAbsorbGrace,
	}
}

// SetAbsorbFunc installs the callback invoked after the absorb sweep
// grace period. SetAbsorbGrace overrides the default 2s delay (tests use
// a much shorter one).
func (o *Orchestrator) SetAbsorbFunc(fn AbsorbFunc) { o.mu.Lock(); o.absorbFn = fn; o.mu.Unlock() }

// SetAbsorbGrace overrides the default 2s absorb-sweep delay.
func (o *Orchestrator) SetAbsorbGrace(d time.Duration) { o.mu.Lock(); o.absorbGrace = d; o.mu.Unlock() }

// SetVMCleanup installs the hook run when CycleMode leaves ModeVM.
func (o *Orchestrator) SetVMCleanup(fn func()) { o.mu.Lock(); o.vmCleanup = fn; o.mu.Unlock() }

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Mode returns the current interaction mode.
func (o *Orchestrator) Mode() Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// Start transitions Idle -> AwaitingInput, the machine's entry point.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return fmt.Errorf("orchestrator: Start called from state %s, expected %s", o.state, StateIdle)
	}
	o.state = StateAwaitingInput
	o.emitLocked(events.Event{Type: events.TypeInfo, Message: "awaiting input"})
	return nil
}

// CycleMode advances the UI mode one step in the fixed cycle, running the
// VM-agent cleanup hook when leaving VM mode.
func (o *Orchestrator) CycleMode() Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	leaving := o.mode
	o.mode = o.mode.Next()
	if leaving == ModeVM && o.vmCleanup != nil {
		o.vmCleanup()
	}
	o.emitLocked(events.Event{Type: events.TypeInfo, Message: "mode changed to " + string(o.mode)})
	return o.mode
}

// Submit is the ingress point for a user (or agent-reply) message. If the
// orchestrator isn't in AwaitingInput and the Input Queue says the
// message should be queued (no bypass is active and this isn't an
// approval reply), it's enqueued and Submit returns immediately;
// otherwise the turn runs synchronously to completion.
func (o *Orchestrator) Submit(ctx context.Context, content, source string) error {
	if o.State() != StateAwaitingInput && o.queue.ShouldQueue(content) {
		o.queue.Enqueue(content, queue.DerivePriority(content), source)
		return nil
	}
	return o.runTurn(ctx, content)
}

// ProcessNext dequeues and runs the single highest-priority queued input,
// the way queue.ProcessNext's worker callback is meant to be driven from
// outside the queue package. Returns false if nothing was queued.
func (o *Orchestrator) ProcessNext(ctx context.Context) (ran bool, turnErr error) {
	ran = o.queue.ProcessNext(func(content string) {
		turnErr = o.runTurn(ctx, content)
	})
	return ran, turnErr
}

// DrainQueue runs ProcessNext until the queue reports empty or ctx is
// done, so a caller's REPL loop can fully work off a burst of queued
// input (e.g. several replies typed while a prior turn was running)
// after each submission.
func (o *Orchestrator) DrainQueue(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ran, err := o.ProcessNext(ctx)
		if err != nil {
			return err
		}
		if !ran {
			return nil
		}
	}
}

func (o *Orchestrator) runTurn(ctx context.Context, content string) error {
	if err := o.transitionTo(StateAwaitingInput, StateProcessing); err != nil {
		return err
	}

	turnCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.activeCancel = cancel
	o.mu.Unlock()
	defer cancel()

	var turnErr error
	if o.handler != nil {
		turnErr = o.handler.HandleTurn(turnCtx, o, content)
	}

	o.mu.Lock()
	o.activeCancel = nil
	if o.state == StateProcessing {
		o.state = StateAwaitingInput
		o.emitLocked(events.Event{Type: events.TypeInfo, Message: "awaiting input"})
	}
	grace := o.absorbGrace
	absorb := o.absorbFn
	o.mu.Unlock()

	if absorb != nil {
		time.AfterFunc(grace, absorb)
	}

	if turnErr != nil {
		o.emit(events.Event{Type: events.TypeError, Message: "turn failed: " + turnErr.Error()})
	}
	return turnErr
}

// BeginApproval transitions Processing -> AwaitingApproval and puts the
// Input Queue into bypass, so a reply typed while a prompt is up reaches
// the prompt rather than the queue. Called by a TurnHandler immediately
// before invoking the Approval Engine.
func (o *Orchestrator) BeginApproval() error {
	if err := o.transitionTo(StateProcessing, StateAwaitingApproval); err != nil {
		return err
	}
	o.queue.EnableBypass()
	return nil
}

// EndApproval transitions AwaitingApproval -> Processing and releases
// bypass. Called by a TurnHandler immediately after the Approval Engine
// returns a decision.
func (o *Orchestrator) EndApproval() error {
	if err := o.transitionTo(StateAwaitingApproval, StateProcessing); err != nil {
		return err
	}
	o.queue.DisableBypass()
	return nil
}

// Emit publishes an event on the shared bus, for use by a TurnHandler.
func (o *Orchestrator) Emit(ev events.Event) { o.emit(ev) }

func (o *Orchestrator) emit(ev events.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emitLocked(ev)
}

func (o *Orchestrator) emitLocked(ev events.Event) {
	if o.bus != nil {
		o.bus.Emit(ev)
	}
}

// Shutdown tears the session down from any state: cancels the active
// turn, releases queue bypass, flushes the audit log, and transitions to
// ShuttingDown. Calling it again after the first call returns an error
// and changes nothing.
func (o *Orchestrator) Shutdown(reason string) error {
	o.mu.Lock()
	if o.state == StateShuttingDown {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator: already shut down")
	}
	o.state = StateShuttingDown
	cancel := o.activeCancel
	o.activeCancel = nil
	o.emitLocked(events.Event{Type: events.TypeInfo, Message: "shutting down: " + reason})
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.queue.DisableBypass()

	if o.audit != nil {
		if err := o.audit.Close(); err != nil {
			log.Warn("orchestrator: failed to flush audit log on shutdown", zap.Error(err))
			return err
		}
	}
	return nil
}

// transitionTo atomically moves from `from` to `to`, rejecting the call if
// the orchestrator isn't currently in `from` or the transition isn't in
// the legal table.
func (o *Orchestrator) transitionTo(from, to State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != from {
		return fmt.Errorf("orchestrator: cannot transition %s -> %s, currently %s", from, to, o.state)
	}
	if !transitions[from][to] {
		return fmt.Errorf("orchestrator: illegal transition %s -> %s", from, to)
	}
	o.state = to
	return nil
}
