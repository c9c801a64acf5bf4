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

// Package approval implements the policy engine that decides whether a
// sandboxed tool call may run, prompting a human when policy requires it.
//
// This replaces a permission checker that used to return an error saying
// the approval mechanism "is not yet implemented" whenever a tool needed
// human sign-off; Engine is that mechanism.
package approval

import (
	"context"
	"fmt"
	"sync"

	"github.com/loomware/warp/internal/sandbox"
)

// Decision is the outcome of evaluating an operation against policy.
type Decision string

const (
	DecisionAllow   Decision = "allow"
	DecisionDeny    Decision = "deny"
	DecisionPrompt  Decision = "prompt"
)

// Tier selects how strict the engine is about unattended operations.
// Enterprise tier never auto-approves anything above RiskLow, even when a
// session has been granted YOLO mode, and keeps every prompt outcome in
// the session cache whether or not the user asked to remember it.
type Tier string

const (
	TierBasic      Tier = "basic"
	TierEnterprise Tier = "enterprise"
)

// Prompter asks a human to approve or deny an operation. The terminal UI
// implements this; tests use a canned Prompter.
type Prompter interface {
	Prompt(ctx context.Context, op *sandbox.Operation) (approved bool, remember bool, err error)
}

// AuditSink receives a record of every prompted decision, approved or not,
// and of every decision served from the session cache (remembered=true).
// Operations that policy lets through without approval are not recorded.
type AuditSink interface {
	RecordApproval(ctx context.Context, op *sandbox.Operation, decision Decision, remembered bool)
}

// cacheKey identifies a class of operation a user has already decided on
// for the remainder of the session.
type cacheKey struct {
	operationType string
	target        string
}

// Engine is the approval and policy engine. It is safe for concurrent use
// since multiple scheduler workers may request approval simultaneously;
// concurrent prompts for the same cache key are serialized so a user is
// never asked the same question twice in a row.
type Engine struct {
	tier      Tier
	prompter  Prompter
	audit     AuditSink
	yoloMode  bool

	mu        sync.Mutex
	remembered map[cacheKey]bool
	inflight   map[cacheKey]*sync.WaitGroup
}

// Config configures a new Engine.
type Config struct {
	Tier     Tier
	Prompter Prompter
	Audit    AuditSink
	// YOLOMode skips prompting for everything below RiskHigh. Ignored when
	// Tier is TierEnterprise.
	YOLOMode bool
}

// New creates an approval engine.
func New(cfg Config) *Engine {
	return &Engine{
		tier:       cfg.Tier,
		prompter:   cfg.Prompter,
		audit:      cfg.Audit,
		yoloMode:   cfg.YOLOMode,
		remembered: make(map[cacheKey]bool),
		inflight:   make(map[cacheKey]*sync.WaitGroup),
	}
}

// Evaluate decides whether op may proceed, prompting the user if policy
// requires it and no prior remembered decision covers it.
func (e *Engine) Evaluate(ctx context.Context, op *sandbox.Operation) (bool, error) {
	if op == nil {
		return false, fmt.Errorf("approval: nil operation")
	}

	if !e.requiresApproval(op) {
		return true, nil
	}

	key := cacheKey{operationType: op.OperationType, target: op.Target}

	e.mu.Lock()
	if approved, ok := e.remembered[key]; ok {
		e.mu.Unlock()
		if e.audit != nil {
			decision := DecisionDeny
			if approved {
				decision = DecisionAllow
			}
			e.audit.RecordApproval(ctx, op, decision, true)
		}
		return approved, nil
	}
	if wg, inflight := e.inflight[key]; inflight {
		e.mu.Unlock()
		wg.Wait()
		e.mu.Lock()
		approved := e.remembered[key]
		e.mu.Unlock()
		return approved, nil
	}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	e.inflight[key] = wg
	e.mu.Unlock()

	approved, remember, err := e.prompter.Prompt(ctx, op)
	if err != nil {
		e.mu.Lock()
		delete(e.inflight, key)
		e.mu.Unlock()
		wg.Done()
		return false, fmt.Errorf("approval prompt failed: %w", err)
	}

	e.mu.Lock()
	if remember || e.tier == TierEnterprise {
		e.remembered[key] = approved
	}
	delete(e.inflight, key)
	e.mu.Unlock()
	wg.Done()

	if e.audit != nil {
		decision := DecisionDeny
		if approved {
			decision = DecisionAllow
		}
		e.audit.RecordApproval(ctx, op, decision, false)
	}

	return approved, nil
}

// requiresApproval applies the tier's policy to decide if a prompt is
// needed at all, independent of any remembered answer.
func (e *Engine) requiresApproval(op *sandbox.Operation) bool {
	if e.tier == TierEnterprise {
		return op.Risk != sandbox.RiskLow
	}
	if e.yoloMode {
		return op.Risk == sandbox.RiskHigh
	}
	return op.Risk != sandbox.RiskLow
}

// ForgetAll clears every remembered decision, used when a session is reset
// or a user explicitly asks to be re-prompted.
func (e *Engine) ForgetAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remembered = make(map[cacheKey]bool)
}
