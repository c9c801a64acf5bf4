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
package approval

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/loomware/warp/internal/sandbox"
)

type canned struct {
	approved bool
	remember bool
	calls    int32
}

func (c *canned) Prompt(ctx context.Context, op *sandbox.Operation) (bool, bool, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.approved, c.remember, nil
}

type recordingAudit struct {
	mu      sync.Mutex
	records int
}

func (r *recordingAudit) RecordApproval(ctx context.Context, op *sandbox.Operation, decision Decision, remembered bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records++
}

func TestEngine_LowRiskNeverPrompts(t *testing.T) {
	p := &canned{approved: false}
	e := New(Config{Tier: TierBasic, Prompter: p})

	approved, err := e.Evaluate(context.Background(), &sandbox.Operation{OperationType: "file_read", Target: "a.txt", Risk: sandbox.RiskLow})
	if err != nil {
		t.Fatal(err)
	}
	if !approved {
		t.Fatal("low risk should auto-approve")
	}
	if p.calls != 0 {
		t.Fatalf("expected no prompt, got %d", p.calls)
	}
}

func TestEngine_HighRiskPrompts(t *testing.T) {
	p := &canned{approved: true}
	e := New(Config{Tier: TierBasic, Prompter: p})

	approved, err := e.Evaluate(context.Background(), &sandbox.Operation{OperationType: "shell_exec", Target: "rm", Risk: sandbox.RiskHigh})
	if err != nil {
		t.Fatal(err)
	}
	if !approved {
		t.Fatal("expected approval")
	}
	if p.calls != 1 {
		t.Fatalf("expected exactly one prompt, got %d", p.calls)
	}
}

func TestEngine_RemembersDecision(t *testing.T) {
	p := &canned{approved: true, remember: true}
	e := New(Config{Tier: TierBasic, Prompter: p})
	op := &sandbox.Operation{OperationType: "shell_exec", Target: "npm install", Risk: sandbox.RiskModerate}

	e.Evaluate(context.Background(), op)
	e.Evaluate(context.Background(), op)
	e.Evaluate(context.Background(), op)

	if p.calls != 1 {
		t.Fatalf("expected the remembered decision to suppress re-prompting, got %d prompts", p.calls)
	}
}

func TestEngine_ConcurrentRequestsDeduped(t *testing.T) {
	p := &canned{approved: true, remember: true}
	e := New(Config{Tier: TierBasic, Prompter: p})
	op := &sandbox.Operation{OperationType: "shell_exec", Target: "npm install", Risk: sandbox.RiskModerate}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Evaluate(context.Background(), op)
		}()
	}
	wg.Wait()

	if p.calls != 1 {
		t.Fatalf("expected concurrent callers to be deduped into a single prompt, got %d", p.calls)
	}
}

func TestEngine_EnterpriseTierAlwaysAudits(t *testing.T) {
	p := &canned{approved: true}
	audit := &recordingAudit{}
	e := New(Config{Tier: TierEnterprise, Prompter: p, Audit: audit})

	e.Evaluate(context.Background(), &sandbox.Operation{OperationType: "file_write", Target: "a.txt", Risk: sandbox.RiskModerate})

	if audit.records != 1 {
		t.Fatalf("expected an audit record, got %d", audit.records)
	}
}

func TestEngine_ForgetAllClearsCache(t *testing.T) {
	p := &canned{approved: true, remember: true}
	e := New(Config{Tier: TierBasic, Prompter: p})
	op := &sandbox.Operation{OperationType: "shell_exec", Target: "npm install", Risk: sandbox.RiskModerate}

	e.Evaluate(context.Background(), op)
	e.ForgetAll()
	e.Evaluate(context.Background(), op)

	if p.calls != 2 {
		t.Fatalf("expected ForgetAll to force a second prompt, got %d calls", p.calls)
	}
}
