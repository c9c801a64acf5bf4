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
package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/loomware/warp/internal/auditlog"
	"github.com/loomware/warp/internal/events"
	"github.com/loomware/warp/internal/queue"
)

type fnHandler func(ctx context.Context, o *Orchestrator, content string) error

func (f fnHandler) HandleTurn(ctx context.Context, o *Orchestrator, content string) error {
	return f(ctx, o, content)
}

func newTestOrchestrator(t *testing.T, handler TurnHandler) *Orchestrator {
	t.Helper()
	al, err := auditlog.New(0, 0, "")
	if err != nil {
		t.Fatalf("auditlog.New: %v", err)
	}
	o := New(handler, queue.New(), events.NewBus(), al)
	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return o
}

func TestOrchestrator_StartEntersAwaitingInput(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	if o.State() != StateAwaitingInput {
		t.Fatalf("expected AwaitingInput, got %s", o.State())
	}
}

func TestOrchestrator_SubmitRunsTurnAndReturnsToAwaitingInput(t *testing.T) {
	var sawProcessing int32
	handler := fnHandler(func(ctx context.Context, o *Orchestrator, content string) error {
		if o.State() == StateProcessing {
			atomic.StoreInt32(&sawProcessing, 1)
		}
		return nil
	})
	o := newTestOrchestrator(t, handler)

	if err := o.Submit(context.Background(), "do a thing", "user"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if atomic.LoadInt32(&sawProcessing) != 1 {
		t.Fatal("expected handler to observe Processing state")
	}
	if o.State() != StateAwaitingInput {
		t.Fatalf("expected return to AwaitingInput, got %s", o.State())
	}
}

func TestOrchestrator_ApprovalRoundTripUsesBypass(t *testing.T) {
	handler := fnHandler(func(ctx context.Context, o *Orchestrator, content string) error {
		if err := o.BeginApproval(); err != nil {
			return err
		}
		if o.State() != StateAwaitingApproval {
			return fmt.Errorf("expected AwaitingApproval, got %s", o.State())
		}
		if !o.queue.IsBypassEnabled() {
			return fmt.Errorf("expected bypass enabled during approval")
		}
		return o.EndApproval()
	})
	o := newTestOrchestrator(t, handler)

	if err := o.Submit(context.Background(), "needs approval", "user"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if o.queue.IsBypassEnabled() {
		t.Fatal("expected bypass released after EndApproval")
	}
	if o.State() != StateAwaitingInput {
		t.Fatalf("expected AwaitingInput, got %s", o.State())
	}
}

func TestOrchestrator_SubmitQueuesWhenBusy(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	handler := fnHandler(func(ctx context.Context, o *Orchestrator, content string) error {
		close(entered)
		<-release
		return nil
	})
	o := newTestOrchestrator(t, handler)

	go o.Submit(context.Background(), "first", "user")
	<-entered

	// A second submit while Processing is queued, not run inline: the
	// orchestrator isn't in AwaitingInput, no bypass is active and the
	// message has no approval-reply shape.
	if err := o.Submit(context.Background(), "second", "user"); err != nil {
		t.Fatalf("Submit while busy: %v", err)
	}
	close(release)

	time.Sleep(10 * time.Millisecond)
	status := o.queue.GetStatus()
	if status.QueueLength == 0 {
		t.Fatal("expected queued second message to remain until drained")
	}
}

func TestOrchestrator_CycleModeSequenceAndVMCleanup(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	var cleaned int32
	o.SetVMCleanup(func() { atomic.AddInt32(&cleaned, 1) })

	seq := []Mode{ModePlan, ModeAutoAccept, ModeVM, ModeManual}
	for _, want := range seq {
		got := o.CycleMode()
		if got != want {
			t.Fatalf("expected mode %s, got %s", want, got)
		}
	}
	if atomic.LoadInt32(&cleaned) != 1 {
		t.Fatalf("expected VM cleanup called exactly once, got %d", cleaned)
	}
}

func TestOrchestrator_AbsorbSweepFiresAfterGrace(t *testing.T) {
	handler := fnHandler(func(ctx context.Context, o *Orchestrator, content string) error { return nil })
	o := newTestOrchestrator(t, handler)
	o.SetAbsorbGrace(5 * time.Millisecond)

	done := make(chan struct{})
	o.SetAbsorbFunc(func() { close(done) })

	if err := o.Submit(context.Background(), "hi", "user"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected absorb sweep to fire within grace window")
	}
}

func TestOrchestrator_ShutdownCancelsActiveTurnAndFlushesAudit(t *testing.T) {
	started := make(chan struct{})
	handler := fnHandler(func(ctx context.Context, o *Orchestrator, content string) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	o := newTestOrchestrator(t, handler)

	go o.Submit(context.Background(), "long running", "user")
	<-started

	if err := o.Shutdown("test"); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if o.State() != StateShuttingDown {
		t.Fatalf("expected ShuttingDown, got %s", o.State())
	}
}

func TestOrchestrator_IllegalTransitionRejected(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	if err := o.EndApproval(); err == nil {
		t.Fatal("expected error ending approval that never began")
	}
}
