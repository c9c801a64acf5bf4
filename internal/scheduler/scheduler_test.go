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
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/loomware/warp/internal/events"
	"github.com/loomware/warp/internal/session"
)

// fakeAgent is a deterministic, delay-controllable Agent for tests.
type fakeAgent struct {
	id    string
	spec  string
	delay time.Duration
	out   string
	err   error

	running *int32 // optional: incremented/decremented around Run, for concurrency checks
	peak    *int32
}

func (a *fakeAgent) ID() string             { return a.id }
func (a *fakeAgent) Specialization() string  { return a.spec }
func (a *fakeAgent) Run(ctx context.Context, todoText string, collab *CollaborationContext) (string, error) {
	if a.running != nil {
		n := atomic.AddInt32(a.running, 1)
		defer atomic.AddInt32(a.running, -1)
		for {
			p := atomic.LoadInt32(a.peak)
			if n <= p || atomic.CompareAndSwapInt32(a.peak, p, n) {
				break
			}
		}
	}
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if a.err != nil {
		return "", a.err
	}
	if a.out != "" {
		return a.out, nil
	}
	return fmt.Sprintf("%s output for %s", a.id, todoText), nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *recordingSink) Emit(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) all() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestRunTodo_ParallelAggregatesAllRequiredHeadings(t *testing.T) {
	sink := &recordingSink{}
	sched := New(3, nil, sink)

	agents := []Agent{
		&fakeAgent{id: "frontend", spec: "frontend", out: "built the UI"},
		&fakeAgent{id: "backend", spec: "backend", out: "built the API"},
	}
	todo := &session.Todo{Content: "build a login page", Status: session.TodoStatusPending}

	out, err := sched.RunTodo(context.Background(), todo, StrategyParallel, agents)
	if err != nil {
		t.Fatalf("RunTodo: %v", err)
	}
	if todo.Status != session.TodoStatusCompleted {
		t.Fatalf("expected todo completed, got %s", todo.Status)
	}
	for _, heading := range aggregationHeadings {
		if !strings.Contains(out, heading) {
			t.Errorf("expected aggregated output to contain heading %q:\n%s", heading, out)
		}
	}
	if !strings.Contains(out, "built the UI") || !strings.Contains(out, "built the API") {
		t.Errorf("expected both agent outputs present:\n%s", out)
	}
}

func TestRunTodo_FailsTodoMarkedFailedOnTotalFailure(t *testing.T) {
	sched := New(3, nil, nil)
	agents := []Agent{
		&fakeAgent{id: "a1", err: fmt.Errorf("boom")},
		&fakeAgent{id: "a2", err: fmt.Errorf("boom2")},
	}
	todo := &session.Todo{Content: "do the thing", Status: session.TodoStatusPending}

	_, err := sched.RunTodo(context.Background(), todo, StrategyParallel, agents)
	if err == nil {
		t.Fatal("expected error when every agent fails")
	}
	if todo.Status != session.TodoStatusFailed {
		t.Fatalf("expected todo marked failed, got %s", todo.Status)
	}
}

func TestRunTodo_PartialFailureStillAggregatesSurvivors(t *testing.T) {
	sched := New(3, nil, nil)
	agents := []Agent{
		&fakeAgent{id: "good", out: "did it"},
		&fakeAgent{id: "bad", err: fmt.Errorf("nope")},
	}
	todo := &session.Todo{Content: "partial", Status: session.TodoStatusPending}

	out, err := sched.RunTodo(context.Background(), todo, StrategyParallel, agents)
	if err != nil {
		t.Fatalf("expected partial success, got error: %v", err)
	}
	if !strings.Contains(out, "did it") {
		t.Errorf("expected surviving agent's output present:\n%s", out)
	}
	if todo.Status != session.TodoStatusCompleted {
		t.Fatalf("expected completed, got %s", todo.Status)
	}
}

// TestRunTodo_ConcurrencyCapEnforced reproduces spec.md's "at most k agents
// running simultaneously" property: 6 agents with an artificial delay under
// a concurrency cap of 2 must never show more than 2 concurrently running.
func TestRunTodo_ConcurrencyCapEnforced(t *testing.T) {
	const cap = 2
	sched := New(cap, nil, nil)

	var running, peak int32
	agents := make([]Agent, 0, 6)
	for i := 0; i < 6; i++ {
		agents = append(agents, &fakeAgent{
			id:      fmt.Sprintf("agent-%d", i),
			delay:   20 * time.Millisecond,
			running: &running,
			peak:    &peak,
		})
	}
	todo := &session.Todo{Content: "fan out", Status: session.TodoStatusPending}

	_, err := sched.RunTodo(context.Background(), todo, StrategyParallel, agents)
	if err != nil {
		t.Fatalf("RunTodo: %v", err)
	}
	if peak > cap {
		t.Fatalf("observed %d agents running concurrently, cap was %d", peak, cap)
	}
}

func TestRunTodo_NoAgentsIsAnError(t *testing.T) {
	sched := New(2, nil, nil)
	todo := &session.Todo{Content: "empty", Status: session.TodoStatusPending}
	_, err := sched.RunTodo(context.Background(), todo, StrategyParallel, nil)
	if err == nil {
		t.Fatal("expected error for zero agents")
	}
	if todo.Status != session.TodoStatusFailed {
		t.Fatalf("expected failed, got %s", todo.Status)
	}
}

type fallibleAggregator struct{ err error }

func (f fallibleAggregator) Aggregate(ctx context.Context, todoText string, outputs map[string]string) (string, error) {
	return "", f.err
}

func TestRunTodo_AggregatorFailureFallsBackToConcatenation(t *testing.T) {
	sched := New(2, fallibleAggregator{err: fmt.Errorf("llm unavailable")}, nil)
	agents := []Agent{
		&fakeAgent{id: "a1", out: "x"},
		&fakeAgent{id: "a2", out: "y"},
	}
	todo := &session.Todo{Content: "fallback check", Status: session.TodoStatusPending}

	out, err := sched.RunTodo(context.Background(), todo, StrategyParallel, agents)
	if err != nil {
		t.Fatalf("expected fallback success, got %v", err)
	}
	if !strings.Contains(out, "without LLM synthesis") {
		t.Errorf("expected concatenation fallback marker, got:\n%s", out)
	}
}
