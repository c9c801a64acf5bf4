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

// Package scheduler fans a todo out across the agents assigned to a turn,
// merges their outputs, and enforces a concurrency cap. It is grounded on
// the teacher's pkg/collaboration dispatch-by-pattern engine
// (pkg/collaboration/engine.go) and the shared per-agent collaboration
// helper in pkg/agent/agent_communication.go, generalized from a fixed
// set of named collaboration patterns into a per-todo fan-out with the
// pattern selectable as a Strategy.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/loomware/warp/internal/events"
	"github.com/loomware/warp/internal/log"
	"github.com/loomware/warp/internal/session"
	"go.uber.org/zap"
)

// DefaultConcurrency is the max number of agents running at once per
// turn, per spec.md §4.H.
const DefaultConcurrency = 3

// TaskStatus is an AgentTask's lifecycle stage.
type TaskStatus string

const (
	TaskQueued    TaskStatus = "queued"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// AgentTask is the Scheduler's record of one agent's work on one todo.
// The orchestrator holds a weak (string-id) reference to tasks it cares
// about rather than a pointer, so the scheduler remains the sole owner.
type AgentTask struct {
	ID          string
	BlueprintID string
	Description string
	Status      TaskStatus
	StartedAt   time.Time
	EndedAt     time.Time
	Result      string
	Err         error
}

// Agent is anything the scheduler can fan a todo out to.
type Agent interface {
	ID() string
	Specialization() string
	Run(ctx context.Context, todoText string, collab *CollaborationContext) (string, error)
}

// Aggregator synthesizes a single consensus artifact from every agent's
// output on one todo.
type Aggregator interface {
	Aggregate(ctx context.Context, todoText string, outputs map[string]string) (string, error)
}

// Strategy is the fan-out discipline applied to a todo.
type Strategy string

const (
	StrategyParallel       Strategy = "parallel"
	StrategyDebate         Strategy = "debate"
	StrategyTeacherStudent Strategy = "teacher_student"
)

// Scheduler launches agents per todo, merges their outputs, and tracks
// task state. One Scheduler is created per session; its concurrency cap
// applies to each todo's parallel fan-out, not across todos.
type Scheduler struct {
	concurrency int
	aggregator  Aggregator
	sink        events.Sink

	tasks map[string]*AgentTask
}

// New creates a Scheduler. sink may be nil, in which case events are
// dropped (useful in tests). concurrency <= 0 uses DefaultConcurrency.
func New(concurrency int, aggregator Aggregator, sink events.Sink) *Scheduler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Scheduler{
		concurrency: concurrency,
		aggregator:  aggregator,
		sink:        sink,
		tasks:       make(map[string]*AgentTask),
	}
}

// Task returns the scheduler's record of a task by id.
func (s *Scheduler) Task(id string) (*AgentTask, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

func (s *Scheduler) emit(ev events.Event) {
	if s.sink != nil {
		s.sink.Emit(ev)
	}
}

// RunTodo fans todo out to the agents according to strategy, awaits them,
// then merges their outputs. The concurrency cap applies to the parallel
// strategy only: the debate strategy runs every agent of a round at once,
// and the teacher/student strategy runs agents one at a time. It moves
// todo.Status from pending to in_progress, then to completed on success or
// failed on error, and returns the merged artifact.
func (s *Scheduler) RunTodo(ctx context.Context, todo *session.Todo, strategy Strategy, agents []Agent) (string, error) {
	todo.Status = session.TodoStatusInProgress
	s.emit(events.Event{Type: events.TypePlanning, Message: "todo started: " + todo.Content})

	switch strategy {
	case StrategyDebate:
		out, err := RunDebate(ctx, todo.Content, agents, s.emitFor)
		s.finishTodo(todo, err)
		return out, err
	case StrategyTeacherStudent:
		out, err := RunTeacherStudent(ctx, todo.Content, agents, s.emitFor)
		s.finishTodo(todo, err)
		return out, err
	default:
		out, err := s.runParallel(ctx, todo, agents)
		s.finishTodo(todo, err)
		return out, err
	}
}

func (s *Scheduler) finishTodo(todo *session.Todo, err error) {
	if err != nil {
		todo.Status = session.TodoStatusFailed // a failed plan doesn't silently look done
		s.emit(events.Event{Type: events.TypeError, Message: "todo failed: " + todo.Content, Data: map[string]interface{}{"error": err.Error()}})
		return
	}
	todo.Status = session.TodoStatusCompleted
	s.emit(events.Event{Type: events.TypeResult, Message: "todo completed: " + todo.Content})
}

func (s *Scheduler) emitFor(ev events.Event) { s.emit(ev) }

// runParallel is the default StrategyParallel fan-out/fan-in: every agent
// runs concurrently (bounded by the concurrency cap) on the same todo
// text, sharing one CollaborationContext, and the results are merged by
// the Aggregator.
func (s *Scheduler) runParallel(ctx context.Context, todo *session.Todo, agents []Agent) (string, error) {
	if len(agents) == 0 {
		return "", fmt.Errorf("scheduler: no agents assigned to todo %q", todo.Content)
	}

	participants := make([]string, len(agents))
	for i, a := range agents {
		participants[i] = a.ID()
	}
	collab := NewCollaborationContext(participants)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	outputs := make(map[string]string, len(agents))
	var outputsMu sync.Mutex

	for _, a := range agents {
		agent := a
		taskID := uuid.New().String()
		task := &AgentTask{ID: taskID, BlueprintID: agent.ID(), Description: todo.Content, Status: TaskQueued}
		s.tasks[taskID] = task

		group.Go(func() error {
			task.Status = TaskRunning
			task.StartedAt = time.Now()
			s.emit(events.Event{Type: events.TypeAgent, AgentID: agent.ID(), TodoID: todo.Content, Message: "agent started"})

			out, err := agent.Run(gctx, todo.Content, collab)
			task.EndedAt = time.Now()
			if err != nil {
				task.Status = TaskFailed
				task.Err = err
				log.Warn("scheduler: agent failed", zap.String("agent", agent.ID()), zap.Error(err))
				s.emit(events.Event{Type: events.TypeError, AgentID: agent.ID(), Message: "agent failed: " + err.Error()})
				return nil // an agent failure is reported per-agent; it never aborts the whole todo
			}
			task.Status = TaskCompleted
			task.Result = out

			key := collabOutputKey(agent.ID(), todo.Content)
			collab.Share(key, out)
			outputsMu.Lock()
			outputs[agent.ID()] = out
			outputsMu.Unlock()
			s.emit(events.Event{Type: events.TypeAgent, AgentID: agent.ID(), TodoID: todo.Content, Message: "agent completed", Progress: 100})
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return "", err
	}

	if len(outputs) == 0 {
		return "", fmt.Errorf("scheduler: every agent failed on todo %q", todo.Content)
	}

	merged, err := s.aggregate(ctx, todo.Content, outputs)
	if err != nil {
		return "", err
	}
	return merged, nil
}

func (s *Scheduler) aggregate(ctx context.Context, todoText string, outputs map[string]string) (string, error) {
	if s.aggregator == nil {
		return concatenateOutputs(outputs), nil
	}
	merged, err := s.aggregator.Aggregate(ctx, todoText, outputs)
	if err != nil {
		log.Warn("scheduler: aggregator failed, falling back to concatenation", zap.Error(err))
		return concatenateOutputs(outputs), nil
	}
	return merged, nil
}

func collabOutputKey(agentID, todoID string) string {
	return fmt.Sprintf("%s:todo:%s:output", agentID, todoID)
}
