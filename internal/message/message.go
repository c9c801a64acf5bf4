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

// Package message holds the orchestrator's transcript: every message a
// turn produces (not just the LLM request/response pairs pkg/types.Message
// carries across the provider boundary), tagged with the kind of thing
// that wrote it and a lifecycle status an absorb sweep eventually retires.
// Grounded on the teacher's internal/message.Service (a pubsub-backed
// CRUD store keyed by session), generalized here into a single process-
// lifetime Store with a status machine instead of a database-backed
// per-session table, since the orchestrator keeps one transcript for its
// own lifetime rather than many persisted chat sessions.
package message

import (
	"fmt"
	"sync"
	"time"
)

// Kind identifies what produced a message.
type Kind string

const (
	KindUser   Kind = "user"
	KindSystem Kind = "system"
	KindAgent  Kind = "agent"
	KindTool   Kind = "tool"
	KindDiff   Kind = "diff"
	KindVM     Kind = "vm"
	KindError  Kind = "error"
)

// Status is a message's place in its lifecycle.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusAbsorbed   Status = "absorbed"
)

// Message is one transcript entry. Progress and Metadata are nil unless
// the kind that produced the message uses them (agent/tool messages
// report Progress; tool messages carry structured Metadata such as an
// exit code or file path).
type Message struct {
	ID        int64
	Kind      Kind
	Status    Status
	Content   string
	AgentID   string
	Progress  *int
	Metadata  map[string]interface{}
	CreatedAt time.Time

	completedAt time.Time
}

// Store is the orchestrator's append-mostly transcript. Safe for
// concurrent use: the scheduler's agents and the REPL's /status reader can
// touch it from different goroutines.
type Store struct {
	mu         sync.Mutex
	nextID     int64
	messages   []*Message
	processing int64 // ID of the message currently StatusProcessing, 0 if none
}

// NewStore creates an empty transcript.
func NewStore() *Store {
	return &Store{}
}

// Append records a new message in StatusQueued and returns it. The
// returned Message's ID is assigned here and never reused.
func (s *Store) Append(kind Kind, agentID, content string) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m := &Message{
		ID:        s.nextID,
		Kind:      kind,
		Status:    StatusQueued,
		Content:   content,
		AgentID:   agentID,
		CreatedAt: time.Now(),
	}
	s.messages = append(s.messages, m)
	return m
}

// errAlreadyProcessing is returned by SetStatus when a caller tries to
// mark a second message StatusProcessing while one is already in flight,
// enforcing "at most one message is in status processing at any time".
func errAlreadyProcessing(id int64) error {
	return fmt.Errorf("message: cannot start processing, message %d is already processing", id)
}

// SetStatus transitions the message with the given id. Moving a message
// to StatusProcessing fails if a different message is already
// StatusProcessing; the caller must finish (or fail) that one first.
func (s *Store) SetStatus(id int64, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(id)
	if m == nil {
		return fmt.Errorf("message: no message with id %d", id)
	}
	if status == StatusProcessing {
		if s.processing != 0 && s.processing != id {
			return errAlreadyProcessing(s.processing)
		}
		s.processing = id
	} else if m.Status == StatusProcessing && s.processing == id {
		s.processing = 0
	}
	m.Status = status
	if status == StatusCompleted {
		m.completedAt = time.Now()
	}
	return nil
}

// SetProgress records a 0-100 completion estimate for an in-flight
// agent/tool message. Values outside [0,100] are clamped.
func (s *Store) SetProgress(id int64, pct int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(id)
	if m == nil {
		return fmt.Errorf("message: no message with id %d", id)
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	m.Progress = &pct
	return nil
}

// SetMetadata attaches structured metadata to a message (e.g. a tool's
// exit code or a diff's file path).
func (s *Store) SetMetadata(id int64, meta map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(id)
	if m == nil {
		return fmt.Errorf("message: no message with id %d", id)
	}
	m.Metadata = meta
	return nil
}

func (s *Store) find(id int64) *Message {
	for _, m := range s.messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Absorb soft-deletes every completed non-user message from the active
// view by moving it to StatusAbsorbed, and returns how many it absorbed.
// Called once per turn by the orchestrator's AbsorbFunc, DefaultAbsorbGrace
// after the turn returns control to AwaitingInput (spec.md §4.I): by the
// time this runs, the grace period has already elapsed, so absorption here
// is unconditional rather than re-checking each message's own age.
func (s *Store) Absorb() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.Kind == KindUser || m.Status != StatusCompleted {
			continue
		}
		m.Status = StatusAbsorbed
		n++
	}
	return n
}

// List returns every non-absorbed message, oldest first: the active view
// a UI renders.
func (s *Store) List() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Status == StatusAbsorbed {
			continue
		}
		out = append(out, *m)
	}
	return out
}

// All returns every message ever appended, including absorbed ones, for
// diagnostics and tests.
func (s *Store) All() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = *m
	}
	return out
}

// Len returns the number of non-absorbed messages.
func (s *Store) Len() int {
	return len(s.List())
}
