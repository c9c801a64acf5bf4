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

// Package queue implements the prioritized, bypass-aware ingress queue
// that sits in front of the orchestrator loop: at most one input is being
// processed at a time, and while a modal prompt (an approval, a plan
// confirmation) owns the terminal, bypass mode routes new keystrokes to
// it instead of enqueuing them.
package queue

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Priority orders queued input; items are drained high-to-low, FIFO
// within a priority class.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// QueuedInput is one item waiting to be processed.
type QueuedInput struct {
	ID         string
	Content    string
	Priority   Priority
	Source     string
	EnqueuedAt int64
}

// Status is a snapshot of the queue for a status command or HUD.
type Status struct {
	QueueLength   int
	IsProcessing  bool
	PendingInputs []QueuedInput
}

// approvalReplyPatterns match content that should always bypass the queue
// because it answers a blocked approval prompt rather than starting new
// work.
var approvalReplyPatterns = []string{"y", "yes", "n", "no", "approve", "reject", "deny"}

// priorityKeywords maps a keyword to the priority it implies when it
// appears anywhere in the content; derivedIsHigh checks these alongside
// the "/" command and "@agent" prefixes.
var priorityKeywords = map[string]Priority{
	"urgent":  PriorityHigh,
	"asap":    PriorityHigh,
	"stop":    PriorityHigh,
	"cancel":  PriorityHigh,
}

// Queue is the prioritized input ingress. Safe for concurrent use.
type Queue struct {
	mu          sync.Mutex
	items       map[Priority][]QueuedInput
	processing  bool
	bypass      bool
	clock       func() int64
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		items: map[Priority][]QueuedInput{
			PriorityHigh:   {},
			PriorityNormal: {},
			PriorityLow:    {},
		},
		clock: monotonicClock(),
	}
}

// Enqueue derives a priority from content (a leading "/" or "@", or a
// keyword hit, escalates to high) and appends the item to its class.
func (q *Queue) Enqueue(content string, priority Priority, source string) string {
	if derivedIsHigh(content) {
		priority = PriorityHigh
	}
	id := uuid.New().String()
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items[priority] = append(q.items[priority], QueuedInput{
		ID:         id,
		Content:    content,
		Priority:   priority,
		Source:     source,
		EnqueuedAt: q.clock(),
	})
	return id
}

// DerivePriority classifies content the way Enqueue does, exposed so
// callers can decide whether to bypass entirely before enqueuing.
func DerivePriority(content string) Priority {
	if derivedIsHigh(content) {
		return PriorityHigh
	}
	return PriorityNormal
}

func derivedIsHigh(content string) bool {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "@") {
		return true
	}
	lower := strings.ToLower(trimmed)
	for kw, p := range priorityKeywords {
		if p == PriorityHigh && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Worker processes one dequeued item's content.
type Worker func(content string)

// ProcessNext dequeues the single highest-priority, oldest item and runs
// worker on it, serialized behind the processing flag so at most one
// worker runs at a time. Returns false if the queue was empty.
func (q *Queue) ProcessNext(worker Worker) bool {
	q.mu.Lock()
	if q.processing {
		q.mu.Unlock()
		return false
	}
	item, ok := q.popLocked()
	if !ok {
		q.mu.Unlock()
		return false
	}
	q.processing = true
	q.mu.Unlock()

	worker(item.Content)

	q.mu.Lock()
	q.processing = false
	q.mu.Unlock()
	return true
}

func (q *Queue) popLocked() (QueuedInput, bool) {
	for _, p := range []Priority{PriorityHigh, PriorityNormal, PriorityLow} {
		if len(q.items[p]) > 0 {
			item := q.items[p][0]
			q.items[p] = q.items[p][1:]
			return item, true
		}
	}
	return QueuedInput{}, false
}

// GetStatus returns a point-in-time snapshot of the queue.
func (q *Queue) GetStatus() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	var pending []QueuedInput
	for _, p := range []Priority{PriorityHigh, PriorityNormal, PriorityLow} {
		pending = append(pending, q.items[p]...)
	}
	return Status{
		QueueLength:   len(pending),
		IsProcessing:  q.processing,
		PendingInputs: pending,
	}
}

// Clear empties every priority class and returns how many items were
// removed.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	removed := 0
	for p, items := range q.items {
		removed += len(items)
		q.items[p] = nil
	}
	return removed
}

// ShouldQueue reports whether content should be enqueued at all: false
// when bypass is active, or when content looks like a reply to a blocked
// approval prompt (those always route directly to the prompt).
func (q *Queue) ShouldQueue(content string) bool {
	q.mu.Lock()
	bypass := q.bypass
	q.mu.Unlock()
	if bypass {
		return false
	}
	return !isApprovalReply(content)
}

func isApprovalReply(content string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	for _, p := range approvalReplyPatterns {
		if trimmed == p {
			return true
		}
	}
	return false
}

// EnableBypass switches the queue into bypass mode, used while a modal
// prompt owns terminal input.
func (q *Queue) EnableBypass() {
	q.mu.Lock()
	q.bypass = true
	q.mu.Unlock()
}

// DisableBypass restores normal queueing.
func (q *Queue) DisableBypass() {
	q.mu.Lock()
	q.bypass = false
	q.mu.Unlock()
}

// IsBypassEnabled reports the current bypass state.
func (q *Queue) IsBypassEnabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bypass
}

// ForceCleanup restores invariants after an abnormal prompt exit: clears
// bypass and the processing flag without touching queued content, so a
// crashed prompt doesn't permanently wedge the queue.
func (q *Queue) ForceCleanup() {
	q.mu.Lock()
	q.bypass = false
	q.processing = false
	q.mu.Unlock()
}

func monotonicClock() func() int64 {
	var n int64
	var mu sync.Mutex
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		n++
		return n
	}
}
