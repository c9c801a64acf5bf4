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
package queue

import (
	"testing"
)

// TestQueue_PriorityOrdering reproduces spec.md scenario 1: enqueueing A
// (normal), B (normal), then "/status" (auto-prefix high) drains in the
// order [/status, A, B].
func TestQueue_PriorityOrdering(t *testing.T) {
	q := New()
	q.Enqueue("A", PriorityNormal, "user")
	q.Enqueue("B", PriorityNormal, "user")
	q.Enqueue("/status", DerivePriority("/status"), "user")

	var drained []string
	for {
		st := q.GetStatus()
		if st.QueueLength == 0 {
			break
		}
		q.ProcessNext(func(content string) {
			drained = append(drained, content)
		})
	}

	want := []string{"/status", "A", "B"}
	if len(drained) != len(want) {
		t.Fatalf("expected %d items drained, got %d: %v", len(want), len(drained), drained)
	}
	for i, w := range want {
		if drained[i] != w {
			t.Fatalf("drain order mismatch at %d: want %q got %q (%v)", i, w, drained[i], drained)
		}
	}
}

func TestQueue_ProcessNextSerializesOneAtATime(t *testing.T) {
	q := New()
	q.Enqueue("first", PriorityNormal, "user")
	q.Enqueue("second", PriorityNormal, "user")

	started := make(chan struct{})
	release := make(chan struct{})
	go q.ProcessNext(func(content string) {
		close(started)
		<-release
	})
	<-started

	if ok := q.ProcessNext(func(string) {}); ok {
		t.Fatal("expected ProcessNext to refuse a second concurrent worker")
	}
	close(release)
}

func TestQueue_ShouldQueue_BypassAndApprovalReplies(t *testing.T) {
	q := New()
	if !q.ShouldQueue("tell me about foo") {
		t.Fatal("expected normal content to be queued")
	}
	if q.ShouldQueue("yes") {
		t.Fatal("expected an approval reply to bypass the queue")
	}

	q.EnableBypass()
	if q.ShouldQueue("anything") {
		t.Fatal("expected bypass mode to route everything away from the queue")
	}
	q.DisableBypass()
	if !q.ShouldQueue("anything") {
		t.Fatal("expected queueing to resume after bypass is disabled")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New()
	q.Enqueue("a", PriorityNormal, "user")
	q.Enqueue("b", PriorityHigh, "user")
	if removed := q.Clear(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if st := q.GetStatus(); st.QueueLength != 0 {
		t.Fatalf("expected empty queue after clear, got %d", st.QueueLength)
	}
}

func TestQueue_ForceCleanupRestoresInvariants(t *testing.T) {
	q := New()
	q.EnableBypass()
	q.mu.Lock()
	q.processing = true
	q.mu.Unlock()

	q.ForceCleanup()

	if q.IsBypassEnabled() {
		t.Fatal("expected bypass cleared after ForceCleanup")
	}
	st := q.GetStatus()
	if st.IsProcessing {
		t.Fatal("expected processing flag cleared after ForceCleanup")
	}
}
