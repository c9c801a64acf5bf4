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

import "testing"

func TestCollaborationContext_ShareAndGet(t *testing.T) {
	c := NewCollaborationContext([]string{"a", "b"})
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on unset key")
	}
	c.Share("k", 42)
	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("expected 42, got %v, ok=%v", v, ok)
	}
}

func TestCollaborationContext_OtherAgentsExcludesSelf(t *testing.T) {
	c := NewCollaborationContext([]string{"a", "b", "c"})
	others := c.OtherAgents("b")
	if len(others) != 2 {
		t.Fatalf("expected 2 others, got %d: %v", len(others), others)
	}
	for _, id := range others {
		if id == "b" {
			t.Fatal("expected self excluded")
		}
	}
}

func TestCollaborationContext_LogsAreOrderedAndIsolated(t *testing.T) {
	c := NewCollaborationContext([]string{"a", "b"})
	c.Log("a", "first")
	c.Log("b", "second")
	logs := c.Logs()
	if len(logs) != 2 || logs[0].Message != "first" || logs[1].Message != "second" {
		t.Fatalf("unexpected log order: %+v", logs)
	}
	logs[0].Message = "mutated"
	if c.Logs()[0].Message != "first" {
		t.Fatal("expected Logs() to return a defensive copy")
	}
}
