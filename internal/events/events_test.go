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
package events

import "testing"

func TestBus_SubscribeReceivesEmittedEvents(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Emit(Event{Type: TypeInfo, Message: "hello"})

	select {
	case ev := <-ch:
		if ev.Message != "hello" {
			t.Fatalf("unexpected message: %q", ev.Message)
		}
	default:
		t.Fatal("expected event delivered to subscriber")
	}
}

func TestBus_HistoryBoundedPerAgent(t *testing.T) {
	b := &Bus{
		subscribers:   make(map[chan Event]struct{}),
		history:       make(map[string][]Event),
		historyPerTag: 3,
	}
	for i := 0; i < 10; i++ {
		b.Emit(Event{Type: TypeProgress, AgentID: "a1"})
	}
	hist := b.History("a1")
	if len(hist) != 3 {
		t.Fatalf("expected history bounded to 3, got %d", len(hist))
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe()
	cancel()

	b.Emit(Event{Type: TypeInfo})

	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after cancel")
	}
}
