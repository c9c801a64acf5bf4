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

// Package events defines the orchestrator's typed event surface and the
// bus that carries it: the one channel every long-running subsystem
// (agents, tool calls, chunk processing) uses to tell the world what it's
// doing, so a terminal UI, an exporter, or a test harness can subscribe
// without coupling to any of those subsystems directly.
package events

import (
	"sync"
	"time"
)

// Type enumerates the orchestrator's event variants, exactly as spec.md
// §4.I names them.
type Type string

const (
	TypeThinking  Type = "thinking"
	TypePlanning  Type = "planning"
	TypeExecuting Type = "executing"
	TypeProgress  Type = "progress"
	TypeResult    Type = "result"
	TypeError     Type = "error"
	TypeInfo      Type = "info"
	TypeVM        Type = "vm"
	TypeDiff      Type = "diff"
	TypeTool      Type = "tool"
	TypeAgent     Type = "agent"
)

// Event is one item on the event bus.
type Event struct {
	Type     Type
	AgentID  string
	TodoID   string
	Message  string
	Progress int // 0-100; -1 when not applicable to this event
	Data     map[string]interface{}
	At       time.Time
}

// Sink is anything that accepts events: the bus itself, a per-agent
// forwarding shim, or a test spy.
type Sink interface {
	Emit(Event)
}

// DefaultHistoryPerAgent is the ring buffer size spec.md names (§4.I):
// "bounded ring buffers per agent (default 1,000 events per agent)".
const DefaultHistoryPerAgent = 1_000

// Bus fans a single event stream out to any number of subscribers and
// keeps a bounded per-agent history for late subscribers (a HUD that
// attaches mid-turn) to catch up on. Safe for concurrent use: many
// agents and tool executions emit concurrently, the orchestrator loop is
// usually the sole subscriber driving a UI.
type Bus struct {
	mu            sync.Mutex
	subscribers   map[chan Event]struct{}
	history       map[string][]Event // keyed by AgentID; "" holds non-agent events
	historyPerTag int
}

// NewBus creates an event bus with the default per-agent history size.
func NewBus() *Bus {
	return &Bus{
		subscribers:   make(map[chan Event]struct{}),
		history:       make(map[string][]Event),
		historyPerTag: DefaultHistoryPerAgent,
	}
}

// Emit publishes ev to every current subscriber and appends it to the
// relevant agent's bounded history. Subscribers that aren't keeping up
// are never blocked indefinitely: Emit uses a non-blocking send so one
// slow consumer can't stall every producer.
func (b *Bus) Emit(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.mu.Lock()
	tag := ev.AgentID
	hist := append(b.history[tag], ev)
	if len(hist) > b.historyPerTag {
		hist = hist[len(hist)-b.historyPerTag:]
	}
	b.history[tag] = hist
	subs := make([]chan Event, 0, len(b.subscribers))
	for ch := range b.subscribers {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a channel receiving every event emitted from now on.
// Call the returned cancel func to unsubscribe and release the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 256)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// History returns the retained events for agentID ("" for non-agent
// events), oldest first.
func (b *Bus) History(agentID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.history[agentID]
	out := make([]Event, len(src))
	copy(out, src)
	return out
}
