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
	"sync"
	"time"

	"github.com/loomware/warp/internal/slice"
)

// LogEntry is one line an agent wrote to the shared collaboration log,
// visible to every other participant on the same todo.
type LogEntry struct {
	AgentID string
	Message string
	At      time.Time
}

// CollaborationContext is the per-turn helper every agent receives: a
// shared key-value map, a shared log, and the list of fellow
// participants. Its lifetime is exactly one todo's fan-out, grounded on
// the teacher's agent-to-agent Send/Receive helper
// (pkg/agent/agent_communication.go) simplified from a reference-store
// backed message protocol into direct in-memory sharing, since a single
// process has no need to serialize payloads between agents.
type CollaborationContext struct {
	mu           sync.Mutex
	shared       map[string]interface{}
	logs         []LogEntry
	participants []string
}

// NewCollaborationContext creates a context for the given participant
// agent IDs.
func NewCollaborationContext(participants []string) *CollaborationContext {
	return &CollaborationContext{
		shared:       make(map[string]interface{}),
		participants: participants,
	}
}

// Log appends a message from agentID to the shared collaboration log.
func (c *CollaborationContext) Log(agentID, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, LogEntry{AgentID: agentID, Message: message, At: time.Now()})
}

// Logs returns every entry logged so far, oldest first.
func (c *CollaborationContext) Logs() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LogEntry, len(c.logs))
	copy(out, c.logs)
	return out
}

// Share publishes a value under key for other agents to read via Get.
func (c *CollaborationContext) Share(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shared[key] = value
}

// Get retrieves a previously shared value.
func (c *CollaborationContext) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.shared[key]
	return v, ok
}

// OtherAgents returns every participant ID except selfID.
func (c *CollaborationContext) OtherAgents(selfID string) []string {
	return slice.Filter(c.participants, func(id string) bool { return id != selfID })
}
