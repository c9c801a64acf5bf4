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
package sandbox

import (
	"sort"
	"sync"

	"github.com/loomware/warp/internal/log"
	"go.uber.org/zap"
)

// Registry holds the set of tools available to a session. It is safe for
// concurrent use since multiple scheduler workers may look tools up at once.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, overwriting any existing registration under the
// same name. Overwrite is idempotent on purpose: a plug-in reloading its
// own tool (or a test rebinding a mock) should not have to unregister
// first. A collision is logged rather than silent, since it usually means
// two plug-ins picked the same name by accident.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		log.Warn("tool re-registered, overwriting previous handler", zap.String("tool", name))
	}
	r.tools[name] = tool
	return nil
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all registered tools sorted by name, for deterministic
// prompt construction.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ListByBackend filters List by backend, e.g. to show only filesystem tools
// in a restricted session.
func (r *Registry) ListByBackend(backend Backend) []Tool {
	all := r.List()
	out := all[:0:0]
	for _, t := range all {
		if t.Backend() == backend {
			out = append(out, t)
		}
	}
	return out
}

// Unregister removes a tool by name. Used by sessions that disable specific
// tools via configuration.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
