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
// Package session holds the ChatSession state spec.md §3 names: the
// running todo list a turn's Agent Scheduler drives, plus per-session
// token/cost fields.
package session

// Session represents one interactive orchestrator lifetime: its todo
// list and token/cost fields. Merge applies partial updates; cmd/warp
// maintains Todos and does not write the token/cost fields.
type Session struct {
	ID               string
	Title            string
	CreatedAt        int64
	UpdatedAt        int64
	CompletionTokens int
	PromptTokens     int
	Cost             float64
	Todos            []Todo
	Model            string // Model used in this session (e.g., "claude-sonnet-4-6")
	Provider         string // Provider used in this session (e.g., "anthropic")
}

// Merge returns a copy of s with non-zero fields from update applied.
// This preserves existing fields like Title and Todos when receiving
// partial updates (e.g., cost/token updates from the coordinator).
func (s Session) Merge(update Session) Session {
	result := s
	if update.CompletionTokens > 0 {
		result.CompletionTokens = update.CompletionTokens
	}
	if update.PromptTokens > 0 {
		result.PromptTokens = update.PromptTokens
	}
	if update.Cost > 0 {
		result.Cost = update.Cost
	}
	if update.Model != "" {
		result.Model = update.Model
	}
	if update.Provider != "" {
		result.Provider = update.Provider
	}
	if update.Title != "" {
		result.Title = update.Title
	}
	if update.UpdatedAt > 0 {
		result.UpdatedAt = update.UpdatedAt
	}
	if len(update.Todos) > 0 {
		result.Todos = update.Todos
	}
	return result
}

// Todo represents a todo item.
type Todo struct {
	Content    string
	ActiveForm string
	Status     TodoStatus
}

// TodoStatus represents the status of a todo item, matching the badge set
// the plan HUD renders (spec.md §4.K) and the AgentTask status the
// scheduler tracks (spec.md §3).
type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
	TodoStatusFailed     TodoStatus = "failed"
)
