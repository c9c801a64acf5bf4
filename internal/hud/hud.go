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

// Package hud is the advisory plan HUD: a bubbletea model that renders the
// current todo list with status badges and a per-agent activity dashboard,
// fed entirely by internal/events.Bus. It is grounded on the teacher's
// internal/tui/page/chat todo/queue pills (pills.go) and on
// internal/app.App's event-forwarding loop (App.Subscribe ranges over a
// channel and calls program.Send), generalized here into a standalone
// model instead of a page embedded in a much larger chat TUI, since
// SPEC_FULL.md describes the HUD as advisory-only and decoupled from any
// particular chat rendering.
package hud

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/loomware/warp/internal/events"
	"github.com/loomware/warp/internal/queue"
	"github.com/loomware/warp/internal/session"
)

// EventMsg wraps a bus event as a bubbletea message. Subscribe forwards
// every event off internal/events.Bus this way.
type EventMsg events.Event

// AgentStatus is the HUD's view of one agent's most recent activity.
type AgentStatus struct {
	AgentID     string
	LastType    events.Type
	LastMessage string
	Progress    int
}

// Model is the plan HUD's bubbletea model. It holds no authority over the
// orchestrator: it only reflects what has already happened, per
// SPEC_FULL.md's "advisory-only" requirement.
type Model struct {
	width int

	todos       []session.Todo
	queueStatus queue.Status
	agents      map[string]*AgentStatus
	agentOrder  []string

	spinner spinner.Model
}

// New creates a HUD model with no bus wired in yet. Call the package-level
// Subscribe (from the tea.Program driving this model) to start pumping bus
// events into it as tea.Msg values.
func New() Model {
	return Model{
		agents:  make(map[string]*AgentStatus),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

// Subscribe ranges over bus events and forwards them to program as
// EventMsg, exactly as the teacher's App.Subscribe forwards its events
// channel to a tea.Program. Run this in its own goroutine; call the
// returned func to unsubscribe and stop the forwarding goroutine.
func Subscribe(program *tea.Program, bus *events.Bus) func() {
	ch, cancel := bus.Subscribe()
	go func() {
		for ev := range ch {
			program.Send(EventMsg(ev))
		}
	}()
	return cancel
}

// SetTodos replaces the todo list the HUD renders. Called by the
// orchestrator's TurnHandler whenever the session's todo list changes;
// not itself driven by the event bus since todos are session state, not
// a transient event.
func (m *Model) SetTodos(todos []session.Todo) { m.todos = todos }

// SetQueueStatus replaces the queue snapshot the HUD renders.
func (m *Model) SetQueueStatus(s queue.Status) { m.queueStatus = s }

// Init starts the spinner animation.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update applies an incoming message: spinner ticks animate, EventMsg
// values update the per-agent dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case EventMsg:
		m.applyEvent(events.Event(msg))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applyEvent(ev events.Event) {
	if ev.AgentID == "" {
		return
	}
	st, ok := m.agents[ev.AgentID]
	if !ok {
		st = &AgentStatus{AgentID: ev.AgentID}
		m.agents[ev.AgentID] = st
		m.agentOrder = append(m.agentOrder, ev.AgentID)
	}
	st.LastType = ev.Type
	st.LastMessage = ev.Message
	st.Progress = ev.Progress
}

// View renders the todo list, the queue pill, and the per-agent
// dashboard, in that order, one block per line group.
func (m Model) View() string {
	var b strings.Builder

	if list := renderTodoList(m.todos, m.spinner.View(), m.displayWidth()); list != "" {
		b.WriteString(list)
		b.WriteString("\n")
	}
	if pill := renderQueuePill(m.queueStatus); pill != "" {
		b.WriteString(pill)
		b.WriteString("\n")
	}
	if dash := m.renderAgentDashboard(); dash != "" {
		b.WriteString(dash)
	}
	return b.String()
}

// defaultHUDWidth is used when no tea.WindowSizeMsg has arrived yet, e.g.
// in the plain line-oriented REPL (see cmd/warp/hud_bridge.go) which
// drives this model's Update directly without a real bubbletea program.
const defaultHUDWidth = 100

func (m Model) displayWidth() int {
	if m.width <= 0 {
		return defaultHUDWidth
	}
	return m.width
}

var (
	styleCompleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	stylePending    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleFailed     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleMuted      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleAgentID    = lipgloss.NewStyle().Bold(true)
)

// statusBadge mirrors the teacher's TodoCompletedIcon/TodoPendingIcon
// icon choices from internal/tui/styles/icons.go, adding an in-progress
// spinner glyph and a failed glyph of its own since the teacher's icon
// set has no dedicated symbol for either (it instead reuses the live
// spinner view and has no failed-todo state at all).
func statusBadge(status session.TodoStatus, spin string) string {
	switch status {
	case session.TodoStatusCompleted:
		return styleCompleted.Render("✓")
	case session.TodoStatusInProgress:
		return styleInProgress.Render(spin)
	case session.TodoStatusFailed:
		return styleFailed.Render("×")
	default:
		return stylePending.Render("•")
	}
}

func renderTodoList(todos []session.Todo, spin string, width int) string {
	if len(todos) == 0 {
		return ""
	}
	completed, done := 0, 0
	for _, t := range todos {
		if t.Status == session.TodoStatusCompleted {
			completed++
		}
		if t.Status == session.TodoStatusCompleted || t.Status == session.TodoStatusFailed {
			done++
		}
	}
	if done == len(todos) {
		return ""
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("To-Do %d/%d", completed, len(todos)))
	for _, t := range todos {
		text := t.Content
		if t.Status == session.TodoStatusInProgress && t.ActiveForm != "" {
			text = t.ActiveForm
		}
		lines = append(lines, fmt.Sprintf("  %s %s", statusBadge(t.Status, spin), truncateLine(text, width-4)))
	}
	return strings.Join(lines, "\n")
}

// truncateLine shortens s to fit width terminal columns, accounting for
// wide runes and ANSI escapes the way the teacher's own list/agent TUI
// components do (pkg/tui/components/core/core.go), so a long todo or
// agent message never wraps the HUD's compact one-line-per-item layout.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

func renderQueuePill(s queue.Status) string {
	if s.QueueLength == 0 {
		return ""
	}
	return styleMuted.Render(fmt.Sprintf("▶ %d queued", s.QueueLength))
}

func (m Model) renderAgentDashboard() string {
	if len(m.agentOrder) == 0 {
		return ""
	}
	ids := append([]string(nil), m.agentOrder...)
	sort.Strings(ids)

	var lines []string
	for _, id := range ids {
		st := m.agents[id]
		msg := st.LastMessage
		if st.Progress >= 0 && st.Progress <= 100 {
			msg = fmt.Sprintf("%s (%d%%)", msg, st.Progress)
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", agentTypeGlyph(st.LastType), styleAgentID.Render(id), truncateLine(msg, m.displayWidth()-len(id)-6)))
	}
	return strings.Join(lines, "\n")
}

// agentTypeGlyph maps an event.Type to a single display glyph, reusing
// the teacher's icon vocabulary (CheckIcon/ErrorIcon/WarningIcon) for the
// states that have a direct analogue and falling back to a spinner dot
// for anything still in flight.
func agentTypeGlyph(t events.Type) string {
	switch t {
	case events.TypeResult:
		return styleCompleted.Render("✓")
	case events.TypeError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("×")
	case events.TypeThinking, events.TypePlanning, events.TypeExecuting, events.TypeProgress:
		return styleInProgress.Render("⋯")
	default:
		return styleMuted.Render("ⓘ")
	}
}
