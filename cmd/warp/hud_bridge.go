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
package main

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/loomware/warp/internal/hud"
)

// pumpHUD feeds bus events into the HUD model without a real
// charm.land/bubbletea/v2 program: warp's REPL is a plain line-oriented
// terminal (see repl.go), not a full-screen TUI, so there is no
// *tea.Program to forward events through as internal/hud.Subscribe
// expects. The HUD model is still a real tea.Model: its pure Update is
// driven directly here, and `/status` renders the result with View().
func (rt *Runtime) pumpHUD() func() {
	ch, cancel := rt.bus.Subscribe()
	go func() {
		for ev := range ch {
			rt.mu.Lock()
			updated, _ := rt.hudModel.Update(hud.EventMsg(ev))
			rt.hudModel = updated
			rt.mu.Unlock()
		}
	}()
	return cancel
}

// applyTerminalWidth reads the real terminal column count (falling back to
// the HUD's own default when stdout isn't a TTY, e.g. piped output or CI)
// and feeds it to the HUD model as the same tea.WindowSizeMsg a full
// bubbletea program would deliver on resize, so truncateLine wraps lines
// at the actual terminal width instead of the REPL's fixed fallback.
func (rt *Runtime) applyTerminalWidth() {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return
	}
	rt.mu.Lock()
	updated, _ := rt.hudModel.Update(tea.WindowSizeMsg{Width: width})
	rt.hudModel = updated
	rt.mu.Unlock()
}
