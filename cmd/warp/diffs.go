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

import "github.com/loomware/warp/internal/events"

// pumpDiffs records the most recent diff produced against each file, so
// the REPL's "/diff" and "/accept" commands (spec.md §6) have something
// to show and clear: the tool sandbox has already applied the edit by
// the time its Result carries a diff (approval already happened in
// front of it), so "accept" here means acknowledging and dropping the
// pending entry, not a second write.
func (rt *Runtime) pumpDiffs() func() {
	ch, cancel := rt.bus.Subscribe()
	go func() {
		for ev := range ch {
			if ev.Type != events.TypeDiff {
				continue
			}
			target, _ := ev.Data["target"].(string)
			diff, _ := ev.Data["diff"].(string)
			if target == "" {
				continue
			}
			rt.mu.Lock()
			if rt.diffs == nil {
				rt.diffs = make(map[string]string)
			}
			rt.diffs[target] = diff
			rt.mu.Unlock()
		}
	}()
	return cancel
}
