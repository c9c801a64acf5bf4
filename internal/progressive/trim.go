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
package progressive

import (
	"fmt"
	"strings"

	"github.com/loomware/warp/internal/tokens"
	"github.com/loomware/warp/pkg/types"
)

// TrimOptions configures the chat trimmer. Zero values fall back to the
// spec's documented defaults.
type TrimOptions struct {
	// KeepRecent is how many of the most recent non-system messages are
	// always kept verbatim. Default 4.
	KeepRecent int
	// HeadTail is how many non-system messages are kept from the very
	// start and very end of the conversation, independent of KeepRecent.
	// Default 2.
	HeadTail int
	// EmergencyTokenLimit is the hard backstop applied after the
	// budget-aware trim; default DefaultEmergencyTokenLimit.
	EmergencyTokenLimit int
}

const (
	DefaultKeepRecent = 4
	DefaultHeadTail   = 2
)

// Trim returns messages trimmed to fit within budgetTokens (normally
// modelLimit(model) - headroom), preserving: all system messages, the most
// recent KeepRecent non-system messages, a head/tail window of HeadTail
// non-system messages at each end, and a compressed summary standing in
// for whatever non-system messages were elided from the middle. A 120,000
// token emergency backstop always applies regardless of budgetTokens.
func Trim(messages []types.Message, budgetTokens int, opts TrimOptions) []types.Message {
	recentCount := opts.KeepRecent
	if recentCount <= 0 {
		recentCount = DefaultKeepRecent
	}
	headTail := opts.HeadTail
	if headTail <= 0 {
		headTail = DefaultHeadTail
	}
	emergencyLimit := opts.EmergencyTokenLimit
	if emergencyLimit <= 0 {
		emergencyLimit = DefaultEmergencyTokenLimit
	}

	est := tokens.Get()
	totalTokens := 0
	for _, m := range messages {
		totalTokens += est.Count(m.Content)
	}
	if budgetTokens <= 0 || totalTokens <= budgetTokens {
		return applyEmergencyBackstop(messages, emergencyLimit)
	}

	var nonSystemIdx []int
	for i, m := range messages {
		if !strings.EqualFold(m.Role, "system") {
			nonSystemIdx = append(nonSystemIdx, i)
		}
	}
	n := len(nonSystemIdx)

	keep := make(map[int]bool, n)
	if n <= recentCount {
		for _, idx := range nonSystemIdx {
			keep[idx] = true
		}
	} else {
		headN := headTail
		if headN > n {
			headN = n
		}
		for i := 0; i < headN; i++ {
			keep[nonSystemIdx[i]] = true
		}
		tailN := recentCount
		if headTail > tailN {
			tailN = headTail
		}
		tailStart := n - tailN
		if tailStart < 0 {
			tailStart = 0
		}
		for i := tailStart; i < n; i++ {
			keep[nonSystemIdx[i]] = true
		}
	}

	out := make([]types.Message, 0, len(messages))
	var elided []types.Message
	insertedSummary := false
	flushElided := func() {
		if len(elided) == 0 {
			return
		}
		compressed := CompressMessages(elided)
		out = append(out, types.Message{
			Role:    "system",
			Content: fmt.Sprintf("[%d earlier messages summarized] %s", len(elided), summaryText(compressed)),
		})
		elided = nil
		insertedSummary = true
	}

	for i, m := range messages {
		if strings.EqualFold(m.Role, "system") {
			flushElided()
			out = append(out, m)
			continue
		}
		if keep[i] {
			flushElided()
			out = append(out, m)
			continue
		}
		elided = append(elided, m)
	}
	flushElided()
	_ = insertedSummary

	return applyEmergencyBackstop(out, emergencyLimit)
}

func summaryText(r CompressResult) string {
	var parts []string
	for _, m := range r.Messages {
		parts = append(parts, m.Content)
	}
	joined := strings.Join(parts, " ")
	if len(joined) > 400 {
		joined = joined[:400]
	}
	return joined
}

// applyEmergencyBackstop runs regardless of what budget-aware trimming
// already did: when the total estimate exceeds limit, it truncates every
// message estimated above limit/4 tokens down to about limit/4, in a single
// pass. The result is not re-checked, so a total made up of many messages
// each at or below limit/4 can still exceed limit.
func applyEmergencyBackstop(messages []types.Message, limit int) []types.Message {
	est := tokens.Get()
	total := 0
	for _, m := range messages {
		total += est.Count(m.Content)
	}
	if total <= limit {
		return messages
	}

	out := make([]types.Message, len(messages))
	copy(out, messages)
	for i, m := range out {
		if est.Count(m.Content) > limit/4 {
			out[i].Content = EmergencyTruncate(m.Content, limit/4)
		}
	}
	return out
}
