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
	"strings"
	"sync"
)

const chunkSummaryPrefixLen = 200

// actionCategories maps a human-readable category label to the keywords
// whose presence (case-insensitive substring match) signals it.
var actionCategories = []struct {
	label    string
	keywords []string
}{
	{"implement/create", []string{"implement", "create"}},
	{"fix/debug", []string{"fix", "debug"}},
	{"analyze/review", []string{"analyze", "review"}},
	{"optimize/improve", []string{"optimize", "improve"}},
}

var (
	summaryCacheMu sync.Mutex
	summaryCache   = make(map[string]string)
)

// GenerateChunkSummary produces a short human-readable summary of a chunk:
// which action categories its messages touch on, plus a prefix of the last
// user message. Results are cached by chunk id since the same chunk is
// often summarized more than once (once eagerly, again for a HUD refresh).
func GenerateChunkSummary(chunk *Chunk) string {
	summaryCacheMu.Lock()
	if s, ok := summaryCache[chunk.ID]; ok {
		summaryCacheMu.Unlock()
		return s
	}
	summaryCacheMu.Unlock()

	var categories []string
	var lastUser string
	for _, m := range chunk.Messages {
		lower := strings.ToLower(m.Content)
		for _, cat := range actionCategories {
			for _, kw := range cat.keywords {
				if strings.Contains(lower, kw) {
					categories = append(categories, cat.label)
					break
				}
			}
		}
		if strings.EqualFold(m.Role, "user") {
			lastUser = m.Content
		}
	}
	categories = uniqueStrings(categories)

	var b strings.Builder
	if len(categories) > 0 {
		b.WriteString(strings.Join(categories, ", "))
	} else {
		b.WriteString("general")
	}
	if lastUser != "" {
		if len(lastUser) > chunkSummaryPrefixLen {
			lastUser = lastUser[:chunkSummaryPrefixLen]
		}
		b.WriteString(": ")
		b.WriteString(lastUser)
	}

	summary := b.String()
	summaryCacheMu.Lock()
	summaryCache[chunk.ID] = summary
	summaryCacheMu.Unlock()
	return summary
}

func uniqueStrings(s []string) []string {
	seen := make(map[string]bool, len(s))
	out := s[:0:0]
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
