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

	"github.com/loomware/warp/internal/tokens"
	"github.com/loomware/warp/pkg/types"
)

const (
	systemTruncateChars    = 1_000
	assistantTruncateChars = 500

	// DefaultEmergencyTokenLimit is the hard backstop spec.md names: content
	// estimated beyond this many tokens gets emergency-truncated regardless
	// of any model-specific budget.
	DefaultEmergencyTokenLimit = 120_000

	emergencySentinel = "... [content truncated for length] ..."
)

// CompressResult reports a compression's effect: the kept messages and the
// token estimate before and after.
type CompressResult struct {
	Messages      []types.Message
	TokensBefore  int
	TokensAfter   int
}

// CompressMessages keeps system messages (truncated to ~1,000 chars) and
// user messages verbatim, truncates assistant messages beyond 500 chars,
// and drops tool messages entirely. It is kind-preserving and idempotent:
// compressing an already-compressed sequence is a no-op.
func CompressMessages(messages []types.Message) CompressResult {
	est := tokens.Get()
	before := 0
	for _, m := range messages {
		before += est.Count(m.Content)
	}

	out := make([]types.Message, 0, len(messages))
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, truncated(m, systemTruncateChars))
		case "user":
			out = append(out, m)
		case "assistant":
			out = append(out, truncated(m, assistantTruncateChars))
		case "tool":
			// dropped
		default:
			out = append(out, m)
		}
	}

	after := 0
	for _, m := range out {
		after += est.Count(m.Content)
	}

	return CompressResult{Messages: out, TokensBefore: before, TokensAfter: after}
}

func truncated(m types.Message, max int) types.Message {
	if len(m.Content) <= max {
		return m
	}
	out := m
	out.Content = m.Content[:max]
	return out
}

// EmergencyTruncate is the hard backstop: if content's estimated token
// count exceeds maxTokens, it retains the first 30% and last 10% of lines
// and replaces everything removed in between with a single sentinel line.
// maxTokens defaults to DefaultEmergencyTokenLimit when <= 0.
func EmergencyTruncate(content string, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = DefaultEmergencyTokenLimit
	}
	est := tokens.Get()
	if est.Count(content) <= maxTokens {
		return content
	}

	lines := strings.Split(content, "\n")
	total := len(lines)
	if total < 4 {
		// Too few lines to meaningfully split; just hard-cut the string.
		keep := maxTokens * 4
		if keep >= len(content) {
			return content
		}
		return content[:keep] + "\n" + emergencySentinel
	}

	headCount := int(float64(total) * 0.30)
	tailCount := int(float64(total) * 0.10)
	if headCount+tailCount >= total {
		headCount = total / 2
		tailCount = total - headCount - 1
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines[:headCount], "\n"))
	b.WriteString("\n")
	b.WriteString(emergencySentinel)
	b.WriteString("\n")
	b.WriteString(strings.Join(lines[total-tailCount:], "\n"))
	return b.String()
}
