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
	"fmt"
	"sort"
	"strings"
)

// aggregationHeadings are the sections spec.md's scenario 6 requires in
// every merged artifact, in order.
var aggregationHeadings = []string{
	"Summary",
	"Key Findings",
	"Implementation Steps",
	"Code Changes",
	"Risks/Considerations",
	"Next Actions",
}

// BuildAggregationPrompt constructs the prompt an LLM-backed Aggregator
// sends to synthesize a consensus artifact from every agent's output on
// one todo. It is exported so a concrete Aggregator implementation (an
// LLM call) can reuse it rather than re-deriving the section contract.
func BuildAggregationPrompt(todoText string, outputs map[string]string) string {
	ids := sortedKeys(outputs)
	var b strings.Builder
	fmt.Fprintf(&b, "Todo: %s\n\n", todoText)
	b.WriteString("The following agents independently worked on this todo. ")
	b.WriteString("Synthesize their outputs into one consensus artifact with exactly these headings, in order: ")
	b.WriteString(strings.Join(aggregationHeadings, ", "))
	b.WriteString(".\n\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n", id, outputs[id])
	}
	return b.String()
}

// concatenateOutputs is the fallback used when the Aggregator fails or
// isn't configured: a deterministic concatenation under the same
// required headings, so downstream consumers never have to special-case
// the fallback format.
func concatenateOutputs(outputs map[string]string) string {
	ids := sortedKeys(outputs)
	var b strings.Builder
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "%d agents contributed; outputs concatenated without LLM synthesis.\n\n", len(ids))
	b.WriteString("## Key Findings\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "- [%s] see full output below\n", id)
	}
	b.WriteString("\n## Implementation Steps\n(see per-agent output)\n\n")
	b.WriteString("## Code Changes\n(see per-agent output)\n\n")
	b.WriteString("## Risks/Considerations\nAggregator was unavailable; outputs were not reconciled for conflicts.\n\n")
	b.WriteString("## Next Actions\nReview each agent's output below manually.\n\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "### %s\n%s\n\n", id, outputs[id])
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
