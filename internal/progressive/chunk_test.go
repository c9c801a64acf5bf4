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
	"testing"

	"github.com/loomware/warp/internal/tokens"
	"github.com/loomware/warp/pkg/types"
)

func TestCreateChunks_PreservesOrderAndCap(t *testing.T) {
	var messages []types.Message
	for i := 0; i < 10; i++ {
		messages = append(messages, types.Message{Role: "user", Content: strings.Repeat("word ", 300)})
	}

	chunks := CreateChunks(messages, 2_500)
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	for _, c := range chunks {
		if c.EstimatedTokens > 2_500 && len(c.Messages) > 1 {
			t.Fatalf("chunk %s exceeds cap with multiple messages: %d tokens", c.ID, c.EstimatedTokens)
		}
	}

	restored := Concat(chunks)
	if len(restored) != len(messages) {
		t.Fatalf("expected %d messages restored, got %d", len(messages), len(restored))
	}
}

func TestCreateChunks_OversizedMessageOwnsItsChunk(t *testing.T) {
	huge := types.Message{Role: "user", Content: strings.Repeat("x ", 20_000)}
	small := types.Message{Role: "user", Content: "hi"}

	chunks := CreateChunks([]types.Message{small, huge, small}, 2_500)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks (small, huge-alone, small), got %d", len(chunks))
	}
	if len(chunks[1].Messages) != 1 {
		t.Fatalf("expected the oversized message to occupy its own chunk, got %d messages", len(chunks[1].Messages))
	}
}

func TestCreateChunks_TokenSumWithinTolerance(t *testing.T) {
	est := tokens.Get()
	var messages []types.Message
	var all strings.Builder
	for i := 0; i < 20; i++ {
		text := strings.Repeat("hello world ", 50)
		messages = append(messages, types.Message{Role: "user", Content: text})
		all.WriteString(text)
	}

	chunks := CreateChunks(messages, 2_500)
	sum := 0
	for _, c := range chunks {
		sum += c.EstimatedTokens
	}
	wholeEstimate := est.Count(all.String())
	// Chunked estimation sums per-message counts rather than one
	// concatenated count, so it should never undercount by more than the
	// tolerance spec.md allows.
	lower := float64(wholeEstimate) * 0.95
	if float64(sum) < lower {
		t.Fatalf("chunk token sum %d too far below whole estimate %d", sum, wholeEstimate)
	}
}
