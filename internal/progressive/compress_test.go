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

func TestCompressMessages_DropsToolKeepsUser(t *testing.T) {
	messages := []types.Message{
		{Role: "system", Content: strings.Repeat("s", 2_000)},
		{Role: "user", Content: "please do the thing"},
		{Role: "assistant", Content: strings.Repeat("a", 1_000)},
		{Role: "tool", Content: "raw tool output"},
	}

	result := CompressMessages(messages)
	if len(result.Messages) != 3 {
		t.Fatalf("expected tool message dropped, got %d messages", len(result.Messages))
	}
	for _, m := range result.Messages {
		switch m.Role {
		case "system":
			if len(m.Content) > 1_000 {
				t.Fatalf("system message not truncated to 1000 chars: %d", len(m.Content))
			}
		case "user":
			if m.Content != "please do the thing" {
				t.Fatalf("user message should be verbatim, got %q", m.Content)
			}
		case "assistant":
			if len(m.Content) > 500 {
				t.Fatalf("assistant message not truncated to 500 chars: %d", len(m.Content))
			}
		}
	}
	if result.TokensAfter >= result.TokensBefore {
		t.Fatalf("expected compression to reduce token count: before=%d after=%d", result.TokensBefore, result.TokensAfter)
	}
}

func TestCompressMessages_Idempotent(t *testing.T) {
	messages := []types.Message{
		{Role: "system", Content: strings.Repeat("s", 2_000)},
		{Role: "assistant", Content: strings.Repeat("a", 1_000)},
	}
	once := CompressMessages(messages).Messages
	twice := CompressMessages(once).Messages

	if len(once) != len(twice) {
		t.Fatalf("compress(compress(M)) changed message count: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Role != twice[i].Role || once[i].Content != twice[i].Content {
			t.Fatalf("compress is not idempotent at index %d", i)
		}
	}
}

func TestEmergencyTruncate_RetainsHeadAndTailWithSentinel(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20_000; i++ {
		b.WriteString("this is a line of example content for truncation testing\n")
	}
	content := b.String()

	truncated := EmergencyTruncate(content, 120_000)

	est := tokens.Get()
	if est.Count(truncated) > 120_000 {
		t.Fatalf("truncated content still exceeds the cap: %d tokens", est.Count(truncated))
	}
	if strings.Count(truncated, emergencySentinel) != 1 {
		t.Fatalf("expected exactly one sentinel marker, found %d", strings.Count(truncated, emergencySentinel))
	}
	if !strings.HasPrefix(truncated, "this is a line") {
		t.Fatal("expected leading lines retained")
	}
	if !strings.HasSuffix(strings.TrimRight(truncated, "\n"), "testing") {
		t.Fatal("expected trailing lines retained")
	}
}

func TestEmergencyTruncate_NoOpBelowLimit(t *testing.T) {
	content := "short content well under any token cap"
	if got := EmergencyTruncate(content, 120_000); got != content {
		t.Fatalf("expected content unchanged below the cap, got %q", got)
	}
}
