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
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/loomware/warp/pkg/types"
)

func TestProcessChunks_AllSucceed(t *testing.T) {
	store, err := NewCheckpointStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCheckpointStore: %v", err)
	}

	// Each message is sized so two of them would exceed the 2,500-token
	// cap, forcing one message per chunk and giving a predictable chunk
	// count to check the summary/progress cadence against.
	var messages []types.Message
	for i := 0; i < 10; i++ {
		messages = append(messages, types.Message{Role: "user", Content: strings.Repeat("word ", 1_800)})
	}
	chunks := CreateChunks(messages, 2_500)
	if len(chunks) != len(messages) {
		t.Fatalf("expected one chunk per oversized-relative-to-pairing message, got %d chunks for %d messages", len(chunks), len(messages))
	}

	processor := func(ctx context.Context, chunk *Chunk, pctx ProcessorContext) (interface{}, error) {
		return "ok:" + chunk.ID, nil
	}

	var results, summaries int
	var lastPercent float64
	for ev := range ProcessChunks(context.Background(), store, chunks, processor, Options{}) {
		switch ev.Type {
		case EventResult:
			results++
		case EventSummary:
			summaries++
		case EventProgress:
			lastPercent = ev.Percent
		}
	}

	if results != len(chunks) {
		t.Fatalf("expected %d result events, got %d", len(chunks), results)
	}
	if summaries != 2 {
		t.Fatalf("expected 2 intermediate summary events (every 5 of 10 chunks), got %d", summaries)
	}
	if lastPercent != 100 {
		t.Fatalf("expected final progress 100, got %v", lastPercent)
	}
}

func TestProcessChunks_RecoverableRetriesThenGivesUp(t *testing.T) {
	store, err := NewCheckpointStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCheckpointStore: %v", err)
	}
	chunks := CreateChunks([]types.Message{{Role: "user", Content: "hi"}}, 2_500)

	attempts := 0
	processor := func(ctx context.Context, chunk *Chunk, pctx ProcessorContext) (interface{}, error) {
		attempts++
		return nil, errors.New("upstream rate limit exceeded")
	}

	for range ProcessChunks(context.Background(), store, chunks, processor, Options{MaxRetries: 2}) {
	}

	if attempts != 3 {
		t.Fatalf("expected 1 initial attempt + 2 retries = 3, got %d", attempts)
	}
}

func TestProcessChunks_FatalFailureSkipsWithoutRetry(t *testing.T) {
	store, err := NewCheckpointStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCheckpointStore: %v", err)
	}
	chunks := CreateChunks([]types.Message{{Role: "user", Content: "hi"}}, 2_500)

	attempts := 0
	processor := func(ctx context.Context, chunk *Chunk, pctx ProcessorContext) (interface{}, error) {
		attempts++
		return nil, errors.New("invalid schema")
	}

	for range ProcessChunks(context.Background(), store, chunks, processor, Options{MaxRetries: 2}) {
	}

	if attempts != 1 {
		t.Fatalf("expected fatal failure to skip retries, got %d attempts", attempts)
	}
}
