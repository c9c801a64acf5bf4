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

// Package progressive turns an arbitrarily large message sequence into a
// stream of bounded processing units, checkpointing each one so a run can
// resume after a crash instead of restarting from scratch. It is grounded
// on the teacher's segmented-memory and LLM-compression machinery
// (pkg/agent/memory_compressor.go, segmented_memory.go,
// compression_profiles.go) generalized from a single conversation history
// into an arbitrary chunk/checkpoint pipeline.
package progressive

import (
	"fmt"
	"time"

	"github.com/loomware/warp/internal/tokens"
	"github.com/loomware/warp/pkg/types"
)

// DefaultMaxTokensPerChunk is the chunk token budget used when a caller
// doesn't override it.
const DefaultMaxTokensPerChunk = 2_500

// ChunkMetadata carries bookkeeping that mutates as a chunk moves through
// processing; the chunk's Messages and EstimatedTokens never change once
// constructed.
type ChunkMetadata struct {
	CreatedAt    time.Time
	ProcessedAt  *time.Time
	RetryCount   int
	Dependencies []string
}

// Chunk is a bounded, ordered slice of messages whose estimated token
// total fits within a processing budget. Chunks are append-only: once
// CreateChunks returns, only Metadata and the Compressed/Summary fields
// are ever mutated, by the processor that owns this run.
type Chunk struct {
	ID              string
	Index           int
	Messages        []types.Message
	EstimatedTokens int
	Compressed      bool
	Summary         string
	Metadata        ChunkMetadata
}

// CreateChunks linearly partitions messages into chunks whose estimated
// token total does not exceed maxTokensPerChunk. A single message that
// alone exceeds the cap becomes its own oversized chunk rather than being
// split or dropped, preserving message order throughout.
func CreateChunks(messages []types.Message, maxTokensPerChunk int) []*Chunk {
	if maxTokensPerChunk <= 0 {
		maxTokensPerChunk = DefaultMaxTokensPerChunk
	}
	est := tokens.Get()
	now := time.Now()

	var chunks []*Chunk
	var current []types.Message
	currentTokens := 0
	index := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, &Chunk{
			ID:              chunkID(index, now),
			Index:           index,
			Messages:        current,
			EstimatedTokens: currentTokens,
			Metadata:        ChunkMetadata{CreatedAt: now},
		})
		index++
		current = nil
		currentTokens = 0
	}

	for _, m := range messages {
		mTokens := est.Count(m.Content)
		if mTokens > maxTokensPerChunk {
			flush()
			chunks = append(chunks, &Chunk{
				ID:              chunkID(index, now),
				Index:           index,
				Messages:        []types.Message{m},
				EstimatedTokens: mTokens,
				Metadata:        ChunkMetadata{CreatedAt: now},
			})
			index++
			continue
		}
		if currentTokens+mTokens > maxTokensPerChunk {
			flush()
		}
		current = append(current, m)
		currentTokens += mTokens
	}
	flush()

	return chunks
}

// Concat restores the original message order across a chunk set, the
// inverse of CreateChunks.
func Concat(chunks []*Chunk) []types.Message {
	var out []types.Message
	for _, c := range chunks {
		out = append(out, c.Messages...)
	}
	return out
}

func chunkID(index int, t time.Time) string {
	return fmt.Sprintf("chunk-%d-%d", index, t.UnixNano())
}
