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
	"strconv"
	"strings"

	"github.com/loomware/warp/internal/log"
	"go.uber.org/zap"
)

// DefaultMaxRetries is how many times a recoverable chunk failure is
// retried before it's given up on and logged as skipped.
const DefaultMaxRetries = 2

// summaryEvery controls how often an intermediate summary event fires.
const summaryEvery = 5

// EventType distinguishes the events emitted while chunks are processed.
type EventType string

const (
	EventCheckpoint EventType = "checkpoint"
	EventResult     EventType = "result"
	EventSummary    EventType = "summary"
	EventProgress   EventType = "progress"
)

// Event is one step of progress emitted by ProcessChunks.
type Event struct {
	Type       EventType
	ChunkID    string
	ChunkIndex int
	Checkpoint *Checkpoint
	Result     interface{}
	Summary    string
	Percent    float64
}

// ProcessorContext is handed to a Processor for each chunk: enough context
// to produce a coherent continuation without re-sending the whole history.
type ProcessorContext struct {
	LastResults []interface{}
	ChunkIndex  int
	TotalChunks int
	ChunkSummary string
}

// Processor does the actual work for one chunk (typically: send it to an
// LLM and return the response). A nil error is success; any error is
// classified recoverable or fatal by its message.
type Processor func(ctx context.Context, chunk *Chunk, pctx ProcessorContext) (interface{}, error)

// Options configures ProcessChunks.
type Options struct {
	MaxRetries int
}

// ProcessChunks runs processor over chunks in order, checkpointing each
// one before and after, and streams progress events on the returned
// channel. The channel is closed when every chunk has been attempted
// (successfully, or given up on after retries). Cancelling ctx stops
// processing after the in-flight chunk's processor call returns.
func ProcessChunks(ctx context.Context, store *CheckpointStore, chunks []*Chunk, processor Processor, opts Options) <-chan Event {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	events := make(chan Event, 4)

	go func() {
		defer close(events)

		var lastResults []interface{}
		total := len(chunks)

		for i, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			default:
			}

			cp, err := store.New(chunk.ID)
			if err != nil {
				log.Error("progressive: checkpoint create failed", zap.String("chunk", chunk.ID), zap.Error(err))
				continue
			}
			if err := store.Update(cp, StateProcessing, nil, ""); err != nil {
				log.Error("progressive: checkpoint update failed", zap.String("chunk", chunk.ID), zap.Error(err))
			}
			events <- Event{Type: EventCheckpoint, ChunkID: chunk.ID, ChunkIndex: i, Checkpoint: cp}

			pctx := ProcessorContext{
				LastResults:  lastN(lastResults, 3),
				ChunkIndex:   i,
				TotalChunks:  total,
				ChunkSummary: GenerateChunkSummary(chunk),
			}

			var result interface{}
			var procErr error
			attempts := 0
			for {
				result, procErr = processor(ctx, chunk, pctx)
				if procErr == nil {
					break
				}
				if !isRecoverable(procErr) {
					break
				}
				attempts++
				if attempts > opts.MaxRetries {
					break
				}
				chunk.Metadata.RetryCount = attempts
			}

			if procErr != nil {
				store.Update(cp, StateFailed, nil, procErr.Error())
				log.Warn("progressive: chunk failed",
					zap.String("chunk", chunk.ID),
					zap.Bool("recoverable", isRecoverable(procErr)),
					zap.Int("attempts", attempts),
					zap.Error(procErr))
				events <- Event{Type: EventResult, ChunkID: chunk.ID, ChunkIndex: i, Result: nil}
			} else {
				store.Update(cp, StateCompleted, result, "")
				lastResults = append(lastResults, result)
				events <- Event{Type: EventResult, ChunkID: chunk.ID, ChunkIndex: i, Result: result}
			}

			if (i+1)%summaryEvery == 0 {
				events <- Event{Type: EventSummary, ChunkIndex: i, Summary: summarizeProgress(i+1, total)}
			}

			events <- Event{Type: EventProgress, ChunkIndex: i, Percent: percent(i+1, total)}
		}
	}()

	return events
}

// recoverableMarkers are substrings that classify a processor failure as
// transient rather than fatal, mirroring the spec's error taxonomy
// (warpbase.KindTransient).
var recoverableMarkers = []string{"rate limit", "timeout", "temporary"}

func isRecoverable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, m := range recoverableMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func lastN(s []interface{}, n int) []interface{} {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func percent(done, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}

func summarizeProgress(done, total int) string {
	return "processed " + strconv.Itoa(done) + " of " + strconv.Itoa(total) + " chunks"
}
