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

// Package tokens estimates token counts for budgeting and trimming
// decisions, and holds the static per-model context/pricing catalog.
package tokens

import (
	"math"
	"sync"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator counts tokens for a piece of text. It prefers a real BPE
// encoding and falls back to a deterministic heuristic when the encoding
// table can't be loaded (e.g. offline in a sandboxed build), so callers
// always get an O(n) answer rather than an error.
type Estimator struct {
	encoding *tiktoken.Tiktoken
}

var (
	globalEstimator     *Estimator
	globalEstimatorOnce sync.Once
)

// Get returns the process-wide Estimator. The tiktoken encoding table is
// immutable for the life of the process, so sharing one instance is safe
// and avoids re-loading the BPE table per session.
func Get() *Estimator {
	globalEstimatorOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			globalEstimator = &Estimator{}
			return
		}
		globalEstimator = &Estimator{encoding: enc}
	})
	return globalEstimator
}

// Count returns the estimated token count of text.
func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	if e.encoding != nil {
		return len(e.encoding.Encode(text, nil, nil))
	}
	return heuristicCount(text)
}

// CountMultiple sums Count over several strings, for counting a whole
// message history without concatenating it first.
func (e *Estimator) CountMultiple(texts ...string) int {
	total := 0
	for _, t := range texts {
		total += e.Count(t)
	}
	return total
}

// heuristicCount implements the fallback estimate: the larger of a
// char-based and a word-based guess, nudged up for punctuation-heavy text,
// then rounded up. This mirrors the character/word heuristic long used as
// a tiktoken-less fallback, intentionally crude but fast and monotonic.
func heuristicCount(text string) int {
	charEstimate := float64(len(text)) / 4.0

	words := 0
	nonAlnum := 0
	inWord := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			words++
			inWord = true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			nonAlnum++
		}
	}
	wordEstimate := float64(words) * 1.3

	estimate := math.Max(charEstimate, wordEstimate) + float64(nonAlnum)*0.2
	return int(math.Ceil(estimate))
}
