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
package tokens

import "sync"

// TokenBudget tracks how much of a model's context window has been
// consumed. Safe for concurrent use. No other package in the module uses
// it.
type TokenBudget struct {
	mu        sync.RWMutex
	max       int
	reserved  int
	used      int
}

// NewTokenBudget creates a budget for the given model, reserving its
// default output allowance from the usable total.
func NewTokenBudget(model string) *TokenBudget {
	limits := LimitsFor(model)
	return &TokenBudget{max: limits.MaxContextTokens, reserved: limits.ReservedOutputTokens}
}

// AvailableTokens returns how many tokens remain before the budget (minus
// the output reservation) is exhausted.
func (b *TokenBudget) AvailableTokens() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	avail := b.max - b.reserved - b.used
	if avail < 0 {
		return 0
	}
	return avail
}

// CanFit reports whether n more tokens fit in the remaining budget.
func (b *TokenBudget) CanFit(n int) bool {
	return n <= b.AvailableTokens()
}

// Use consumes n tokens from the budget.
func (b *TokenBudget) Use(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used += n
}

// Free releases n previously-used tokens, e.g. after trimming history.
func (b *TokenBudget) Free(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used -= n
	if b.used < 0 {
		b.used = 0
	}
}

// Reset zeroes usage without changing the max/reserved configuration.
func (b *TokenBudget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used = 0
}

// GetUsage returns (used, max).
func (b *TokenBudget) GetUsage() (int, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.used, b.max
}

// UsagePercentage returns used/max as a 0-100 percentage.
func (b *TokenBudget) UsagePercentage() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.max == 0 {
		return 0
	}
	return float64(b.used) / float64(b.max) * 100
}

// IsNearLimit reports whether usage has crossed the warning threshold.
func (b *TokenBudget) IsNearLimit() bool { return b.UsagePercentage() > 70 }

// IsCritical reports whether usage has crossed the critical threshold.
func (b *TokenBudget) IsCritical() bool { return b.UsagePercentage() > 85 }

// NeedsWarning is an alias for IsNearLimit.
func (b *TokenBudget) NeedsWarning() bool { return b.IsNearLimit() }
