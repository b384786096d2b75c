/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package aggregation

// defaultBaseCardinalities is the geometric series spec.md §4.2 step 5
// names for estimating the number of distinct groups at each nesting
// level when no better information is available.
var defaultBaseCardinalities = []int64{100, 1_000, 5_000, 10_000, 20_000}

const (
	defaultBytesPerGroup      = 256
	defaultMaxEstimatedGroups = 100_000
)

// Options configures build validation and defaults.
type Options struct {
	// Cumulative controls whether level-n's GroupBy accumulates levels
	// 1..n (true, the default) or carries only its own field (false).
	Cumulative bool

	// BaseCardinalities overrides the per-level group-count estimate used
	// in memory pre-validation; index i estimates level i+1. When a report
	// has more levels than entries, the last entry is reused.
	BaseCardinalities []int64

	// BytesPerGroup overrides the assumed per-group memory cost.
	BytesPerGroup int64

	// MaxEstimatedGroups caps the total estimated group count across all
	// levels. Zero means use the default (100,000).
	MaxEstimatedGroups int64

	// MaxEstimatedMemory caps the total estimated bytes across all levels.
	// Zero means unlimited (only MaxEstimatedGroups applies).
	MaxEstimatedMemory int64

	// EnforceLimits, when false, downgrades a limit breach to a logged
	// warning and returns Ok instead of MemoryLimitExceeded.
	EnforceLimits bool
}

// Option mutates an Options value being built up by NewOptions.
type Option func(*Options)

// WithCumulative sets whether group_by values accumulate across levels.
func WithCumulative(cumulative bool) Option {
	return func(o *Options) { o.Cumulative = cumulative }
}

// WithBaseCardinalities overrides the per-level cardinality estimates.
func WithBaseCardinalities(c []int64) Option {
	return func(o *Options) { o.BaseCardinalities = c }
}

// WithBytesPerGroup overrides the assumed per-group memory cost.
func WithBytesPerGroup(n int64) Option {
	return func(o *Options) { o.BytesPerGroup = n }
}

// WithMaxEstimatedGroups overrides the group-count limit.
func WithMaxEstimatedGroups(n int64) Option {
	return func(o *Options) { o.MaxEstimatedGroups = n }
}

// WithMaxEstimatedMemory sets a byte-count limit (0 = unlimited).
func WithMaxEstimatedMemory(n int64) Option {
	return func(o *Options) { o.MaxEstimatedMemory = n }
}

// WithEnforceLimits toggles whether a breach fails the build or only warns.
func WithEnforceLimits(enforce bool) Option {
	return func(o *Options) { o.EnforceLimits = enforce }
}

// NewOptions builds an Options value with the spec's defaults, then applies
// opts in order.
func NewOptions(opts ...Option) Options {
	o := Options{
		Cumulative:         true,
		BaseCardinalities:  defaultBaseCardinalities,
		BytesPerGroup:      defaultBytesPerGroup,
		MaxEstimatedGroups: defaultMaxEstimatedGroups,
		MaxEstimatedMemory: 0,
		EnforceLimits:      true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) cardinalityForLevel(level int) int64 {
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(o.BaseCardinalities) {
		idx = len(o.BaseCardinalities) - 1
	}
	if idx < 0 {
		return defaultBytesPerGroup
	}
	return o.BaseCardinalities[idx]
}
