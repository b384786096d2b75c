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

// Package config holds the top-level, CLI/env/YAML-facing settings named
// in spec.md §6's "CLI surface": chunk_size, max_demand, buffer_size,
// enable_telemetry, memory_limit, timeout, aggregations, grouped_aggregations.
// It is a thinner, serializable sibling of pipeline.Config, built the
// teacher's way: a struct plus functional options plus named presets.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GroupedAggregation is the YAML/flag-friendly form of a grouped rollup:
// GroupBy names the fields to group by, and Aggregations restricts which
// fields get sum/avg/min/max/count folded into each group's
// AggregationState (an empty list means "every numeric field", matching
// record.AggregationState.Add's own convention).
type GroupedAggregation struct {
	GroupBy      []string `yaml:"group_by"`
	Aggregations []string `yaml:"aggregations"`
	MaxGroups    int      `yaml:"max_groups"`
}

// Config is the subset of settings spec.md §6 says the CLI surface must
// recognize, loadable from functional options or a YAML file.
type Config struct {
	ChunkSize           int                  `yaml:"chunk_size"`
	MaxDemand           int64                `yaml:"max_demand"`
	MinDemand           int64                `yaml:"min_demand"`
	BufferSize          int                  `yaml:"buffer_size"`
	EnableTelemetry     bool                 `yaml:"enable_telemetry"`
	MemoryLimit         int64                `yaml:"memory_limit"`
	Timeout             time.Duration        `yaml:"timeout"`
	Aggregations        []string             `yaml:"aggregations"`
	GroupedAggregations []GroupedAggregation `yaml:"grouped_aggregations"`

	// FilterExpression, if non-empty, is compiled by pipeline.ExprFilter
	// into a per-record filter: records for which it evaluates false are
	// dropped before aggregation, the same expr-lang boolean-condition
	// shape spec.md's WHERE-style filtering uses.
	FilterExpression string `yaml:"filter_expression"`
}

// Option mutates a Config being built up by New.
type Option func(*Config)

// WithChunkSize sets the batch size the pipeline pulls per transform cycle.
func WithChunkSize(n int) Option { return func(c *Config) { c.ChunkSize = n } }

// WithMaxDemand sets the upper bound of the backpressure demand window.
func WithMaxDemand(n int64) Option { return func(c *Config) { c.MaxDemand = n } }

// WithMinDemand sets the lower bound that triggers a new demand request.
func WithMinDemand(n int64) Option { return func(c *Config) { c.MinDemand = n } }

// WithBufferSize sets the bounded channel capacity between stages.
func WithBufferSize(n int) Option { return func(c *Config) { c.BufferSize = n } }

// WithEnableTelemetry toggles telemetry event emission.
func WithEnableTelemetry(enabled bool) Option {
	return func(c *Config) { c.EnableTelemetry = enabled }
}

// WithMemoryLimit sets the estimated-bytes cap enforced during aggregation
// construction (spec.md §4.2).
func WithMemoryLimit(bytes int64) Option { return func(c *Config) { c.MemoryLimit = bytes } }

// WithTimeout sets the per-record transformer timeout and the Typst
// compile timeout alike.
func WithTimeout(d time.Duration) Option { return func(c *Config) { c.Timeout = d } }

// WithAggregations sets the global (ungrouped) aggregation field list.
func WithAggregations(fields ...string) Option {
	return func(c *Config) { c.Aggregations = fields }
}

// WithGroupedAggregations sets the grouped rollup specs.
func WithGroupedAggregations(specs ...GroupedAggregation) Option {
	return func(c *Config) { c.GroupedAggregations = specs }
}

// WithFilterExpression sets the expr-lang boolean expression records must
// satisfy to survive into the pipeline, compiled via pipeline.ExprFilter.
func WithFilterExpression(expression string) Option {
	return func(c *Config) { c.FilterExpression = expression }
}

const (
	defaultChunkSize   = 100
	defaultMaxDemand   = 500
	defaultMinDemand   = 100
	defaultBufferSize  = 1000
	defaultMemoryLimit = 64 << 20
	defaultTimeout     = 5 * time.Second
)

// New builds a Config from Default() plus opts applied in order.
func New(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Default returns balanced settings suitable for most report workloads.
func Default() Config {
	return Config{
		ChunkSize:       defaultChunkSize,
		MaxDemand:       defaultMaxDemand,
		MinDemand:       defaultMinDemand,
		BufferSize:      defaultBufferSize,
		EnableTelemetry: false,
		MemoryLimit:     defaultMemoryLimit,
		Timeout:         defaultTimeout,
	}
}

// HighThroughput favors large buffers and demand windows over latency,
// mirroring the teacher's high-performance preset.
func HighThroughput() Config {
	c := Default()
	c.ChunkSize = 500
	c.MaxDemand = 5000
	c.MinDemand = 1000
	c.BufferSize = 50000
	c.EnableTelemetry = true
	c.MemoryLimit = 512 << 20
	return c
}

// LowLatency favors small buffers and a short demand window over raw
// throughput, mirroring the teacher's low-latency preset.
func LowLatency() Config {
	c := Default()
	c.ChunkSize = 20
	c.MaxDemand = 100
	c.MinDemand = 20
	c.BufferSize = 100
	c.EnableTelemetry = true
	c.Timeout = 1 * time.Second
	return c
}

// Load reads a YAML file at path and applies opts on top of its values.
func Load(path string, opts ...Option) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

// FromEnv overlays the spec.md §6 environment variables
// (REPORTFLOW_CHUNK_SIZE, REPORTFLOW_MAX_DEMAND, REPORTFLOW_BUFFER_SIZE,
// REPORTFLOW_ENABLE_TELEMETRY, REPORTFLOW_MEMORY_LIMIT, REPORTFLOW_TIMEOUT)
// onto base, leaving unset variables untouched.
func FromEnv(base Config) Config {
	c := base
	if v, ok := os.LookupEnv("REPORTFLOW_CHUNK_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.ChunkSize = n
		}
	}
	if v, ok := os.LookupEnv("REPORTFLOW_MAX_DEMAND"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxDemand = n
		}
	}
	if v, ok := os.LookupEnv("REPORTFLOW_BUFFER_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.BufferSize = n
		}
	}
	if v, ok := os.LookupEnv("REPORTFLOW_ENABLE_TELEMETRY"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnableTelemetry = b
		}
	}
	if v, ok := os.LookupEnv("REPORTFLOW_MEMORY_LIMIT"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MemoryLimit = n
		}
	}
	if v, ok := os.LookupEnv("REPORTFLOW_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	return c
}
