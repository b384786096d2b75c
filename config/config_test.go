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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesDocumentedConstants(t *testing.T) {
	c := Default()
	assert.Equal(t, 100, c.ChunkSize)
	assert.Equal(t, int64(500), c.MaxDemand)
	assert.Equal(t, 1000, c.BufferSize)
	assert.False(t, c.EnableTelemetry)
	assert.Equal(t, 5*time.Second, c.Timeout)
}

func TestHighThroughputExceedsDefaultBuffers(t *testing.T) {
	hi := HighThroughput()
	def := Default()
	assert.Greater(t, hi.BufferSize, def.BufferSize)
	assert.Greater(t, hi.MaxDemand, def.MaxDemand)
	assert.True(t, hi.EnableTelemetry)
}

func TestLowLatencyShrinksBuffersAndTimeout(t *testing.T) {
	lo := LowLatency()
	def := Default()
	assert.Less(t, lo.BufferSize, def.BufferSize)
	assert.Less(t, lo.Timeout, def.Timeout)
}

func TestNewAppliesOptionsOverDefault(t *testing.T) {
	c := New(WithChunkSize(7), WithMemoryLimit(1024), WithAggregations("amount", "qty"))
	assert.Equal(t, 7, c.ChunkSize)
	assert.Equal(t, int64(1024), c.MemoryLimit)
	assert.Equal(t, []string{"amount", "qty"}, c.Aggregations)
	assert.Equal(t, defaultMaxDemand, int(c.MaxDemand))
}

func TestWithFilterExpressionSetsFilterExpression(t *testing.T) {
	c := New(WithFilterExpression("amount > 100"))
	assert.Equal(t, "amount > 100", c.FilterExpression)
}

func TestLoadReadsYAMLAndAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.yaml")
	yamlBody := "chunk_size: 42\nbuffer_size: 2000\naggregations:\n  - amount\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	c, err := Load(path, WithEnableTelemetry(true))
	require.NoError(t, err)
	assert.Equal(t, 42, c.ChunkSize)
	assert.Equal(t, 2000, c.BufferSize)
	assert.Equal(t, []string{"amount"}, c.Aggregations)
	assert.True(t, c.EnableTelemetry)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromEnvOverlaysSetVariablesOnly(t *testing.T) {
	t.Setenv("REPORTFLOW_CHUNK_SIZE", "64")
	t.Setenv("REPORTFLOW_ENABLE_TELEMETRY", "true")

	base := Default()
	c := FromEnv(base)
	assert.Equal(t, 64, c.ChunkSize)
	assert.True(t, c.EnableTelemetry)
	assert.Equal(t, base.BufferSize, c.BufferSize)
}
