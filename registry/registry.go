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

// Package registry is the process-wide directory of running pipelines: it
// assigns each one a stream_id, tracks its lifecycle status and counters,
// and watches its producer goroutine so a crash still lands the pipeline in
// a terminal state.
package registry

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rulego/reportflow/logger"
)

// Status is a pipeline's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrNotFound is returned when a stream_id has no registered pipeline.
var ErrNotFound = errors.New("registry: pipeline not found")

// ProducerHandle is the minimal surface a Producer exposes so Registry can
// observe it crashing: a channel that closes when the producer's goroutine
// exits.
type ProducerHandle interface {
	Done() <-chan struct{}
}

// PipelineInfo is the registry's view of one pipeline.
type PipelineInfo struct {
	StreamID string
	Status   Status
	Metadata map[string]interface{}

	recordsProcessed int64
	memoryUsage      int64
	startedAt        time.Time

	mu sync.RWMutex
}

// RecordsProcessed returns the monotonically non-decreasing processed count.
func (p *PipelineInfo) RecordsProcessed() int64 {
	return atomic.LoadInt64(&p.recordsProcessed)
}

// MemoryUsage returns the last reported memory usage, in bytes.
func (p *PipelineInfo) MemoryUsage() int64 {
	return atomic.LoadInt64(&p.memoryUsage)
}

// StartedAt returns when the pipeline was registered.
func (p *PipelineInfo) StartedAt() time.Time {
	return p.startedAt
}

// snapshot returns a value copy safe to hand to callers outside the lock.
func (p *PipelineInfo) snapshot() PipelineInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PipelineInfo{
		StreamID:         p.StreamID,
		Status:           p.Status,
		Metadata:         p.Metadata,
		recordsProcessed: atomic.LoadInt64(&p.recordsProcessed),
		memoryUsage:      atomic.LoadInt64(&p.memoryUsage),
		startedAt:        p.startedAt,
	}
}

// Registry is the process-wide pipeline directory. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	pipelines map[string]*PipelineInfo
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{pipelines: make(map[string]*PipelineInfo)}
}

// RegisterPipeline assigns a fresh stream_id to producer and records it as
// running. When producer is non-nil, Registry watches its Done channel in a
// background goroutine and marks the pipeline failed if it closes before
// the pipeline reaches a terminal status itself.
func (r *Registry) RegisterPipeline(producer ProducerHandle, metadata map[string]interface{}) (string, error) {
	streamID := uuid.NewString()
	info := &PipelineInfo{
		StreamID:  streamID,
		Status:    StatusRunning,
		Metadata:  metadata,
		startedAt: time.Now(),
	}

	r.mu.Lock()
	r.pipelines[streamID] = info
	r.mu.Unlock()

	if producer != nil {
		go r.watchForCrash(streamID, producer)
	}
	return streamID, nil
}

// watchForCrash transitions a pipeline to failed if its producer's Done
// channel closes while the pipeline is still non-terminal. This is what
// lets Registry survive a producer goroutine crashing without anyone
// calling UpdateStatus.
func (r *Registry) watchForCrash(streamID string, producer ProducerHandle) {
	<-producer.Done()

	r.mu.RLock()
	info, ok := r.pipelines[streamID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	info.mu.Lock()
	terminal := info.Status == StatusCompleted || info.Status == StatusFailed
	if !terminal {
		info.Status = StatusFailed
	}
	info.mu.Unlock()

	if !terminal {
		logger.Warn("registry: pipeline %s marked failed after producer terminated abnormally", streamID)
	}
}

// GetPipeline returns a point-in-time copy of the pipeline's info.
func (r *Registry) GetPipeline(streamID string) (PipelineInfo, error) {
	r.mu.RLock()
	info, ok := r.pipelines[streamID]
	r.mu.RUnlock()
	if !ok {
		return PipelineInfo{}, ErrNotFound
	}
	return info.snapshot(), nil
}

// UpdateStatus sets a pipeline's status.
func (r *Registry) UpdateStatus(streamID string, status Status) error {
	r.mu.RLock()
	info, ok := r.pipelines[streamID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	info.mu.Lock()
	info.Status = status
	info.mu.Unlock()
	return nil
}

// IncrementRecords atomically adds n to records_processed.
func (r *Registry) IncrementRecords(streamID string, n int64) error {
	r.mu.RLock()
	info, ok := r.pipelines[streamID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	atomic.AddInt64(&info.recordsProcessed, n)
	return nil
}

// UpdateMemoryUsage atomically sets the pipeline's reported memory usage.
func (r *Registry) UpdateMemoryUsage(streamID string, bytes int64) error {
	r.mu.RLock()
	info, ok := r.pipelines[streamID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	atomic.StoreInt64(&info.memoryUsage, bytes)
	return nil
}

// Filters narrows ListPipelines to pipelines matching every non-zero field.
type Filters struct {
	Status Status
}

// ListPipelines returns a snapshot of every pipeline matching filters.
func (r *Registry) ListPipelines(filters Filters) []PipelineInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PipelineInfo, 0, len(r.pipelines))
	for _, info := range r.pipelines {
		snap := info.snapshot()
		if filters.Status != "" && snap.Status != filters.Status {
			continue
		}
		out = append(out, snap)
	}
	return out
}

// CountByStatus returns the number of pipelines in each status.
func (r *Registry) CountByStatus() map[Status]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[Status]int)
	for _, info := range r.pipelines {
		info.mu.RLock()
		counts[info.Status]++
		info.mu.RUnlock()
	}
	return counts
}

// Deregister removes a pipeline's entry immediately, regardless of status.
func (r *Registry) Deregister(streamID string) {
	r.mu.Lock()
	delete(r.pipelines, streamID)
	r.mu.Unlock()
}
