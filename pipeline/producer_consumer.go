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

package pipeline

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rulego/reportflow/logger"
	"github.com/rulego/reportflow/record"
)

// State is a ProducerConsumer's lifecycle state, per spec.md §4.7.4:
// initializing -> running <-> paused -> completed | failed. Per-record
// errors never cause a transition to failed; only construction errors,
// infrastructure faults, or unrecoverable downstream failures do.
type State string

const (
	StateInitializing State = "initializing"
	StateRunning      State = "running"
	StatePaused       State = "paused"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// groupSpecState pairs one configured GroupedAggregationSpec with its live
// GroupedAggregationState and the once-per-crossing emission flag for
// group_limit_reached.
type groupSpecState struct {
	cfg                 GroupedAggregationSpec
	state               *record.GroupedAggregationState
	limitReachedEmitted bool
}

// AggregationSnapshot is the introspection payload returned by
// GetAggregationState, per spec.md §4.7.3.
type AggregationSnapshot struct {
	AggregationState        record.Snapshot
	GroupedAggregationState map[string][]record.GroupSnapshot
	GroupCounts             map[string]int
	RecordsBuffered         int
	TotalTransformed        int64
	Errors                  []string
}

// ProducerConsumer is the per-batch transform/aggregate stage: it consumes
// batches from an upstream Producer, transforms and aggregates them, and
// re-exposes the survivors as its own downstream Producer.
type ProducerConsumer struct {
	cfg         Config
	transformFn TransformFunc

	downstream *Producer

	stateMu sync.RWMutex
	state   State
	pauseCh chan struct{}

	aggMu    sync.Mutex
	aggState *record.AggregationState
	groups   []*groupSpecState

	recordsFailed    int64
	recordsRejected  int64
	totalTransformed int64

	errMu sync.Mutex
	errs  []string

	bufferFullMu      sync.Mutex
	bufferFullCrossed bool

	throughputMu sync.Mutex
	windowStart  time.Time
	windowCount  int64

	done chan struct{}
	wg   sync.WaitGroup
}

// NewProducerConsumer validates cfg and returns a ProducerConsumer in the
// initializing state. Call Start to begin consuming from cfg.SubscribeTo.
func NewProducerConsumer(cfg Config) (*ProducerConsumer, error) {
	normalized, transformFn, err := cfg.normalized()
	if err != nil {
		return nil, err
	}

	groups := make([]*groupSpecState, len(normalized.GroupedAggregations))
	for i, spec := range normalized.GroupedAggregations {
		groups[i] = &groupSpecState{
			cfg:   spec,
			state: record.NewGroupedAggregationState(spec.GroupBy, spec.MaxGroups),
		}
	}

	pc := &ProducerConsumer{
		cfg:         normalized,
		transformFn: transformFn,
		downstream:  NewProducer(normalized.BufferSize),
		state:       StateInitializing,
		aggState:    record.NewAggregationState(),
		groups:      groups,
		done:        make(chan struct{}),
		windowStart: time.Now(),
	}
	return pc, nil
}

// Events exposes the survivor batches downstream, after transform and
// aggregation.
func (pc *ProducerConsumer) Events() <-chan []record.Record { return pc.downstream.Events() }

// RequestDemand is how a further-downstream consumer signals demand to this
// stage's own output.
func (pc *ProducerConsumer) RequestDemand(n int64) { pc.downstream.RequestDemand(n) }

// State returns the current lifecycle state.
func (pc *ProducerConsumer) State() State {
	pc.stateMu.RLock()
	defer pc.stateMu.RUnlock()
	return pc.state
}

// Start transitions to running and begins pulling batches from
// cfg.SubscribeTo. A ProducerConsumer with no configured SubscribeTo is
// driven manually via ProcessBatch instead (the package tests do this);
// Start is then a no-op beyond the state transition.
func (pc *ProducerConsumer) Start() {
	pc.stateMu.Lock()
	pc.state = StateRunning
	pc.stateMu.Unlock()

	if pc.cfg.SubscribeTo == nil {
		return
	}
	pc.cfg.SubscribeTo.RequestDemand(pc.cfg.MaxDemand)

	pc.wg.Add(1)
	go pc.loop()
}

// Pause suspends consumption; batches already in flight still complete.
func (pc *ProducerConsumer) Pause() {
	pc.stateMu.Lock()
	defer pc.stateMu.Unlock()
	if pc.state == StateRunning {
		pc.state = StatePaused
		pc.pauseCh = make(chan struct{})
	}
}

// Resume un-suspends a paused stage.
func (pc *ProducerConsumer) Resume() {
	pc.stateMu.Lock()
	defer pc.stateMu.Unlock()
	if pc.state == StatePaused {
		close(pc.pauseCh)
		pc.pauseCh = nil
		pc.state = StateRunning
	}
}

// Stop shuts the stage down and marks it completed.
func (pc *ProducerConsumer) Stop() {
	pc.stateMu.Lock()
	if pc.state != StateFailed {
		pc.state = StateCompleted
	}
	pc.stateMu.Unlock()
	close(pc.done)
	pc.downstream.Close()
	pc.wg.Wait()
}

func (pc *ProducerConsumer) awaitResumeIfPaused() {
	pc.stateMu.RLock()
	ch := pc.pauseCh
	pc.stateMu.RUnlock()
	if ch == nil {
		return
	}
	select {
	case <-ch:
	case <-pc.done:
	}
}

func (pc *ProducerConsumer) loop() {
	defer pc.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		pc.awaitResumeIfPaused()

		select {
		case batch, ok := <-pc.cfg.SubscribeTo.Events():
			if !ok {
				pc.stateMu.Lock()
				if pc.state != StateFailed {
					pc.state = StateCompleted
				}
				pc.stateMu.Unlock()
				return
			}
			// A batch received after Pause waits here until Resume or Stop.
			pc.awaitResumeIfPaused()
			select {
			case <-pc.done:
				return
			default:
			}
			pc.ProcessBatch(batch)
			if pc.cfg.SubscribeTo != nil && len(batch) > 0 {
				pc.cfg.SubscribeTo.RequestDemand(int64(len(batch)))
			}
		case <-ticker.C:
			pc.emitThroughput()
		case <-pc.done:
			return
		}
	}
}

// ProcessBatch runs one batch through transform, the DataProcessor
// fallback, aggregation, and forwards survivors downstream. It implements
// spec.md §4.7.2 end to end and can be called directly by tests and by
// callers driving the stage without an upstream Producer.
func (pc *ProducerConsumer) ProcessBatch(batch []record.Record) {
	recordsIn := len(batch)
	if recordsIn == 0 {
		pc.emitTelemetry(0, 0, 0, 0, 0)
		return
	}

	survivors := make([]record.Record, 0, recordsIn)
	var failed int
	for _, r := range batch {
		out, err := runTransform(pc.transformFn, r, pc.cfg.TransformerTimeout)
		if err != nil {
			failed++
			logger.Warn("pipeline: stream %s: dropping record: %v", pc.cfg.StreamID, err)
			pc.recordError(err.Error())
			continue
		}
		survivors = append(survivors, out)
	}
	atomic.AddInt64(&pc.recordsFailed, int64(failed))

	survivors = applyDataProcessor(survivors, pc.cfg.TransformationOpts)

	pc.aggMu.Lock()
	for _, r := range survivors {
		pc.aggState.Add(r, pc.cfg.Aggregations)
	}
	var rejected int
	for _, g := range pc.groups {
		for _, r := range survivors {
			if !g.state.Add(r, aggregationFieldNames(g.cfg.Aggregations)) {
				rejected++
				if !g.limitReachedEmitted {
					g.limitReachedEmitted = true
					pc.emitGroupLimitReached(g)
				}
			}
		}
	}
	pc.aggMu.Unlock()
	atomic.AddInt64(&pc.recordsRejected, int64(rejected))
	atomic.AddInt64(&pc.totalTransformed, int64(len(survivors)))

	pc.throughputMu.Lock()
	pc.windowCount += int64(len(survivors))
	pc.throughputMu.Unlock()

	if len(survivors) > 0 {
		pc.downstream.Enqueue(survivors)
	}

	pc.checkBufferFull()
	pc.emitTelemetry(recordsIn, len(survivors), failed, rejected, pc.downstream.QueueLen())
}

func aggregationFieldNames(aggs []record.Aggregation) []string {
	// Grouped aggregation's field restriction piggybacks on the same
	// aggregation-token list used for the global state: an empty list
	// means "consider every numeric field", matching record.AggregationState.Add.
	if len(aggs) == 0 {
		return nil
	}
	out := make([]string, len(aggs))
	for i, a := range aggs {
		out[i] = string(a)
	}
	return out
}

func (pc *ProducerConsumer) checkBufferFull() {
	buffered := pc.downstream.QueueLen()
	threshold := int(0.8 * float64(pc.cfg.BufferSize))

	pc.bufferFullMu.Lock()
	defer pc.bufferFullMu.Unlock()

	if buffered > threshold {
		if !pc.bufferFullCrossed {
			pc.bufferFullCrossed = true
			if pc.cfg.EnableTelemetry {
				pc.cfg.Monitor.BufferFull(pc.cfg.StreamID, pc.cfg.BufferSize, buffered)
			}
		}
	} else {
		pc.bufferFullCrossed = false
	}
}

func (pc *ProducerConsumer) emitGroupLimitReached(g *groupSpecState) {
	if !pc.cfg.EnableTelemetry {
		return
	}
	var groupBy interface{} = g.cfg.GroupBy
	if len(g.cfg.GroupBy) == 1 {
		groupBy = g.cfg.GroupBy[0]
	}
	pc.cfg.Monitor.GroupLimitReached(pc.cfg.StreamID, groupBy, g.cfg.MaxGroups, g.state.GroupCount())
}

func (pc *ProducerConsumer) emitTelemetry(recordsIn, recordsOut, failed, rejected, buffered int) {
	if !pc.cfg.EnableTelemetry {
		return
	}
	pc.cfg.Monitor.BatchTransformed(pc.cfg.StreamID, recordsIn, recordsOut, 0, buffered, failed, rejected)

	if len(pc.cfg.Aggregations) > 0 || len(pc.groups) > 0 {
		pc.aggMu.Lock()
		snap := pc.aggState.Snapshot()
		groupedSnaps := pc.groupedSnapshotsLocked()
		pc.aggMu.Unlock()
		pc.cfg.Monitor.AggregationComputed(pc.cfg.StreamID, snap.Count, snap, groupedSnaps)
	}
}

func (pc *ProducerConsumer) groupedSnapshotsLocked() map[string][]record.GroupSnapshot {
	out := make(map[string][]record.GroupSnapshot, len(pc.groups))
	for _, g := range pc.groups {
		out[groupKeyLabel(g.cfg.GroupBy)] = g.state.Snapshot()
	}
	return out
}

func groupKeyLabel(key record.GroupKey) string {
	return strings.Join([]string(key), ",")
}

func (pc *ProducerConsumer) emitThroughput() {
	pc.throughputMu.Lock()
	elapsed := time.Since(pc.windowStart)
	count := pc.windowCount
	pc.windowCount = 0
	pc.windowStart = time.Now()
	pc.throughputMu.Unlock()

	if elapsed <= 0 {
		return
	}
	if pc.cfg.EnableTelemetry {
		pc.cfg.Monitor.Throughput(pc.cfg.StreamID, float64(count)/elapsed.Seconds())
	}
}

func (pc *ProducerConsumer) recordError(msg string) {
	pc.errMu.Lock()
	defer pc.errMu.Unlock()
	pc.errs = append(pc.errs, msg)
	if len(pc.errs) > 1000 {
		pc.errs = pc.errs[len(pc.errs)-1000:]
	}
}

// GetAggregationState returns a consistent point-in-time view of this
// stage's aggregation state and bookkeeping, per spec.md §4.7.3.
func (pc *ProducerConsumer) GetAggregationState() AggregationSnapshot {
	pc.aggMu.Lock()
	snap := pc.aggState.Snapshot()
	grouped := pc.groupedSnapshotsLocked()
	counts := make(map[string]int, len(pc.groups))
	for _, g := range pc.groups {
		counts[groupKeyLabel(g.cfg.GroupBy)] = g.state.GroupCount()
	}
	pc.aggMu.Unlock()

	pc.errMu.Lock()
	errs := append([]string(nil), pc.errs...)
	pc.errMu.Unlock()

	return AggregationSnapshot{
		AggregationState:        snap,
		GroupedAggregationState: grouped,
		GroupCounts:             counts,
		RecordsBuffered:         pc.downstream.QueueLen(),
		TotalTransformed:        atomic.LoadInt64(&pc.totalTransformed),
		Errors:                  errs,
	}
}

// Stats is the coarse performance-introspection view (spec.md §7's
// supplemented performance-stats feature): hot counters plus a qualitative
// level derived from buffer usage and failure rate.
type Stats struct {
	TotalTransformed int64
	RecordsFailed    int64
	RecordsRejected  int64
	RecordsBuffered  int
	BufferSize       int
	PerformanceLevel string
}

// Performance level thresholds, mirrored from the teacher's
// AssessPerformanceLevel buffer-usage/drop-rate bands.
const (
	PerformanceLevelCritical = "CRITICAL"
	PerformanceLevelWarning  = "WARNING"
	PerformanceLevelOptimal  = "OPTIMAL"
)

// Stats returns a snapshot of the stage's performance counters.
func (pc *ProducerConsumer) Stats() Stats {
	buffered := pc.downstream.QueueLen()
	failed := atomic.LoadInt64(&pc.recordsFailed)
	total := atomic.LoadInt64(&pc.totalTransformed)

	usage := 0.0
	if pc.cfg.BufferSize > 0 {
		usage = float64(buffered) / float64(pc.cfg.BufferSize)
	}
	dropRate := 0.0
	if total+failed > 0 {
		dropRate = float64(failed) / float64(total+failed)
	}

	level := PerformanceLevelOptimal
	switch {
	case usage > 0.95 || dropRate > 0.1:
		level = PerformanceLevelCritical
	case usage > 0.8 || dropRate > 0.01:
		level = PerformanceLevelWarning
	}

	return Stats{
		TotalTransformed: total,
		RecordsFailed:    failed,
		RecordsRejected:  atomic.LoadInt64(&pc.recordsRejected),
		RecordsBuffered:  buffered,
		BufferSize:       pc.cfg.BufferSize,
		PerformanceLevel: level,
	}
}

