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

// Package telemetry is a fire-and-forget event emitter for pipeline health
// signals: start/stop, throughput, batch outcomes, and error events. Every
// event carries a fixed payload shape and a set of tags; HealthMonitor never
// blocks a caller and never returns an error.
package telemetry

import "sync"

// Event is one emitted telemetry record: a name, a payload (the event's
// measurements), and tags (the event's dimensions, e.g. stream_id).
type Event struct {
	Name    string
	Payload map[string]interface{}
	Tags    map[string]interface{}
}

// Sink receives emitted events. Implementations must not block for long or
// panic; HealthMonitor does not recover from sink panics.
type Sink func(Event)

// HealthMonitor fans out emitted events to zero or more registered sinks.
// Safe for concurrent use.
type HealthMonitor struct {
	mu    sync.RWMutex
	sinks []Sink
}

// New returns a HealthMonitor with no sinks registered; Emit is then a
// no-op, which is the correct behavior for enable_telemetry == false.
func New() *HealthMonitor {
	return &HealthMonitor{}
}

// AddSink registers a sink to receive every future emitted event.
func (h *HealthMonitor) AddSink(sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, sink)
}

// emit dispatches name/payload/tags to every registered sink.
func (h *HealthMonitor) emit(name string, payload, tags map[string]interface{}) {
	h.mu.RLock()
	sinks := h.sinks
	h.mu.RUnlock()
	if len(sinks) == 0 {
		return
	}
	evt := Event{Name: name, Payload: payload, Tags: tags}
	for _, sink := range sinks {
		sink(evt)
	}
}

// PipelineStart emits "pipeline.start".
func (h *HealthMonitor) PipelineStart(streamID, reportName string, systemTime int64) {
	h.emit("pipeline.start",
		map[string]interface{}{"system_time": systemTime},
		map[string]interface{}{"stream_id": streamID, "report_name": reportName})
}

// PipelineStop emits "pipeline.stop".
func (h *HealthMonitor) PipelineStop(streamID, status string, durationMS int64, recordsProcessed int64) {
	h.emit("pipeline.stop",
		map[string]interface{}{"duration": durationMS, "records_processed": recordsProcessed},
		map[string]interface{}{"stream_id": streamID, "status": status})
}

// Throughput emits "throughput".
func (h *HealthMonitor) Throughput(streamID string, recordsPerSecond float64) {
	h.emit("throughput",
		map[string]interface{}{"records_per_second": recordsPerSecond},
		map[string]interface{}{"stream_id": streamID})
}

// BatchTransformed emits "batch_transformed".
func (h *HealthMonitor) BatchTransformed(streamID string, recordsIn, recordsOut int, durationMS int64, recordsBuffered, recordsFailed, recordsRejected int) {
	h.emit("batch_transformed",
		map[string]interface{}{
			"records_in":       recordsIn,
			"records_out":      recordsOut,
			"duration_ms":      durationMS,
			"records_buffered": recordsBuffered,
			"records_failed":   recordsFailed,
			"records_rejected": recordsRejected,
		},
		map[string]interface{}{"stream_id": streamID})
}

// AggregationComputed emits "aggregation_computed".
func (h *HealthMonitor) AggregationComputed(streamID string, recordsProcessed int64, aggregations, groupedAggregations interface{}) {
	h.emit("aggregation_computed",
		map[string]interface{}{"records_processed": recordsProcessed},
		map[string]interface{}{
			"stream_id":            streamID,
			"aggregations":         aggregations,
			"grouped_aggregations": groupedAggregations,
		})
}

// GroupLimitReached emits "group_limit_reached".
func (h *HealthMonitor) GroupLimitReached(streamID string, groupBy interface{}, maxGroups, currentCount int) {
	h.emit("group_limit_reached",
		map[string]interface{}{"max_groups": maxGroups, "current_count": currentCount},
		map[string]interface{}{"stream_id": streamID, "group_by": groupBy})
}

// BufferFull emits "buffer_full".
func (h *HealthMonitor) BufferFull(streamID string, bufferSize, recordsBuffered int) {
	h.emit("buffer_full",
		map[string]interface{}{"buffer_size": bufferSize, "records_buffered": recordsBuffered},
		map[string]interface{}{"stream_id": streamID})
}

// Error emits "error".
func (h *HealthMonitor) Error(streamID, stage, reason string, details map[string]interface{}) {
	payload := map[string]interface{}{}
	for k, v := range details {
		payload[k] = v
	}
	h.emit("error", payload,
		map[string]interface{}{"stream_id": streamID, "stage": stage, "reason": reason})
}
