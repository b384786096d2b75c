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

package record

import (
	"github.com/spf13/cast"
)

// Aggregation names the canonical aggregation tokens the pipeline knows how
// to fold a field into. The "..." in spec.md §4.2's variable type list is
// deliberately not open-ended here: AggregationConfigurator keeps only the
// variable types that map onto one of these five and skips the rest.
type Aggregation string

const (
	Sum   Aggregation = "sum"
	Count Aggregation = "count"
	Avg   Aggregation = "avg"
	Min   Aggregation = "min"
	Max   Aggregation = "max"
)

// avgState defers division until Avg is read, per spec.md §3.
type avgState struct {
	sum   float64
	count int64
}

// AggregationState is the running aggregate over a stream of records: a
// count of records seen, per-field sums/min/max over numeric values only,
// and a deferred-division average. It is not safe for concurrent use by
// multiple goroutines; callers serialize updates (ProducerConsumer does
// this per stream_id).
type AggregationState struct {
	count int64
	sum   map[string]float64
	avg   map[string]*avgState
	min   map[string]float64
	max   map[string]float64
}

// NewAggregationState returns an empty, ready-to-use state.
func NewAggregationState() *AggregationState {
	return &AggregationState{
		sum: make(map[string]float64),
		avg: make(map[string]*avgState),
		min: make(map[string]float64),
		max: make(map[string]float64),
	}
}

// Add folds one record into the state. fields restricts which fields are
// considered for sum/avg/min/max; an empty fields list considers every
// numeric field on the record. count always advances by one, regardless of
// whether any field was numeric — count counts records, not fields.
func (s *AggregationState) Add(r Record, fields []string) {
	s.count++
	if len(fields) == 0 {
		for f, v := range r {
			s.foldField(f, v)
		}
		return
	}
	for _, f := range fields {
		v, ok := r[f]
		if !ok {
			continue
		}
		s.foldField(f, v)
	}
}

func (s *AggregationState) foldField(field string, v interface{}) {
	if v == nil {
		return
	}
	switch v.(type) {
	case bool, string:
		return // non-numeric even where cast could convert it
	}
	num, err := cast.ToFloat64E(v)
	if err != nil {
		return // non-numeric: ignored by sum/avg/min/max, per spec.md §3
	}
	s.sum[field] += num

	a, ok := s.avg[field]
	if !ok {
		a = &avgState{}
		s.avg[field] = a
	}
	a.sum += num
	a.count++

	if cur, ok := s.min[field]; !ok || num < cur {
		s.min[field] = num
	}
	if cur, ok := s.max[field]; !ok || num > cur {
		s.max[field] = num
	}
}

// Count returns the number of records folded in.
func (s *AggregationState) Count() int64 { return s.count }

// Sum returns the running sum for field and whether it has any value.
func (s *AggregationState) Sum(field string) (float64, bool) {
	v, ok := s.sum[field]
	return v, ok
}

// RunningTotal is semantically identical to Sum: spec.md §3 exposes it
// separately for renderer convenience (a monotonic-across-batches view),
// but both read the same accumulator. See SPEC_FULL.md §9, open question 1.
func (s *AggregationState) RunningTotal(field string) (float64, bool) {
	return s.Sum(field)
}

// Avg returns the average for field (sum/count) and whether any value was
// seen. The division is deferred to this call, never stored.
func (s *AggregationState) Avg(field string) (float64, bool) {
	a, ok := s.avg[field]
	if !ok || a.count == 0 {
		return 0, false
	}
	return a.sum / float64(a.count), true
}

// Min returns the minimum numeric value seen for field.
func (s *AggregationState) Min(field string) (float64, bool) {
	v, ok := s.min[field]
	return v, ok
}

// Max returns the maximum numeric value seen for field.
func (s *AggregationState) Max(field string) (float64, bool) {
	v, ok := s.max[field]
	return v, ok
}

// Fields returns the set of field names that have ever been folded,
// sorted is not guaranteed; callers that need stable order should sort.
func (s *AggregationState) Fields() []string {
	seen := make(map[string]struct{}, len(s.sum))
	for f := range s.sum {
		seen[f] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	return out
}

// Snapshot is an immutable copy of an AggregationState suitable for
// telemetry payloads and introspection (ProducerConsumer.GetAggregationState),
// so callers cannot observe a state mid-update.
type Snapshot struct {
	Count         int64
	Sum           map[string]float64
	Avg           map[string]float64
	Min           map[string]float64
	Max           map[string]float64
	RunningTotal  map[string]float64
}

// Snapshot takes a consistent point-in-time copy of s.
func (s *AggregationState) Snapshot() Snapshot {
	snap := Snapshot{
		Count:        s.count,
		Sum:          make(map[string]float64, len(s.sum)),
		Avg:          make(map[string]float64, len(s.avg)),
		Min:          make(map[string]float64, len(s.min)),
		Max:          make(map[string]float64, len(s.max)),
		RunningTotal: make(map[string]float64, len(s.sum)),
	}
	for f, v := range s.sum {
		snap.Sum[f] = v
		snap.RunningTotal[f] = v
	}
	for f, a := range s.avg {
		if a.count > 0 {
			snap.Avg[f] = a.sum / float64(a.count)
		}
	}
	for f, v := range s.min {
		snap.Min[f] = v
	}
	for f, v := range s.max {
		snap.Max[f] = v
	}
	return snap
}
