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
	"reflect"
	"time"

	"github.com/rulego/reportflow/record"
	"github.com/rulego/reportflow/telemetry"
)

// GroupedAggregationSpec is one configured grouped rollup: the fields to
// group by, which aggregations to fold into each group, and the cap on the
// number of distinct groups this spec will track.
type GroupedAggregationSpec struct {
	GroupBy      record.GroupKey
	Aggregations []record.Aggregation
	MaxGroups    int
}

// TransformationOpts configures the DataProcessor fallback conversion step
// (spec.md §4.7.2 step 2). A zero value disables the step entirely.
type TransformationOpts struct {
	// Enabled gates whether the conversion step runs at all.
	Enabled bool

	// DatetimeAsISO8601 converts time.Time field values to RFC3339 strings.
	DatetimeAsISO8601 bool

	// DecimalPrecision, when non-nil, rounds float64 field values to this
	// many decimal places.
	DecimalPrecision *int

	// DecimalAsString stringifies float64 values (after any rounding)
	// instead of leaving them as float64.
	DecimalAsString bool

	// NilReplacement, when non-nil, replaces nil field values.
	NilReplacement interface{}

	// FlattenRelationships shallow-merges one level of nested
	// record.Record values into the parent record, joining keys with ".".
	FlattenRelationships bool
}

// Config configures a ProducerConsumer at construction.
type Config struct {
	StreamID    string
	SubscribeTo *Producer

	// Transformer is a unary record transform: func(record.Record) record.Record
	// or func(record.Record) (record.Record, error). Nil means identity.
	Transformer        interface{}
	TransformerTimeout time.Duration
	TransformationOpts TransformationOpts

	Aggregations        []string // field names folded into the global aggregation_state
	GroupedAggregations []GroupedAggregationSpec

	BufferSize      int
	MaxDemand       int64
	MinDemand       int64
	EnableTelemetry bool

	Monitor *telemetry.HealthMonitor
}

const (
	defaultBufferSize         = 1000
	defaultMaxGroups          = 10_000
	defaultTransformerTimeout = 5 * time.Second
	defaultMaxDemand          = 500
	defaultMinDemand          = 100
)

// normalized fills in spec.md §4.7.1's construction defaults and returns
// a TransformFunc wrapping whatever callable was configured, validating it
// along the way.
func (c Config) normalized() (Config, TransformFunc, error) {
	out := c
	if out.BufferSize <= 0 {
		out.BufferSize = defaultBufferSize
	}
	if out.MaxDemand <= 0 {
		out.MaxDemand = defaultMaxDemand
	}
	if out.MinDemand <= 0 {
		out.MinDemand = defaultMinDemand
	}
	if out.TransformerTimeout <= 0 {
		out.TransformerTimeout = defaultTransformerTimeout
	}
	if out.Monitor == nil {
		out.Monitor = telemetry.New()
	}
	for i := range out.GroupedAggregations {
		if out.GroupedAggregations[i].MaxGroups <= 0 {
			out.GroupedAggregations[i].MaxGroups = defaultMaxGroups
		}
	}

	fn, err := wrapTransformer(out.Transformer)
	if err != nil {
		return Config{}, nil, err
	}
	return out, fn, nil
}

// TransformFunc is the normalized internal shape every configured
// transformer is adapted to.
type TransformFunc func(record.Record) (record.Record, error)

// wrapTransformer validates and adapts cfg.Transformer into a TransformFunc,
// matching spec.md §4.7.1: "transformer must be a unary callable;
// non-callable or wrong-arity must fail fast with InvalidTransformer."
func wrapTransformer(t interface{}) (TransformFunc, error) {
	if t == nil {
		return func(r record.Record) (record.Record, error) { return r, nil }, nil
	}
	switch fn := t.(type) {
	case func(record.Record) record.Record:
		return func(r record.Record) (record.Record, error) { return fn(r), nil }, nil
	case func(record.Record) (record.Record, error):
		return fn, nil
	}

	v := reflect.ValueOf(t)
	recordType := reflect.TypeOf(record.Record(nil))
	if v.Kind() != reflect.Func {
		return nil, &InvalidTransformerError{Got: t}
	}
	typ := v.Type()
	if typ.NumIn() != 1 || typ.IsVariadic() || !typ.In(0).ConvertibleTo(recordType) {
		return nil, &InvalidTransformerError{Got: t}
	}
	if typ.NumOut() < 1 || typ.NumOut() > 2 || !typ.Out(0).ConvertibleTo(recordType) {
		return nil, &InvalidTransformerError{Got: t}
	}
	return func(r record.Record) (record.Record, error) {
		results := v.Call([]reflect.Value{reflect.ValueOf(r)})
		out, _ := results[0].Convert(recordType).Interface().(record.Record)
		if len(results) == 2 {
			if errVal, ok := results[1].Interface().(error); ok && errVal != nil {
				return nil, errVal
			}
		}
		return out, nil
	}, nil
}
