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
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"

	"github.com/rulego/reportflow/logger"
	"github.com/rulego/reportflow/record"
)

// runTransform calls fn(r) with a per-call wall-clock timeout, per spec.md
// §4.7.2 step 1. A timeout, panic, error, or nil result all count as the
// record being dropped; the cause is returned for the caller to log and
// tally, never propagated.
func runTransform(fn TransformFunc, r record.Record, timeout time.Duration) (record.Record, error) {
	type result struct {
		out record.Record
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("transformer panic: %v", rec)}
			}
		}()
		out, err := fn(r)
		done <- result{out: out, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, &TransformError{Cause: res.err}
		}
		if res.out == nil {
			return nil, &TransformError{Cause: fmt.Errorf("transformer returned nil")}
		}
		return res.out, nil
	case <-timer.C:
		return nil, &TransformError{Cause: fmt.Errorf("transformer timed out after %s", timeout)}
	}
}

// applyDataProcessor performs the DataProcessor fallback type-conversion
// step (spec.md §4.7.2 step 2). A survivor whose conversion fails is logged
// and kept as its raw record: conversion failures never stop the stage.
func applyDataProcessor(survivors []record.Record, opts TransformationOpts) []record.Record {
	if !opts.Enabled {
		return survivors
	}

	out := make([]record.Record, len(survivors))
	for i, r := range survivors {
		converted, err := convertRecord(r, opts)
		if err != nil {
			logger.Warn("pipeline: DataProcessor fallback conversion failed, using raw record: %v", err)
			out[i] = r
			continue
		}
		out[i] = converted
	}
	return out
}

func convertRecord(r record.Record, opts TransformationOpts) (record.Record, error) {
	out := make(record.Record, len(r))
	for k, v := range r {
		cv, err := convertValue(v, opts)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = cv
	}
	if opts.FlattenRelationships {
		out = flattenOneLevel(out)
	}
	return out, nil
}

func convertValue(v interface{}, opts TransformationOpts) (interface{}, error) {
	if v == nil {
		if opts.NilReplacement != nil {
			return opts.NilReplacement, nil
		}
		return nil, nil
	}

	if t, ok := v.(time.Time); ok && opts.DatetimeAsISO8601 {
		return t.Format(time.RFC3339), nil
	}

	if f, ok := toDecimal(v); ok {
		if opts.DecimalPrecision != nil {
			f = roundTo(f, *opts.DecimalPrecision)
		}
		if opts.DecimalAsString {
			return cast.ToString(f), nil
		}
		if opts.DecimalPrecision != nil {
			return f, nil
		}
	}

	return v, nil
}

// toDecimal reports whether v is a floating-point-ish value worth the
// decimal conversion path (int types pass through untouched).
func toDecimal(v interface{}) (float64, bool) {
	switch v.(type) {
	case float32, float64:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	default:
		return 0, false
	}
}

func roundTo(f float64, precision int) float64 {
	mult := math.Pow(10, float64(precision))
	return math.Round(f*mult) / mult
}

// flattenOneLevel shallow-merges one level of nested record.Record values
// into r, joining keys with ".". The original nested field is removed.
func flattenOneLevel(r record.Record) record.Record {
	out := make(record.Record, len(r))
	for k, v := range r {
		nested, ok := v.(record.Record)
		if !ok {
			out[k] = v
			continue
		}
		for nk, nv := range nested {
			out[k+"."+nk] = nv
		}
	}
	return out
}
