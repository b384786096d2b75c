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

// Package aggregation turns a report's declared groups and variables into a
// validated list of AggConfig values, pre-checking the memory a run with
// that many groups would take before ProducerConsumer ever sees a record.
package aggregation

import "github.com/rulego/reportflow/record"

// ResetScope names when a variable's accumulator resets.
type ResetScope string

const (
	ResetOnReport ResetScope = "report"
	ResetOnGroup  ResetScope = "group"
	ResetOnPage   ResetScope = "page"
	ResetOnDetail ResetScope = "detail"
)

// Group is one level of a report's grouping declaration.
type Group struct {
	Level      int
	Name       string
	Expression interface{} // consumed by exprparse.ExtractFieldWithFallback
	Sort       string      // "asc" | "desc"
}

// Variable is a report-declared aggregate: a running total, count, average,
// min, or max over a field, reset at a configurable scope.
type Variable struct {
	Name        string
	Type        string // "sum","count","avg"/"average","min","max"
	ResetOn     ResetScope
	ResetGroup  int
	HasResetGrp bool
}

// Report is the minimal shape AggregationConfigurator consumes.
type Report struct {
	Name      string
	Groups    []Group
	Variables []Variable
}

// AggConfig is one resolved, levelled aggregation configuration.
type AggConfig struct {
	// GroupBy is a string when len==1, matching spec.md's "emitted as a bare
	// atom when length = 1 else a list" rule; callers needing the raw slice
	// should use GroupByFields instead of type-switching GroupBy.
	GroupBy       interface{}
	GroupByFields []string
	Level         int
	Aggregations  []record.Aggregation
	Sort          string
}
