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

import "fmt"

// InvalidTransformerError is returned from NewProducerConsumer when the
// configured transformer is not a unary record-to-record(-or-error) func.
type InvalidTransformerError struct {
	Got interface{}
}

func (e *InvalidTransformerError) Error() string {
	return fmt.Sprintf("pipeline: invalid transformer: expected func(record.Record) (record.Record, error) "+
		"or func(record.Record) record.Record, got %T", e.Got)
}

// TransformError wraps a per-record transformer failure. It is logged, not
// returned to any caller: the stage counts it in records_failed and moves
// on, per spec.md §4.7.2 step 1.
type TransformError struct {
	Cause error
}

func (e *TransformError) Error() string { return fmt.Sprintf("pipeline: transform error: %v", e.Cause) }
func (e *TransformError) Unwrap() error { return e.Cause }

// GroupRejectedError marks a record rejected from a grouped-aggregation
// spec because its group cap was reached. Advisory only: counted in
// records_rejected, never returned to a caller or able to stop the batch.
type GroupRejectedError struct {
	GroupBy   interface{}
	MaxGroups int
}

func (e *GroupRejectedError) Error() string {
	return fmt.Sprintf("pipeline: group rejected: group_by=%v at max_groups=%d", e.GroupBy, e.MaxGroups)
}
