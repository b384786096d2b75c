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
	"github.com/rulego/reportflow/condition"
	"github.com/rulego/reportflow/record"
)

// ExprFilter compiles expression once with condition.NewExprCondition and
// returns a Transformer-shaped func(record.Record) record.Record: a record
// that evaluates expression to true passes through unchanged, one that
// evaluates to false comes back nil, dropping it per runTransform's
// "transformer returned nil" rule. expression sees each record's fields as
// top-level environment variables, the same env shape condition's own
// tests evaluate against.
func ExprFilter(expression string) (func(record.Record) record.Record, error) {
	cond, err := condition.NewExprCondition(expression)
	if err != nil {
		return nil, err
	}
	return func(r record.Record) record.Record {
		if cond.Evaluate(map[string]interface{}(r)) {
			return r
		}
		return nil
	}, nil
}
