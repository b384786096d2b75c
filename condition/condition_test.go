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

package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Covers the subset of NewExprCondition/Evaluate that pipeline.ExprFilter
// actually exercises: compiling a boolean expression over a record's fields
// and evaluating comparison/logical operators plus the custom
// is_null/is_not_null/like_match functions against an env map.
func TestNewExprConditionCompilesBooleanExpressions(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		wantErr    bool
	}{
		{name: "comparison", expression: "amount > 100", wantErr: false},
		{name: "logical and", expression: "amount > 100 && status == \"active\"", wantErr: false},
		{name: "is_null call", expression: "is_null(region)", wantErr: false},
		{name: "like_match call", expression: "like_match(name, \"A%\")", wantErr: false},
		{name: "malformed expression", expression: "amount >", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := NewExprCondition(tt.expression)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cond)
		})
	}
}

func TestExprConditionEvaluatesComparisonAndLogicalOperators(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		env        map[string]interface{}
		expected   bool
	}{
		{
			name:       "greater than passes",
			expression: "amount > 100",
			env:        map[string]interface{}{"amount": 150.0},
			expected:   true,
		},
		{
			name:       "greater than fails",
			expression: "amount > 100",
			env:        map[string]interface{}{"amount": 50.0},
			expected:   false,
		},
		{
			name:       "and requires both sides",
			expression: "amount > 100 && status == \"active\"",
			env:        map[string]interface{}{"amount": 150.0, "status": "inactive"},
			expected:   false,
		},
		{
			name:       "or accepts either side",
			expression: "amount > 100 || status == \"active\"",
			env:        map[string]interface{}{"amount": 10.0, "status": "active"},
			expected:   true,
		},
		{
			name:       "undefined variable evaluates falsy, not error",
			expression: "missing > 100",
			env:        map[string]interface{}{"amount": 10.0},
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := NewExprCondition(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cond.Evaluate(tt.env))
		})
	}
}

func TestExprConditionNullFunctions(t *testing.T) {
	condNull, err := NewExprCondition("is_null(region)")
	require.NoError(t, err)
	assert.True(t, condNull.Evaluate(map[string]interface{}{"region": nil}))
	assert.False(t, condNull.Evaluate(map[string]interface{}{"region": "west"}))

	condNotNull, err := NewExprCondition("is_not_null(region)")
	require.NoError(t, err)
	assert.False(t, condNotNull.Evaluate(map[string]interface{}{"region": nil}))
	assert.True(t, condNotNull.Evaluate(map[string]interface{}{"region": "west"}))
}

func TestExprConditionLikeMatchSupportsWildcards(t *testing.T) {
	cond, err := NewExprCondition(`like_match(name, "A%_o")`)
	require.NoError(t, err)

	assert.True(t, cond.Evaluate(map[string]interface{}{"name": "Aacco"}))
	assert.False(t, cond.Evaluate(map[string]interface{}{"name": "Bacco"}))
}

func TestMatchesLikePatternHandlesPercentAndUnderscore(t *testing.T) {
	assert.True(t, matchesLikePattern("hello", "h%o"))
	assert.True(t, matchesLikePattern("hello", "h_llo"))
	assert.False(t, matchesLikePattern("hello", "world"))
	assert.True(t, matchesLikePattern("", "%"))
	assert.False(t, matchesLikePattern("", "_"))
}
