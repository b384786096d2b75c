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

package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/reportflow/record"
)

func threeLevelReport() Report {
	return Report{
		Name: "sales",
		Groups: []Group{
			{Level: 1, Name: "territory", Expression: "territory", Sort: "asc"},
			{Level: 2, Name: "customer_name", Expression: "customer_name", Sort: "asc"},
			{Level: 3, Name: "order_type", Expression: "order_type", Sort: "asc"},
		},
	}
}

// Scenario 1 from spec.md §8.
func TestThreeLevelCumulativeGrouping(t *testing.T) {
	configs, err := BuildAggregations(threeLevelReport(), NewOptions())
	require.NoError(t, err)
	require.Len(t, configs, 3)

	assert.Equal(t, "territory", configs[0].GroupBy)
	assert.Equal(t, 1, configs[0].Level)

	assert.Equal(t, []string{"territory", "customer_name"}, configs[1].GroupBy)
	assert.Equal(t, 2, configs[1].Level)

	assert.Equal(t, []string{"territory", "customer_name", "order_type"}, configs[2].GroupBy)
	assert.Equal(t, 3, configs[2].Level)
}

func TestNonCumulativeGroupingCarriesOnlyOwnField(t *testing.T) {
	configs, err := BuildAggregations(threeLevelReport(), NewOptions(WithCumulative(false)))
	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.Equal(t, "territory", configs[0].GroupBy)
	assert.Equal(t, "customer_name", configs[1].GroupBy)
	assert.Equal(t, "order_type", configs[2].GroupBy)
}

func TestEmptyGroupsYieldsEmptyConfigs(t *testing.T) {
	configs, err := BuildAggregations(Report{Name: "empty"}, NewOptions())
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestResolvesFieldViaExpressionFallback(t *testing.T) {
	report := Report{
		Groups: []Group{
			{Level: 1, Name: "group1", Expression: 42}, // unrecognized -> fallback to Name
		},
	}
	configs, err := BuildAggregations(report, NewOptions())
	require.NoError(t, err)
	assert.Equal(t, "group1", configs[0].GroupBy)
}

func TestVariablesResetOnGroupMapToCanonicalAggregations(t *testing.T) {
	report := Report{
		Groups: []Group{
			{Level: 1, Name: "territory", Expression: "territory"},
		},
		Variables: []Variable{
			{Name: "total", Type: "sum", ResetOn: ResetOnGroup, ResetGroup: 1, HasResetGrp: true},
			{Name: "n", Type: "count", ResetOn: ResetOnGroup, ResetGroup: 1, HasResetGrp: true},
			{Name: "avg_price", Type: "average", ResetOn: ResetOnGroup, ResetGroup: 1, HasResetGrp: true},
			{Name: "other_level", Type: "max", ResetOn: ResetOnGroup, ResetGroup: 2, HasResetGrp: true},
		},
	}
	configs, err := BuildAggregations(report, NewOptions())
	require.NoError(t, err)
	assert.ElementsMatch(t, []record.Aggregation{record.Sum, record.Count, record.Avg}, configs[0].Aggregations)
}

func TestVariablesFallBackToSumCountWhenNoneMatchLevel(t *testing.T) {
	report := Report{
		Groups: []Group{
			{Level: 1, Name: "territory", Expression: "territory"},
		},
	}
	configs, err := BuildAggregations(report, NewOptions())
	require.NoError(t, err)
	assert.Equal(t, []record.Aggregation{record.Sum, record.Count}, configs[0].Aggregations)
}

func TestMemoryLimitExceededTooManyGroups(t *testing.T) {
	report := Report{
		Groups: []Group{
			{Level: 1, Name: "a", Expression: "a"},
			{Level: 2, Name: "b", Expression: "b"},
			{Level: 3, Name: "c", Expression: "c"},
			{Level: 4, Name: "d", Expression: "d"},
			{Level: 5, Name: "e", Expression: "e"},
		},
	}
	_, err := BuildAggregations(report, NewOptions(WithMaxEstimatedGroups(1000)))
	require.Error(t, err)
	var breach *MemoryLimitExceeded
	require.ErrorAs(t, err, &breach)
	assert.Equal(t, ReasonTooManyGroups, breach.Reason)
}

func TestMemoryLimitExceededTooMuchMemory(t *testing.T) {
	report := threeLevelReport()
	_, err := BuildAggregations(report, NewOptions(WithMaxEstimatedMemory(1000)))
	require.Error(t, err)
	var breach *MemoryLimitExceeded
	require.ErrorAs(t, err, &breach)
	assert.Equal(t, ReasonMemoryTooHigh, breach.Reason)
}

func TestEnforceLimitsFalseDowngradesToWarning(t *testing.T) {
	report := threeLevelReport()
	configs, err := BuildAggregations(report, NewOptions(WithMaxEstimatedMemory(1000), WithEnforceLimits(false)))
	require.NoError(t, err)
	assert.Len(t, configs, 3)
}
