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
	"sort"
	"strconv"
	"strings"

	"github.com/rulego/reportflow/exprparse"
	"github.com/rulego/reportflow/logger"
	"github.com/rulego/reportflow/record"
)

// canonicalAggregation maps a variable's declared type to one of the fixed
// aggregation tokens record.AggregationState understands.
func canonicalAggregation(varType string) (record.Aggregation, bool) {
	switch strings.ToLower(varType) {
	case "sum":
		return record.Sum, true
	case "count":
		return record.Count, true
	case "avg", "average":
		return record.Avg, true
	case "min":
		return record.Min, true
	case "max":
		return record.Max, true
	default:
		return "", false
	}
}

// BuildAggregations turns report into a levelled list of AggConfig values,
// per spec.md §4.2. An empty Groups list yields an empty, nil-error result.
func BuildAggregations(report Report, opts Options) ([]AggConfig, error) {
	if len(report.Groups) == 0 {
		return nil, nil
	}

	groups := make([]Group, len(report.Groups))
	copy(groups, report.Groups)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Level < groups[j].Level })

	resolved := make([]string, len(groups))
	for i, g := range groups {
		resolved[i] = exprparse.ExtractFieldWithFallback(g.Expression, g.Name)
	}

	if err := validateMemory(groups, opts); err != nil {
		return nil, err
	}

	configs := make([]AggConfig, len(groups))
	for i, g := range groups {
		var fields []string
		if opts.Cumulative {
			fields = append([]string{}, resolved[:i+1]...)
		} else {
			fields = []string{resolved[i]}
		}

		configs[i] = AggConfig{
			GroupByFields: fields,
			GroupBy:       groupByValue(fields),
			Level:         g.Level,
			Aggregations:  aggregationsForLevel(report.Variables, g.Level),
			Sort:          g.Sort,
		}
	}
	return configs, nil
}

// groupByValue implements spec.md §4.2 step 3: a bare atom when the
// resolved field list has length 1, else the list itself.
func groupByValue(fields []string) interface{} {
	if len(fields) == 1 {
		return fields[0]
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// aggregationsForLevel collects the canonical aggregation tokens for every
// variable that resets on this group level, falling back to [sum, count]
// when none apply.
func aggregationsForLevel(vars []Variable, level int) []record.Aggregation {
	var aggs []record.Aggregation
	seen := make(map[record.Aggregation]bool)
	for _, v := range vars {
		if v.ResetOn != ResetOnGroup || !v.HasResetGrp || v.ResetGroup != level {
			continue
		}
		agg, ok := canonicalAggregation(v.Type)
		if !ok || seen[agg] {
			continue
		}
		seen[agg] = true
		aggs = append(aggs, agg)
	}
	if len(aggs) == 0 {
		return []record.Aggregation{record.Sum, record.Count}
	}
	return aggs
}

// validateMemory implements spec.md §4.2 step 5: estimate the number of
// groups at each level as a geometric series and the bytes that would
// consume, and fail (unless EnforceLimits is false) when either exceeds its
// configured limit.
func validateMemory(groups []Group, opts Options) error {
	var estimatedGroups int64
	for _, g := range groups {
		estimatedGroups += opts.cardinalityForLevel(g.Level)
	}
	estimatedMemory := estimatedGroups * opts.BytesPerGroup

	maxGroups := opts.MaxEstimatedGroups
	if maxGroups <= 0 {
		maxGroups = defaultMaxEstimatedGroups
	}

	var breach *MemoryLimitExceeded
	switch {
	case estimatedGroups > maxGroups:
		breach = &MemoryLimitExceeded{
			Reason:          ReasonTooManyGroups,
			EstimatedGroups: estimatedGroups,
			EstimatedMemory: estimatedMemory,
			Limit:           maxGroups,
			HumanReadable:   humanReadableBytes(estimatedMemory),
		}
	case opts.MaxEstimatedMemory > 0 && estimatedMemory > opts.MaxEstimatedMemory:
		breach = &MemoryLimitExceeded{
			Reason:          ReasonMemoryTooHigh,
			EstimatedGroups: estimatedGroups,
			EstimatedMemory: estimatedMemory,
			Limit:           opts.MaxEstimatedMemory,
			HumanReadable:   humanReadableBytes(estimatedMemory),
		}
	}
	if breach == nil {
		return nil
	}
	breach.Message = buildMessage(breach)

	if !opts.EnforceLimits {
		logger.Warn("aggregation: %s", breach.Message)
		return nil
	}
	return breach
}

func buildMessage(e *MemoryLimitExceeded) string {
	switch e.Reason {
	case ReasonTooManyGroups:
		return "estimated " + strconv.FormatInt(e.EstimatedGroups, 10) + " groups exceeds max_estimated_groups (" +
			strconv.FormatInt(e.Limit, 10) + ")"
	default:
		return "estimated memory " + e.HumanReadable + " exceeds max_estimated_memory limit"
	}
}
