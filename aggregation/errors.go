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

import "fmt"

// LimitReason names which limit a MemoryLimitExceeded error is about.
type LimitReason string

const (
	ReasonTooManyGroups LimitReason = "too_many_groups"
	ReasonMemoryTooHigh LimitReason = "memory_too_high"
)

// MemoryLimitExceeded is returned from BuildAggregations when the estimated
// group count or estimated memory for a report's groups exceeds the
// configured limits. It is never a runtime crash: BuildAggregations returns
// it as a regular error value.
type MemoryLimitExceeded struct {
	Reason          LimitReason
	EstimatedGroups int64
	EstimatedMemory int64
	Limit           int64
	HumanReadable   string
	Message         string
}

func (e *MemoryLimitExceeded) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("aggregation: %s: estimated %d groups / %d bytes exceeds limit %d",
		e.Reason, e.EstimatedGroups, e.EstimatedMemory, e.Limit)
}

func humanReadableBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for n/div >= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
