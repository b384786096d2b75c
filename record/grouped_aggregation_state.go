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
	"fmt"
	"strings"

	"github.com/rulego/reportflow/utils/fieldpath"
)

// nullSlot is the single key used for any combination of missing-field and
// explicit-nil values, per spec.md §3: "missing or explicit-null fields map
// to a single null slot (missing and null coalesce)".
const nullSlot = "\x00null\x00"

// GroupKey is the ordered list of field names a GroupedAggregationState
// groups by (spec.md's group_key_spec).
type GroupKey []string

// GroupedAggregationState maps a tuple of field values (per GroupKey) to an
// AggregationState, with a hard cap on the number of distinct groups. Once
// the cap is reached, new keys are rejected; existing keys continue to
// update. Not safe for concurrent use; ProducerConsumer serializes access
// per stream_id.
type GroupedAggregationState struct {
	keySpec   GroupKey
	maxGroups int
	groups    map[string]*AggregationState
	// keyValues keeps each key's resolved values, in GroupKey order, for Snapshot output.
	keyValues map[string][]interface{}
}

// NewGroupedAggregationState creates a grouped state keyed by keySpec with
// at most maxGroups distinct keys.
func NewGroupedAggregationState(keySpec GroupKey, maxGroups int) *GroupedAggregationState {
	return &GroupedAggregationState{
		keySpec:   keySpec,
		maxGroups: maxGroups,
		groups:    make(map[string]*AggregationState),
		keyValues: make(map[string][]interface{}),
	}
}

// Key computes the tuple of field values named by the key spec, using
// fieldpath so a key component may itself be a nested path (e.g.
// "customer.region"). Missing and explicit-nil values coalesce to a single
// null representation.
func (g *GroupedAggregationState) Key(r Record) []interface{} {
	values := make([]interface{}, len(g.keySpec))
	for i, f := range g.keySpec {
		var v interface{}
		var found bool
		if fieldpath.IsNestedField(f) {
			v, found = fieldpath.GetNestedField(map[string]interface{}(r), f)
		} else {
			v, found = r.Get(f)
		}
		if !found || v == nil {
			values[i] = nil
			continue
		}
		values[i] = v
	}
	return values
}

// keyString turns a resolved key tuple into a stable map key.
func keyString(values []interface{}) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if v == nil {
			b.WriteString(nullSlot)
			continue
		}
		fmt.Fprintf(&b, "%v", v)
	}
	return b.String()
}

// Add folds r into the group its Key resolves to. fields restricts which
// fields are aggregated, as in AggregationState.Add. It returns true if the
// record was accepted into a group, or false if it was rejected because the
// group cap was reached and the key was new (spec.md §4.7.2 step 4c) —
// callers count rejections and fire group_limit_reached on the first
// rejection after the cap is hit.
func (g *GroupedAggregationState) Add(r Record, fields []string) bool {
	values := g.Key(r)
	key := keyString(values)

	state, exists := g.groups[key]
	if !exists {
		if g.maxGroups > 0 && len(g.groups) >= g.maxGroups {
			return false
		}
		state = NewAggregationState()
		g.groups[key] = state
		g.keyValues[key] = values
	}
	state.Add(r, fields)
	return true
}

// GroupCount returns the current number of distinct groups.
func (g *GroupedAggregationState) GroupCount() int { return len(g.groups) }

// MaxGroups returns the configured cap.
func (g *GroupedAggregationState) MaxGroups() int { return g.maxGroups }

// AtCap reports whether the group cap has been reached.
func (g *GroupedAggregationState) AtCap() bool {
	return g.maxGroups > 0 && len(g.groups) >= g.maxGroups
}

// Group returns the AggregationState for a resolved key tuple, if present.
func (g *GroupedAggregationState) Group(values []interface{}) (*AggregationState, bool) {
	s, ok := g.groups[keyString(values)]
	return s, ok
}

// GroupSnapshot pairs a resolved key tuple with its aggregation snapshot,
// for telemetry and rendering.
type GroupSnapshot struct {
	Key   []interface{}
	State Snapshot
}

// Snapshot takes a consistent point-in-time copy of every group.
func (g *GroupedAggregationState) Snapshot() []GroupSnapshot {
	out := make([]GroupSnapshot, 0, len(g.groups))
	for key, state := range g.groups {
		out = append(out, GroupSnapshot{Key: g.keyValues[key], State: state.Snapshot()})
	}
	return out
}
