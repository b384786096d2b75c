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

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoSinksIsANoOp(t *testing.T) {
	h := New()
	assert.NotPanics(t, func() {
		h.PipelineStart("s1", "report", 0)
		h.BufferFull("s1", 1000, 900)
	})
}

func TestEmitReachesAllSinks(t *testing.T) {
	h := New()
	var got1, got2 []Event
	h.AddSink(func(e Event) { got1 = append(got1, e) })
	h.AddSink(func(e Event) { got2 = append(got2, e) })

	h.PipelineStart("s1", "monthly-sales", 1000)

	require.Len(t, got1, 1)
	require.Len(t, got2, 1)
	assert.Equal(t, "pipeline.start", got1[0].Name)
	assert.Equal(t, "s1", got1[0].Tags["stream_id"])
	assert.Equal(t, "monthly-sales", got1[0].Tags["report_name"])
}

func TestBatchTransformedPayloadShape(t *testing.T) {
	h := New()
	var got Event
	h.AddSink(func(e Event) { got = e })

	h.BatchTransformed("s1", 10, 8, 42, 3, 2, 1)
	assert.Equal(t, 10, got.Payload["records_in"])
	assert.Equal(t, 8, got.Payload["records_out"])
	assert.Equal(t, 2, got.Payload["records_failed"])
	assert.Equal(t, 1, got.Payload["records_rejected"])
}

func TestGroupLimitReachedTags(t *testing.T) {
	h := New()
	var got Event
	h.AddSink(func(e Event) { got = e })

	h.GroupLimitReached("s1", "territory", 10000, 10000)
	assert.Equal(t, "group_limit_reached", got.Name)
	assert.Equal(t, "territory", got.Tags["group_by"])
	assert.Equal(t, 10000, got.Payload["max_groups"])
}

func TestErrorEventCarriesDetails(t *testing.T) {
	h := New()
	var got Event
	h.AddSink(func(e Event) { got = e })

	h.Error("s1", "transform", "timeout", map[string]interface{}{"record_index": 5})
	assert.Equal(t, "transform", got.Tags["stage"])
	assert.Equal(t, "timeout", got.Tags["reason"])
	assert.Equal(t, 5, got.Payload["record_index"])
}
