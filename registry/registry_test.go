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

package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	done chan struct{}
}

func newFakeProducer() *fakeProducer { return &fakeProducer{done: make(chan struct{})} }

func (f *fakeProducer) Done() <-chan struct{} { return f.done }
func (f *fakeProducer) crash()                { close(f.done) }

func TestRegisterPipelineAssignsUniqueStreamID(t *testing.T) {
	r := New()
	id1, err := r.RegisterPipeline(nil, nil)
	require.NoError(t, err)
	id2, err := r.RegisterPipeline(nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	info, err := r.GetPipeline(id1)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, info.Status)
}

func TestGetPipelineNotFound(t *testing.T) {
	r := New()
	_, err := r.GetPipeline("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncrementRecordsIsMonotonic(t *testing.T) {
	r := New()
	id, _ := r.RegisterPipeline(nil, nil)
	require.NoError(t, r.IncrementRecords(id, 5))
	require.NoError(t, r.IncrementRecords(id, 3))
	info, _ := r.GetPipeline(id)
	assert.EqualValues(t, 8, info.RecordsProcessed())
}

func TestUpdateMemoryUsage(t *testing.T) {
	r := New()
	id, _ := r.RegisterPipeline(nil, nil)
	require.NoError(t, r.UpdateMemoryUsage(id, 4096))
	info, _ := r.GetPipeline(id)
	assert.EqualValues(t, 4096, info.MemoryUsage())
}

func TestListPipelinesFiltersByStatus(t *testing.T) {
	r := New()
	id1, _ := r.RegisterPipeline(nil, nil)
	id2, _ := r.RegisterPipeline(nil, nil)
	require.NoError(t, r.UpdateStatus(id2, StatusCompleted))

	running := r.ListPipelines(Filters{Status: StatusRunning})
	require.Len(t, running, 1)
	assert.Equal(t, id1, running[0].StreamID)

	counts := r.CountByStatus()
	assert.Equal(t, 1, counts[StatusRunning])
	assert.Equal(t, 1, counts[StatusCompleted])
}

func TestProducerCrashTransitionsPipelineToFailed(t *testing.T) {
	r := New()
	producer := newFakeProducer()
	id, err := r.RegisterPipeline(producer, nil)
	require.NoError(t, err)

	producer.crash()

	require.Eventually(t, func() bool {
		info, err := r.GetPipeline(id)
		return err == nil && info.Status == StatusFailed
	}, time.Second, time.Millisecond)
}

func TestProducerCrashDoesNotOverwriteTerminalStatus(t *testing.T) {
	r := New()
	producer := newFakeProducer()
	id, err := r.RegisterPipeline(producer, nil)
	require.NoError(t, err)

	require.NoError(t, r.UpdateStatus(id, StatusCompleted))
	producer.crash()

	time.Sleep(20 * time.Millisecond)
	info, err := r.GetPipeline(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, info.Status)
}
