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

// Package pipeline implements the bounded, backpressured streaming topology
// that moves records from a Producer through a ProducerConsumer's
// transform/aggregate stage to whatever consumes the result batches.
package pipeline

import (
	"sync"

	"github.com/rulego/reportflow/record"
)

// Producer is an unbounded internal FIFO paired with a pending-demand
// counter. It never blocks on Enqueue: records accumulate internally until
// a downstream ProducerConsumer requests demand, at which point a
// dedicated dispatch goroutine hands batches out over Events().
type Producer struct {
	mu            sync.Mutex
	queue         []record.Record
	pendingDemand int64

	wake chan struct{}
	out  chan []record.Record
	done chan struct{}

	closeOnce sync.Once
}

// NewProducer returns a running Producer. outBuffer sizes the channel
// Events() reads from; it does not bound the internal queue.
func NewProducer(outBuffer int) *Producer {
	if outBuffer <= 0 {
		outBuffer = 1
	}
	p := &Producer{
		wake: make(chan struct{}, 1),
		out:  make(chan []record.Record, outBuffer),
		done: make(chan struct{}),
	}
	go p.loop()
	return p
}

// Enqueue appends events to the internal queue and wakes the dispatch loop.
// It returns immediately regardless of downstream demand or buffering.
func (p *Producer) Enqueue(events []record.Record) {
	if len(events) == 0 {
		return
	}
	p.mu.Lock()
	p.queue = append(p.queue, events...)
	p.mu.Unlock()
	p.signal()
}

// RequestDemand records that downstream wants n more events and wakes the
// dispatch loop to satisfy as much of it as is immediately available.
func (p *Producer) RequestDemand(n int64) {
	if n <= 0 {
		return
	}
	p.mu.Lock()
	p.pendingDemand += n
	p.mu.Unlock()
	p.signal()
}

// QueueLen reports the number of events currently buffered and undispatched.
func (p *Producer) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Events is the channel ProducerConsumer reads dispatched batches from. It
// closes once Close is called; events still queued at that point are not
// dispatched.
func (p *Producer) Events() <-chan []record.Record { return p.out }

// Done closes when the producer has been shut down, letting Registry
// observe an abnormal producer termination.
func (p *Producer) Done() <-chan struct{} { return p.done }

// Close shuts the producer down. Safe to call more than once.
func (p *Producer) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

func (p *Producer) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Producer) loop() {
	defer close(p.out)
	for {
		select {
		case <-p.wake:
			p.dispatchAvailable()
		case <-p.done:
			return
		}
	}
}

// dispatchAvailable hands out batches sized to pendingDemand until either
// the queue or the demand runs dry.
func (p *Producer) dispatchAvailable() {
	for {
		p.mu.Lock()
		if p.pendingDemand <= 0 || len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		take := p.pendingDemand
		if int64(len(p.queue)) < take {
			take = int64(len(p.queue))
		}
		batch := make([]record.Record, take)
		copy(batch, p.queue[:take])
		p.queue = p.queue[take:]
		p.pendingDemand -= take
		p.mu.Unlock()

		select {
		case p.out <- batch:
		case <-p.done:
			return
		}
	}
}
