// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

// Package taskq provides a serialized task queue. All tasks posted to a
// Queue are executed one at a time, in posting order, by the single
// goroutine that calls Run. It plays the role boost::asio's io_service
// plays for the receiver I/O path: read completions and the close request
// go through the same queue, so they can never overlap or reorder.
package taskq

import (
	"errors"
	"sync"

	"github.com/eapache/queue"
)

// ErrStopped is returned by Post after Stop has been called.
var ErrStopped = errors.New("taskq: queue stopped")

type Queue struct {
	mu      sync.Mutex
	pending *queue.Queue
	wake    chan struct{}
	stopped bool
}

func New() *Queue {
	return &Queue{
		pending: queue.New(),
		wake:    make(chan struct{}),
	}
}

// Post enqueues task for out-of-band execution by the Run loop.
func (q *Queue) Post(task func()) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return ErrStopped
	}
	q.pending.Add(task)
	old := q.wake
	q.wake = make(chan struct{})
	q.mu.Unlock()
	close(old)
	return nil
}

// Run executes tasks until Stop is called and the queue has drained.
// Exactly one goroutine may call Run.
func (q *Queue) Run() {
	for {
		q.mu.Lock()
		if q.pending.Length() > 0 {
			task := q.pending.Remove().(func())
			q.mu.Unlock()
			task()
			continue
		}
		if q.stopped {
			q.mu.Unlock()
			return
		}
		wake := q.wake
		q.mu.Unlock()
		<-wake
	}
}

// Stop marks the queue stopped. Tasks already posted still run; Run
// returns once they have drained. Safe to call more than once.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	old := q.wake
	q.wake = make(chan struct{})
	q.mu.Unlock()
	close(old)
}
