// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

// Package comm implements the asynchronous I/O manager between this driver
// and a mosaic receiver. It continuously reads the receiver byte stream
// (NMEA sentences and SBF blocks, though it never interprets either) into
// an accumulation buffer and hands the accumulated bytes to a registered
// callback after every completed read.
package comm

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tibordome/rosaic/internal/taskq"
)

// DefaultBufferSize is the initial capacity of the accumulation buffer.
const DefaultBufferSize = 8192

// Manager is the I/O manager surface seen by collaborators, synchronous
// and asynchronous alike.
type Manager interface {
	SetCallback(cb Callback)
	Wait(timeout time.Duration)
	IsOpen() bool
	Stop()
}

// AsyncManager reads a Stream with exactly one read in flight at any time.
// Read completions and the close request are serialized through one
// taskq.Queue driven by a single worker goroutine, so completions are
// strictly ordered and a close can never race a re-armed read.
//
// The accumulation buffer grows by doubling when full; bytes are only
// discarded when the callback reports them consumed.
type AsyncManager struct {
	stream Stream
	queue  *taskq.Queue
	log    *logrus.Entry

	mu       sync.Mutex
	wake     chan struct{} // swapped and closed on every successful read
	in       []byte
	n        int // fill length: in[:n] is valid accumulated data
	cb       Callback
	stopping bool

	done chan struct{} // closed when the worker returns from Run
}

// NewAsyncManager starts reading stream immediately. bufSize <= 0 selects
// DefaultBufferSize. The manager owns the queue's lifecycle from here on:
// it starts the single worker driving it and stops it again in Stop.
func NewAsyncManager(stream Stream, queue *taskq.Queue, bufSize int, log *logrus.Entry) *AsyncManager {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	m := &AsyncManager{
		stream: stream,
		queue:  queue,
		log:    log,
		wake:   make(chan struct{}),
		in:     make([]byte, bufSize),
		done:   make(chan struct{}),
	}

	m.queue.Post(m.doRead)
	go func() {
		m.queue.Run()
		close(m.done)
	}()

	return m
}

// SetCallback registers the data consumer. Register before traffic starts;
// until then completions simply accumulate.
func (m *AsyncManager) SetCallback(cb Callback) {
	m.mu.Lock()
	m.cb = cb
	m.mu.Unlock()
}

// IsOpen reports whether the underlying stream is open.
func (m *AsyncManager) IsOpen() bool {
	return m.stream.IsOpen()
}

// Wait blocks the caller until the next read notification or the timeout,
// whichever comes first. It carries no payload: data arrival, shutdown and
// timeout all look the same, so callers re-check observable state after it
// returns.
func (m *AsyncManager) Wait(timeout time.Duration) {
	m.mu.Lock()
	wake := m.wake
	m.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-wake:
	case <-timer.C:
	}
}

// Stop shuts the manager down and joins the worker. The close request is
// posted through the same queue as read completions, so it is processed
// in-order relative to any completion already pending.
func (m *AsyncManager) Stop() {
	m.queue.Post(m.doClose)
	m.queue.Stop()
	<-m.done
}

// doRead arms the next read against the unused buffer tail. It runs only
// on the queue worker: once from construction, afterwards only from a
// completion, so at most one read is ever outstanding.
func (m *AsyncManager) doRead() {
	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return
	}
	if m.n == len(m.in) {
		// Buffer exhausted: the callback consumed nothing. Double the
		// capacity rather than drop receiver bytes.
		grown := make([]byte, 2*len(m.in))
		copy(grown, m.in)
		m.in = grown
		m.log.WithField("capacity", len(m.in)).Warn("accumulation buffer full, growing")
	}
	dst := m.in[m.n:]
	m.mu.Unlock()

	go func() {
		n, err := m.stream.Read(dst)
		// Post, never handle inline: the queue serializes this completion
		// against a concurrently posted close request.
		m.queue.Post(func() { m.onReadDone(n, err) })
	}()
}

// onReadDone is the completion handler for the single in-flight read.
func (m *AsyncManager) onReadDone(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.log.WithError(err).WithField("bytes", n).Error("receiver read failed")
	} else if n > 0 {
		m.n += n
		if m.cb != nil {
			consumed := m.cb(m.in[:m.n])
			if consumed > 0 {
				if consumed > m.n {
					consumed = m.n
				}
				copy(m.in, m.in[consumed:m.n])
				m.n -= consumed
			}
		}
		m.notifyLocked()
	}

	if !m.stopping {
		m.queue.Post(m.doRead)
	}
}

// doClose marks the manager stopping and closes the stream, failing the
// in-flight read if one is pending. A close error is reported but never
// blocks the shutdown.
func (m *AsyncManager) doClose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopping {
		return
	}
	m.stopping = true
	if err := m.stream.Close(); err != nil {
		m.log.WithError(err).Error("error closing receiver stream")
	}
	m.notifyLocked()
}

// notifyLocked wakes every Wait caller. Callers must hold m.mu.
func (m *AsyncManager) notifyLocked() {
	old := m.wake
	m.wake = make(chan struct{})
	close(old)
}
