// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

// Package transport provides the concrete byte streams a mosaic receiver
// is reachable over: a local serial line or a TCP socket (the receiver's
// IP-over-USB and ethernet ports expose the same stream on a TCP port).
package transport

import (
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

// Stream wraps a raw handle with an open flag so IsOpen can answer without
// touching the transport.
type Stream struct {
	rc   io.ReadCloser
	open atomic.Bool
}

func (s *Stream) Read(p []byte) (int, error) { return s.rc.Read(p) }

func (s *Stream) Close() error {
	if !s.open.CompareAndSwap(true, false) {
		return nil
	}
	return s.rc.Close()
}

func (s *Stream) IsOpen() bool { return s.open.Load() }

func newStream(rc io.ReadCloser) *Stream {
	s := &Stream{rc: rc}
	s.open.Store(true)
	return s
}

// Serial opens the serial device at path with the given baud rate, raw
// 8N1, and returns it as a readable stream.
func Serial(path string, baud int) (*Stream, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("transport.Serial: %w", err)
	}
	return newStream(port), nil
}

// TCP dials the receiver at addr (host:port) and returns the connection as
// a readable stream.
func TCP(addr string, timeout time.Duration) (*Stream, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("transport.TCP: %w", err)
	}
	return newStream(conn), nil
}

// FromConn wraps an already-established connection. Used by the daemon for
// pre-opened descriptors and by tests.
func FromConn(conn net.Conn) *Stream {
	return newStream(conn)
}
