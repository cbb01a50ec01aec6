// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

package comm

import "io"

// Stream is the duplex byte channel the AsyncManager reads from. A serial
// port, a TCP connection, or a test double all qualify. Close must unblock
// a Read that is in flight on another goroutine.
type Stream interface {
	io.Reader
	Close() error
	IsOpen() bool
}

// Callback consumes accumulated receiver bytes. It is handed the entire
// accumulated content so far, not just the latest increment, and returns
// how many leading bytes it consumed; those are discarded before the next
// read lands. Returning 0 leaves everything in place.
//
// The callback runs on the I/O worker with the buffer lock held: it must
// not call back into the manager (Wait, Stop) or it will deadlock.
type Callback func(data []byte) (consumed int)
