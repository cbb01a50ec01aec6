// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

// Package framer splits the raw receiver byte stream into complete NMEA
// sentences and SBF blocks. Its Scan method has the shape of a comm
// callback: it is handed the full accumulated buffer after every read and
// reports how many leading bytes it consumed, leaving incomplete trailing
// messages in place for the next round.
package framer

import (
	"bytes"

	"github.com/sirupsen/logrus"

	"github.com/tibordome/rosaic/internal/nmea"
	"github.com/tibordome/rosaic/internal/sbf"
)

// Kind tags the framing of an emitted message.
type Kind int

const (
	KindNMEA Kind = iota
	KindSBF
)

// Message is one complete framed message in arrival order.
type Message struct {
	Kind Kind
	// Raw holds the full message bytes: the sentence including "$" and
	// CRLF, or the whole SBF block including its header. It is a copy and
	// remains valid after Scan returns.
	Raw []byte
}

// Sink receives framed messages. It is called synchronously from Scan, on
// the I/O worker.
type Sink func(Message)

// maxSentence bounds how long we wait for a sentence terminator before
// declaring the leading "$" garbage. NMEA caps sentences at 82 characters;
// receivers in the wild overshoot, so leave headroom.
const maxSentence = 256

type Framer struct {
	sink Sink
	log  *logrus.Entry
}

func New(sink Sink, log *logrus.Entry) *Framer {
	return &Framer{sink: sink, log: log}
}

// Scan walks data, emits every complete message to the sink, and returns
// the number of leading bytes that are done with: complete messages plus
// any garbage skipped while resynchronizing.
func (f *Framer) Scan(data []byte) (consumed int) {
	pos := 0
	for pos < len(data) {
		start := bytes.IndexByte(data[pos:], '$')
		if start < 0 {
			// No frame start anywhere: all garbage.
			pos = len(data)
			break
		}
		if start > 0 {
			f.log.WithField("bytes", start).Debug("skipping garbage before frame start")
		}
		pos += start

		n, ok := f.scanOne(data[pos:])
		if !ok {
			// Incomplete message at pos: keep it for the next read.
			break
		}
		if n == 0 {
			// Not a valid frame after all; resume searching past the "$".
			pos++
			continue
		}
		pos += n
	}
	return pos
}

// scanOne inspects data, which starts with '$'. It returns the number of
// bytes the leading message occupies (0 if the bytes are garbage), and
// whether a decision could be made with the data available.
func (f *Framer) scanOne(data []byte) (n int, ok bool) {
	if len(data) >= 2 && data[1] == sbf.Sync2 {
		block, err := sbf.Parse(data)
		if err == sbf.ErrShort {
			return 0, false
		}
		if err != nil {
			f.log.WithError(err).Debug("discarding bad SBF block")
			return 0, true
		}
		f.sink(Message{Kind: KindSBF, Raw: append([]byte{}, data[:block.Length]...)})
		return int(block.Length), true
	}

	end := bytes.IndexByte(data, '\n')
	if end < 0 {
		if len(data) < 2 || len(data) > maxSentence {
			// Lone trailing "$" stays pending; an overlong line is garbage.
			return 0, len(data) > maxSentence
		}
		return 0, false
	}

	line := data[:end]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	if _, err := nmea.Parse(line); err != nil {
		f.log.WithError(err).Debug("discarding bad NMEA sentence")
		return 0, true
	}
	f.sink(Message{Kind: KindNMEA, Raw: append([]byte{}, data[:end+1]...)})
	return end + 1, true
}
