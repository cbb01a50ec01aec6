// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

// Package sbf recognizes SBF (Septentrio Binary Format) blocks in a byte
// stream. A block starts with the two sync bytes "$@", followed by a
// little-endian CRC, block ID and total length, then the payload. The CRC
// is CRC-16/XMODEM computed over everything after the CRC field itself.
package sbf

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderLen is the fixed size of the SBF block header:
// sync (2) + crc (2) + id (2) + length (2).
const HeaderLen = 8

var (
	Sync1 = byte('$')
	Sync2 = byte('@')

	// ErrShort means the input may hold a valid block but more bytes are
	// needed to decide.
	ErrShort = errors.New("sbf: incomplete block")
)

// Block is one decoded SBF block.
type Block struct {
	ID      uint16 // block number and revision bits
	Payload []byte // body after the header, length Length-HeaderLen
	Length  uint16 // total block length including the header
}

// Number returns the block number without the revision bits.
func (b Block) Number() uint16 { return b.ID & 0x1fff }

// Revision returns the block revision.
func (b Block) Revision() uint16 { return b.ID >> 13 }

// Parse decodes the SBF block starting at the beginning of data. It
// returns ErrShort when data is a valid prefix of a block but truncated;
// any other error means the bytes at the start cannot be a block and the
// caller should resynchronize.
func Parse(data []byte) (Block, error) {
	if len(data) < 2 {
		return Block{}, ErrShort
	}
	if data[0] != Sync1 || data[1] != Sync2 {
		return Block{}, fmt.Errorf("sbf.Parse: bad sync bytes 0x%02x 0x%02x", data[0], data[1])
	}
	if len(data) < HeaderLen {
		return Block{}, ErrShort
	}

	crc := binary.LittleEndian.Uint16(data[2:4])
	id := binary.LittleEndian.Uint16(data[4:6])
	length := binary.LittleEndian.Uint16(data[6:8])

	if length < HeaderLen || length%4 != 0 {
		return Block{}, fmt.Errorf("sbf.Parse: invalid block length %d", length)
	}
	if len(data) < int(length) {
		return Block{}, ErrShort
	}

	if got := crc16(data[4:length]); got != crc {
		return Block{}, fmt.Errorf("sbf.Parse: crc mismatch: got 0x%04x, want 0x%04x", got, crc)
	}

	return Block{
		ID:      id,
		Payload: data[HeaderLen:length],
		Length:  length,
	}, nil
}

// Encode serializes a block with the given ID and payload, computing the
// CRC and padding the payload to a multiple of four bytes. Used by tests
// and tooling; the driver itself only reads blocks.
func Encode(id uint16, payload []byte) []byte {
	body := payload
	if pad := (HeaderLen + len(body)) % 4; pad != 0 {
		body = append(append([]byte{}, payload...), make([]byte, 4-pad)...)
	}
	length := uint16(HeaderLen + len(body))

	out := make([]byte, length)
	out[0], out[1] = Sync1, Sync2
	binary.LittleEndian.PutUint16(out[4:6], id)
	binary.LittleEndian.PutUint16(out[6:8], length)
	copy(out[HeaderLen:], body)
	binary.LittleEndian.PutUint16(out[2:4], crc16(out[4:]))
	return out
}

// crc16 implements CRC-16/XMODEM (polynomial 0x1021, zero init), the
// checksum SBF uses.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
