// Package frame implements the EPP transport framing from RFC 5734 section 4:
// every message is prefixed with a 4-byte big-endian unsigned integer giving
// the total frame length (prefix included), followed by the UTF-8 XML
// payload.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds the total frame length (prefix + payload) accepted by
// Read. A declared length above this is rejected before the payload is ever
// read, so an oversize or malicious declaration cannot force large
// allocations.
const MaxFrameSize = 64 * 1024

// prefixLen is the width of the length prefix in octets.
const prefixLen = 4

// ErrOversizeFrame is returned when the declared total length exceeds
// MaxFrameSize.
var ErrOversizeFrame = errors.New("epp: frame exceeds maximum size")

// ErrUndersizeFrame is returned when the declared total length is smaller
// than the 4-byte prefix itself.
var ErrUndersizeFrame = errors.New("epp: frame length shorter than prefix")

// Read reads one complete EPP frame from r and returns its payload (the XML
// document, without the length prefix). Short reads are retried internally
// by io.ReadFull; an EOF before a full frame arrives is surfaced to the
// caller as io.ErrUnexpectedEOF or io.EOF so the caller can distinguish a
// clean close from a truncated frame.
func Read(r io.Reader) ([]byte, error) {
	var lenBuf [prefixLen]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}

	total := binary.BigEndian.Uint32(lenBuf[:])
	if total < prefixLen {
		return nil, ErrUndersizeFrame
	}
	if total > MaxFrameSize {
		return nil, fmt.Errorf("%w: declared %d, max %d", ErrOversizeFrame, total, MaxFrameSize)
	}

	payload := make([]byte, total-prefixLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// Write frames payload and writes the prefix and payload to w in a single
// call so a partial write cannot interleave with another goroutine's frame
// on the same connection.
func Write(w io.Writer, payload []byte) error {
	total := uint32(len(payload) + prefixLen)
	if total > MaxFrameSize {
		return fmt.Errorf("%w: %d exceeds max %d", ErrOversizeFrame, total, MaxFrameSize)
	}

	buf := make([]byte, prefixLen+len(payload))
	binary.BigEndian.PutUint32(buf[:prefixLen], total)
	copy(buf[prefixLen:], payload)

	_, err := w.Write(buf)
	return err
}
