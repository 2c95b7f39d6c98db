package binaryport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frames on the wire are a little-endian u32 length prefix followed by that
// many payload bytes. The first payload byte is always the binary protocol
// version.

// MaxFramePayloadLength bounds a single frame. Anything larger is treated
// as a malformed peer rather than an allocation request.
const MaxFramePayloadLength = 8 << 20

// WriteFrame writes a length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFramePayloadLength {
		return fmt.Errorf("frame payload too large: %d bytes", len(payload))
	}
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("writing frame length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads a single length-prefixed frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("reading frame length: %w", err)
	}
	length := binary.LittleEndian.Uint32(prefix[:])
	if length > MaxFramePayloadLength {
		return nil, fmt.Errorf("frame payload too large: %d bytes", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return payload, nil
}
