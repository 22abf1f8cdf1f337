package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame layout constants
const (
	// HeaderSize is the fixed frame header length: 4-byte payload length
	// plus 2-byte message type tag, both big-endian.
	HeaderSize = 6

	// MaxPayloadSize bounds a single frame payload. The gateway sends
	// small XML documents; a declared length beyond this indicates a
	// corrupted or desynchronized stream and is treated as fatal.
	MaxPayloadSize = 1 << 20
)

// Frame is one length-prefixed, type-tagged unit of wire data.
type Frame struct {
	Type    uint16 // Message type tag
	Payload []byte // Raw XML payload, exactly the declared length
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame{Type=0x%04x, Length=%d}", f.Type, len(f.Payload))
}

// Assembler accumulates raw stream bytes and yields complete frames.
//
// The underlying reader delivers arbitrary chunks; Feed appends them and
// Next extracts frames as soon as a full header plus payload is buffered.
// The frame sequence is identical regardless of how the stream was
// chunked. Not safe for concurrent use.
type Assembler struct {
	buf []byte
}

// Feed appends a chunk of stream bytes to the internal buffer.
func (a *Assembler) Feed(p []byte) {
	a.buf = append(a.buf, p...)
}

// Buffered returns the number of bytes held but not yet consumed.
func (a *Assembler) Buffered() int {
	return len(a.buf)
}

// Next extracts the next complete frame from the buffer.
// Returns (nil, nil) when more bytes are needed. The returned frame's
// payload is copied and does not alias the internal buffer.
func (a *Assembler) Next() (*Frame, error) {
	if len(a.buf) < HeaderSize {
		return nil, nil
	}

	length := binary.BigEndian.Uint32(a.buf[0:4])
	if length > MaxPayloadSize {
		return nil, fmt.Errorf("declared payload length %d exceeds maximum %d (stream desynchronized?)",
			length, MaxPayloadSize)
	}

	total := HeaderSize + int(length)
	if len(a.buf) < total {
		// Payload not fully buffered yet; wait for more reads
		return nil, nil
	}

	frame := &Frame{
		Type:    binary.BigEndian.Uint16(a.buf[4:6]),
		Payload: append([]byte(nil), a.buf[HeaderSize:total]...),
	}
	a.buf = a.buf[total:]
	return frame, nil
}

// WriteFrame writes a complete frame to w. The header length field is
// computed from the actual payload byte count; a mismatch here would
// corrupt framing for every subsequent frame on the connection.
func WriteFrame(w io.Writer, f *Frame) error {
	buf := make([]byte, HeaderSize+len(f.Payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(f.Payload)))
	binary.BigEndian.PutUint16(buf[4:6], f.Type)
	copy(buf[HeaderSize:], f.Payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}
