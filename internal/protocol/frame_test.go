package protocol

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildFrame constructs raw wire bytes for a frame.
func buildFrame(tag uint16, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint16(buf[4:6], tag)
	copy(buf[HeaderSize:], payload)
	return buf
}

func drainFrames(t *testing.T, a *Assembler) []*Frame {
	t.Helper()
	var frames []*Frame
	for {
		frame, err := a.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if frame == nil {
			return frames
		}
		frames = append(frames, frame)
	}
}

func TestAssemblerSingleFrame(t *testing.T) {
	var a Assembler
	a.Feed(buildFrame(TagLoginResponse, []byte("<LoginResponse/>")))

	frames := drainFrames(t, &a)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Type != TagLoginResponse {
		t.Errorf("type = 0x%04x, want 0x%04x", frames[0].Type, TagLoginResponse)
	}
	if !bytes.Equal(frames[0].Payload, []byte("<LoginResponse/>")) {
		t.Errorf("payload = %q", frames[0].Payload)
	}
	if a.Buffered() != 0 {
		t.Errorf("buffered = %d, want 0", a.Buffered())
	}
}

func TestAssemblerChunkingIndependence(t *testing.T) {
	// The frame sequence must not depend on how the stream was split
	// across reads.
	stream := bytes.Join([][]byte{
		buildFrame(TagLoginResponse, []byte("<LoginResponse><State>ok</State></LoginResponse>")),
		buildFrame(TagSystemConfigResponse, []byte("<SystemConfigResponse/>")),
		buildFrame(TagBundleResponse, []byte("<TelegramBundleResponse/>")),
	}, nil)

	var whole Assembler
	whole.Feed(stream)
	want := drainFrames(t, &whole)
	if len(want) != 3 {
		t.Fatalf("got %d frames from single feed, want 3", len(want))
	}

	for _, chunkSize := range []int{1, 2, 3, 5, 7, HeaderSize, 64} {
		var a Assembler
		var got []*Frame
		for off := 0; off < len(stream); off += chunkSize {
			end := off + chunkSize
			if end > len(stream) {
				end = len(stream)
			}
			a.Feed(stream[off:end])
			got = append(got, drainFrames(t, &a)...)
		}

		if len(got) != len(want) {
			t.Fatalf("chunk=%d: got %d frames, want %d", chunkSize, len(got), len(want))
		}
		for i := range got {
			if got[i].Type != want[i].Type || !bytes.Equal(got[i].Payload, want[i].Payload) {
				t.Errorf("chunk=%d: frame %d = %v, want %v", chunkSize, i, got[i], want[i])
			}
		}
	}
}

func TestAssemblerWaitsForFullPayload(t *testing.T) {
	raw := buildFrame(TagBundleResponse, []byte("<TelegramBundleResponse/>"))

	var a Assembler
	// Everything except the last payload byte: no frame may be emitted.
	a.Feed(raw[:len(raw)-1])
	if frame, err := a.Next(); err != nil || frame != nil {
		t.Fatalf("Next() = (%v, %v) on truncated stream, want (nil, nil)", frame, err)
	}

	a.Feed(raw[len(raw)-1:])
	frames := drainFrames(t, &a)
	if len(frames) != 1 {
		t.Fatalf("got %d frames after completing payload, want 1", len(frames))
	}
}

func TestAssemblerWaitsForFullHeader(t *testing.T) {
	var a Assembler
	a.Feed([]byte{0x00, 0x00, 0x00})
	if frame, err := a.Next(); err != nil || frame != nil {
		t.Fatalf("Next() = (%v, %v) on partial header, want (nil, nil)", frame, err)
	}
}

func TestAssemblerRejectsOversizedLength(t *testing.T) {
	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header[0:4], MaxPayloadSize+1)
	binary.BigEndian.PutUint16(header[4:6], TagBundleResponse)

	var a Assembler
	a.Feed(header)
	if _, err := a.Next(); err == nil {
		t.Fatal("Next() accepted oversized declared length, want error")
	}
}

func TestAssemblerPayloadDoesNotAliasBuffer(t *testing.T) {
	var a Assembler
	a.Feed(buildFrame(TagLoginResponse, []byte("abc")))
	frame, err := a.Next()
	if err != nil || frame == nil {
		t.Fatalf("Next() = (%v, %v)", frame, err)
	}

	// Feeding more data must not disturb an already-returned payload.
	a.Feed(buildFrame(TagLoginResponse, []byte("xyz")))
	if string(frame.Payload) != "abc" {
		t.Errorf("payload mutated to %q after Feed", frame.Payload)
	}
}

func TestWriteFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := &Frame{Type: TagLoginRequest, Payload: []byte("<LoginRequest><Password>x</Password></LoginRequest>")}
	if err := WriteFrame(&buf, in); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	var a Assembler
	a.Feed(buf.Bytes())
	frames := drainFrames(t, &a)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Type != in.Type || !bytes.Equal(frames[0].Payload, in.Payload) {
		t.Errorf("round trip = %v, want %v", frames[0], in)
	}
}

func TestWriteFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, &Frame{Type: TagSystemConfigRequest}); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	if buf.Len() != HeaderSize {
		t.Errorf("wrote %d bytes, want %d", buf.Len(), HeaderSize)
	}
	if got := binary.BigEndian.Uint32(buf.Bytes()[0:4]); got != 0 {
		t.Errorf("declared length = %d, want 0", got)
	}
}
