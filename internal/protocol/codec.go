package protocol

import (
	"encoding/xml"
	"fmt"
	"sync"
)

// UnsupportedTypeError indicates a frame carried a type tag with no
// registered message mapping. This is a protocol contract violation,
// not a recoverable condition.
type UnsupportedTypeError struct {
	Tag uint16
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported message type tag 0x%04x", e.Tag)
}

var (
	decodersOnce sync.Once
	decoders     map[uint16]func() Message
)

// decoderTable maps inbound type tags to message factories. Built once
// and reused; encoding/xml additionally caches per-type field metadata
// internally, so repeated marshal/unmarshal of the same types is cheap.
func decoderTable() map[uint16]func() Message {
	decodersOnce.Do(func() {
		decoders = map[uint16]func() Message{
			TagLoginRequest:         func() Message { return new(LoginRequest) },
			TagLoginResponse:        func() Message { return new(LoginResponse) },
			TagSystemConfigRequest:  func() Message { return new(SystemConfigRequest) },
			TagSystemConfigResponse: func() Message { return new(SystemConfigResponse) },
			TagBundleRequest:        func() Message { return new(BundleRequest) },
			TagBundleResponse:       func() Message { return new(BundleResponse) },
		}
	})
	return decoders
}

// Decode converts a frame payload into a typed message, keyed by the
// frame's type tag. Returns UnsupportedTypeError for unknown tags and a
// wrapped parse error for payloads that do not match the tag's schema.
func Decode(tag uint16, payload []byte) (Message, error) {
	factory, ok := decoderTable()[tag]
	if !ok {
		return nil, &UnsupportedTypeError{Tag: tag}
	}

	msg := factory()
	if err := xml.Unmarshal(payload, msg); err != nil {
		return nil, fmt.Errorf("failed to decode message 0x%04x: %w", tag, err)
	}
	return msg, nil
}

// Encode renders a message into a complete frame. Marshalling produces
// no indentation or other non-deterministic whitespace, so the header
// length written later from len(Payload) always matches the document.
func Encode(msg Message) (*Frame, error) {
	payload, err := xml.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message 0x%04x: %w", msg.TypeTag(), err)
	}
	return &Frame{Type: msg.TypeTag(), Payload: payload}, nil
}
