// Package protocol implements the heating-gateway wire protocol.
//
// This package handles framing, message decoding, and message construction
// for the XML-over-TLS protocol spoken by the gateway on port 9092.
//
// # Frame Format
//
// Every unit on the wire is a length-prefixed, type-tagged frame:
//   - Payload length: 4 bytes (big-endian), counts payload bytes only
//   - Message type tag: 2 bytes (big-endian)
//   - Payload: UTF-8 encoded XML document, exactly `length` bytes
//
// Length-prefixing is load-bearing: the payload is XML text and may
// contain any byte sequence, so delimiter scanning cannot be used.
//
// # Message Types
//
// The dialect defines three request/response pairs, distinguished by
// tag value (requests and responses never share a tag):
//   - Login request/response: password authentication, yields a session id
//   - System-config request/response: the gateway's device topology
//   - Telegram-bundle request/response: batched sensor readings for one
//     device, correlated by bundle id; either a one-shot pull or a push
//     subscription with a reporting interval
//
// # Usage Example - Receiving
//
//	var asm protocol.Assembler
//	asm.Feed(chunk)
//	for {
//	    frame, err := asm.Next()
//	    if err != nil || frame == nil {
//	        break
//	    }
//	    msg, err := protocol.Decode(frame.Type, frame.Payload)
//	    ...
//	}
//
// # Usage Example - Sending
//
//	frame, err := protocol.Encode(&protocol.LoginRequest{Password: pw})
//	if err == nil {
//	    err = protocol.WriteFrame(conn, frame)
//	}
//
// # Thread Safety
//
// Decode and Encode are stateless and safe for concurrent use. An
// Assembler holds a read buffer and must be confined to one goroutine.
package protocol
