package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	"github.com/muurk/heatlink/internal/logging"
	"github.com/muurk/heatlink/internal/protocol"
)

const (
	// DefaultPort is the gateway's protocol port.
	DefaultPort = 9092

	// defaultChunkSize is the per-read buffer for the fill loop.
	defaultChunkSize = 4096
)

// Config describes how to reach the gateway.
type Config struct {
	Host string
	Port int // defaults to DefaultPort
	TLS  *tls.Config

	// ChunkSize overrides the per-read buffer size; mostly for tests.
	ChunkSize int
}

// Conn is one protocol connection to the gateway. Create it with Dial,
// start the receive loops with Run, and write requests with Send.
type Conn struct {
	conn      net.Conn
	chunkSize int

	// Sends originate from workflow continuations on the drain
	// goroutine and from session startup; serialize them.
	writeMu sync.Mutex
}

// Dial opens a mutually-authenticated TLS connection to the gateway.
func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	dialer := &tls.Dialer{NetDialer: &net.Dialer{}, Config: cfg.TLS}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gateway at %s: %w", addr, err)
	}

	logging.LogConnection(addr, "connected")
	return NewConn(raw, cfg.ChunkSize), nil
}

// NewConn wraps an already-established stream. Used by Dial and by
// tests that substitute an in-memory pipe for the TLS connection.
func NewConn(conn net.Conn, chunkSize int) *Conn {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Conn{conn: conn, chunkSize: chunkSize}
}

// Send encodes and writes one request frame.
func (c *Conn) Send(msg protocol.Message) error {
	frame, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	logging.LogFrame("send", frame.Type, frame.Payload)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return protocol.WriteFrame(c.conn, frame)
}

// Close tears down the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Run executes the connection's two receive loops until the stream
// ends, ctx is canceled, or a fatal error occurs.
//
// A fill goroutine performs blocking reads and hands each chunk to the
// drain loop over a single-producer/single-consumer channel; the fill
// loop does not read ahead until the previous chunk was accepted, which
// bounds buffer growth. The drain loop (this goroutine) assembles
// frames, decodes them, and dispatches each message sequentially in
// arrival order, so handler side effects need no locking.
//
// Cancellation is cooperative and treated as a normal end of stream.
// Fatal faults (transport, framing, decode, dispatch) are returned and
// end the connection.
func (c *Conn) Run(ctx context.Context, dispatch func(protocol.Message) error) error {
	// Unblock the pending read when the caller cancels.
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()
	defer c.conn.Close()

	done := make(chan struct{})
	defer close(done)

	chunks := make(chan []byte, 1)
	readErr := make(chan error, 1)

	go func() {
		defer close(chunks)
		for {
			if ctx.Err() != nil {
				return
			}
			buf := make([]byte, c.chunkSize)
			n, err := c.conn.Read(buf)
			if n > 0 {
				select {
				case chunks <- buf[:n]:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
			if err != nil {
				if err != io.EOF && ctx.Err() == nil {
					readErr <- err
				}
				return
			}
		}
	}()

	var asm protocol.Assembler
	for chunk := range chunks {
		if ctx.Err() != nil {
			return nil
		}
		asm.Feed(chunk)
		for {
			frame, err := asm.Next()
			if err != nil {
				return fmt.Errorf("framing fault: %w", err)
			}
			if frame == nil {
				break
			}
			logging.LogFrame("recv", frame.Type, frame.Payload)

			msg, err := protocol.Decode(frame.Type, frame.Payload)
			if err != nil {
				return err
			}
			if err := dispatch(msg); err != nil {
				return err
			}
		}
	}

	select {
	case err := <-readErr:
		return fmt.Errorf("transport fault: %w", err)
	default:
	}
	if ctx.Err() == nil && asm.Buffered() > 0 {
		return fmt.Errorf("framing fault: stream ended mid-frame (%d bytes buffered)", asm.Buffered())
	}
	return nil
}
