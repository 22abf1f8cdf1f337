package client

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/muurk/heatlink/internal/protocol"
)

// runConn starts Run on a background goroutine and returns the result
// channel plus a slice the dispatch callback appends to. The slice must
// only be inspected after Run has returned.
func runConn(ctx context.Context, c *Conn, onMsg func(protocol.Message) error) (<-chan error, *[]protocol.Message) {
	msgs := &[]protocol.Message{}
	errc := make(chan error, 1)
	go func() {
		errc <- c.Run(ctx, func(msg protocol.Message) error {
			*msgs = append(*msgs, msg)
			if onMsg != nil {
				return onMsg(msg)
			}
			return nil
		})
	}()
	return errc, msgs
}

func waitErr(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return")
		return nil
	}
}

func writeMessage(t *testing.T, w io.Writer, msg protocol.Message) {
	t.Helper()
	frame, err := protocol.Encode(msg)
	if err != nil {
		t.Errorf("Encode() error = %v", err)
		return
	}
	if err := protocol.WriteFrame(w, frame); err != nil {
		t.Errorf("WriteFrame() error = %v", err)
	}
}

func TestRunDeliversMessagesInOrder(t *testing.T) {
	local, remote := net.Pipe()
	// Tiny chunk size so frames span many reads.
	c := NewConn(local, 3)

	errc, msgs := runConn(context.Background(), c, nil)

	writeMessage(t, remote, &protocol.LoginResponse{SessionID: "s-1", State: "ok"})
	writeMessage(t, remote, &protocol.SystemConfigResponse{State: "OK"})
	remote.Close()

	if err := waitErr(t, errc); err != nil {
		t.Fatalf("Run() error = %v, want nil on clean close", err)
	}
	if len(*msgs) != 2 {
		t.Fatalf("dispatched %d messages, want 2", len(*msgs))
	}
	if _, ok := (*msgs)[0].(*protocol.LoginResponse); !ok {
		t.Errorf("message 0 = %T, want *LoginResponse", (*msgs)[0])
	}
	if _, ok := (*msgs)[1].(*protocol.SystemConfigResponse); !ok {
		t.Errorf("message 1 = %T, want *SystemConfigResponse", (*msgs)[1])
	}
}

func TestRunCancellationIsClean(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	c := NewConn(local, 0)

	ctx, cancel := context.WithCancel(context.Background())
	errc, _ := runConn(ctx, c, nil)

	cancel()
	if err := waitErr(t, errc); err != nil {
		t.Errorf("Run() error = %v after cancellation, want nil", err)
	}
}

func TestRunDispatchErrorFatal(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	c := NewConn(local, 0)

	boom := errors.New("handler failed")
	errc, _ := runConn(context.Background(), c, func(protocol.Message) error { return boom })

	go writeMessage(t, remote, &protocol.LoginResponse{State: "ok"})

	if err := waitErr(t, errc); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestRunDecodeFaultFatal(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	c := NewConn(local, 0)

	errc, _ := runConn(context.Background(), c, nil)

	// Valid framing, unknown type tag.
	go func() {
		_ = protocol.WriteFrame(remote, &protocol.Frame{Type: 0x7777, Payload: []byte("<X/>")})
	}()

	err := waitErr(t, errc)
	var unsupported *protocol.UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Errorf("Run() error = %v, want UnsupportedTypeError", err)
	}
}

func TestRunTruncatedStreamFatal(t *testing.T) {
	local, remote := net.Pipe()
	c := NewConn(local, 0)

	errc, _ := runConn(context.Background(), c, nil)

	// Header declares 100 payload bytes, deliver 4, then close.
	go func() {
		header := make([]byte, protocol.HeaderSize)
		binary.BigEndian.PutUint32(header[0:4], 100)
		binary.BigEndian.PutUint16(header[4:6], protocol.TagBundleResponse)
		_, _ = remote.Write(header)
		_, _ = remote.Write([]byte("<Tel"))
		remote.Close()
	}()

	if err := waitErr(t, errc); err == nil {
		t.Error("Run() = nil on stream ended mid-frame, want framing fault")
	}
}

func TestSendWritesWellFormedFrame(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()
	c := NewConn(local, 0)

	go func() {
		_ = c.Send(&protocol.LoginRequest{Password: "pw"})
	}()

	header := make([]byte, protocol.HeaderSize)
	if _, err := io.ReadFull(remote, header); err != nil {
		t.Fatalf("reading header: %v", err)
	}
	length := binary.BigEndian.Uint32(header[0:4])
	tag := binary.BigEndian.Uint16(header[4:6])
	if tag != protocol.TagLoginRequest {
		t.Errorf("tag = 0x%04x, want 0x%04x", tag, protocol.TagLoginRequest)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(remote, payload); err != nil {
		t.Fatalf("reading payload: %v", err)
	}
	msg, err := protocol.Decode(tag, payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if req := msg.(*protocol.LoginRequest); req.Password != "pw" {
		t.Errorf("password = %q, want pw", req.Password)
	}
}
