package protocol

import (
	"errors"
	"net"
	"testing"
	"time"
)

// echoHandler answers read_reg with the address plus one and fails on
// address zero
func echoHandler(cmdID uint16, args *[]byte, reply OutputBuffer) error {
	switch cmdID {
	case CmdIdentify:
		EncodeVLQUint(reply, uint32(RspIdentify))
		EncodeVLQString(reply, Version)
	case CmdReadReg:
		addr, err := DecodeVLQUint(args)
		if err != nil {
			return err
		}
		if addr == 0 {
			return errors.New("bad register")
		}
		EncodeVLQUint(reply, uint32(RspRegValue))
		EncodeVLQUint(reply, addr)
		EncodeVLQUint(reply, addr+1)
	case 0x7F:
		panic("boom")
	default:
		return ErrUnknownCommand
	}
	return nil
}

func readRegFrame(t *testing.T, seq uint8, addr uint32) []byte {
	t.Helper()
	out := NewScratchOutput()
	err := EncodeFrame(out, seq, func(o OutputBuffer) {
		EncodeVLQUint(o, uint32(CmdReadReg))
		EncodeVLQUint(o, addr)
	})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	return append([]byte(nil), out.Result()...)
}

func decodeReplies(t *testing.T, data []byte) []*Message {
	t.Helper()
	d := NewDecoder(MessageMax)
	d.Feed(data)
	var msgs []*Message
	for {
		msg, ok := d.Next()
		if !ok {
			return msgs
		}
		msgs = append(msgs, msg)
	}
}

func TestTransportRepliesWithRequestSequence(t *testing.T) {
	tr := NewTransport(echoHandler)

	replies := decodeReplies(t, tr.Receive(readRegFrame(t, 0x1A, 0x42800008)))
	if len(replies) != 1 {
		t.Fatalf("Expected 1 reply, got %d", len(replies))
	}
	if replies[0].Sequence != 0x1A {
		t.Errorf("Expected reply sequence 0x1A, got 0x%02x", replies[0].Sequence)
	}

	rspID, args, err := DecodeResponse(replies[0])
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if rspID != RspRegValue {
		t.Errorf("Expected reg_value response, got 0x%02x", rspID)
	}
	addr, _ := DecodeVLQUint(&args)
	value, _ := DecodeVLQUint(&args)
	if addr != 0x42800008 || value != 0x42800009 {
		t.Errorf("Expected addr=0x42800008 value=0x42800009, got addr=%#x value=%#x", addr, value)
	}
}

func TestTransportBatchedFrames(t *testing.T) {
	tr := NewTransport(echoHandler)

	var input []byte
	input = append(input, readRegFrame(t, 0x10, 1)...)
	input = append(input, readRegFrame(t, 0x11, 2)...)

	replies := decodeReplies(t, tr.Receive(input))
	if len(replies) != 2 {
		t.Fatalf("Expected 2 replies, got %d", len(replies))
	}
	if replies[0].Sequence != 0x10 || replies[1].Sequence != 0x11 {
		t.Errorf("Expected sequences 0x10, 0x11, got 0x%02x, 0x%02x",
			replies[0].Sequence, replies[1].Sequence)
	}
	if tr.Handled != 2 {
		t.Errorf("Expected 2 handled frames, got %d", tr.Handled)
	}
}

func TestTransportErrorResponses(t *testing.T) {
	tests := []struct {
		name  string
		frame func(t *testing.T) []byte
		text  string
	}{
		{
			name:  "handler error",
			frame: func(t *testing.T) []byte { return readRegFrame(t, 0x10, 0) },
			text:  "bad register",
		},
		{
			name: "unknown command",
			frame: func(t *testing.T) []byte {
				out := NewScratchOutput()
				_ = EncodeFrame(out, 0x10, func(o OutputBuffer) { EncodeVLQUint(o, 0x33) })
				return append([]byte(nil), out.Result()...)
			},
			text: ErrUnknownCommand.Error(),
		},
		{
			name: "trailing data",
			frame: func(t *testing.T) []byte {
				out := NewScratchOutput()
				_ = EncodeFrame(out, 0x10, func(o OutputBuffer) {
					EncodeVLQUint(o, uint32(CmdReadReg))
					EncodeVLQUint(o, 4)
					EncodeVLQUint(o, 5)
				})
				return append([]byte(nil), out.Result()...)
			},
			text: ErrTrailingData.Error(),
		},
		{
			name: "handler panic",
			frame: func(t *testing.T) []byte {
				out := NewScratchOutput()
				_ = EncodeFrame(out, 0x10, func(o OutputBuffer) { EncodeVLQUint(o, 0x7F) })
				return append([]byte(nil), out.Result()...)
			},
			text: ErrHandlerPanic.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTransport(echoHandler)
			replies := decodeReplies(t, tr.Receive(tt.frame(t)))
			if len(replies) != 1 {
				t.Fatalf("Expected 1 reply, got %d", len(replies))
			}

			_, _, err := DecodeResponse(replies[0])
			var remote *RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("Expected RemoteError, got %v", err)
			}
			if remote.Msg != tt.text {
				t.Errorf("Expected message %q, got %q", tt.text, remote.Msg)
			}
			if tr.Failed != 1 {
				t.Errorf("Expected 1 failed frame, got %d", tr.Failed)
			}
		})
	}
}

// serveBoard runs a board-side transport on conn until it closes
func serveBoard(conn net.Conn, tr *Transport) {
	defer conn.Close()
	buf := make([]byte, 128)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		if reply := tr.Receive(buf[:n]); len(reply) > 0 {
			if _, err := conn.Write(reply); err != nil {
				return
			}
		}
	}
}

func TestHostTransportRequest(t *testing.T) {
	hostSide, boardSide := net.Pipe()
	go serveBoard(boardSide, NewTransport(echoHandler))

	host := NewHostTransport(hostSide)
	defer host.Close()

	// More requests than sequence numbers, so the counter wraps
	for i := uint32(1); i <= 20; i++ {
		rspID, args, err := host.Request(CmdReadReg, func(o OutputBuffer) {
			EncodeVLQUint(o, i)
		}, time.Second)
		if err != nil {
			t.Fatalf("Request %d failed: %v", i, err)
		}
		if rspID != RspRegValue {
			t.Fatalf("Expected reg_value, got 0x%02x", rspID)
		}
		addr, _ := DecodeVLQUint(&args)
		value, _ := DecodeVLQUint(&args)
		if addr != i || value != i+1 {
			t.Errorf("Request %d: expected addr=%d value=%d, got addr=%d value=%d", i, i, i+1, addr, value)
		}
	}
}

func TestHostTransportRemoteError(t *testing.T) {
	hostSide, boardSide := net.Pipe()
	go serveBoard(boardSide, NewTransport(echoHandler))

	host := NewHostTransport(hostSide)
	defer host.Close()

	_, _, err := host.Request(CmdReadReg, func(o OutputBuffer) { EncodeVLQUint(o, 0) }, time.Second)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Expected RemoteError, got %v", err)
	}
	if remote.Msg != "bad register" {
		t.Errorf("Expected \"bad register\", got %q", remote.Msg)
	}
}

func TestHostTransportTimeout(t *testing.T) {
	hostSide, boardSide := net.Pipe()
	// Board that swallows everything
	go func() {
		buf := make([]byte, 128)
		for {
			if _, err := boardSide.Read(buf); err != nil {
				return
			}
		}
	}()

	host := NewHostTransport(hostSide)
	defer host.Close()

	start := time.Now()
	_, _, err := host.Request(CmdIdentify, nil, 50*time.Millisecond)
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Errorf("Expected request to wait for the timeout, returned after %v", time.Since(start))
	}
	t.Logf("Timeout error: %v", err)
}

func TestHostTransportBoardGone(t *testing.T) {
	hostSide, boardSide := net.Pipe()
	host := NewHostTransport(hostSide)
	defer host.Close()

	// Board goes away before answering
	go func() {
		buf := make([]byte, 128)
		boardSide.Read(buf)
		boardSide.Close()
	}()

	if _, _, err := host.Request(CmdIdentify, nil, 5*time.Second); err == nil {
		t.Error("Expected error when the board closes the link")
	}
}
