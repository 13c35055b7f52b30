package protocol

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultTimeout bounds how long a request waits for its reply
const DefaultTimeout = 2 * time.Second

// RemoteError is a failure reported by the board in an error response
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string {
	return "board error: " + e.Msg
}

// HostTransport handles the protocol from the host side. It sends one
// request at a time and waits for the reply carrying the same sequence.
type HostTransport struct {
	port io.ReadWriteCloser

	seq     uint8
	decoder *Decoder
	scratch *ScratchOutput

	// Serializes requests; only one is outstanding at a time
	reqMutex sync.Mutex

	responseChan chan *Message

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
	readErr  error
}

// NewHostTransport creates a host-side transport and starts reading port
func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:         port,
		seq:          MessageDest, // Start at 0x10
		decoder:      NewDecoder(MessageMax),
		scratch:      NewScratchOutput(),
		responseChan: make(chan *Message, 4),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}

	// Start background reader
	go t.readLoop()

	return t
}

// Request sends a command and waits for its reply. A reply carrying an
// error response is returned as a *RemoteError.
func (t *HostTransport) Request(cmdID uint16, args func(output OutputBuffer), timeout time.Duration) (uint16, []byte, error) {
	t.reqMutex.Lock()
	defer t.reqMutex.Unlock()

	seq := t.seq
	// Late replies to an abandoned request must not match the next one
	t.seq = NextSequence(seq)

	t.scratch.Reset()
	err := EncodeFrame(t.scratch, seq, func(o OutputBuffer) {
		EncodeVLQUint(o, uint32(cmdID))
		if args != nil {
			args(o)
		}
	})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build command: %w", err)
	}

	t.drainResponses()
	if err := t.writeMessage(t.scratch.Result()); err != nil {
		return 0, nil, fmt.Errorf("failed to write message: %w", err)
	}

	msg, err := t.waitForReply(seq, timeout)
	if err != nil {
		return 0, nil, err
	}
	return DecodeResponse(msg)
}

// DecodeResponse splits a reply into its response ID and argument bytes
func DecodeResponse(msg *Message) (uint16, []byte, error) {
	data := msg.Payload
	rspID, err := DecodeVLQUint(&data)
	if err != nil {
		return 0, nil, fmt.Errorf("malformed reply: %w", err)
	}
	if uint16(rspID) == RspError {
		text, err := DecodeVLQString(&data)
		if err != nil {
			return 0, nil, fmt.Errorf("malformed error reply: %w", err)
		}
		return RspError, nil, &RemoteError{Msg: text}
	}
	return uint16(rspID), data, nil
}

// writeMessage sends a message to the serial port
func (t *HostTransport) writeMessage(msg []byte) error {
	n, err := t.port.Write(msg)
	if err != nil {
		return err
	}
	if n != len(msg) {
		return fmt.Errorf("incomplete write: %d/%d bytes", n, len(msg))
	}
	return nil
}

func (t *HostTransport) waitForReply(seq uint8, timeout time.Duration) (*Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case msg := <-t.responseChan:
			if msg.Sequence != seq {
				// Stale reply to an earlier request
				continue
			}
			return msg, nil

		case <-timer.C:
			return nil, fmt.Errorf("reply timeout after %v (seq 0x%02x)", timeout, seq)

		case <-t.doneChan:
			if t.readErr != nil {
				return nil, fmt.Errorf("transport stopped: %w", t.readErr)
			}
			return nil, fmt.Errorf("transport stopped")
		}
	}
}

func (t *HostTransport) drainResponses() {
	for {
		select {
		case <-t.responseChan:
		default:
			return
		}
	}
}

// readLoop continuously reads from the port and queues decoded replies
func (t *HostTransport) readLoop() {
	defer close(t.doneChan)

	buffer := make([]byte, 256)

	for {
		n, err := t.port.Read(buffer)
		if n > 0 {
			t.processInput(buffer[:n])
		}
		if err != nil {
			select {
			case <-t.stopChan:
				return
			default:
			}
			if err == io.EOF {
				t.readErr = err
				return
			}
			// Transient serial error, keep going
			time.Sleep(10 * time.Millisecond)
			continue
		}
	}
}

func (t *HostTransport) processInput(data []byte) {
	for len(data) > 0 {
		n := t.decoder.Feed(data)
		data = data[n:]
		for {
			msg, ok := t.decoder.Next()
			if !ok {
				break
			}
			t.dispatchMessage(msg)
		}
		if n == 0 {
			t.decoder.Reset()
		}
	}
}

// dispatchMessage queues a reply, dropping the oldest when nobody reads
func (t *HostTransport) dispatchMessage(msg *Message) {
	select {
	case t.responseChan <- msg:
	default:
		select {
		case <-t.responseChan:
		default:
		}
		select {
		case t.responseChan <- msg:
		default:
		}
	}
}

// Close stops the transport and closes the serial port
func (t *HostTransport) Close() error {
	var err error
	t.stopOnce.Do(func() {
		close(t.stopChan)
		// Closing the port unblocks the pending read
		err = t.port.Close()
		<-t.doneChan
	})
	return err
}
