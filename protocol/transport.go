package protocol

// CommandHandler handles one decoded command. It consumes its arguments from
// args and encodes the response payload (response ID and values) into reply.
type CommandHandler func(cmdID uint16, args *[]byte, reply OutputBuffer) error

// Transport is the board side of the link. It decodes request frames and
// answers each one with a single reply frame carrying the same sequence
// number, which also serves as the acknowledgement.
type Transport struct {
	decoder *Decoder
	handler CommandHandler
	payload *ScratchOutput
	frame   *ScratchOutput

	// Frames answered, for diagnostics
	Handled int
	Failed  int
}

// NewTransport creates a board-side transport dispatching to handler
func NewTransport(handler CommandHandler) *Transport {
	return &Transport{
		decoder: NewDecoder(MessageMax),
		handler: handler,
		payload: NewScratchOutput(),
		frame:   NewScratchOutput(),
	}
}

// Receive consumes bytes read from the link and returns the encoded reply
// frames to write back, if any.
func (t *Transport) Receive(data []byte) []byte {
	var out []byte
	for len(data) > 0 {
		n := t.decoder.Feed(data)
		data = data[n:]
		for {
			msg, ok := t.decoder.Next()
			if !ok {
				break
			}
			out = append(out, t.handleFrame(msg)...)
		}
		if n == 0 {
			// Decoder is full and cannot make progress
			t.decoder.Reset()
		}
	}
	return out
}

// Decoder exposes the frame decoder's counters
func (t *Transport) Decoder() *Decoder {
	return t.decoder
}

func (t *Transport) handleFrame(msg *Message) []byte {
	t.payload.Reset()
	if err := t.dispatch(msg.Payload); err != nil {
		t.Failed++
		t.payload.Reset()
		EncodeVLQUint(t.payload, uint32(RspError))
		EncodeVLQString(t.payload, truncate(err.Error(), MaxErrorText))
	} else {
		t.Handled++
	}

	t.frame.Reset()
	if err := EncodeFrame(t.frame, msg.Sequence, func(o OutputBuffer) {
		o.Output(t.payload.Result())
	}); err != nil {
		t.frame.Reset()
		_ = EncodeFrame(t.frame, msg.Sequence, func(o OutputBuffer) {
			EncodeVLQUint(o, uint32(RspError))
			EncodeVLQString(o, err.Error())
		})
	}

	result := make([]byte, len(t.frame.Result()))
	copy(result, t.frame.Result())
	return result
}

// dispatch runs the single command carried by a request payload
func (t *Transport) dispatch(payload []byte) (err error) {
	// A panicking handler must not take the link down
	defer func() {
		if r := recover(); r != nil {
			err = ErrHandlerPanic
		}
	}()

	cmdID, err := DecodeVLQUint(&payload)
	if err != nil {
		return err
	}
	if t.handler == nil {
		return ErrUnknownCommand
	}
	if err := t.handler(uint16(cmdID), &payload, t.payload); err != nil {
		return err
	}
	if len(payload) != 0 {
		return ErrTrailingData
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
