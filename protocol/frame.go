package protocol

// EncodeFrame appends one complete frame to out: header, the payload
// written by payload, CRC and sync byte.
func EncodeFrame(out OutputBuffer, seq uint8, payload func(output OutputBuffer)) error {
	cursor := out.CurPosition()

	// Length placeholder, sequence
	out.Output([]byte{0, seq})
	if payload != nil {
		payload(out)
	}

	msgLen := len(out.DataSince(cursor)) + MessageTrailerSize
	if msgLen > MessageLengthMax {
		return ErrFrameTooLong
	}
	out.Update(cursor+MessagePositionLen, uint8(msgLen))

	crc := CRC16(out.DataSince(cursor))
	out.Output([]byte{
		uint8(crc >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
	return nil
}

// Decoder extracts frames from a byte stream, resynchronizing on the sync
// byte after line noise or a corrupted frame.
type Decoder struct {
	input        *FifoBuffer
	synchronized bool

	// Counters for diagnostics
	Dropped   int // Bytes discarded while resynchronizing
	CRCErrors int // Frames rejected for a bad checksum
}

// NewDecoder creates a Decoder buffering up to capacity bytes of input
func NewDecoder(capacity int) *Decoder {
	return &Decoder{
		input:        NewFifoBuffer(capacity),
		synchronized: true, // Start synchronized
	}
}

// Feed buffers received bytes and returns how many were accepted.
// Call Next until it reports no frame before feeding more.
func (d *Decoder) Feed(data []byte) int {
	return d.input.Write(data)
}

// Next returns the next complete frame, or false when more input is needed
func (d *Decoder) Next() (*Message, bool) {
	for {
		data := d.input.Data()
		if len(data) == 0 {
			return nil, false
		}

		if !d.synchronized {
			// Drop everything up to and including the next sync byte
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				d.Dropped += len(data)
				d.input.Pop(len(data))
				return nil, false
			}
			d.Dropped += syncPos
			d.input.Pop(syncPos + 1)
			d.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			d.input.Pop(1)
			continue
		}

		if len(data) < MessageLengthMin {
			return nil, false
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.synchronized = false
			continue
		}
		if data[MessagePositionSeq]&^MessageSeqMask != MessageDest {
			d.synchronized = false
			continue
		}

		// Wait for full message
		if len(data) < msgLen {
			return nil, false
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.synchronized = false
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.CRCErrors++
			d.synchronized = false
			continue
		}

		payload := make([]byte, msgLen-MessageHeaderSize-MessageTrailerSize)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		msg := &Message{
			Length:   uint8(msgLen),
			Sequence: data[MessagePositionSeq],
			Payload:  payload,
			CRC:      frameCRC,
		}
		d.input.Pop(msgLen)
		return msg, true
	}
}

// Reset discards buffered input
func (d *Decoder) Reset() {
	d.input.Reset()
	d.synchronized = true
}
