// Package protocol implements the register monitor protocol spoken between
// a host and the board over a serial link.
//
// Every frame is laid out as:
//
//	length | sequence | payload... | crc16 hi | crc16 lo | 0x7E
//
// The length covers the whole frame. The sequence byte carries 0x10 in its
// high bits and a 4-bit counter in its low bits; a reply reuses the sequence
// of the request it answers. Payloads are a VLQ command (or response) ID
// followed by VLQ-encoded arguments.
package protocol

import "errors"

// Version identifies the protocol revision reported by identify
const Version = "regmon/1"

// Frame layout constants
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F

	// MessageMax is the scratch space for encoding several frames at once
	MessageMax = 512
)

// MaxErrorText bounds the message carried by an error response so that it
// fits in one frame
const MaxErrorText = 48

var (
	// ErrFrameTooLong is returned when a payload does not fit in one frame
	ErrFrameTooLong = errors.New("frame exceeds maximum length")

	ErrUnknownCommand = errors.New("unknown command")
	ErrTrailingData   = errors.New("unexpected data after command arguments")
	ErrHandlerPanic   = errors.New("command handler panicked")
)

// Message is a decoded frame
type Message struct {
	Length   uint8
	Sequence uint8
	Payload  []byte // Frame data without header/trailer
	CRC      uint16
}

// NextSequence returns the sequence number that follows seq
func NextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
