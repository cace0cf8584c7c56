// Package protocol implements the fixed-size binary frame exchanged between
// groupshare clients and the server.
//
// Every frame is FrameSize bytes: four little-endian int32 header fields
// (opcode, length, offset, burst) followed by a zero-padded payload area of
// PayloadSize bytes. Only the first length bytes of the payload are
// meaningful.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	HeaderSize  = 16
	PayloadSize = 1024
	FrameSize   = HeaderSize + PayloadSize
)

var (
	ErrPayloadTooLarge = errors.New("payload exceeds frame capacity")
	ErrBadLength       = errors.New("length field out of range")
	ErrFrameSize       = errors.New("buffer is not a whole frame")
)

// Message is one decoded frame.
type Message struct {
	Opcode Opcode
	Length int32
	// Offset and Burst are reserved for chunked transfers.
	Offset  int32
	Burst   int32
	Payload []byte
}

// NewMessage builds a message whose length matches payload.
func NewMessage(op Opcode, payload string) Message {
	return Message{Opcode: op, Length: int32(len(payload)), Payload: []byte(payload)}
}

// Status builds an empty-payload message carrying only op.
func Status(op Opcode) Message {
	return Message{Opcode: op}
}

// Count builds a message whose payload is n in decimal.
func Count(op Opcode, n int) Message {
	return NewMessage(op, strconv.Itoa(n))
}

// Text returns the payload as a string with any trailing NUL padding removed.
func (m Message) Text() string {
	return strings.TrimRight(string(m.Payload), "\x00")
}

// Encode lays m out as a frame. It fails rather than truncating when the
// payload or the length field does not fit.
func Encode(m Message) ([]byte, error) {
	if len(m.Payload) > PayloadSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(m.Payload), PayloadSize)
	}
	if m.Length < 0 || m.Length > PayloadSize {
		return nil, fmt.Errorf("%w: %d", ErrBadLength, m.Length)
	}

	buf := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.Opcode))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Length))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(m.Offset))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(m.Burst))
	copy(buf[HeaderSize:], m.Payload)
	return buf, nil
}

// Decode parses a frame produced by Encode. The returned payload is a copy
// of the first length bytes of the payload area.
func Decode(buf []byte) (Message, error) {
	if len(buf) != FrameSize {
		return Message{}, fmt.Errorf("%w: got %d bytes", ErrFrameSize, len(buf))
	}

	m := Message{
		Opcode: Opcode(int32(binary.LittleEndian.Uint32(buf[0:4]))),
		Length: int32(binary.LittleEndian.Uint32(buf[4:8])),
		Offset: int32(binary.LittleEndian.Uint32(buf[8:12])),
		Burst:  int32(binary.LittleEndian.Uint32(buf[12:16])),
	}
	if m.Length < 0 || m.Length > PayloadSize {
		return m, fmt.Errorf("%w: %d", ErrBadLength, m.Length)
	}

	m.Payload = make([]byte, m.Length)
	copy(m.Payload, buf[HeaderSize:HeaderSize+int(m.Length)])
	return m, nil
}

// ReadMessage reads exactly one frame from r. A connection closed between
// frames yields io.EOF; one closed mid-frame yields io.ErrUnexpectedEOF.
// A complete frame with an invalid length field returns ErrBadLength and
// leaves r positioned at the next frame.
func ReadMessage(r io.Reader) (Message, error) {
	buf := make([]byte, FrameSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Message{}, err
	}
	return Decode(buf)
}

// WriteMessage encodes m and writes the whole frame to w.
func WriteMessage(w io.Writer, m Message) error {
	buf, err := Encode(m)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
