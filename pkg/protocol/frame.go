package protocol

import "io"

// FrameType discriminates the top-level message types on a session
// connection.
type FrameType uint8

const (
	FramePatches FrameType = 0x01 // Server to client: one flush of patches
	FrameEvent   FrameType = 0x02 // Client to server: an interaction
	FramePing    FrameType = 0x03
	FramePong    FrameType = 0x04
)

// String returns the string representation of the frame type.
func (t FrameType) String() string {
	switch t {
	case FramePatches:
		return "Patches"
	case FrameEvent:
		return "Event"
	case FramePing:
		return "Ping"
	case FramePong:
		return "Pong"
	default:
		return "Unknown"
	}
}

// EncodeFrame prefixes a payload with its frame type byte.
func EncodeFrame(t FrameType, encode func(*Encoder)) []byte {
	e := NewEncoder()
	e.WriteByte(byte(t))
	if encode != nil {
		encode(e)
	}
	return e.Bytes()
}

// ReadFrameType consumes the frame type byte from a raw message.
func ReadFrameType(data []byte) (FrameType, *Decoder, error) {
	if len(data) == 0 {
		return 0, nil, io.ErrUnexpectedEOF
	}
	d := NewDecoder(data)
	b, _ := d.ReadByte()
	return FrameType(b), d, nil
}
