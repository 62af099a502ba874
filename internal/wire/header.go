package wire

import "encoding/binary"

// Protocol version and packet-type constants. The daemon speaks exactly one
// protocol version at a time; CompatibilityFloor is the lowest version a
// caller can present and still receive a BAD_PACKET_VERSION reply instead
// of a silent drop.
const (
	ProtocolVersion    uint8 = 6
	CompatibilityFloor uint8 = 5

	PacketTypeRequest uint8 = 1
	PacketTypeReply   uint8 = 2
)

// RequestHeaderSize is the byte offset of the payload union within a
// request packet.
const RequestHeaderSize = 36

// ReplyHeaderSize is the byte offset of the payload union within a reply
// packet.
const ReplyHeaderSize = 28

// RequestHeader is the fixed-layout prefix of every request packet.
// Utoken, Token and Auth are legacy
// authentication fields retained only for wire-size compatibility; nothing
// in this codebase assigns them semantic meaning.
type RequestHeader struct {
	Version  uint8
	PktType  uint8
	Res1     uint8
	Res2     uint8
	Command  uint16
	Attempt  uint16
	Sequence uint32
	Utoken   uint32
	Token    uint32
	Auth     [16]byte
}

// ReplyHeader is the fixed-layout prefix of every reply packet.
type ReplyHeader struct {
	Version  uint8
	PktType  uint8
	Res1     uint8
	Res2     uint8
	Command  uint16
	ReplyTag uint16
	Status   uint16
	Pad1     uint16
	Pad2     uint16
	Pad3     uint16
	Sequence uint32
	Pad4     uint32
	Pad5     uint32
}

// DecodeRequestHeader reads a RequestHeader from the front of b. b must be
// at least RequestHeaderSize bytes; callers are expected to have already
// checked the received length.
func DecodeRequestHeader(b []byte) (RequestHeader, error) {
	if len(b) < RequestHeaderSize {
		return RequestHeader{}, ErrTruncated
	}
	var h RequestHeader
	h.Version = b[0]
	h.PktType = b[1]
	h.Res1 = b[2]
	h.Res2 = b[3]
	h.Command = binary.BigEndian.Uint16(b[4:6])
	h.Attempt = binary.BigEndian.Uint16(b[6:8])
	h.Sequence = binary.BigEndian.Uint32(b[8:12])
	h.Utoken = binary.BigEndian.Uint32(b[12:16])
	h.Token = binary.BigEndian.Uint32(b[16:20])
	copy(h.Auth[:], b[20:36])
	return h, nil
}

// EncodeRequestHeader writes h into a freshly allocated RequestHeaderSize
// byte slice. Used by tests and by any client-side tooling built on top of
// this package; the daemon itself only ever decodes requests.
func EncodeRequestHeader(h RequestHeader) []byte {
	b := make([]byte, RequestHeaderSize)
	b[0] = h.Version
	b[1] = h.PktType
	b[2] = h.Res1
	b[3] = h.Res2
	binary.BigEndian.PutUint16(b[4:6], h.Command)
	binary.BigEndian.PutUint16(b[6:8], h.Attempt)
	binary.BigEndian.PutUint32(b[8:12], h.Sequence)
	binary.BigEndian.PutUint32(b[12:16], h.Utoken)
	binary.BigEndian.PutUint32(b[16:20], h.Token)
	copy(b[20:36], h.Auth[:])
	return b
}

// EncodeReplyHeader writes h into a freshly allocated ReplyHeaderSize byte
// slice.
func EncodeReplyHeader(h ReplyHeader) []byte {
	b := make([]byte, ReplyHeaderSize)
	b[0] = h.Version
	b[1] = h.PktType
	b[2] = h.Res1
	b[3] = h.Res2
	binary.BigEndian.PutUint16(b[4:6], h.Command)
	binary.BigEndian.PutUint16(b[6:8], h.ReplyTag)
	binary.BigEndian.PutUint16(b[8:10], h.Status)
	binary.BigEndian.PutUint16(b[10:12], h.Pad1)
	binary.BigEndian.PutUint16(b[12:14], h.Pad2)
	binary.BigEndian.PutUint16(b[14:16], h.Pad3)
	binary.BigEndian.PutUint32(b[16:20], h.Sequence)
	binary.BigEndian.PutUint32(b[20:24], h.Pad4)
	binary.BigEndian.PutUint32(b[24:28], h.Pad5)
	return b
}

// DecodeReplyHeader reads a ReplyHeader from the front of b, used by tests
// exercising round-trip encode/decode.
func DecodeReplyHeader(b []byte) (ReplyHeader, error) {
	if len(b) < ReplyHeaderSize {
		return ReplyHeader{}, ErrTruncated
	}
	var h ReplyHeader
	h.Version = b[0]
	h.PktType = b[1]
	h.Res1 = b[2]
	h.Res2 = b[3]
	h.Command = binary.BigEndian.Uint16(b[4:6])
	h.ReplyTag = binary.BigEndian.Uint16(b[6:8])
	h.Status = binary.BigEndian.Uint16(b[8:10])
	h.Pad1 = binary.BigEndian.Uint16(b[10:12])
	h.Pad2 = binary.BigEndian.Uint16(b[12:14])
	h.Pad3 = binary.BigEndian.Uint16(b[14:16])
	h.Sequence = binary.BigEndian.Uint32(b[16:20])
	h.Pad4 = binary.BigEndian.Uint32(b[20:24])
	h.Pad5 = binary.BigEndian.Uint32(b[24:28])
	return h, nil
}

// NewReplyTemplate builds the reply header the dispatcher hands to a
// handler: request opcode and sequence echoed, status defaulted to
// SUCCESS, reply tag defaulted to NULL, every reserved/pad field zero.
func NewReplyTemplate(req RequestHeader) ReplyHeader {
	return ReplyHeader{
		Version:  ProtocolVersion,
		PktType:  PacketTypeReply,
		Command:  req.Command,
		ReplyTag: uint16(ReplyNull),
		Status:   uint16(StatusSuccess),
		Sequence: req.Sequence,
	}
}
