package wire

// This file implements the wire codec's length contract: given
// an opcode, produce the request's total wire length and its padding
// length (trailing unused bytes within the opcode's own fixed layout).
// Padding is zero for every opcode except those whose payload ends in
// unused bytes (OptionRequest for MANUAL and SMOOTHTIME, NTPSourceParams
// for ADD_SERVER and ADD_PEER) — those are counted explicitly below.
// LocalRequest's three alignment bytes sit between OnOff and Stratum, not
// at the end, and the reserved bytes inside an encoded IPAddr belong to the
// address encoding; neither is counted.

var requestPadding = [NumOpcodes]int{
	ReqManual:     3, // trailing alignment bytes in OptionRequest
	ReqSmoothTime: 3, // trailing alignment bytes in OptionRequest
	ReqAddServer:  1, // trailing reserved byte in NTPSourceParams
	ReqAddPeer:    1, // trailing reserved byte in NTPSourceParams
}

func init() {
	if len(requestPadding) != int(NumOpcodes) {
		panic("wire: padding table size does not match opcode count")
	}
	for op, pad := range requestPadding {
		if pad > 16 {
			panic("wire: padding length exceeds 16 bytes")
		}
		if pad > requestBodySize[op] {
			panic("wire: padding length exceeds command length")
		}
	}
}

// PaddingLength returns the number of trailing unused bytes within op's
// request payload (padding is always ≤ 16 bytes and ≤ the command
// length).
func PaddingLength(op Opcode) int {
	if op >= NumOpcodes {
		return 0
	}
	return requestPadding[op]
}

// RequestWireLength returns the total on-the-wire length of a well-formed
// request of opcode op: header plus body. Opcodes with no payload report
// exactly RequestHeaderSize.
func RequestWireLength(op Opcode) int {
	return RequestHeaderSize + RequestBodyLength(op)
}

// ReplyWireLength returns the total on-the-wire length of a reply carrying
// tag: header plus body.
func ReplyWireLength(tag ReplyTag) int {
	return ReplyHeaderSize + ReplyBodyLength(tag)
}
