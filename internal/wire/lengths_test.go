package wire

import (
	"testing"

	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
)

func TestPaddingInvariant(t *testing.T) {
	testlog.Start(t)

	for op := Opcode(0); op < NumOpcodes; op++ {
		pad := PaddingLength(op)
		if pad > 16 {
			t.Errorf("opcode %d: padding %d exceeds 16 bytes", op, pad)
		}
		if pad > RequestBodyLength(op) {
			t.Errorf("opcode %d: padding %d exceeds command length %d", op, pad, RequestBodyLength(op))
		}
	}
}

func TestRequestWireLengthAtLeastHeaderSize(t *testing.T) {
	testlog.Start(t)

	for op := Opcode(0); op < NumOpcodes; op++ {
		if RequestWireLength(op) < RequestHeaderSize {
			t.Errorf("opcode %d: wire length %d below header size", op, RequestWireLength(op))
		}
	}
}

func TestReplyWireLengthAtLeastHeaderSize(t *testing.T) {
	testlog.Start(t)

	for tag := ReplyTag(0); tag < numReplyTags; tag++ {
		if ReplyWireLength(tag) < ReplyHeaderSize {
			t.Errorf("reply tag %d: wire length %d below header size", tag, ReplyWireLength(tag))
		}
	}
}
