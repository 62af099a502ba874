package wire

import (
	"testing"

	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
)

func TestRequestHeaderRoundTrip(t *testing.T) {
	testlog.Start(t)

	h := RequestHeader{
		Version:  ProtocolVersion,
		PktType:  PacketTypeRequest,
		Command:  uint16(ReqNSources),
		Attempt:  1,
		Sequence: 42,
	}
	b := EncodeRequestHeader(h)
	if len(b) != RequestHeaderSize {
		t.Fatalf("encoded request header size = %d, want %d", len(b), RequestHeaderSize)
	}
	got, err := DecodeRequestHeader(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestDecodeRequestHeaderTruncated(t *testing.T) {
	testlog.Start(t)

	_, err := DecodeRequestHeader(make([]byte, RequestHeaderSize-1))
	if err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestReplyHeaderRoundTrip(t *testing.T) {
	testlog.Start(t)

	h := ReplyHeader{
		Version:  ProtocolVersion,
		PktType:  PacketTypeReply,
		Command:  uint16(ReqNSources),
		ReplyTag: uint16(ReplyNSources),
		Status:   uint16(StatusSuccess),
		Sequence: 42,
	}
	b := EncodeReplyHeader(h)
	if len(b) != ReplyHeaderSize {
		t.Fatalf("encoded reply header size = %d, want %d", len(b), ReplyHeaderSize)
	}
	got, err := DecodeReplyHeader(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestNewReplyTemplateEchoesRequest(t *testing.T) {
	testlog.Start(t)

	req := RequestHeader{Command: uint16(ReqTracking), Sequence: 7}
	reply := NewReplyTemplate(req)
	if reply.Command != req.Command || reply.Sequence != req.Sequence {
		t.Fatalf("template did not echo opcode/sequence: %+v", reply)
	}
	if Status(reply.Status) != StatusSuccess {
		t.Fatalf("template status = %v, want SUCCESS", Status(reply.Status))
	}
	if ReplyTag(reply.ReplyTag) != ReplyNull {
		t.Fatalf("template reply tag = %v, want NULL", ReplyTag(reply.ReplyTag))
	}
}
