package dispatch

import (
	"net"
	"testing"

	"github.com/ntpcore/cmdmon/internal/access"
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/logging"
	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func testDeps(t *testing.T) *Deps {
	t.Helper()
	policy := access.NewPolicy()
	return &Deps{
		Sources:      collab.NewMemorySources(8),
		RefClocks:    collab.MemoryRefClocks{},
		Clock:        &collab.MemoryLocalClock{},
		Reference:    &collab.MemoryReference{},
		Manual:       &collab.MemoryManual{},
		Smooth:       collab.NewMemorySmooth(false),
		Rtc:          collab.MemoryRtc{},
		Access:       collab.AccessAdapter{Policy: policy},
		ClientLog:    collab.NewMemoryClientLog(),
		Keys:         collab.MemoryKeys{},
		Housekeeping: &collab.MemoryHousekeeping{},
		Policy:       policy,
		Logger:       logging.Logger(),
	}
}

func encodeNSourcesRequest(t *testing.T, version uint8) []byte {
	t.Helper()
	hdr := wire.RequestHeader{
		Version: version,
		PktType: wire.PacketTypeRequest,
		Command: uint16(wire.ReqNSources),
	}
	return wire.EncodeRequestHeader(hdr)
}

func TestHandleNSourcesRoundTrip(t *testing.T) {
	testlog.Start(t)

	deps := testDeps(t)
	table := Table{
		wire.ReqNSources: func(deps *Deps, req *Request, reply *Reply) {
			reply.Header.ReplyTag = uint16(wire.ReplyNSources)
			reply.Body = wire.NSourcesReply{NSources: int32(deps.Sources.Count())}.Encode()
		},
	}
	d := New(deps, table)

	pkt := encodeNSourcesRequest(t, wire.ProtocolVersion)
	origin := access.Origin{Trust: access.FilesystemLocal}

	out := d.Handle(pkt, len(pkt), origin)
	if out == nil {
		t.Fatalf("Handle() returned nil, want a reply")
	}
	replyHdr, err := wire.DecodeReplyHeader(out)
	if err != nil {
		t.Fatalf("DecodeReplyHeader: %v", err)
	}
	if wire.Status(replyHdr.Status) != wire.StatusSuccess {
		t.Fatalf("status = %v, want SUCCESS", wire.Status(replyHdr.Status))
	}
	if wire.ReplyTag(replyHdr.ReplyTag) != wire.ReplyNSources {
		t.Fatalf("reply tag = %v, want ReplyNSources", wire.ReplyTag(replyHdr.ReplyTag))
	}
}

func TestHandleUnauthorizedRemoteModify(t *testing.T) {
	testlog.Start(t)

	deps := testDeps(t)
	called := false
	table := Table{
		wire.ReqOnline: func(deps *Deps, req *Request, reply *Reply) { called = true },
	}
	d := New(deps, table)

	deps.Policy.CmdTable.AllowAll()
	hdr := wire.RequestHeader{Version: wire.ProtocolVersion, PktType: wire.PacketTypeRequest, Command: uint16(wire.ReqOnline)}
	pkt := wire.EncodeRequestHeader(hdr)
	pkt = append(pkt, wire.MaskedAddressRequest{
		Mask:    wire.NewIPAddr(net.ParseIP("255.255.255.255")),
		Address: wire.NewIPAddr(net.ParseIP("203.0.113.9")),
	}.Encode()...)

	origin := access.Origin{Addr: net.ParseIP("203.0.113.9")}
	out := d.Handle(pkt, len(pkt), origin)
	if out == nil {
		t.Fatalf("Handle() returned nil, want UNAUTHORIZED reply")
	}
	if called {
		t.Fatalf("handler was invoked for an unauthorized remote origin")
	}
	replyHdr, err := wire.DecodeReplyHeader(out)
	if err != nil {
		t.Fatalf("DecodeReplyHeader: %v", err)
	}
	if wire.Status(replyHdr.Status) != wire.StatusUnauthorized {
		t.Fatalf("status = %v, want UNAUTHORIZED", wire.Status(replyHdr.Status))
	}
}

func TestHandleBadVersionAboveCompatibilityFloorRepliesBadVersion(t *testing.T) {
	testlog.Start(t)

	deps := testDeps(t)
	d := New(deps, Table{})

	pkt := encodeNSourcesRequest(t, wire.CompatibilityFloor)
	origin := access.Origin{Trust: access.FilesystemLocal}

	out := d.Handle(pkt, len(pkt), origin)
	if out == nil {
		t.Fatalf("Handle() returned nil, want BAD_PACKET_VERSION reply")
	}
	replyHdr, err := wire.DecodeReplyHeader(out)
	if err != nil {
		t.Fatalf("DecodeReplyHeader: %v", err)
	}
	if wire.Status(replyHdr.Status) != wire.StatusBadPacketVersion {
		t.Fatalf("status = %v, want BAD_PACKET_VERSION", wire.Status(replyHdr.Status))
	}
}

func TestHandleBadVersionBelowCompatibilityFloorDropsSilently(t *testing.T) {
	testlog.Start(t)

	deps := testDeps(t)
	d := New(deps, Table{})

	pkt := encodeNSourcesRequest(t, wire.CompatibilityFloor-1)
	origin := access.Origin{Trust: access.FilesystemLocal}

	out := d.Handle(pkt, len(pkt), origin)
	if out != nil {
		t.Fatalf("Handle() = %v, want nil (silent drop)", out)
	}
}

// TestHandleOutOfRangeOpcodeDropsSilently pins a deliberate divergence
// from the INVALID-reply path: an out-of-range Command makes expected
// length 0 at step 3, which step 4's header-sanity check rejects before
// the opcode-range check at step 6 (and its INVALID reply) is ever
// reached.
func TestHandleOutOfRangeOpcodeDropsSilently(t *testing.T) {
	testlog.Start(t)

	deps := testDeps(t)
	d := New(deps, Table{})

	hdr := wire.RequestHeader{
		Version: wire.ProtocolVersion,
		PktType: wire.PacketTypeRequest,
		Command: uint16(wire.NumOpcodes) + 10,
	}
	pkt := wire.EncodeRequestHeader(hdr)
	origin := access.Origin{Trust: access.FilesystemLocal}

	out := d.Handle(pkt, len(pkt), origin)
	if out != nil {
		t.Fatalf("Handle() = %v, want nil for an out-of-range opcode", out)
	}
}

func TestHandleCIDRDeniedDropsSilentlyWithNoClientLogEvent(t *testing.T) {
	testlog.Start(t)

	deps := testDeps(t)
	d := New(deps, Table{})

	pkt := encodeNSourcesRequest(t, wire.ProtocolVersion)
	origin := access.Origin{Addr: net.ParseIP("203.0.113.50")}

	out := d.Handle(pkt, len(pkt), origin)
	if out != nil {
		t.Fatalf("Handle() = %v, want nil for a CIDR-denied origin", out)
	}

	report, status := deps.ClientLog.ReportByIndex(0, 10)
	if status != wire.StatusInactive {
		t.Fatalf("ReportByIndex status = %v, want INACTIVE (no events recorded)", status)
	}
	if report.NClients != 0 {
		t.Fatalf("NClients = %d, want 0", report.NClients)
	}
}
