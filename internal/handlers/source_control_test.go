package handlers

import (
	"net"
	"testing"

	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
	"github.com/ntpcore/cmdmon/internal/wire"
)

// recordingSources wraps a MemorySources and remembers the last address
// passed to each MODIFY_* method, so the tests below can pin that each
// handler reads its own opcode's address field rather than aliasing a
// shared one.
type recordingSources struct {
	*collab.MemorySources
	lastMinpollAddr  net.IP
	lastMaxdelayAddr net.IP
}

func (s *recordingSources) ModifyMinpoll(addr net.IP, value int32) collab.SourceResult {
	s.lastMinpollAddr = addr
	return s.MemorySources.ModifyMinpoll(addr, value)
}

func (s *recordingSources) ModifyMaxdelay(addr net.IP, value float64) collab.SourceResult {
	s.lastMaxdelayAddr = addr
	return s.MemorySources.ModifyMaxdelay(addr, value)
}

func TestModifyHandlersReadTheirOwnAddressField(t *testing.T) {
	testlog.Start(t)

	minpollAddr := net.ParseIP("192.0.2.1")
	maxdelayAddr := net.ParseIP("192.0.2.2")

	sources := &recordingSources{MemorySources: collab.NewMemorySources(8)}
	sources.AddServer(minpollAddr, collab.SourceParams{})
	sources.AddServer(maxdelayAddr, collab.SourceParams{})
	deps := &dispatch.Deps{Sources: sources}

	minpollReq := &dispatch.Request{Body: wire.AddressIntRequest{Address: wire.NewIPAddr(minpollAddr), Value: 6}.Encode()}
	addressIntHandler(collab.Sources.ModifyMinpoll)(deps, minpollReq, &dispatch.Reply{})
	if !sources.lastMinpollAddr.Equal(minpollAddr) {
		t.Fatalf("ModifyMinpoll saw address %v, want %v", sources.lastMinpollAddr, minpollAddr)
	}

	maxdelayReq := &dispatch.Request{Body: wire.AddressFloatRequest{Address: wire.NewIPAddr(maxdelayAddr), Value: 0.1}.Encode()}
	addressFloatHandler(collab.Sources.ModifyMaxdelay)(deps, maxdelayReq, &dispatch.Reply{})
	if !sources.lastMaxdelayAddr.Equal(maxdelayAddr) {
		t.Fatalf("ModifyMaxdelay saw address %v, want %v", sources.lastMaxdelayAddr, maxdelayAddr)
	}

	if sources.lastMinpollAddr.Equal(sources.lastMaxdelayAddr) {
		t.Fatalf("ModifyMinpoll and ModifyMaxdelay aliased the same address field")
	}
}

func TestHandleOnlineOfflineBurstRoundTrip(t *testing.T) {
	testlog.Start(t)

	addr := net.ParseIP("198.51.100.1")
	sources := collab.NewMemorySources(8)
	sources.AddServer(addr, collab.SourceParams{})
	deps := &dispatch.Deps{Sources: sources}

	exactMask := wire.NewIPAddr(net.ParseIP("255.255.255.255"))

	offlineReq := &dispatch.Request{Body: wire.MaskedAddressRequest{Mask: exactMask, Address: wire.NewIPAddr(addr)}.Encode()}
	offlineReply := &dispatch.Reply{}
	handleOffline(deps, offlineReq, offlineReply)
	if offlineReply.Header.Status != uint16(wire.StatusSuccess) {
		t.Fatalf("Offline status = %d, want StatusSuccess", offlineReply.Header.Status)
	}

	onlineReq := &dispatch.Request{Body: wire.MaskedAddressRequest{Mask: exactMask, Address: wire.NewIPAddr(addr)}.Encode()}
	onlineReply := &dispatch.Reply{}
	handleOnline(deps, onlineReq, onlineReply)
	if onlineReply.Header.Status != uint16(wire.StatusSuccess) {
		t.Fatalf("Online status = %d, want StatusSuccess", onlineReply.Header.Status)
	}

	burstReq := &dispatch.Request{Body: wire.BurstRequest{Mask: exactMask, Address: wire.NewIPAddr(addr), NGoodSamples: 3, NTotalSamples: 5}.Encode()}
	burstReply := &dispatch.Reply{}
	handleBurst(deps, burstReq, burstReply)
	if burstReply.Header.Status != uint16(wire.StatusSuccess) {
		t.Fatalf("Burst status = %d, want StatusSuccess", burstReply.Header.Status)
	}
}

func TestHandleOfflineMatchesSubnetMask(t *testing.T) {
	testlog.Start(t)

	inSubnet := net.ParseIP("198.51.100.7")
	outOfSubnet := net.ParseIP("203.0.113.7")
	sources := collab.NewMemorySources(8)
	sources.AddServer(inSubnet, collab.SourceParams{})
	sources.AddServer(outOfSubnet, collab.SourceParams{})
	deps := &dispatch.Deps{Sources: sources}

	subnetMask := wire.NewIPAddr(net.ParseIP("255.255.255.0"))
	req := &dispatch.Request{Body: wire.MaskedAddressRequest{
		Mask:    subnetMask,
		Address: wire.NewIPAddr(net.ParseIP("198.51.100.0")),
	}.Encode()}
	reply := &dispatch.Reply{}
	handleOffline(deps, req, reply)
	if reply.Header.Status != uint16(wire.StatusSuccess) {
		t.Fatalf("Offline status = %d, want StatusSuccess", reply.Header.Status)
	}

	inReport, _ := sources.ReportByIndex(0)
	if inReport.State != wire.SourceStateUnreach {
		t.Fatalf("in-subnet source state = %v, want Unreach", inReport.State)
	}
	outReport, _ := sources.ReportByIndex(1)
	if outReport.State != wire.SourceStateSync {
		t.Fatalf("out-of-subnet source state = %v, want Sync (unaffected)", outReport.State)
	}
}

func TestHandleOnlineNoSuchSource(t *testing.T) {
	testlog.Start(t)

	deps := &dispatch.Deps{Sources: collab.NewMemorySources(8)}
	exactMask := wire.NewIPAddr(net.ParseIP("255.255.255.255"))
	req := &dispatch.Request{Body: wire.MaskedAddressRequest{
		Mask:    exactMask,
		Address: wire.NewIPAddr(net.ParseIP("203.0.113.1")),
	}.Encode()}
	reply := &dispatch.Reply{}
	handleOnline(deps, req, reply)
	if reply.Header.Status != uint16(wire.StatusNoSuchSource) {
		t.Fatalf("Online status = %d, want StatusNoSuchSource", reply.Header.Status)
	}
}
