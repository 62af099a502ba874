package transport

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ntpcore/cmdmon/internal/access"
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/logging"
	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
	"github.com/ntpcore/cmdmon/internal/wire"
)

type loopbackConfig struct{}

func (loopbackConfig) BindCmdAddress(family collab.AddressFamily) net.IP {
	if family == collab.AddressFamilyV6 {
		return net.IPv6loopback
	}
	return net.IPv4(127, 0, 0, 1)
}

func (loopbackConfig) BindCmdPath() string { return "" }
func (loopbackConfig) CmdPort() uint16     { return 0 } // let the OS pick a free port

func nSourcesTable() dispatch.Table {
	return dispatch.Table{
		wire.ReqNSources: func(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
			reply.Header.ReplyTag = uint16(wire.ReplyNSources)
			reply.Body = wire.NSourcesReply{NSources: 7}.Encode()
		},
	}
}

func newTestDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	policy := access.NewPolicy()
	policy.CmdTable.AllowAll()
	deps := &dispatch.Deps{
		ClientLog: collab.NewMemoryClientLog(),
		Policy:    policy,
		Logger:    logging.Logger(),
	}
	return dispatch.New(deps, nSourcesTable())
}

func TestManagerUDPRoundTrip(t *testing.T) {
	testlog.Start(t)

	scheduler := collab.NewMemoryScheduler()
	m := New(newTestDispatcher(t), scheduler, logging.Logger())
	if err := m.Start(loopbackConfig{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.Close()

	m.mu.Lock()
	var addr net.Addr
	for _, ep := range m.endpoints {
		if ep.name == "udp4" {
			addr = ep.conn.LocalAddr()
		}
	}
	m.mu.Unlock()
	if addr == nil {
		t.Fatal("no udp4 endpoint registered")
	}

	client, err := net.Dial("udp4", addr.String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	req := wire.EncodeRequestHeader(wire.RequestHeader{
		Version: wire.ProtocolVersion,
		PktType: wire.PacketTypeRequest,
		Command: uint16(wire.ReqNSources),
	})
	if _, err := client.Write(req); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, maxPacketSize)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	replyHdr, err := wire.DecodeReplyHeader(buf[:n])
	if err != nil {
		t.Fatalf("DecodeReplyHeader() error = %v", err)
	}
	if wire.ReplyTag(replyHdr.ReplyTag) != wire.ReplyNSources {
		t.Fatalf("ReplyTag = %d, want ReplyNSources", replyHdr.ReplyTag)
	}

	if scheduler.LastEventTime().IsZero() {
		t.Error("scheduler.LastEventTime() is zero, want a recorded event")
	}
}

func TestManagerLocalSocketRoundTrip(t *testing.T) {
	testlog.Start(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "cmdmon.sock")

	scheduler := collab.NewMemoryScheduler()
	m := New(newTestDispatcher(t), scheduler, logging.Logger())
	if err := m.OpenLocalSocket(path); err != nil {
		t.Fatalf("OpenLocalSocket() error = %v", err)
	}
	defer m.Close()

	clientPath := filepath.Join(dir, "client.sock")
	client, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: clientPath, Net: "unixgram"})
	if err != nil {
		t.Fatalf("ListenUnixgram() error = %v", err)
	}
	defer client.Close()
	defer os.Remove(clientPath)

	req := wire.EncodeRequestHeader(wire.RequestHeader{
		Version: wire.ProtocolVersion,
		PktType: wire.PacketTypeRequest,
		Command: uint16(wire.ReqNSources),
	})
	if _, err := client.WriteTo(req, &net.UnixAddr{Name: path, Net: "unixgram"}); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, maxPacketSize)
	n, _, err := client.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	replyHdr, err := wire.DecodeReplyHeader(buf[:n])
	if err != nil {
		t.Fatalf("DecodeReplyHeader() error = %v", err)
	}
	if wire.ReplyTag(replyHdr.ReplyTag) != wire.ReplyNSources {
		t.Fatalf("ReplyTag = %d, want ReplyNSources", replyHdr.ReplyTag)
	}
}
