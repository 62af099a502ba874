package handlers

import (
	"net"
	"testing"

	"github.com/ntpcore/cmdmon/internal/access"
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func accessTestDeps() (*dispatch.Deps, *access.Policy) {
	policy := access.NewPolicy()
	return &dispatch.Deps{Access: collab.AccessAdapter{Policy: policy}}, policy
}

func TestHandleAllowThenAccheckReportsAllowed(t *testing.T) {
	testlog.Start(t)

	deps, _ := accessTestDeps()
	addr := net.ParseIP("192.0.2.5")

	allowReq := &dispatch.Request{Body: wire.SubnetRequest{Address: wire.NewIPAddr(addr), MaskBits: -1}.Encode()}
	allowReply := &dispatch.Reply{}
	subnetHandler(collab.AccessNamespaceNTP, collab.AccessFilter.Allow)(deps, allowReq, allowReply)
	if allowReply.Header.Status != uint16(wire.StatusSuccess) {
		t.Fatalf("Allow status = %d, want StatusSuccess", allowReply.Header.Status)
	}

	checkReq := &dispatch.Request{Body: wire.SubnetRequest{Address: wire.NewIPAddr(addr), MaskBits: -1}.Encode()}
	checkReply := &dispatch.Reply{}
	accheckHandler(collab.AccessNamespaceNTP)(deps, checkReq, checkReply)
	if checkReply.Header.Status != uint16(wire.StatusAccessAllowed) {
		t.Fatalf("Accheck status = %d, want StatusAccessAllowed", checkReply.Header.Status)
	}
}

func TestHandleAccheckDefaultDenyWithoutRules(t *testing.T) {
	testlog.Start(t)

	deps, _ := accessTestDeps()
	addr := net.ParseIP("198.51.100.7")

	req := &dispatch.Request{Body: wire.SubnetRequest{Address: wire.NewIPAddr(addr), MaskBits: -1}.Encode()}
	reply := &dispatch.Reply{}
	accheckHandler(collab.AccessNamespaceCmd)(deps, req, reply)
	if reply.Header.Status != uint16(wire.StatusAccessDenied) {
		t.Fatalf("Accheck status = %d, want StatusAccessDenied", reply.Header.Status)
	}
}

func TestHandleAllowAllFlipsBaselineToAllow(t *testing.T) {
	testlog.Start(t)

	deps, _ := accessTestDeps()
	addr := net.ParseIP("203.0.113.9")

	allAllowDenyHandler(collab.AccessNamespaceCmd, collab.AccessFilter.AllowAll)(deps, &dispatch.Request{}, &dispatch.Reply{})

	req := &dispatch.Request{Body: wire.SubnetRequest{Address: wire.NewIPAddr(addr), MaskBits: -1}.Encode()}
	reply := &dispatch.Reply{}
	accheckHandler(collab.AccessNamespaceCmd)(deps, req, reply)
	if reply.Header.Status != uint16(wire.StatusAccessAllowed) {
		t.Fatalf("Accheck status = %d, want StatusAccessAllowed", reply.Header.Status)
	}
}
