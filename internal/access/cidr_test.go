package access

import (
	"net"
	"testing"

	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
)

func TestTableDefaultDenies(t *testing.T) {
	testlog.Start(t)

	tbl := NewTable()
	if tbl.IsAllowed(net.ParseIP("203.0.113.5")) {
		t.Fatalf("expected default-deny table to deny an unlisted address")
	}
}

func TestTableAllowAllBaseline(t *testing.T) {
	testlog.Start(t)

	tbl := NewTable()
	tbl.AllowAll()
	if !tbl.IsAllowed(net.ParseIP("203.0.113.5")) {
		t.Fatalf("expected AllowAll baseline to allow an unlisted address")
	}
}

func TestTableLongestPrefixWins(t *testing.T) {
	testlog.Start(t)

	tbl := NewTable()
	tbl.AllowAll()
	if err := tbl.Add(net.ParseIP("203.0.113.0"), 24, DecisionDeny); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tbl.Add(net.ParseIP("203.0.113.128"), 25, DecisionAllow); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if tbl.IsAllowed(net.ParseIP("203.0.113.5")) {
		t.Fatalf("expected /24 deny to cover .5")
	}
	if !tbl.IsAllowed(net.ParseIP("203.0.113.200")) {
		t.Fatalf("expected more specific /25 allow to win over the /24 deny")
	}
	if !tbl.IsAllowed(net.ParseIP("198.51.100.1")) {
		t.Fatalf("expected AllowAll baseline to cover an address outside both subnets")
	}
}

func TestTableRemove(t *testing.T) {
	testlog.Start(t)

	tbl := NewTable()
	ip := net.ParseIP("192.0.2.0")
	if err := tbl.Add(ip, 24, DecisionAllow); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !tbl.IsAllowed(net.ParseIP("192.0.2.10")) {
		t.Fatalf("expected allow rule to take effect")
	}
	if err := tbl.Remove(ip, 24); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if tbl.IsAllowed(net.ParseIP("192.0.2.10")) {
		t.Fatalf("expected removed rule to fall back to deny-all baseline")
	}
}

func TestTableRejectsBadMask(t *testing.T) {
	testlog.Start(t)

	tbl := NewTable()
	if err := tbl.Add(net.ParseIP("192.0.2.0"), 99, DecisionAllow); err != ErrBadSubnet {
		t.Fatalf("expected ErrBadSubnet, got %v", err)
	}
}
