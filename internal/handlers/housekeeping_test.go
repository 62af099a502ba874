package handlers

import (
	"testing"

	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func TestHandleDumpCountsAgainstHousekeeping(t *testing.T) {
	testlog.Start(t)

	hk := &collab.MemoryHousekeeping{}
	deps := &dispatch.Deps{Housekeeping: hk}
	reply := &dispatch.Reply{}

	handleDump(deps, &dispatch.Request{}, reply)

	if hk.Dumps != 1 {
		t.Fatalf("Dumps = %d, want 1", hk.Dumps)
	}
	if reply.Header.Status != uint16(wire.StatusSuccess) {
		t.Fatalf("Status = %d, want StatusSuccess", reply.Header.Status)
	}
}

func TestHandleCycleLogsCountsAgainstHousekeeping(t *testing.T) {
	testlog.Start(t)

	hk := &collab.MemoryHousekeeping{}
	deps := &dispatch.Deps{Housekeeping: hk}
	reply := &dispatch.Reply{}

	handleCycleLogs(deps, &dispatch.Request{}, reply)

	if hk.Cycles != 1 {
		t.Fatalf("Cycles = %d, want 1", hk.Cycles)
	}
}

func TestHandleLogonAlwaysFails(t *testing.T) {
	testlog.Start(t)

	deps := &dispatch.Deps{}
	reply := &dispatch.Reply{}

	handleLogon(deps, &dispatch.Request{}, reply)

	if reply.Header.Status != uint16(wire.StatusFailed) {
		t.Fatalf("Status = %d, want StatusFailed", reply.Header.Status)
	}
}

func TestHandleNullLeavesReplyUntouched(t *testing.T) {
	testlog.Start(t)

	deps := &dispatch.Deps{}
	reply := &dispatch.Reply{}

	handleNull(deps, &dispatch.Request{}, reply)

	if reply.Header.Status != uint16(wire.StatusSuccess) {
		t.Fatalf("Status = %d, want StatusSuccess", reply.Header.Status)
	}
}
