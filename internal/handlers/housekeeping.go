package handlers

import (
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(housekeepingModule{})
}

// housekeepingModule covers NULL (a pure liveness probe), DUMP, CYCLELOGS,
// and the retired LOGON opcode, which always replies FAILED now that
// authentication has been removed in favor of origin-based trust.
type housekeepingModule struct{}

func (housekeepingModule) Name() string { return "housekeeping" }

func (housekeepingModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqNull:      handleNull,
		wire.ReqDump:      handleDump,
		wire.ReqCycleLogs: handleCycleLogs,
		wire.ReqLogon:     handleLogon,
	}
}

func handleNull(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {}

func handleDump(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	if err := deps.Housekeeping.Dump(); err != nil {
		reply.Header.Status = uint16(wire.StatusFailed)
	}
}

func handleCycleLogs(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	if err := deps.Housekeeping.CycleLogs(); err != nil {
		reply.Header.Status = uint16(wire.StatusFailed)
	}
}

func handleLogon(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	reply.Header.Status = uint16(wire.StatusFailed)
}
