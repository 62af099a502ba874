package handlers

import (
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(clockModule{})
}

// clockModule adapts the local clock driver: DFREQ, DOFFSET, MAKESTEP.
// SETTIME also steers the clock but is dispatched through the manual
// module, since it shares the manual-timestamp engine's NOT-ENABLED gate.
type clockModule struct{}

func (clockModule) Name() string { return "clock" }

func (clockModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqDfreq:    handleDfreq,
		wire.ReqDoffset:  handleDoffset,
		wire.ReqMakestep: handleMakestep,
	}
}

func handleDfreq(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeFloatRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	deps.Clock.AccumulateFrequency(r.Value)
}

func handleDoffset(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeFloatRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	deps.Clock.AccumulateOffset(r.Value)
}

func handleMakestep(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	deps.Clock.MakeStep()
}
