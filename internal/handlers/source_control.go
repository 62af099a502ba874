package handlers

import (
	"net"

	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(sourceControlModule{})
}

// sourceControlModule covers ONLINE, OFFLINE, and BURST, each of which
// target every known source matching a (mask, address) subnet rather
// than a single host, plus the per-source MODIFY_* opcodes.
type sourceControlModule struct{}

func (sourceControlModule) Name() string { return "source_control" }

func (sourceControlModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqOnline:                 handleOnline,
		wire.ReqOffline:                handleOffline,
		wire.ReqBurst:                  handleBurst,
		wire.ReqModifyMinpoll:          addressIntHandler(collab.Sources.ModifyMinpoll),
		wire.ReqModifyMaxpoll:          addressIntHandler(collab.Sources.ModifyMaxpoll),
		wire.ReqModifyMinstratum:       addressIntHandler(collab.Sources.ModifyMinstratum),
		wire.ReqModifyPolltarget:       addressIntHandler(collab.Sources.ModifyPolltarget),
		wire.ReqModifyMaxdelay:         addressFloatHandler(collab.Sources.ModifyMaxdelay),
		wire.ReqModifyMaxdelayRatio:    addressFloatHandler(collab.Sources.ModifyMaxdelayRatio),
		wire.ReqModifyMaxdelayDevRatio: addressFloatHandler(collab.Sources.ModifyMaxdelayDevRatio),
	}
}

func handleOnline(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	maskedReq, err := wire.DecodeMaskedAddressRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	setSourceResultStatus(reply, deps.Sources.Online(maskedReq.Mask.ToNetIP(), maskedReq.Address.ToNetIP()))
}

func handleOffline(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	maskedReq, err := wire.DecodeMaskedAddressRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	setSourceResultStatus(reply, deps.Sources.Offline(maskedReq.Mask.ToNetIP(), maskedReq.Address.ToNetIP()))
}

func handleBurst(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	burstReq, err := wire.DecodeBurstRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	result := deps.Sources.Burst(burstReq.Mask.ToNetIP(), burstReq.Address.ToNetIP(), burstReq.NGoodSamples, burstReq.NTotalSamples)
	setSourceResultStatus(reply, result)
}

// addressIntHandler adapts one of Sources' (net.IP, int32) -> SourceResult
// methods into a dispatch.HandlerFunc, decoding the shared
// AddressIntRequest shape once instead of repeating it per opcode.
func addressIntHandler(method func(collab.Sources, net.IP, int32) collab.SourceResult) dispatch.HandlerFunc {
	return func(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
		r, err := wire.DecodeAddressIntRequest(req.Body)
		if err != nil {
			reply.Header.Status = uint16(wire.StatusInvalid)
			return
		}
		setSourceResultStatus(reply, method(deps.Sources, r.Address.ToNetIP(), r.Value))
	}
}

// addressFloatHandler is addressIntHandler's counterpart for the
// coded-float single-source MODIFY_* opcodes.
func addressFloatHandler(method func(collab.Sources, net.IP, float64) collab.SourceResult) dispatch.HandlerFunc {
	return func(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
		r, err := wire.DecodeAddressFloatRequest(req.Body)
		if err != nil {
			reply.Header.Status = uint16(wire.StatusInvalid)
			return
		}
		setSourceResultStatus(reply, method(deps.Sources, r.Address.ToNetIP(), r.Value))
	}
}
