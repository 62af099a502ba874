package handlers

import (
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(referenceModule{})
}

// referenceModule adapts the tracking/reference subsystem: MODIFY_
// MAXUPDATESKEW, MODIFY_MAKESTEP, LOCAL, RESELECT, RESELECTDISTANCE,
// TRACKING, REFRESH, REKEY.
type referenceModule struct{}

func (referenceModule) Name() string { return "reference" }

func (referenceModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqModifyMaxupdateskew: handleModifyMaxUpdateSkew,
		wire.ReqModifyMakestep:      handleModifyMakestep,
		wire.ReqLocal:               handleLocal,
		wire.ReqReselect:            handleReselect,
		wire.ReqReselectDistance:    handleReselectDistance,
		wire.ReqTracking:            handleTracking,
		wire.ReqRefresh:             handleRefresh,
		wire.ReqRekey:               handleRekey,
	}
}

func handleModifyMaxUpdateSkew(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeFloatRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	deps.Reference.ModifyMaxUpdateSkew(r.Value)
}

func handleModifyMakestep(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeModifyMakestepRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	deps.Reference.ModifyMakestep(r.Threshold, r.Limit)
}

func handleLocal(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeLocalRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	deps.Reference.SetLocalStratum(r.OnOff, r.Stratum, r.Distance)
}

func handleReselect(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	deps.Reference.Reselect()
}

func handleReselectDistance(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeFloatRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	deps.Reference.SetReselectDistance(r.Value)
}

func handleTracking(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	reply.Header.ReplyTag = uint16(wire.ReplyTracking)
	reply.Body = deps.Reference.Tracking().Encode()
}

// handleRefresh forces re-resolution of every source's address. It is
// grouped with the reference/tracking opcodes in the handler inventory,
// but the work itself belongs to Sources.
func handleRefresh(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	deps.Sources.Refresh()
}

// handleRekey reloads the symmetric-key store.
func handleRekey(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	if err := deps.Keys.Reload(); err != nil {
		reply.Header.Status = uint16(wire.StatusFailed)
	}
}
