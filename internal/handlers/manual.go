package handlers

import (
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(manualModule{})
}

// manualModule is the manual-timestamp engine's adapter: MANUAL, SETTIME,
// MANUAL_LIST, MANUAL_DELETE.
type manualModule struct{}

func (manualModule) Name() string { return "manual" }

func (manualModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqManual:       handleManual,
		wire.ReqSettime:      handleSettime,
		wire.ReqManualList:   handleManualList,
		wire.ReqManualDelete: handleManualDelete,
	}
}

func handleManual(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeOptionRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	deps.Manual.SetMode(collab.ManualOption(r.Option))
}

// handleSettime requires manual mode to already be enabled; otherwise it
// replies NOT_ENABLED without touching the clock.
func handleSettime(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeSettimeRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	switch deps.Manual.AcceptTimestamp(r.When.ToTime()) {
	case collab.ManualOK:
		reply.Header.Status = uint16(wire.StatusSuccess)
	case collab.ManualNotEnabled:
		reply.Header.Status = uint16(wire.StatusNotEnabled)
	case collab.ManualBadSample:
		reply.Header.Status = uint16(wire.StatusBadSample)
	}
}

func handleManualList(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	reply.Header.ReplyTag = uint16(wire.ReplyManualList)
	reply.Body = deps.Manual.List().Encode()
}

func handleManualDelete(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeIndexRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	switch deps.Manual.Delete(r.Index) {
	case collab.ManualOK:
		reply.Header.Status = uint16(wire.StatusSuccess)
	case collab.ManualNotEnabled:
		reply.Header.Status = uint16(wire.StatusNotEnabled)
	case collab.ManualBadSample:
		reply.Header.Status = uint16(wire.StatusBadSample)
	}
}
