package handlers

import (
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(smoothingModule{})
}

// smoothingModule adapts the offset-smoothing collaborator: SMOOTHING,
// SMOOTHTIME.
type smoothingModule struct{}

func (smoothingModule) Name() string { return "smoothing" }

func (smoothingModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqSmoothing:  handleSmoothing,
		wire.ReqSmoothTime: handleSmoothTime,
	}
}

func handleSmoothing(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	reply.Header.ReplyTag = uint16(wire.ReplySmoothing)
	reply.Body = deps.Smooth.Report().Encode()
}

// handleSmoothTime requires smoothing to be enabled; otherwise it replies
// NOT_ENABLED.
func handleSmoothTime(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeOptionRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	switch deps.Smooth.Apply(collab.SmoothOption(r.Option)) {
	case collab.ManualOK:
		reply.Header.Status = uint16(wire.StatusSuccess)
	case collab.ManualNotEnabled:
		reply.Header.Status = uint16(wire.StatusNotEnabled)
	default:
		reply.Header.Status = uint16(wire.StatusFailed)
	}
}
