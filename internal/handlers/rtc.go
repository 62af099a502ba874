package handlers

import (
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(rtcModule{})
}

// rtcModule adapts the real-time-clock collaborator: WRITERTC, TRIMRTC,
// RTCREPORT.
type rtcModule struct{}

func (rtcModule) Name() string { return "rtc" }

func (rtcModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqWriteRtc:  handleWriteRtc,
		wire.ReqTrimRtc:   handleTrimRtc,
		wire.ReqRtcReport: handleRtcReport,
	}
}

func handleWriteRtc(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	setRtcResultStatus(reply, deps.Rtc.Write())
}

func handleTrimRtc(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	setRtcResultStatus(reply, deps.Rtc.Trim())
}

func handleRtcReport(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	report, result := deps.Rtc.Report()
	if result != collab.RtcOK {
		setRtcResultStatus(reply, result)
		return
	}
	reply.Header.ReplyTag = uint16(wire.ReplyRtcReport)
	reply.Body = report.Encode()
}

func setRtcResultStatus(reply *dispatch.Reply, result collab.RtcResult) {
	switch result {
	case collab.RtcOK:
		reply.Header.Status = uint16(wire.StatusSuccess)
	case collab.RtcNoRtc:
		reply.Header.Status = uint16(wire.StatusNoRtc)
	case collab.RtcBadFile:
		reply.Header.Status = uint16(wire.StatusBadRtcFile)
	}
}
