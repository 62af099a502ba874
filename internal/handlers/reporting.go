package handlers

import (
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(reportingModule{})
}

// reportingModule answers the read-only, table-backed reports: N_SOURCES,
// SOURCE_DATA, SOURCESTATS, ACTIVITY, and the paged CLIENT_ACCESSES_BY_INDEX.
type reportingModule struct{}

func (reportingModule) Name() string { return "reporting" }

func (reportingModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqNSources:              handleNSources,
		wire.ReqSourceData:            handleSourceData,
		wire.ReqSourceStats:           handleSourceStats,
		wire.ReqActivity:              handleActivity,
		wire.ReqClientAccessesByIndex: handleClientAccessesByIndex,
	}
}

func handleNSources(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	reply.Header.ReplyTag = uint16(wire.ReplyNSources)
	reply.Body = wire.NSourcesReply{NSources: int32(deps.Sources.Count())}.Encode()
}

func handleSourceData(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeIndexRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	report, result := deps.Sources.ReportByIndex(int(r.Index))
	if result != collab.SourceOK {
		setSourceResultStatus(reply, result)
		return
	}
	reply.Header.ReplyTag = uint16(wire.ReplySourceData)
	reply.Body = report.Encode()
}

func handleSourceStats(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeIndexRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	report, result := deps.Sources.StatsByIndex(int(r.Index))
	if result != collab.SourceOK {
		setSourceResultStatus(reply, result)
		return
	}
	reply.Header.ReplyTag = uint16(wire.ReplySourceStats)
	reply.Body = report.Encode()
}

func handleActivity(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	reply.Header.ReplyTag = uint16(wire.ReplyActivity)
	reply.Body = deps.Sources.Activity().Encode()
}

// handleClientAccessesByIndex implements the paged-reporting contract:
// an inactive table replies INACTIVE, otherwise the reply carries however
// many rows were actually packed along with next_index/n_clients.
func handleClientAccessesByIndex(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	r, err := wire.DecodeClientAccessesByIndexRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	page, status := deps.ClientLog.ReportByIndex(r.FirstIndex, r.NClients)
	reply.Header.Status = uint16(status)
	if status != wire.StatusSuccess {
		return
	}
	reply.Header.ReplyTag = uint16(wire.ReplyClientAccessesByIndex)
	reply.Body = page.Encode()
}
