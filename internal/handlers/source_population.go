package handlers

import (
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(sourcePopulationModule{})
}

// sourcePopulationModule adds and removes entries from the Sources
// collaborator: ADD_SERVER, ADD_PEER, DEL_SOURCE.
type sourcePopulationModule struct{}

func (sourcePopulationModule) Name() string { return "source_population" }

func (sourcePopulationModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqAddServer: handleAddServer,
		wire.ReqAddPeer:   handleAddPeer,
		wire.ReqDelSource: handleDelSource,
	}
}

func decodeSourceParams(p wire.NTPSourceParams) collab.SourceParams {
	return collab.SourceParams{
		Port:             p.Port,
		Minpoll:          p.Minpoll,
		Maxpoll:          p.Maxpoll,
		Presend:          p.Presend,
		MaxDelay:         p.MaxDelay,
		MaxDelayRatio:    p.MaxDelayRatio,
		MaxDelayDevRatio: p.MaxDelayDevRatio,
		MinStratum:       p.MinStratum,
		PollTarget:       p.PollTarget,
		Version:          p.Version,
		AutoOffline:      p.AutoOffline,
		Iburst:           p.Iburst,
		Interleaved:      p.Interleaved,
	}
}

func handleAddServer(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	params, err := wire.DecodeNTPSourceParams(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	result := deps.Sources.AddServer(params.Address.ToNetIP(), decodeSourceParams(params))
	setSourceResultStatus(reply, result)
}

func handleAddPeer(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	params, err := wire.DecodeNTPSourceParams(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	result := deps.Sources.AddPeer(params.Address.ToNetIP(), decodeSourceParams(params))
	setSourceResultStatus(reply, result)
}

func handleDelSource(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
	addrReq, err := wire.DecodeAddressRequest(req.Body)
	if err != nil {
		reply.Header.Status = uint16(wire.StatusInvalid)
		return
	}
	result := deps.Sources.Delete(addrReq.Address.ToNetIP())
	setSourceResultStatus(reply, result)
}

// setSourceResultStatus maps a collab.SourceResult onto the reply's status
// code.
func setSourceResultStatus(reply *dispatch.Reply, result collab.SourceResult) {
	switch result {
	case collab.SourceOK:
		reply.Header.Status = uint16(wire.StatusSuccess)
	case collab.SourceNoSuchSource:
		reply.Header.Status = uint16(wire.StatusNoSuchSource)
	case collab.SourceAlreadyKnown:
		reply.Header.Status = uint16(wire.StatusSourceAlreadyKnown)
	case collab.SourceTooMany:
		reply.Header.Status = uint16(wire.StatusTooManySources)
	case collab.SourceInvalidAF:
		reply.Header.Status = uint16(wire.StatusInvalidAf)
	default:
		reply.Header.Status = uint16(wire.StatusFailed)
	}
}
