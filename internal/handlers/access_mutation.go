package handlers

import (
	"net"

	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/wire"
)

func init() {
	plugins.Register(accessMutationModule{})
}

// accessMutationModule mutates or queries the two CIDR tables: ALLOW,
// ALLOWALL, DENY, DENYALL for the NTP client-access namespace; CMDALLOW,
// CMDALLOWALL, CMDDENY, CMDDENYALL for the C/M namespace; ACCHECK,
// CMDACCHECK query either one without mutating it.
type accessMutationModule struct{}

func (accessMutationModule) Name() string { return "access_mutation" }

func (accessMutationModule) Handlers() map[wire.Opcode]dispatch.HandlerFunc {
	return map[wire.Opcode]dispatch.HandlerFunc{
		wire.ReqAllow:       subnetHandler(collab.AccessNamespaceNTP, collab.AccessFilter.Allow),
		wire.ReqDeny:        subnetHandler(collab.AccessNamespaceNTP, collab.AccessFilter.Deny),
		wire.ReqCmdAllow:    subnetHandler(collab.AccessNamespaceCmd, collab.AccessFilter.Allow),
		wire.ReqCmdDeny:     subnetHandler(collab.AccessNamespaceCmd, collab.AccessFilter.Deny),
		wire.ReqAllowAll:    allAllowDenyHandler(collab.AccessNamespaceNTP, collab.AccessFilter.AllowAll),
		wire.ReqDenyAll:     allAllowDenyHandler(collab.AccessNamespaceNTP, collab.AccessFilter.DenyAll),
		wire.ReqCmdAllowAll: allAllowDenyHandler(collab.AccessNamespaceCmd, collab.AccessFilter.AllowAll),
		wire.ReqCmdDenyAll:  allAllowDenyHandler(collab.AccessNamespaceCmd, collab.AccessFilter.DenyAll),
		wire.ReqAccheck:     accheckHandler(collab.AccessNamespaceNTP),
		wire.ReqCmdAccheck:  accheckHandler(collab.AccessNamespaceCmd),
	}
}

// subnetHandler adapts AccessFilter.Allow/Deny, which both take the same
// (namespace, addr, maskBits) shape decoded from a SubnetRequest.
func subnetHandler(ns collab.AccessNamespace, method func(collab.AccessFilter, collab.AccessNamespace, net.IP, int) error) dispatch.HandlerFunc {
	return func(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
		r, err := wire.DecodeSubnetRequest(req.Body)
		if err != nil {
			reply.Header.Status = uint16(wire.StatusInvalid)
			return
		}
		maskBits := int(r.MaskBits)
		if maskBits < 0 {
			maskBits = subnetFullMaskBits(r.Address)
		}
		if err := method(deps.Access, ns, r.Address.ToNetIP(), maskBits); err != nil {
			reply.Header.Status = uint16(wire.StatusBadSubnet)
			return
		}
		reply.Header.Status = uint16(wire.StatusSuccess)
	}
}

func allAllowDenyHandler(ns collab.AccessNamespace, method func(collab.AccessFilter, collab.AccessNamespace)) dispatch.HandlerFunc {
	return func(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
		method(deps.Access, ns)
	}
}

func accheckHandler(ns collab.AccessNamespace) dispatch.HandlerFunc {
	return func(deps *dispatch.Deps, req *dispatch.Request, reply *dispatch.Reply) {
		r, err := wire.DecodeSubnetRequest(req.Body)
		if err != nil {
			reply.Header.Status = uint16(wire.StatusInvalid)
			return
		}
		if deps.Access.IsAllowed(ns, r.Address.ToNetIP()) {
			reply.Header.Status = uint16(wire.StatusAccessAllowed)
		} else {
			reply.Header.Status = uint16(wire.StatusAccessDenied)
		}
	}
}

func subnetFullMaskBits(addr wire.IPAddr) int {
	if addr.Family == wire.AddressFamilyInet4 {
		return 32
	}
	return 128
}
