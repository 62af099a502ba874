package access

import (
	"net"

	"github.com/ntpcore/cmdmon/internal/wire"
)

// Origin describes where a received packet came from: the address family
// and, for IP origins, the peer address; FilesystemLocal origins carry no
// address.
type Origin struct {
	Trust TrustLevel
	Addr  net.IP
}

// Policy implements the four-step layered decision rule. It owns
// two independent tables: one for the NTP client-access namespace (ALLOW/
// DENY/ALLOWALL/DENYALL) and one for the C/M namespace (CMDALLOW/CMDDENY/
// CMDALLOWALL/CMDDENYALL). Only the C/M table gates dispatch; the NTP
// table exists so its mutating opcodes have somewhere to write.
type Policy struct {
	NTPTable *Table
	CmdTable *Table
}

// NewPolicy returns a Policy with both tables defaulting to deny-all.
func NewPolicy() *Policy {
	return &Policy{NTPTable: NewTable(), CmdTable: NewTable()}
}

// Classify implements steps 1-3 of the decision rule: filesystem origins
// are always trusted; loopback origins are marked local; everything else
// must clear the C/M CIDR table or is rejected outright.
func (p *Policy) Classify(origin Origin) (trust TrustLevel, ok bool) {
	if origin.Trust == FilesystemLocal {
		return FilesystemLocal, true
	}
	if lvl := ClassifyIP(origin.Addr); lvl == Localhost {
		return Localhost, true
	}
	if p.CmdTable.IsAllowed(origin.Addr) {
		return UntrustedRemote, true
	}
	return UntrustedRemote, false
}

// Authorize implements step 4 of the decision rule: given a trust level that has
// already cleared Classify, decide whether it satisfies op's permission
// class.
func Authorize(trust TrustLevel, op wire.Opcode) bool {
	switch wire.Permission(op) {
	case wire.PermAuth:
		return trust == FilesystemLocal
	case wire.PermLocal:
		return trust == FilesystemLocal || trust == Localhost
	default: // wire.PermOpen
		return true
	}
}
