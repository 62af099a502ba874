package collab

import (
	"net"

	"github.com/ntpcore/cmdmon/internal/access"
)

// AccessAdapter satisfies the AccessFilter contract on top of
// internal/access.Policy's two CIDR tables. Store is optional; when set,
// every point rule added through Allow/Deny is persisted so it survives a
// daemon restart. AllowAll/DenyAll flip the in-memory baseline only, since
// Store's schema records individual rules rather than the baseline flag.
type AccessAdapter struct {
	Policy *access.Policy
	Store  *access.Store
}

func (a AccessAdapter) table(ns AccessNamespace) *access.Table {
	if ns == AccessNamespaceCmd {
		return a.Policy.CmdTable
	}
	return a.Policy.NTPTable
}

func namespaceLabel(ns AccessNamespace) string {
	if ns == AccessNamespaceCmd {
		return "cmd"
	}
	return "ntp"
}

func (a AccessAdapter) Allow(ns AccessNamespace, addr net.IP, maskBits int) error {
	if err := a.table(ns).Add(addr, maskBits, access.DecisionAllow); err != nil {
		return err
	}
	if a.Store != nil {
		return a.Store.Persist(namespaceLabel(ns), addr, maskBits, access.DecisionAllow)
	}
	return nil
}

func (a AccessAdapter) Deny(ns AccessNamespace, addr net.IP, maskBits int) error {
	if err := a.table(ns).Add(addr, maskBits, access.DecisionDeny); err != nil {
		return err
	}
	if a.Store != nil {
		return a.Store.Persist(namespaceLabel(ns), addr, maskBits, access.DecisionDeny)
	}
	return nil
}

func (a AccessAdapter) AllowAll(ns AccessNamespace) {
	a.table(ns).AllowAll()
}

func (a AccessAdapter) DenyAll(ns AccessNamespace) {
	a.table(ns).DenyAll()
}

func (a AccessAdapter) IsAllowed(ns AccessNamespace, addr net.IP) bool {
	return a.table(ns).IsAllowed(addr)
}
