package access

import (
	"net"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Decision is the per-subnet verdict a rule records.
type Decision uint8

const (
	DecisionAllow Decision = iota
	DecisionDeny
)

// Table is the CIDR allow/deny decision table for one namespace (NTP
// client access or C/M access get separate tables, per spec.md's ALLOW vs
// CMDALLOW opcode families). It is backed by a patricia trie keyed on the
// address's bits, giving longest-prefix-match semantics: the most specific
// rule that covers an address wins.
//
// Addresses are stored as a string of '0'/'1' bytes, one per bit, which is
// the conventional way to get bit-granular longest-prefix matching out of
// a byte-oriented patricia trie (github.com/tchap/go-patricia).
type Table struct {
	mu      sync.RWMutex
	trie    *patricia.Trie
	allowed bool // the AllowAll/DenyAll baseline; default deny
}

// NewTable returns an empty table with a deny-all baseline for remote
// command access.
func NewTable() *Table {
	return &Table{trie: patricia.NewTrie()}
}

// AllowAll sets the table's baseline decision to allow, used by ALLOWALL/
// CMDALLOWALL.
func (t *Table) AllowAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allowed = true
}

// DenyAll sets the table's baseline decision to deny, used by DENYALL/
// CMDDENYALL.
func (t *Table) DenyAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allowed = false
}

// Add inserts or replaces a rule for the subnet ip/maskBits.
func (t *Table) Add(ip net.IP, maskBits int, d Decision) error {
	prefix, err := bitPrefix(ip, maskBits)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trie.Insert(prefix, d)
	return nil
}

// Remove deletes the rule for the subnet ip/maskBits, if one exists.
func (t *Table) Remove(ip net.IP, maskBits int) error {
	prefix, err := bitPrefix(ip, maskBits)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trie.Delete(prefix)
	return nil
}

// IsAllowed reports whether ip is allowed by the table: the longest
// matching subnet rule wins; with no matching rule, the AllowAll/DenyAll
// baseline applies.
func (t *Table) IsAllowed(ip net.IP) bool {
	full, err := fullBitString(ip)
	if err != nil {
		return false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	decision := t.allowed
	longest := -1
	t.trie.VisitPrefixes(full, func(prefix patricia.Prefix, item patricia.Item) error {
		if len(prefix) > longest {
			longest = len(prefix)
			decision = item.(Decision) == DecisionAllow
		}
		return nil
	})
	return decision
}

func bitPrefix(ip net.IP, maskBits int) (patricia.Prefix, error) {
	full, err := fullBitString(ip)
	if err != nil {
		return nil, err
	}
	if maskBits < 0 || maskBits > len(full) {
		return nil, ErrBadSubnet
	}
	return full[:maskBits], nil
}

func fullBitString(ip net.IP) (patricia.Prefix, error) {
	v4 := ip.To4()
	var raw []byte
	if v4 != nil {
		raw = v4
	} else if v6 := ip.To16(); v6 != nil {
		raw = v6
	} else {
		return nil, ErrBadSubnet
	}
	bits := make([]byte, len(raw)*8)
	for i, b := range raw {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>uint(bit)) != 0 {
				bits[i*8+bit] = '1'
			} else {
				bits[i*8+bit] = '0'
			}
		}
	}
	return bits, nil
}
