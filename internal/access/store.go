package access

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"

	"go.etcd.io/bbolt"
)

// Store persists admin-added CIDR rules across daemon restarts, so a
// restart simply replays the same Add calls the rules would have received
// live rather than resetting to the deny-all baseline.
type Store struct {
	db *bbolt.DB
}

var bucketName = []byte("cmdmon_access_rules")

type ruleRecord struct {
	Namespace string `json:"namespace"` // "ntp" or "cmd"
	IP        string `json:"ip"`
	MaskBits  int    `json:"mask_bits"`
	Decision  uint8  `json:"decision"`
}

// OpenStore opens (creating if necessary) a bbolt database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("access: open store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("access: init bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Persist records a rule mutation so it survives a restart.
func (s *Store) Persist(namespace string, ip net.IP, maskBits int, d Decision) error {
	rec := ruleRecord{Namespace: namespace, IP: ip.String(), MaskBits: maskBits, Decision: uint8(d)}
	key := ruleKey(namespace, ip, maskBits)
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("access: marshal rule: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, val)
	})
}

// Forget removes a persisted rule.
func (s *Store) Forget(namespace string, ip net.IP, maskBits int) error {
	key := ruleKey(namespace, ip, maskBits)
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	})
}

// LoadInto replays every persisted rule into ntpTable/cmdTable, used once
// at daemon startup before the transport manager begins accepting
// datagrams.
func (s *Store) LoadInto(ntpTable, cmdTable *Table) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(_, v []byte) error {
			var rec ruleRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("access: unmarshal rule: %w", err)
			}
			ip := net.ParseIP(rec.IP)
			if ip == nil {
				return fmt.Errorf("access: stored rule has invalid address %q", rec.IP)
			}
			table := ntpTable
			if rec.Namespace == "cmd" {
				table = cmdTable
			}
			return table.Add(ip, rec.MaskBits, Decision(rec.Decision))
		})
	})
}

func ruleKey(namespace string, ip net.IP, maskBits int) []byte {
	return []byte(strings.Join([]string{namespace, ip.String(), strconv.Itoa(maskBits)}, "/"))
}
