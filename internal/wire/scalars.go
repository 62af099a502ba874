package wire

import (
	"encoding/binary"
	"net"
	"time"
)

// AddressFamily tags the family of an on-wire IP address, alongside the
// address bytes themselves.
type AddressFamily uint16

const (
	AddressFamilyUnspec AddressFamily = 0
	AddressFamilyInet4  AddressFamily = 1
	AddressFamilyInet6  AddressFamily = 2
)

// IPAddr is the wire representation of an IP address: 16 raw bytes (a v4
// address is left-justified in the first 4) tagged with its family.
type IPAddr struct {
	Bytes  [16]byte
	Family AddressFamily
}

// EncodedIPAddrSize is the byte size of an IPAddr on the wire: 16 address
// bytes, a 2-byte family tag, 2 bytes of padding to a 4-byte boundary.
const EncodedIPAddrSize = 20

// NewIPAddr builds an IPAddr from a net.IP, choosing the family tag from
// whether the address has a valid 4-byte form.
func NewIPAddr(ip net.IP) IPAddr {
	if ip == nil {
		return IPAddr{Family: AddressFamilyUnspec}
	}
	if v4 := ip.To4(); v4 != nil {
		var a IPAddr
		a.Family = AddressFamilyInet4
		copy(a.Bytes[:4], v4)
		return a
	}
	if v6 := ip.To16(); v6 != nil {
		var a IPAddr
		a.Family = AddressFamilyInet6
		copy(a.Bytes[:], v6)
		return a
	}
	return IPAddr{Family: AddressFamilyUnspec}
}

// ToNetIP converts a decoded IPAddr back into a net.IP, or nil for an
// unspecified family.
func (a IPAddr) ToNetIP() net.IP {
	switch a.Family {
	case AddressFamilyInet4:
		return net.IP(a.Bytes[:4]).To4()
	case AddressFamilyInet6:
		ip := make(net.IP, 16)
		copy(ip, a.Bytes[:])
		return ip
	default:
		return nil
	}
}

// EncodeIPAddr writes a into a freshly allocated EncodedIPAddrSize slice.
func EncodeIPAddr(a IPAddr) []byte {
	b := make([]byte, EncodedIPAddrSize)
	copy(b[0:16], a.Bytes[:])
	binary.BigEndian.PutUint16(b[16:18], uint16(a.Family))
	return b
}

// DecodeIPAddr reads an IPAddr from the front of b.
func DecodeIPAddr(b []byte) (IPAddr, error) {
	if len(b) < EncodedIPAddrSize {
		return IPAddr{}, ErrTruncated
	}
	var a IPAddr
	copy(a.Bytes[:], b[0:16])
	family := binary.BigEndian.Uint16(b[16:18])
	switch AddressFamily(family) {
	case AddressFamilyUnspec, AddressFamilyInet4, AddressFamilyInet6:
		a.Family = AddressFamily(family)
	default:
		return IPAddr{}, ErrBadAddressFamily
	}
	return a, nil
}

// Timestamp is a (seconds, microseconds) pair in network order, the wire
// format for every timestamp field in the protocol.
type Timestamp struct {
	Seconds      uint32
	Microseconds uint32
}

// EncodedTimestampSize is the on-wire size of a Timestamp.
const EncodedTimestampSize = 8

// NewTimestamp converts a time.Time to its wire representation, truncating
// to microsecond precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{
		Seconds:      uint32(t.Unix()),
		Microseconds: uint32(t.Nanosecond() / 1000),
	}
}

// ToTime converts a Timestamp back into a time.Time in UTC.
func (t Timestamp) ToTime() time.Time {
	return time.Unix(int64(t.Seconds), int64(t.Microseconds)*1000).UTC()
}

// EncodeTimestamp writes t into a freshly allocated EncodedTimestampSize
// slice.
func EncodeTimestamp(t Timestamp) []byte {
	b := make([]byte, EncodedTimestampSize)
	binary.BigEndian.PutUint32(b[0:4], t.Seconds)
	binary.BigEndian.PutUint32(b[4:8], t.Microseconds)
	return b
}

// DecodeTimestamp reads a Timestamp from the front of b.
func DecodeTimestamp(b []byte) (Timestamp, error) {
	if len(b) < EncodedTimestampSize {
		return Timestamp{}, ErrTruncated
	}
	return Timestamp{
		Seconds:      binary.BigEndian.Uint32(b[0:4]),
		Microseconds: binary.BigEndian.Uint32(b[4:8]),
	}, nil
}
