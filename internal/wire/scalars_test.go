package wire

import (
	"net"
	"testing"
	"time"

	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
)

func TestIPAddrRoundTripV4(t *testing.T) {
	testlog.Start(t)

	ip := net.ParseIP("192.0.2.1")
	a := NewIPAddr(ip)
	if a.Family != AddressFamilyInet4 {
		t.Fatalf("family = %v, want Inet4", a.Family)
	}
	b := EncodeIPAddr(a)
	if len(b) != EncodedIPAddrSize {
		t.Fatalf("encoded size = %d, want %d", len(b), EncodedIPAddrSize)
	}
	got, err := DecodeIPAddr(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.ToNetIP().Equal(ip) {
		t.Fatalf("round trip mismatch: got %v, want %v", got.ToNetIP(), ip)
	}
}

func TestIPAddrRoundTripV6(t *testing.T) {
	testlog.Start(t)

	ip := net.ParseIP("2001:db8::1")
	a := NewIPAddr(ip)
	if a.Family != AddressFamilyInet6 {
		t.Fatalf("family = %v, want Inet6", a.Family)
	}
	got, err := DecodeIPAddr(EncodeIPAddr(a))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.ToNetIP().Equal(ip) {
		t.Fatalf("round trip mismatch: got %v, want %v", got.ToNetIP(), ip)
	}
}

func TestDecodeIPAddrRejectsUnknownFamily(t *testing.T) {
	testlog.Start(t)

	b := make([]byte, EncodedIPAddrSize)
	b[16] = 0xFF
	b[17] = 0xFF
	if _, err := DecodeIPAddr(b); err != ErrBadAddressFamily {
		t.Fatalf("expected ErrBadAddressFamily, got %v", err)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	testlog.Start(t)

	ts := Timestamp{Seconds: 1700000000, Microseconds: 123456}
	got, err := DecodeTimestamp(EncodeTimestamp(ts))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != ts {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, ts)
	}
}

func TestNewTimestampTruncatesToMicroseconds(t *testing.T) {
	testlog.Start(t)

	now := time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC)
	ts := NewTimestamp(now)
	if ts.Microseconds != 123456 {
		t.Fatalf("microseconds = %d, want 123456", ts.Microseconds)
	}
	back := ts.ToTime()
	if back.Unix() != now.Unix() {
		t.Fatalf("seconds mismatch: got %v, want %v", back.Unix(), now.Unix())
	}
}
