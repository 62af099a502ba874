package wire

import (
	"testing"

	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
)

func TestFloatRoundTrip(t *testing.T) {
	testlog.Start(t)

	cases := []float64{
		0,
		1,
		-1,
		0.5,
		-0.5,
		123.456,
		-123.456,
		1e-6,
		-1e-6,
		1e6,
		-1e6,
		0.000123,
		3.14159265,
	}
	for _, x := range cases {
		word := EncodeFloat(x)
		got := DecodeFloat(word)
		if !closeEnough(got, x) {
			t.Errorf("round trip mismatch: encode(%v) -> decode -> %v", x, got)
		}
	}
}

func TestFloatWireRoundTrip(t *testing.T) {
	testlog.Start(t)

	// Re-encoding a value already produced by DecodeFloat must decode back
	// to the same value, even if the chosen (exp, coef) bit pattern isn't
	// byte-identical (multiple patterns can express the same magnitude).
	words := []uint32{
		0x00000000,
		0x32000001,
		0xCE000001,
		0x19800000,
		0x06400000,
	}
	for _, word := range words {
		x := DecodeFloat(word)
		again := DecodeFloat(EncodeFloat(x))
		if !closeEnough(again, x) {
			t.Errorf("wire round trip mismatch: word %#x -> %v -> re-encoded -> %v", word, x, again)
		}
	}
}

func TestFloatSaturatesAtExtremes(t *testing.T) {
	testlog.Start(t)

	word := EncodeFloat(1e300)
	got := DecodeFloat(word)
	if got <= 0 {
		t.Fatalf("expected large positive saturated value, got %v", got)
	}

	word = EncodeFloat(-1e300)
	got = DecodeFloat(word)
	if got >= 0 {
		t.Fatalf("expected large negative saturated value, got %v", got)
	}
}

func TestFloatZeroAndUnderflow(t *testing.T) {
	testlog.Start(t)

	if DecodeFloat(EncodeFloat(0)) != 0 {
		t.Fatalf("zero did not round trip to zero")
	}
	// far below the smallest representable magnitude: underflows to zero
	if got := DecodeFloat(EncodeFloat(1e-300)); got != 0 {
		t.Fatalf("expected underflow to zero, got %v", got)
	}
}

func closeEnough(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	tolerance := b * 1e-6
	if tolerance < 0 {
		tolerance = -tolerance
	}
	if tolerance < 1e-9 {
		tolerance = 1e-9
	}
	return diff <= tolerance
}
