package traits

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/fragnova/protos/codec"
)

func TestWrapUnwrapExtremes(t *testing.T) {
	for _, x := range []int64{math.MinInt64, -100, -1, 0, 1, 100, math.MaxInt64} {
		if got := Unwrap(Wrap(x)); got != x {
			t.Fatalf("Unwrap(Wrap(%d)) = %d", x, got)
		}
	}
	if Wrap(math.MinInt64) != 0 {
		t.Fatalf("Wrap(MinInt64) = %d, want 0", Wrap(math.MinInt64))
	}
	if Wrap(math.MaxInt64) != math.MaxUint64 {
		t.Fatalf("Wrap(MaxInt64) = %d, want MaxUint64", Wrap(math.MaxInt64))
	}
	if Wrap(0) != 1<<63 {
		t.Fatalf("Wrap(0) = %d, want 1<<63", Wrap(0))
	}
}

func TestWrapMonotonic(t *testing.T) {
	xs := []int64{math.MinInt64, math.MinInt64 + 1, -1 << 32, -1, 0, 1, 1 << 32, math.MaxInt64 - 1, math.MaxInt64}
	for i := 1; i < len(xs); i++ {
		if Wrap(xs[i-1]) >= Wrap(xs[i]) {
			t.Fatalf("Wrap not monotonic at %d < %d", xs[i-1], xs[i])
		}
	}
}

func TestLimitsWire(t *testing.T) {
	l := Limits{Min: -100, Max: 100, Scale: 2}
	var w codec.Writer
	encodeLimits(&w, l)
	want := "139cffffffffffff7f" + "136400000000000080" + "08"
	if got := hex.EncodeToString(w.Bytes()); got != want {
		t.Fatalf("encoded limits = %s, want %s", got, want)
	}
	got, err := decodeLimits(codec.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != l {
		t.Fatalf("round trip = %+v, want %+v", got, l)
	}
}

func TestOptLimitsAbsent(t *testing.T) {
	var w codec.Writer
	encodeOptLimits(&w, nil)
	if len(w.Bytes()) != 1 || w.Bytes()[0] != 0 {
		t.Fatalf("absent limits encoded as %x", w.Bytes())
	}
	got, err := decodeOptLimits(codec.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil limits, got %+v", got)
	}
}

func TestFloatBounds(t *testing.T) {
	l := Limits{Min: -100, Max: 100, Scale: 2}
	min, max := l.FloatBounds()
	if min != -1 || max != 1 {
		t.Fatalf("FloatBounds = (%v, %v), want (-1, 1)", min, max)
	}
}
