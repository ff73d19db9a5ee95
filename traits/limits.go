package traits

import (
	"math"

	"github.com/fragnova/protos/codec"
)

// Limits bounds a numeric variable: an inclusive [Min, Max] range plus a
// fixed-point scale. The real-valued bound is the raw bound divided by
// 10^Scale, which lets float ranges ride on integer storage with a chosen
// precision.
//
// Min <= Max is a domain expectation, not enforced here; enforcement is a
// caller concern.
type Limits struct {
	Min   int64  `json:"min"`
	Max   int64  `json:"max"`
	Scale uint32 `json:"scale"`
}

const bias = 1 << 63

// Wrap maps a signed bound onto the unsigned domain the compact integer
// codec requires. The fixed bias makes the mapping a monotonic bijection
// over the full 64-bit range, so negative bounds round-trip exactly without
// widening the wire format.
func Wrap(x int64) uint64 {
	return uint64(x) + bias
}

// Unwrap is the exact inverse of Wrap.
func Unwrap(u uint64) int64 {
	return int64(u - bias)
}

// FloatBounds returns the real-valued bounds after applying the scale.
func (l Limits) FloatBounds() (min, max float64) {
	d := math.Pow10(int(l.Scale))
	return float64(l.Min) / d, float64(l.Max) / d
}

func encodeLimits(w *codec.Writer, l Limits) {
	w.Compact(Wrap(l.Min))
	w.Compact(Wrap(l.Max))
	w.Compact(uint64(l.Scale))
}

func decodeLimits(r *codec.Reader) (Limits, error) {
	min, err := r.Compact()
	if err != nil {
		return Limits{}, err
	}
	max, err := r.Compact()
	if err != nil {
		return Limits{}, err
	}
	scale, err := r.Compact32()
	if err != nil {
		return Limits{}, err
	}
	return Limits{Min: Unwrap(min), Max: Unwrap(max), Scale: scale}, nil
}

func encodeOptLimits(w *codec.Writer, l *Limits) {
	if l == nil {
		w.Option(false)
		return
	}
	w.Option(true)
	encodeLimits(w, *l)
}

func decodeOptLimits(r *codec.Reader) (*Limits, error) {
	present, err := r.Option()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	l, err := decodeLimits(r)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
