package codec

import "math"

// Reader consumes an encoded byte sequence. It tracks its position so
// failures can report the offending offset. Readers never copy the input;
// byte-slice results alias the underlying data.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current byte offset.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, NewError(KindUnexpectedEOF, r.pos, "input exhausted")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// Raw reads exactly n bytes.
func (r *Reader) Raw(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, NewError(KindUnexpectedEOF, r.pos, "input exhausted")
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Compact reads a length-adaptive integer, rejecting non-canonical forms.
func (r *Reader) Compact() (uint64, error) {
	start := r.pos
	b0, err := r.Byte()
	if err != nil {
		return 0, err
	}
	switch b0 & 0b11 {
	case 0b00:
		return uint64(b0 >> 2), nil
	case 0b01:
		b1, err := r.Byte()
		if err != nil {
			return 0, err
		}
		v := (uint64(b0) | uint64(b1)<<8) >> 2
		if v < 1<<6 {
			return 0, NewError(KindInvalidInteger, start, "two-byte band holds a one-byte value")
		}
		return v, nil
	case 0b10:
		rest, err := r.Raw(3)
		if err != nil {
			return 0, err
		}
		v := (uint64(b0) | uint64(rest[0])<<8 | uint64(rest[1])<<16 | uint64(rest[2])<<24) >> 2
		if v < 1<<14 {
			return 0, NewError(KindInvalidInteger, start, "four-byte band holds a smaller-band value")
		}
		return v, nil
	default:
		n := int(b0>>2) + 4
		if n > 8 {
			return 0, NewError(KindInvalidInteger, start, "big band declares more than eight value bytes")
		}
		raw, err := r.Raw(n)
		if err != nil {
			return 0, err
		}
		var v uint64
		for i := 0; i < n; i++ {
			v |= uint64(raw[i]) << (8 * i)
		}
		if n == 4 {
			if v < 1<<30 {
				return 0, NewError(KindInvalidInteger, start, "big band holds a four-byte-band value")
			}
			return v, nil
		}
		if v < 1<<(8*(n-1)) {
			return 0, NewError(KindInvalidInteger, start, "big band has a zero high byte")
		}
		return v, nil
	}
}

// Compact32 reads a compact integer in a 32-bit context.
func (r *Reader) Compact32() (uint32, error) {
	start := r.pos
	v, err := r.Compact()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, NewError(KindInvalidInteger, start, "compact integer out of 32-bit range")
	}
	return uint32(v), nil
}

// Blob reads a length-prefixed byte string.
func (r *Reader) Blob() ([]byte, error) {
	start := r.pos
	n, err := r.Compact()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Remaining()) {
		return nil, NewError(KindUnexpectedEOF, start, "byte string length exceeds remaining input")
	}
	return r.Raw(int(n))
}

// Str reads a length-prefixed byte string as a string.
func (r *Reader) Str() (string, error) {
	b, err := r.Blob()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bool reads a 0x00/0x01 boolean.
func (r *Reader) Bool() (bool, error) {
	start := r.pos
	b, err := r.Byte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, NewError(KindUnknownVariant, start, "boolean byte is neither 0 nor 1")
	}
}

// Option reads an optional-value presence flag.
func (r *Reader) Option() (bool, error) {
	start := r.pos
	b, err := r.Byte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, NewError(KindUnknownVariant, start, "option flag is neither 0 nor 1")
	}
}
