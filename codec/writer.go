// Package codec implements the compact wire primitives shared by every
// encoded structure in this module: self-describing variable-length
// integers, length-prefixed byte strings, optionals and booleans.
//
// The integer encoding is length-adaptive. The low one or two bits of the
// first byte select a band:
//
//	xxxxxx00  1 byte,  values 0 .. 2^6-1
//	xxxxxx01  2 bytes, values 2^6 .. 2^14-1, little-endian
//	xxxxxx10  4 bytes, values 2^14 .. 2^30-1, little-endian
//	nnnnnn11  prefix byte carrying (bytecount-4), then bytecount (4..8)
//	          little-endian value bytes, values >= 2^30
//
// Every value has exactly one encoding; the decoder rejects any byte
// sequence whose value would have fit a smaller band. This strictness is
// what makes the downstream content hashes stable: there is no way to
// smuggle an alternate byte form of the same integer past the decoder.
package codec

import "bytes"

// Writer accumulates an encoded byte sequence. The zero value is ready to
// use. Writers are single-goroutine; each call site owns its own.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the encoded sequence accumulated so far.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Compact writes v in the length-adaptive integer encoding.
func (w *Writer) Compact(v uint64) {
	switch {
	case v < 1<<6:
		w.buf.WriteByte(byte(v << 2))
	case v < 1<<14:
		x := uint16(v)<<2 | 0b01
		w.buf.WriteByte(byte(x))
		w.buf.WriteByte(byte(x >> 8))
	case v < 1<<30:
		x := uint32(v)<<2 | 0b10
		for i := 0; i < 4; i++ {
			w.buf.WriteByte(byte(x >> (8 * i)))
		}
	default:
		n := 4
		for tmp := v >> 32; tmp > 0; tmp >>= 8 {
			n++
		}
		w.buf.WriteByte(byte((n-4)<<2) | 0b11)
		for i := 0; i < n; i++ {
			w.buf.WriteByte(byte(v >> (8 * i)))
		}
	}
}

// Bool writes a boolean as a single 0x00/0x01 byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// Option writes the presence flag of an optional value. When present is
// true the caller writes the payload immediately after.
func (w *Writer) Option(present bool) {
	w.Bool(present)
}

// Blob writes b as a compact length prefix followed by the raw bytes.
func (w *Writer) Blob(b []byte) {
	w.Compact(uint64(len(b)))
	w.buf.Write(b)
}

// Str writes s as a length-prefixed byte string.
func (w *Writer) Str(s string) {
	w.Compact(uint64(len(s)))
	w.buf.WriteString(s)
}

// Raw writes b verbatim, with no length prefix.
func (w *Writer) Raw(b []byte) {
	w.buf.Write(b)
}
