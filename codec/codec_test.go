package codec

import (
	"bytes"
	"encoding/hex"
	"math"
	"testing"
)

func encodeCompact(v uint64) []byte {
	var w Writer
	w.Compact(v)
	return w.Bytes()
}

func TestCompact_Vectors(t *testing.T) {
	cases := []struct {
		v    uint64
		want string
	}{
		{0, "00"},
		{1, "04"},
		{42, "a8"},
		{63, "fc"},
		{64, "0101"},
		{255, "fd03"},
		{511, "fd07"},
		{16383, "fdff"},
		{16384, "02000100"},
		{65535, "feff0300"},
		{1<<30 - 1, "feffffff"},
		{1 << 30, "0300000040"},
		{1<<32 - 1, "03ffffffff"},
		{1 << 32, "070000000001"},
		{1 << 40, "0b000000000001"},
		{1 << 48, "0f00000000000001"},
		{1 << 56, "130000000000000001"},
		{math.MaxUint64, "13ffffffffffffffff"},
	}
	for _, tc := range cases {
		got := hex.EncodeToString(encodeCompact(tc.v))
		if got != tc.want {
			t.Fatalf("Compact(%d): got %s want %s", tc.v, got, tc.want)
		}
	}
}

func TestCompact_RoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 2, 63, 64, 65, 16383, 16384, 16385,
		1<<30 - 1, 1 << 30, 1<<32 - 1, 1 << 32,
		1<<40 - 1, 1 << 40, 1<<48 - 1, 1 << 48, 1<<56 - 1, 1 << 56,
		math.MaxUint64 - 1, math.MaxUint64,
	}
	for _, v := range values {
		enc := encodeCompact(v)
		r := NewReader(enc)
		got, err := r.Compact()
		if err != nil {
			t.Fatalf("decode Compact(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d: got %d", v, got)
		}
		if r.Remaining() != 0 {
			t.Fatalf("Compact(%d): %d trailing bytes", v, r.Remaining())
		}
	}
}

func TestCompact_RejectsNonCanonical(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"two-byte band, value 0", "0100"},
		{"two-byte band, value 63", "fd00"},
		{"four-byte band, value 0", "02000000"},
		{"four-byte band, value 16383", "feff0000"},
		{"big band n=4, value 0", "0300000000"},
		{"big band n=4, four-byte-band value", "03ffffff3f"},
		{"big band n=5, zero high byte", "07ffffffff00"},
		{"big band n=8, zero high byte", "13ffffffffffffff00"},
		{"big band declaring 9 bytes", "17ffffffffffffffffff"},
	}
	for _, tc := range cases {
		in, err := hex.DecodeString(tc.in)
		if err != nil {
			t.Fatalf("%s: bad hex: %v", tc.name, err)
		}
		_, err = NewReader(in).Compact()
		if !IsKind(err, KindInvalidInteger) {
			t.Fatalf("%s: got err=%v want InvalidInteger", tc.name, err)
		}
	}
}

func TestCompact_Truncated(t *testing.T) {
	for _, v := range []uint64{64, 16384, 1 << 30, 1 << 32, math.MaxUint64} {
		enc := encodeCompact(v)
		for cut := 0; cut < len(enc); cut++ {
			_, err := NewReader(enc[:cut]).Compact()
			if !IsKind(err, KindUnexpectedEOF) {
				t.Fatalf("Compact(%d) cut to %d bytes: got err=%v want UnexpectedEof", v, cut, err)
			}
		}
	}
}

func TestCompact32_RejectsWideValues(t *testing.T) {
	_, err := NewReader(encodeCompact(uint64(math.MaxUint32) + 1)).Compact32()
	if !IsKind(err, KindInvalidInteger) {
		t.Fatalf("got err=%v want InvalidInteger", err)
	}
	v, err := NewReader(encodeCompact(math.MaxUint32)).Compact32()
	if err != nil || v != math.MaxUint32 {
		t.Fatalf("got v=%d err=%v", v, err)
	}
}

func TestBlob_RoundTrip(t *testing.T) {
	var w Writer
	w.Blob([]byte("hello"))
	w.Blob(nil)
	w.Str("trait")

	r := NewReader(w.Bytes())
	b, err := r.Blob()
	if err != nil || !bytes.Equal(b, []byte("hello")) {
		t.Fatalf("Blob: got %q err=%v", b, err)
	}
	b, err = r.Blob()
	if err != nil || len(b) != 0 {
		t.Fatalf("empty Blob: got %q err=%v", b, err)
	}
	s, err := r.Str()
	if err != nil || s != "trait" {
		t.Fatalf("Str: got %q err=%v", s, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("trailing bytes: %d", r.Remaining())
	}
}

func TestBlob_LengthBeyondInput(t *testing.T) {
	// Declares 100 bytes, provides 2.
	in := append(encodeCompact(100), 0xAA, 0xBB)
	_, err := NewReader(in).Blob()
	if !IsKind(err, KindUnexpectedEOF) {
		t.Fatalf("got err=%v want UnexpectedEof", err)
	}
}

func TestBoolAndOption(t *testing.T) {
	var w Writer
	w.Bool(true)
	w.Bool(false)
	w.Option(true)
	w.Option(false)

	r := NewReader(w.Bytes())
	for i, want := range []bool{true, false, true, false} {
		got, err := r.Bool()
		if err != nil || got != want {
			t.Fatalf("read %d: got %v err=%v", i, got, err)
		}
	}

	_, err := NewReader([]byte{2}).Bool()
	if !IsKind(err, KindUnknownVariant) {
		t.Fatalf("bool byte 2: got err=%v want UnknownVariant", err)
	}
	_, err = NewReader([]byte{0xFF}).Option()
	if !IsKind(err, KindUnknownVariant) {
		t.Fatalf("option byte 0xFF: got err=%v want UnknownVariant", err)
	}
	_, err = NewReader(nil).Option()
	if !IsKind(err, KindUnexpectedEOF) {
		t.Fatalf("empty option: got err=%v want UnexpectedEof", err)
	}
}

func TestError_ReportsOffset(t *testing.T) {
	// Valid compact 0, then a non-canonical two-byte integer at offset 1.
	in := []byte{0x00, 0x01, 0x00}
	r := NewReader(in)
	if _, err := r.Compact(); err != nil {
		t.Fatalf("first Compact: %v", err)
	}
	_, err := r.Compact()
	var e *Error
	if !IsKind(err, KindInvalidInteger) {
		t.Fatalf("got err=%v want InvalidInteger", err)
	}
	if ok := errorsAs(err, &e); !ok || e.Offset != 1 {
		t.Fatalf("got offset=%v want 1", e)
	}
}

func errorsAs(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
