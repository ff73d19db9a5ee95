package identity

import (
	"strings"
	"testing"
)

func TestRefOf_Deterministic(t *testing.T) {
	a := RefOf([]byte("trait bytes"))
	b := RefOf([]byte("trait bytes"))
	if a != b {
		t.Fatalf("same input produced different refs: %s vs %s", a, b)
	}
	c := RefOf([]byte("other bytes"))
	if a == c {
		t.Fatalf("different inputs produced the same ref: %s", a)
	}
}

func TestRef_StringParseRoundTrip(t *testing.T) {
	ref := RefOf([]byte("round trip"))
	s := ref.String()
	if len(s) != 2*RefSize {
		t.Fatalf("String length: got %d want %d", len(s), 2*RefSize)
	}
	back, err := ParseRef(s)
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	if back != ref {
		t.Fatalf("round trip mismatch: %s vs %s", back, ref)
	}
}

func TestParseRef_Rejects(t *testing.T) {
	if _, err := ParseRef("zz"); err == nil {
		t.Fatalf("expected error for non-hex input")
	}
	if _, err := ParseRef("0011"); err == nil {
		t.Fatalf("expected error for short input")
	}
	if _, err := ParseRef(strings.Repeat("00", RefSize+1)); err == nil {
		t.Fatalf("expected error for long input")
	}
}

func TestRef_IsZero(t *testing.T) {
	var zero TraitRef
	if !zero.IsZero() {
		t.Fatalf("zero value should report IsZero")
	}
	if RefOf([]byte("x")).IsZero() {
		t.Fatalf("computed ref should not be zero")
	}
}

func TestCIDOf_Deterministic(t *testing.T) {
	a, err := CIDOf([]byte("trait bytes"))
	if err != nil {
		t.Fatalf("CIDOf: %v", err)
	}
	b, err := CIDOf([]byte("trait bytes"))
	if err != nil {
		t.Fatalf("CIDOf: %v", err)
	}
	if a != b {
		t.Fatalf("same input produced different CIDs: %s vs %s", a, b)
	}
	c, err := CIDOf([]byte("other bytes"))
	if err != nil {
		t.Fatalf("CIDOf: %v", err)
	}
	if a == c {
		t.Fatalf("different inputs produced the same CID")
	}
	if got := CIDStringOf([]byte("trait bytes")); got != a.String() {
		t.Fatalf("CIDStringOf mismatch: %s vs %s", got, a)
	}
	// CIDv1 strings are base32 "b..." by default.
	if !strings.HasPrefix(a.String(), "b") {
		t.Fatalf("unexpected CID string form: %s", a)
	}
}
