// Package testkit holds conformance suites shared by every store backend.
package testkit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"

	"github.com/fragnova/protos/identity"
	"github.com/fragnova/protos/storage"
)

// NewCAS constructs a fresh, empty CAS instance for a test.
// The returned CAS MUST be isolated from other tests.
type NewCAS func(t *testing.T) storage.CAS

// NewStore constructs a fresh, empty Store instance for a test.
type NewStore func(t *testing.T) storage.Store

func mustCID(t *testing.T, b []byte) cid.Cid {
	t.Helper()
	id, err := identity.CIDOf(b)
	if err != nil {
		t.Fatalf("CIDOf failed: %v", err)
	}
	return id
}

// RunCASConformance exercises the storage.CAS contract against a backend.
func RunCASConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		cas := newCAS(t)
		want := []byte("canonical trait bytes")

		id, err := cas.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if wantID := mustCID(t, want); id != wantID {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := cas.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
		if gotID := mustCID(t, got); gotID != id {
			t.Fatalf("Get returned bytes not matching requested CID")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("same bytes")

		id1, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("missing")
		id := mustCID(t, b)

		if cas.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		if _, err := cas.Get(id); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := cas.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !cas.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		cas := newCAS(t)
		var undef cid.Cid
		if cas.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := cas.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})
}

// RunStoreConformance exercises the full storage.Store contract, including
// the ref index, against a backend.
func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	RunCASConformance(t, func(t *testing.T) storage.CAS { return newStore(t) })

	t.Run("BindLookup", func(t *testing.T) {
		s := newStore(t)
		b := []byte("a published trait")
		id, err := s.Put(b)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		ref := identity.RefOf(b)

		if _, err := s.Lookup(ref); !storage.IsNotFound(err) {
			t.Fatalf("Lookup unbound: got err=%v want ErrNotFound", err)
		}
		if err := s.Bind(ref, id); err != nil {
			t.Fatalf("Bind failed: %v", err)
		}
		got, err := s.Lookup(ref)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if got != id {
			t.Fatalf("Lookup CID mismatch: got %s want %s", got, id)
		}
	})

	t.Run("BindIdempotentAndImmutable", func(t *testing.T) {
		s := newStore(t)
		b := []byte("bound once")
		id, err := s.Put(b)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		ref := identity.RefOf(b)

		if err := s.Bind(ref, id); err != nil {
			t.Fatalf("Bind(1) failed: %v", err)
		}
		if err := s.Bind(ref, id); err != nil {
			t.Fatalf("Bind(2) not idempotent: %v", err)
		}

		other, err := s.Put([]byte("different bytes"))
		if err != nil {
			t.Fatalf("Put(other) failed: %v", err)
		}
		if err := s.Bind(ref, other); !errors.Is(err, storage.ErrImmutable) {
			t.Fatalf("rebinding to a different CID: got err=%v want ErrImmutable", err)
		}
	})
}
