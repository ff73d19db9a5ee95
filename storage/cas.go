// Package storage defines the content-addressed stores traits live in and
// the reference index that maps on-ledger trait refs to storage CIDs.
package storage

import (
	"github.com/ipfs/go-cid"

	"github.com/fragnova/protos/identity"
)

// CAS is a minimal content-addressable storage interface.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written (callers are responsible for supplying canonical bytes).
// - Get MUST return ErrNotFound when the CID is absent.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// RefIndex maps 8-byte trait references to the CID of the canonical bytes
// they were derived from.
//
// Contract:
// - A ref binds to exactly one CID for its lifetime; Bind with a different
//   CID for an existing ref MUST return ErrImmutable.
// - Bind with the already-bound CID MUST succeed (idempotent).
// - Lookup MUST return ErrNotFound for unbound refs.
type RefIndex interface {
	Bind(ref identity.TraitRef, id cid.Cid) error
	Lookup(ref identity.TraitRef) (cid.Cid, error)
}

// Store combines a CAS with a ref index over the same backing medium.
type Store interface {
	CAS
	RefIndex
}
