// Package identity derives the stable identifiers of an encoded trait.
//
// A trait has two identifiers, both computed over its canonical encoding:
//
//   - TraitRef: the 8-byte non-cryptographic reference used on-ledger and
//     inside other traits' type trees. xxhash64 with seed 0 (the same
//     function Substrate calls twox64).
//   - a CIDv1 (raw codec, blake2b-256 multihash), used to key traits in
//     content-addressed storage.
//
// Neither identifier is ever computed over the textual interchange form;
// callers must pass canonical encoded bytes.
package identity

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/blake2b"
)

// RefSize is the width of an on-ledger trait reference in bytes.
const RefSize = 8

// TraitRef is the 8-byte content hash by which traits reference each other.
type TraitRef [RefSize]byte

// RefOf returns the trait reference for a canonical encoding.
func RefOf(encoded []byte) TraitRef {
	var ref TraitRef
	binary.LittleEndian.PutUint64(ref[:], xxhash.Sum64(encoded))
	return ref
}

// String returns the reference as 16 lowercase hex characters.
func (r TraitRef) String() string {
	return hex.EncodeToString(r[:])
}

// IsZero reports whether the reference is all zero bytes.
func (r TraitRef) IsZero() bool {
	return r == TraitRef{}
}

// ParseRef parses the 16-hex-character form produced by String.
func ParseRef(s string) (TraitRef, error) {
	var ref TraitRef
	b, err := hex.DecodeString(s)
	if err != nil {
		return ref, fmt.Errorf("identity: invalid trait ref %q: %w", s, err)
	}
	if len(b) != RefSize {
		return ref, fmt.Errorf("identity: trait ref must be %d bytes, got %d", RefSize, len(b))
	}
	copy(ref[:], b)
	return ref, nil
}

// CIDOf returns a CIDv1 (raw codec, blake2b-256 multihash) for a trait's
// canonical encoding.
func CIDOf(encoded []byte) (cid.Cid, error) {
	sum := blake2b.Sum256(encoded)
	mh, err := multihash.Encode(sum[:], multihash.BLAKE2B_MIN+31)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// CIDStringOf is CIDOf rendered as a string, or "" on failure.
// multihash.Encode only fails for unknown codes, so the failure path is
// effectively unreachable with the pinned blake2b-256 code.
func CIDStringOf(encoded []byte) string {
	id, err := CIDOf(encoded)
	if err != nil {
		return ""
	}
	return id.String()
}
