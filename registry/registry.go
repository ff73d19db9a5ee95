// Package registry is the choke point between trait declarations and
// storage: everything that goes in is canonicalized and encoded, and
// everything that comes out is verified to be canonical bytes before a
// caller sees it.
package registry

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/fragnova/protos/identity"
	"github.com/fragnova/protos/storage"
	"github.com/fragnova/protos/traits"
)

// ErrNotCanonical marks trait bytes or declarations that differ from their
// canonical form. On the resolve path it means the store holds bytes that
// could never have produced their own identifier.
var ErrNotCanonical = errors.New("registry: trait is not in canonical form")

// Mode selects how Publish treats declarations that are not yet canonical.
type Mode int

const (
	// Permissive canonicalizes declarations on the way in. This is the mode
	// authoring tools want: writers hand over declarations as written.
	Permissive Mode = iota
	// Strict rejects declarations whose records are not already in
	// canonical form, for callers relaying traits that claim to be final.
	Strict
)

// Options configures a Registry.
type Options struct {
	Mode Mode
}

// Registry publishes and resolves traits against a CAS and a ref index.
type Registry struct {
	cas  storage.CAS
	refs storage.RefIndex
	mode Mode
}

// New builds a Registry over the given CAS and ref index.
func New(cas storage.CAS, refs storage.RefIndex, opts Options) (*Registry, error) {
	if cas == nil {
		return nil, errors.New("registry: nil CAS")
	}
	if refs == nil {
		return nil, errors.New("registry: nil ref index")
	}
	return &Registry{cas: cas, refs: refs, mode: opts.Mode}, nil
}

// NewFromStore builds a Registry over a combined Store.
func NewFromStore(s storage.Store, opts Options) (*Registry, error) {
	return New(s, s, opts)
}

// Publish canonicalizes and encodes t, stores the canonical bytes, and
// binds the trait's ref to the resulting CID. It returns both identifiers.
//
// In Strict mode a declaration whose records are not already canonical is
// rejected with ErrNotCanonical instead of being rewritten.
func (r *Registry) Publish(t traits.Trait) (identity.TraitRef, cid.Cid, error) {
	canonical, err := t.EncodeCanonical()
	if err != nil {
		return identity.TraitRef{}, cid.Undef, err
	}
	if r.mode == Strict {
		asGiven, err := t.Encode()
		if err != nil {
			return identity.TraitRef{}, cid.Undef, err
		}
		if string(asGiven) != string(canonical) {
			return identity.TraitRef{}, cid.Undef, ErrNotCanonical
		}
	}

	id, err := r.cas.Put(canonical)
	if err != nil {
		return identity.TraitRef{}, cid.Undef, err
	}
	ref := identity.RefOf(canonical)
	if err := r.refs.Bind(ref, id); err != nil {
		return identity.TraitRef{}, cid.Undef, err
	}
	return ref, id, nil
}

// Resolve fetches and decodes the trait stored under id.
//
// The decoded trait is re-canonicalized and re-encoded; if that does not
// reproduce the stored bytes exactly, the object is rejected with
// ErrNotCanonical. Storage is not trusted to hold only canonical bytes.
func (r *Registry) Resolve(id cid.Cid) (traits.Trait, error) {
	b, err := r.cas.Get(id)
	if err != nil {
		return traits.Trait{}, err
	}
	return decodeCanonical(b)
}

// ResolveRef looks up ref in the index and resolves the trait behind it,
// verifying that the bytes actually hash to ref.
func (r *Registry) ResolveRef(ref identity.TraitRef) (traits.Trait, error) {
	id, err := r.refs.Lookup(ref)
	if err != nil {
		return traits.Trait{}, err
	}
	b, err := r.cas.Get(id)
	if err != nil {
		return traits.Trait{}, err
	}
	if identity.RefOf(b) != ref {
		return traits.Trait{}, fmt.Errorf("registry: ref %s bound to foreign bytes: %w", ref, ErrNotCanonical)
	}
	return decodeCanonical(b)
}

func decodeCanonical(b []byte) (traits.Trait, error) {
	t, err := traits.Decode(b)
	if err != nil {
		return traits.Trait{}, err
	}
	again, err := t.EncodeCanonical()
	if err != nil {
		return traits.Trait{}, err
	}
	if string(again) != string(b) {
		return traits.Trait{}, ErrNotCanonical
	}
	return t, nil
}
