package storage

import (
	"errors"

	"github.com/ipfs/go-cid"

	"github.com/fragnova/protos/identity"
)

// MultiCAS provides deterministic, ordered fallback across multiple CAS adapters.
//
// Retrieval order is the slice order in Adapters; callers MUST supply a fixed order.
// This avoids map-iteration nondeterminism and makes the retrieval strategy explicit.
//
// Put is defined to write only to the first adapter.
type MultiCAS struct {
	Adapters []CAS
}

func (m MultiCAS) Put(bytes []byte) (cid.Cid, error) {
	if len(m.Adapters) == 0 {
		return cid.Undef, errors.New("storage: MultiCAS has no adapters")
	}
	return m.Adapters[0].Put(bytes)
}

func (m MultiCAS) Get(id cid.Cid) ([]byte, error) {
	for _, cas := range m.Adapters {
		b, err := cas.Get(id)
		if err == nil {
			return b, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (m MultiCAS) Has(id cid.Cid) bool {
	for _, cas := range m.Adapters {
		if cas.Has(id) {
			return true
		}
	}
	return false
}

// MultiRefIndex is the RefIndex counterpart of MultiCAS: lookups fall back
// in order, binds go to the first index only.
type MultiRefIndex struct {
	Indexes []RefIndex
}

func (m MultiRefIndex) Bind(ref identity.TraitRef, id cid.Cid) error {
	if len(m.Indexes) == 0 {
		return errors.New("storage: MultiRefIndex has no indexes")
	}
	return m.Indexes[0].Bind(ref, id)
}

func (m MultiRefIndex) Lookup(ref identity.TraitRef) (cid.Cid, error) {
	for _, idx := range m.Indexes {
		id, err := idx.Lookup(ref)
		if err == nil {
			return id, nil
		}
		if IsNotFound(err) {
			continue
		}
		return cid.Undef, err
	}
	return cid.Undef, ErrNotFound
}
