package storage

import (
	"bytes"
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/fragnova/protos/identity"
)

// Memory is an in-process Store. It is safe for concurrent use and keeps
// everything in maps; it exists for tests, the CLI's dry runs, and as the
// zero-setup backend of the daemon.
type Memory struct {
	mu      sync.RWMutex
	objects map[cid.Cid][]byte
	refs    map[identity.TraitRef]cid.Cid
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[cid.Cid][]byte),
		refs:    make(map[identity.TraitRef]cid.Cid),
	}
}

func (m *Memory) Put(b []byte) (cid.Cid, error) {
	id, err := identity.CIDOf(b)
	if err != nil {
		return cid.Undef, err
	}
	cp := make([]byte, len(b))
	copy(cp, b)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.objects[id]; ok {
		if !bytes.Equal(existing, cp) {
			return cid.Undef, ErrImmutable
		}
		return id, nil
	}
	m.objects[id] = cp
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	b, ok := m.objects[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

func (m *Memory) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	_, ok := m.objects[id]
	m.mu.RUnlock()
	return ok
}

func (m *Memory) Bind(ref identity.TraitRef, id cid.Cid) error {
	if !id.Defined() {
		return ErrInvalidCID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.refs[ref]; ok {
		if existing != id {
			return ErrImmutable
		}
		return nil
	}
	m.refs[ref] = id
	return nil
}

func (m *Memory) Lookup(ref identity.TraitRef) (cid.Cid, error) {
	m.mu.RLock()
	id, ok := m.refs[ref]
	m.mu.RUnlock()
	if !ok {
		return cid.Undef, ErrNotFound
	}
	return id, nil
}
