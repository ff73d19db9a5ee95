// Package localfs is a local filesystem-backed trait store.
//
// Objects are stored immutably under blocks/, keyed strictly by CID, and
// trait references are bound under refs/. The store is offline and
// deterministic: it never uses the network and never depends on wall-clock
// time.
package localfs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/fragnova/protos/identity"
	"github.com/fragnova/protos/storage"
)

// Store keeps encoded traits and ref bindings under a root directory.
type Store struct {
	root string
}

var _ storage.Store = (*Store)(nil)

// New constructs a filesystem store rooted at root. The directory will be created if needed.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	for _, dir := range []string{root, filepath.Join(root, "blocks"), filepath.Join(root, "refs")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Store{root: root}, nil
}

func (s *Store) Put(bytes []byte) (cid.Cid, error) {
	id, err := identity.CIDOf(bytes)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, storage.ErrInvalidCID
	}

	path := s.blockPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}
	if err := writeOnce(path, bytes); err != nil {
		if errors.Is(err, errExists) {
			existing, rerr := s.Get(id)
			if rerr != nil {
				// The file exists but is unreadable or corrupted; treat as an
				// immutability violation.
				return cid.Undef, storage.ErrImmutable
			}
			if string(existing) != string(bytes) {
				return cid.Undef, storage.ErrImmutable
			}
			return id, nil
		}
		return cid.Undef, err
	}
	return id, nil
}

func (s *Store) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(s.blockPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	got, err := identity.CIDOf(b)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (s *Store) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(s.blockPath(id))
	return err == nil
}

func (s *Store) Bind(ref identity.TraitRef, id cid.Cid) error {
	if !id.Defined() {
		return storage.ErrInvalidCID
	}
	path := s.refPath(ref)
	if err := writeOnce(path, []byte(id.String()+"\n")); err != nil {
		if errors.Is(err, errExists) {
			existing, rerr := s.Lookup(ref)
			if rerr != nil {
				return storage.ErrImmutable
			}
			if existing != id {
				return storage.ErrImmutable
			}
			return nil
		}
		return err
	}
	return nil
}

func (s *Store) Lookup(ref identity.TraitRef) (cid.Cid, error) {
	b, err := os.ReadFile(s.refPath(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return cid.Undef, storage.ErrNotFound
		}
		return cid.Undef, err
	}
	id, err := cid.Decode(strings.TrimSpace(string(b)))
	if err != nil {
		return cid.Undef, storage.ErrInvalidCID
	}
	return id, nil
}

func (s *Store) blockPath(id cid.Cid) string {
	name := id.String()
	if len(name) < 2 {
		return filepath.Join(s.root, "blocks", name)
	}
	return filepath.Join(s.root, "blocks", name[:2], name)
}

func (s *Store) refPath(ref identity.TraitRef) string {
	return filepath.Join(s.root, "refs", ref.String())
}

var errExists = errors.New("localfs: exists")

// writeOnce creates path with O_EXCL so a stored object can never be
// overwritten, and never leaves a partial file behind on error.
func writeOnce(path string, bytes []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			return errExists
		}
		return err
	}
	if _, err := f.Write(bytes); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
