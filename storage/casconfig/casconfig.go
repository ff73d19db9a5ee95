// Package casconfig opens composite trait stores from a JSON description,
// so deployments can pick backends at runtime instead of link time. Callers
// still need to link the backend plugins via blank imports.
package casconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fragnova/protos/storage"
	"github.com/fragnova/protos/storage/casregistry"
)

// Config describes an ordered set of storage backends and how writes are
// spread across them.
//
// WritePolicy values:
//   - "first" (default): write only to the first backend; reads fall back
//     in order
//   - "all": write blocks to every backend and require CID equality
//     (see storage.ReplicatingCAS)
//
// Ref bindings always go to the first backend that carries a ref index;
// lookups fall back across all of them.
//
// Example:
//
//	{
//	  "write_policy": "all",
//	  "backends": [
//	    {"name":"localfs", "config":{"localfs-dir":"/var/lib/traitstore"}},
//	    {"name":"grpc", "config":{"grpc-target":"replica:9090"}}
//	  ]
//	}
//
// Per-backend config keys mirror the backend's CLI flag names.
type Config struct {
	WritePolicy string          `json:"write_policy,omitempty"`
	Backends    []BackendConfig `json:"backends"`
}

type BackendConfig struct {
	// Name is the casregistry backend name to open (e.g. "grpc", "localfs", "memory").
	Name string `json:"name"`
	// ID is an optional stable alias used for identification and per-backend CID maps.
	// If empty, Name is used.
	ID     string            `json:"id,omitempty"`
	Config map[string]string `json:"config,omitempty"`
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("casconfig: empty config path")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("casconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("casconfig: backend name is required")
		}
		if _, ok := seen[b.id()]; ok {
			return fmt.Errorf("casconfig: duplicate backend id %q", b.id())
		}
		seen[b.id()] = struct{}{}
	}
	switch c.WritePolicy {
	case "", "first", "all":
		return nil
	default:
		return fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
}

// multiStore pairs a composite CAS with a composite ref index so the
// result still satisfies storage.Store when the backends do.
type multiStore struct {
	storage.CAS
	storage.RefIndex
}

// Open opens the configured backends and composes them.
//
// If preferredBackend is non-empty, backends are reordered so it comes
// first (and thus takes writes when WritePolicy=="first"). When at least
// one backend carries a ref index, the returned CAS also implements
// storage.RefIndex over those backends.
func (c Config) Open(usage casregistry.Usage, preferredBackend string) (storage.CAS, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	ordered := append([]BackendConfig(nil), c.Backends...)
	if preferredBackend != "" {
		idx := -1
		for i := range ordered {
			if ordered[i].Name == preferredBackend || ordered[i].ID == preferredBackend {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil, fmt.Errorf("casconfig: preferred backend %q not found in config", preferredBackend)
		}
		if idx != 0 {
			b := ordered[idx]
			copy(ordered[1:idx+1], ordered[0:idx])
			ordered[0] = b
		}
	}

	named := make([]storage.NamedCAS, 0, len(ordered))
	var indexes []storage.RefIndex
	closers := make([]func() error, 0, len(ordered))
	for _, b := range ordered {
		cas, closeFn, err := casregistry.OpenWithConfig(b.Name, usage, b.Config)
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
			return nil, nil, err
		}
		named = append(named, storage.NamedCAS{Name: b.id(), CAS: cas})
		if idx, ok := cas.(storage.RefIndex); ok {
			indexes = append(indexes, idx)
		}
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	blocks, err := c.composeBlocks(named)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	if _, ok := blocks.(storage.RefIndex); !ok && len(indexes) > 0 {
		return multiStore{CAS: blocks, RefIndex: storage.MultiRefIndex{Indexes: indexes}}, closeAll, nil
	}
	return blocks, closeAll, nil
}

func (c Config) composeBlocks(named []storage.NamedCAS) (storage.CAS, error) {
	if len(named) == 1 {
		return named[0].CAS, nil
	}
	switch c.WritePolicy {
	case "", "first":
		adapters := make([]storage.CAS, 0, len(named))
		for _, n := range named {
			adapters = append(adapters, n.CAS)
		}
		return storage.MultiCAS{Adapters: adapters}, nil
	case "all":
		return storage.ReplicatingCAS{Backends: named}, nil
	default:
		return nil, fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
}
