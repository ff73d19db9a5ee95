package casregistry

import (
	"flag"

	"github.com/fragnova/protos/storage"
)

// The in-memory backend has no configuration and no external dependency, so
// it registers here rather than in a package of its own.
func init() {
	MustRegister(Backend{
		Name:          "memory",
		Description:   "In-process trait store (volatile, for tests and dry runs)",
		Usage:         UsageCLI | UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {},
		Open: func() (storage.CAS, func() error, error) {
			return storage.NewMemory(), nil, nil
		},
	})
}
