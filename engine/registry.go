package engine

import (
	"fmt"
	"sync"

	"mantiskv/option"
	"mantiskv/status"
)

// Factory constructs an Engine instance from a consumed Options bag.
// Concrete engine packages register a Factory at init() time, the same
// self-registration pattern database/sql-style driver packages use (see
// DESIGN.md) — the registry itself is the one piece of process-wide
// mutable global state this library keeps, alongside the per-handle
// diagnostic slot in status.DiagSlot.
type Factory func(opts *option.Options) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register installs factory under name. Calling Register twice for the
// same name is a programming error and panics, matching Go's own
// database/sql.Register convention for process-wide driver registries.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("engine: Register called twice for engine %q", name))
	}
	registry[name] = factory
}

// Open looks up name in the registry and constructs an engine from opts.
// Returns status.WrongEngineName if no factory is registered under name.
func Open(name string, opts *option.Options) (Engine, error) {
	registryMu.RLock()
	factory, exists := registry[name]
	registryMu.RUnlock()

	if !exists {
		return nil, status.New(status.WrongEngineName, "open", "unknown engine %q", name)
	}
	return factory(opts)
}

// Names returns the currently registered engine names, for diagnostics
// and the CLI's "list engines" command.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
