package module

import (
	"fmt"
	"sync"
)

// registry is the process-global module inventory. Modules contribute
// to it from an init() function in their own package — the Go-native
// equivalent of the source's link-time inventory (design notes,
// "declarative module attribute"). The runtime never mutates it; it
// only calls Snapshot once at startup.
var (
	registryMu sync.Mutex
	registry   []Descriptor
)

// MustRegister validates d and appends it to the process-global
// inventory, or panics. It is meant to be called from package-level
// init() functions, where a panic is the only sane failure mode — by
// definition there is no running program yet to report an error to.
func MustRegister(d Descriptor) {
	if err := d.Validate(); err != nil {
		panic(fmt.Sprintf("module: MustRegister: %v", err))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	for _, existing := range registry {
		if existing.Name == d.Name {
			panic(fmt.Sprintf("module: MustRegister: %q already registered", d.Name))
		}
	}

	registry = append(registry, d)
}

// Snapshot returns a copy of the current inventory. The runtime calls
// this exactly once at startup (spec §4.1 "Discovery").
func Snapshot() []Descriptor {
	registryMu.Lock()
	defer registryMu.Unlock()

	out := make([]Descriptor, len(registry))
	copy(out, registry)

	return out
}

// resetForTest clears the registry. Only exported within the package
// for use by registry_test.go — the package's tests share one process
// and this package-level registry, so each test clears it first to
// avoid leaking state between them.
func resetForTest() {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry = nil
}
