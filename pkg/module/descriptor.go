package module

import (
	"fmt"
	"regexp"
	"time"
)

// namePattern is the spec §3 invariant: module names obey
// [a-z][a-z0-9-]*[a-z0-9].
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

// DefaultStopTimeout is used when a Descriptor does not set one.
const DefaultStopTimeout = 30 * time.Second

// Constructor builds a module's Instance. It must be cheap and
// side-effect-free beyond allocating the instance; real work happens in
// Init.
type Constructor func() (Instance, error)

// Descriptor is the static, immutable metadata one module contributes
// to the process-global inventory before main starts its work (spec
// §3 "Module Descriptor", design note on the declarative module
// attribute).
type Descriptor struct {
	Name         string
	Dependencies []string
	Capabilities Set
	New          Constructor
	StopTimeout  time.Duration
}

// Validate checks the static invariants a Descriptor must satisfy on
// its own, independent of the rest of the inventory (name shape,
// known capabilities, non-nil constructor). DAG-level validation
// (missing/cyclic dependencies) happens once the full inventory is
// known, in pkg/runtime.
func (d Descriptor) Validate() error {
	if !namePattern.MatchString(d.Name) {
		return fmt.Errorf("module: invalid name %q: must match %s", d.Name, namePattern.String())
	}

	if d.New == nil {
		return fmt.Errorf("module %q: constructor must not be nil", d.Name)
	}

	for _, cap := range d.Capabilities {
		if !cap.Valid() {
			return fmt.Errorf("module %q: unknown capability %q", d.Name, cap)
		}
	}

	for _, dep := range d.Dependencies {
		if dep == d.Name {
			return fmt.Errorf("module %q: cannot depend on itself", d.Name)
		}
	}

	return nil
}

// EffectiveStopTimeout returns StopTimeout, or DefaultStopTimeout if
// unset.
func (d Descriptor) EffectiveStopTimeout() time.Duration {
	if d.StopTimeout <= 0 {
		return DefaultStopTimeout
	}

	return d.StopTimeout
}
