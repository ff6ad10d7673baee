package module

// Capability is a declared facet of a module that the runtime
// dispatches on during the lifecycle phases of spec §4.1.
type Capability string

const (
	CapabilityDatabase Capability = "database"
	CapabilityREST     Capability = "rest"
	// CapabilityGRPC is accepted and validated like any other
	// capability, but the core runtime has no gRPC collection phase —
	// synchronous cross-process RPC is explicitly out of the core's
	// scope (spec §1 Non-goals). A module declaring it is expected to
	// register its server itself from Init, or from an out-of-process
	// variant of the runtime.
	CapabilityGRPC     Capability = "grpc"
	CapabilityStateful Capability = "stateful"
)

// Valid reports whether c is one of the capabilities the runtime
// knows how to validate. An unknown declared capability is a fatal
// configuration error (spec §4.1 "Dependency resolution").
func (c Capability) Valid() bool {
	switch c {
	case CapabilityDatabase, CapabilityREST, CapabilityGRPC, CapabilityStateful:
		return true
	default:
		return false
	}
}

// Set is a small helper over a capability list.
type Set []Capability

// Has reports whether the set declares c.
func (s Set) Has(c Capability) bool {
	for _, have := range s {
		if have == c {
			return true
		}
	}

	return false
}
