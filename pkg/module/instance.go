package module

import (
	"github.com/gofiber/fiber/v2"
	"github.com/modkit-dev/modkit/pkg/openapi"
)

// Instance is the value returned by a module's constructor thunk.
// Capabilities are detected structurally: the runtime type-asserts the
// instance against the interfaces below rather than requiring a single
// fat interface, so a module only implements what it declares.
type Instance any

// Initializable is implemented by every module; Init runs in
// dependency order during phase 4 (spec §4.1).
type Initializable interface {
	Init(ctx *Context) error
}

// Migration is one module-owned schema migration, run by the runtime
// under a privileged connection the module never sees (spec §4.4).
type Migration struct {
	Version string
	Up      string
	Down    string
}

// DatabaseCapable is implemented by modules declaring
// CapabilityDatabase.
type DatabaseCapable interface {
	Migrations() []Migration
}

// RESTCapable is implemented by modules declaring CapabilityREST. It is
// called once, strictly after every module's Init has succeeded, in
// dependency order (spec §4.1 phase 5, §5 ordering guarantees).
type RESTCapable interface {
	RegisterREST(ctx *Context, router fiber.Router, registry *openapi.Registry) error
}

// StatefulCapable is implemented by modules declaring
// CapabilityStateful. Start should spawn its background work and
// return promptly; long-running work must select on ctx.Cancel.Done().
type StatefulCapable interface {
	Start(ctx *Context) error
}

// HealthReporter is an optional interface any module instance may
// implement regardless of its declared Capability set (SPEC_FULL.md
// §C.1). The runtime does not call it: Runtime.Health reports what each
// module last pushed through Context.ReportHealth, and Healthy for a
// module that has pushed nothing.
type HealthReporter interface {
	Health() Health
}

// Stoppable is implemented by stateful modules that own resources
// needing an explicit join on shutdown (spec §4.1 phase 8). Stop must
// return once ctx.Cancel has fired and the module's own work has
// wound down, or once the module's StopTimeout elapses, whichever
// comes first — the runtime enforces the timeout. Stop takes no
// argument; it observes cancellation through the module Context's
// Cancel token.
type Stoppable interface {
	Stop() error
}
