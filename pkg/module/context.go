package module

import (
	"github.com/bxcodec/dbresolver/v2"
	"github.com/google/uuid"
	"github.com/modkit-dev/modkit/pkg/clienthub"
	"github.com/modkit-dev/modkit/pkg/mlog"
)

// Context is passed to a module's Init and, for stateful modules, to
// Start. It is the module's only window onto the framework (spec §3
// "Module Context").
type Context struct {
	// ModuleName is this module's own kebab-case name, for logging and
	// Problem code construction.
	ModuleName string

	// DB is the shared, read/write-split connection pool. It is
	// intentionally not a query-capable handle on its own: modules wrap
	// it in their own secureorm.SecureConn per request. Nil for modules
	// that did not declare CapabilityDatabase. The privileged connection
	// migrations run under is never stored here (spec §4.4).
	DB dbresolver.DB

	// Hub is the typed client hub, usable for registration during Init
	// and for resolution at any point afterward.
	Hub *clienthub.Hub

	// Cancel is the process-wide shutdown token.
	Cancel *CancelToken

	// InstanceID is generated once at process startup and shared by
	// every module's Context.
	InstanceID uuid.UUID

	// Logger is pre-tagged with this module's name.
	Logger mlog.Logger

	// ReportHealth pushes a Health update to the runtime, read back by
	// the gateway health endpoint. Wired by the runtime before Init
	// runs; nil in tests that construct a bare Context, in which case
	// SafeGo still recovers and logs but has nothing to push to.
	ReportHealth func(Health)
}

// Health summarizes a module's runtime health, surfaced by the gateway
// health endpoint (SPEC_FULL.md §C.1).
type Health struct {
	Status HealthStatus
	Reason string
}

// HealthStatus is the coarse health classification a module reports.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// Healthy is the default Health value.
var Healthy = Health{Status: HealthHealthy}
