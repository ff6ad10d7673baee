// Package runtime drives the module lifecycle state machine: discovery
// from the process-global inventory, dependency-ordered construction
// and initialization, migration, REST collection, background-task
// start, and fault-isolated shutdown (spec §4.1).
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bxcodec/dbresolver/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/modkit-dev/modkit/pkg/clienthub"
	"github.com/modkit-dev/modkit/pkg/mlog"
	"github.com/modkit-dev/modkit/pkg/module"
	"github.com/modkit-dev/modkit/pkg/openapi"
)

// State is a module's position in the spec §4.1 state machine:
// Registered -> Constructed -> Initialized -> Running -> Stopping ->
// Stopped. Transitions are monotonic.
type State string

const (
	StateRegistered  State = "registered"
	StateConstructed State = "constructed"
	StateInitialized State = "initialized"
	StateRunning     State = "running"
	StateStopping    State = "stopping"
	StateStopped     State = "stopped"
)

// Migrator runs a module's migrations under a privileged connection
// the module itself never sees (spec §4.4).
type Migrator func(ctx context.Context, moduleName string, migrations []module.Migration) error

// Deps are the collaborators the Runtime needs but does not own —
// ownership (the DB pool, the fiber app, the OpenAPI document) lives
// with the composition root (cmd/modkitd) and the gateway.
type Deps struct {
	Logger     mlog.Logger
	DB         dbresolver.DB
	Hub        *clienthub.Hub
	Router     fiber.Router
	OpenAPI    *openapi.Registry
	InstanceID uuid.UUID
	Migrate    Migrator
}

// Runtime owns the per-module state machine and drives it through the
// lifecycle phases in dependency order.
type Runtime struct {
	deps   Deps
	cancel *module.CancelToken

	mu        sync.RWMutex
	ordered   []module.Descriptor
	states    map[string]State
	instances map[string]module.Instance
	contexts  map[string]*module.Context
	health    map[string]module.Health
}

// New builds a Runtime over descs, already validated individually by
// module.Descriptor.Validate (done at registration time). New itself
// performs the DAG-level validation (missing deps, cycles) and returns
// its error.
func New(deps Deps, descs []module.Descriptor) (*Runtime, error) {
	ordered, err := order(descs)
	if err != nil {
		return nil, err
	}

	r := &Runtime{
		deps:      deps,
		cancel:    module.NewCancelToken(),
		ordered:   ordered,
		states:    make(map[string]State, len(ordered)),
		instances: make(map[string]module.Instance, len(ordered)),
		contexts:  make(map[string]*module.Context, len(ordered)),
		health:    make(map[string]module.Health, len(ordered)),
	}

	for _, d := range ordered {
		r.states[d.Name] = StateRegistered
	}

	return r, nil
}

// Cancel returns the process-wide shutdown token shared with every
// stateful module.
func (r *Runtime) Cancel() *module.CancelToken {
	return r.cancel
}

// Health returns a snapshot of the health each module last pushed
// through its Context.ReportHealth; a constructed module that has
// pushed nothing is module.Healthy. module.HealthReporter
// implementations are not consulted.
func (r *Runtime) Health() map[string]module.Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]module.Health, len(r.health))
	for k, v := range r.health {
		out[k] = v
	}

	return out
}

func (r *Runtime) setState(name string, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[name] = s
}

// Start runs phases 1-6 of the lifecycle (Construct, Config bind, DB
// migrate, Init, REST collect, Start) in dependency order. A failure
// at any phase aborts startup — there is no partial-ready state (spec
// §4.1 "Failure semantics").
func (r *Runtime) Start(ctx context.Context) error {
	logger := r.deps.Logger
	if logger == nil {
		logger = mlog.Nop()
	}

	// Phase 1 (Construct) + phase 2 (Config bind): cheap, order-independent,
	// but walked in dependency order anyway so a later module's
	// constructor failure is reported before any module has been
	// initialized.
	for _, d := range r.ordered {
		inst, err := d.New()
		if err != nil {
			return fmt.Errorf("runtime: construct %q: %w", d.Name, err)
		}
		r.instances[d.Name] = inst
		r.setState(d.Name, StateConstructed)
		r.health[d.Name] = module.Healthy

		name := d.Name
		r.contexts[name] = &module.Context{
			ModuleName: name,
			DB:         r.deps.DB,
			Hub:        r.deps.Hub,
			Cancel:     r.cancel,
			InstanceID: r.deps.InstanceID,
			Logger:     logger.WithFields("module", name),
			ReportHealth: func(h module.Health) {
				r.mu.Lock()
				r.health[name] = h
				r.mu.Unlock()
			},
		}
	}

	// Phase 3 (DB migrate): every database-capable module's migrations
	// run before any module's Init, under the runtime's privileged
	// connection.
	for _, d := range r.ordered {
		if !d.Capabilities.Has(module.CapabilityDatabase) {
			continue
		}
		dbInst, ok := r.instances[d.Name].(module.DatabaseCapable)
		if !ok || r.deps.Migrate == nil {
			continue
		}
		if err := r.deps.Migrate(ctx, d.Name, dbInst.Migrations()); err != nil {
			return fmt.Errorf("runtime: migrate %q: %w", d.Name, err)
		}
	}

	// Phase 4 (Init): strictly dependency-ordered, one module at a time.
	for _, d := range r.ordered {
		inst := r.instances[d.Name]
		mctx := r.contexts[d.Name]

		if initable, ok := inst.(module.Initializable); ok {
			err := guardCall(mctx.Logger, d.Name, "init", func() error { return initable.Init(mctx) })
			if err != nil {
				return fmt.Errorf("runtime: init %q: %w", d.Name, err)
			}
		}
		r.setState(d.Name, StateInitialized)
	}

	// Phase 5 (REST collect).
	for _, d := range r.ordered {
		inst := r.instances[d.Name]

		if d.Capabilities.Has(module.CapabilityREST) {
			if restInst, ok := inst.(module.RESTCapable); ok {
				if r.deps.Router == nil || r.deps.OpenAPI == nil {
					return fmt.Errorf("runtime: module %q declares rest capability but no router/openapi registry was supplied", d.Name)
				}
				mctx := r.contexts[d.Name]
				err := guardCall(mctx.Logger, d.Name, "register_rest", func() error {
					return restInst.RegisterREST(mctx, r.deps.Router, r.deps.OpenAPI)
				})
				if err != nil {
					return fmt.Errorf("runtime: register rest %q: %w", d.Name, err)
				}
			}
		}
	}

	// Phase 6 (Start): background tasks are spawned in dependency order
	// too, so a dependency's task is already running before its
	// dependents' tasks begin.
	for _, d := range r.ordered {
		inst := r.instances[d.Name]

		if d.Capabilities.Has(module.CapabilityStateful) {
			if statefulInst, ok := inst.(module.StatefulCapable); ok {
				mctx := r.contexts[d.Name]

				err := guardCall(mctx.Logger, d.Name, "start", func() error {
					return statefulInst.Start(mctx)
				})
				if err != nil {
					return fmt.Errorf("runtime: start %q: %w", d.Name, err)
				}
			}
		}
		r.setState(d.Name, StateRunning)
	}

	return nil
}

// Shutdown trips the cancellation token and joins every module in
// reverse init order, each bounded by its own stop_timeout; modules
// unresponsive past their timeout are abandoned and logged, not waited
// on further (spec §4.1 phase 8).
func (r *Runtime) Shutdown(ctx context.Context, reason error) error {
	r.cancel.Cancel(reason)

	var joined error

	for i := len(r.ordered) - 1; i >= 0; i-- {
		d := r.ordered[i]
		r.setState(d.Name, StateStopping)

		inst := r.instances[d.Name]
		stoppable, ok := inst.(module.Stoppable)
		if !ok {
			r.setState(d.Name, StateStopped)
			continue
		}

		mctx := r.contexts[d.Name]
		done := make(chan error, 1)
		go func() {
			done <- guardCall(mctx.Logger, d.Name, "stop", stoppable.Stop)
		}()

		select {
		case err := <-done:
			if err != nil {
				joined = multierr.Append(joined, fmt.Errorf("runtime: stop %q: %w", d.Name, err))
			}
		case <-time.After(d.EffectiveStopTimeout()):
			logger := r.deps.Logger
			if logger == nil {
				logger = mlog.Nop()
			}
			logger.WithFields("module", d.Name).Warn("module did not stop within its timeout, abandoning")
			joined = multierr.Append(joined, fmt.Errorf("runtime: stop %q: timed out after %s", d.Name, d.EffectiveStopTimeout()))
		}

		r.setState(d.Name, StateStopped)
	}

	return joined
}
