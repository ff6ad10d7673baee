package runtime

import (
	"fmt"
	"runtime/debug"

	"github.com/modkit-dev/modkit/pkg/mlog"
)

// guardCall runs fn and converts any panic into an error, logging the
// stack trace first. Used by the runtime to guard its own synchronous
// calls into module code (Init, RegisterREST, Start) — a module
// misbehaving during startup fails that module's startup step cleanly
// instead of crashing the whole process before it has a chance to
// report the failure (spec §4.1 "Failure semantics"). For background
// goroutines a module spawns itself, see module.Context.SafeGo
// instead; this helper only covers the runtime's own call sites.
func guardCall(logger mlog.Logger, moduleName, step string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.WithFields(
					"module", moduleName,
					"step", step,
					"panic_value", r,
					"stack_trace", string(debug.Stack()),
				).Error("recovered panic during module lifecycle step")
			}
			err = fmt.Errorf("panic in module %q during %s: %v", moduleName, step, r)
		}
	}()

	return fn()
}
