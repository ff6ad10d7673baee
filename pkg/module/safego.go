package module

import "runtime/debug"

// SafeGo runs fn in its own goroutine. A panic inside fn is recovered,
// logged with its stack trace through c.Logger, and reported through
// c.ReportHealth as degraded — it does not take down the process
// (spec §4.1 "Failure semantics": a background task failure degrades
// its module, nothing more). Stateful modules should use this for any
// goroutine they spawn from Start rather than a bare `go`.
func (c *Context) SafeGo(fn func()) {
	go func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			if c.Logger != nil {
				c.Logger.WithFields(
					"panic_value", r,
					"stack_trace", string(debug.Stack()),
				).Error("recovered panic in background task")
			}

			if c.ReportHealth != nil {
				c.ReportHealth(Health{
					Status: HealthDegraded,
					Reason: "recovered panic: see logs for stack trace",
				})
			}
		}()

		fn()
	}()
}
