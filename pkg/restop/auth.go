package restop

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/modkit-dev/modkit/pkg/problem"
	"github.com/modkit-dev/modkit/pkg/secctx"
)

// Authorizer evaluates a (resource, action) authorization decision for
// an already-authenticated caller (spec §4.3 "authorization engine").
// A module obtains one from the client hub the same way it obtains any
// other capability-only interface.
type Authorizer interface {
	Authorize(ctx context.Context, sc secctx.SecurityContext, resource, action string) bool
}

// securityContextFromFiber extracts the Security Context the gateway's
// auth middleware placed in locals. It is absent when the request
// carried no valid credentials or no auth middleware ran; guard answers
// that with 401 Unauthorized.
func securityContextFromFiber(c *fiber.Ctx) (secctx.SecurityContext, bool) {
	sc, ok := c.Locals(secctx.LocalsKey).(secctx.SecurityContext)
	return sc, ok
}

// guard builds the fiber middleware spec §4.3 point 4 describes: it
// extracts the Security Context and evaluates (resource, action)
// before the wrapped handler ever runs. Denial writes a 401/403
// Problem and never invokes next.
func guard(moduleName, resource, action string, authz Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, ok := securityContextFromFiber(c)
		if !ok {
			return problem.WriteError(c, moduleName, problem.Unauthorized("missing security context"))
		}

		if sc.DeniesAllResourceAccess() {
			return problem.WriteError(c, moduleName, problem.Forbidden("no tenant in scope for this caller"))
		}

		if !authz.Authorize(c.Context(), sc, resource, action) {
			return problem.WriteError(c, moduleName, problem.Forbidden("caller is not authorized for this action"))
		}

		c.Locals(secctx.LocalsKey, sc)
		return c.Next()
	}
}
