package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"

	"github.com/modkit-dev/modkit/pkg/problem"
	"github.com/modkit-dev/modkit/pkg/secctx"
)

const requestIDHeader = "X-Request-Id"

// DefaultHandlerTimeout is the bounded deadline spec §4.3
// "Cancellation" gives handlers before the gateway cancels them and
// responds 504.
const DefaultHandlerTimeout = 30 * time.Second

// requestIDMiddleware passes through an inbound X-Request-Id or mints
// one, echoes it on the response, and stores it in locals under
// "request_id" — the key problem.WriteError reads to stamp a Problem's
// trace id (spec §5 "shared middleware (request id, ...)"). Grounded on
// Midaz's batch handler propagateRequestID, which reads/writes the same
// header by hand rather than through a middleware package.
func requestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDHeader, id)
		c.Locals("request_id", id)
		return c.Next()
	}
}

// authExtractorMiddleware reads the Authorization header, validates
// the bearer token through provider, and stores the resulting Security
// Context in fiber locals under secctx.LocalsKey for restop's
// route-level guard to read. A missing/invalid token is not itself an
// error here — unauthenticated routes (health, docs) must still work —
// the 401 is raised by restop's guard when an authorized route finds
// no Security Context in locals.
func authExtractorMiddleware(provider AuthProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.Next()
		}

		sc, err := provider.Validate(c.Context(), token)
		if err != nil {
			return c.Next()
		}

		c.Locals(secctx.LocalsKey, sc)
		return c.Next()
	}
}

// timeoutMiddleware cancels a handler exceeding d and converts the
// resulting fiber.ErrRequestTimeout into a 504 Problem (spec §4.3
// "Cancellation").
func timeoutMiddleware(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		wrapped := timeout.NewWithContext(func(c *fiber.Ctx) error {
			return c.Next()
		}, d)

		err := wrapped(c)
		if err != nil && (errors.Is(err, fiber.ErrRequestTimeout) || errors.Is(err, context.DeadlineExceeded)) {
			return writeTimeoutProblem(c, d)
		}
		return err
	}
}

// writeTimeoutProblem builds the 504 Problem by hand rather than going
// through problem.From: a handler timeout is a gateway-level condition,
// not a module DomainError, so there is no Kind for it in spec §7's
// taxonomy.
func writeTimeoutProblem(c *fiber.Ctx, d time.Duration) error {
	p := problem.Problem{
		Type:   "https://errors.example/GATEWAY_TIMEOUT",
		Title:  "Gateway Timeout",
		Status: fiber.StatusGatewayTimeout,
		Detail: fmt.Sprintf("handler did not complete within %s", d),
		Code:   "GATEWAY_TIMEOUT",
	}

	if traceID, ok := c.Locals("request_id").(string); ok && traceID != "" {
		p = p.WithTraceID(traceID)
	}

	return problem.Write(c, p)
}
