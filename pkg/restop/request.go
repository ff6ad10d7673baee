// Package restop implements the REST Operation Builder from spec §4.3:
// a fluent, type-safe route registration that wires the HTTP route,
// the OpenAPI document, the auth guard, and RFC-9457 error conversion
// in one call, grounded on the teacher's withBody decode-validate
// decorator and auth.Authorize(app, resource, action) middleware
// pattern (see DESIGN.md).
package restop

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/modkit-dev/modkit/pkg/secctx"
)

// Request is what a handler receives after extraction: the decoded and
// validated body, the raw fiber context for path/query access, and the
// Security Context for authorized routes (spec §4.3 "Extraction
// contract").
type Request[Req any] struct {
	Ctx      context.Context
	Body     Req
	Security secctx.SecurityContext
	fiberCtx *fiber.Ctx
}

// PathUUID parses a path parameter as a UUID. Returns an error the
// caller should surface as problem.Validation.
func (r *Request[Req]) PathUUID(name string) (uuid.UUID, error) {
	raw := r.fiberCtx.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("path parameter %q is not a valid uuid: %w", name, err)
	}
	return id, nil
}

// PathString returns a raw path parameter.
func (r *Request[Req]) PathString(name string) string {
	return r.fiberCtx.Params(name)
}

// Query returns a raw query parameter and whether it was present.
func (r *Request[Req]) Query(name string) (string, bool) {
	v := r.fiberCtx.Query(name)
	return v, r.fiberCtx.Context().QueryArgs().Has(name)
}

// RequestURI returns the request's raw URI, used by handlers that need
// to build a Location header for a 201 response.
func (r *Request[Req]) RequestURI() string {
	return r.fiberCtx.OriginalURL()
}
