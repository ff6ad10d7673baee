package problem

import "github.com/gofiber/fiber/v2"

// ContentType is the media type every error response in ModKit uses,
// per spec §6 ("application/problem+json" for errors).
const ContentType = "application/problem+json"

// Write serializes p as the fiber response body with the Problem
// content type and status code. It is the only place in the framework
// that writes a Problem onto the wire, matching the design note that a
// single HTTP-layer helper converts Problem to a response uniformly.
func Write(c *fiber.Ctx, p Problem) error {
	c.Set(fiber.HeaderContentType, ContentType)
	c.Status(p.Status)

	return c.JSON(p, ContentType)
}

// WriteError converts err via From and writes it, attaching the
// request id (if any) as the Problem's trace id.
func WriteError(c *fiber.Ctx, moduleName string, err error) error {
	p := From(moduleName, err)

	if traceID, ok := c.Locals("request_id").(string); ok && traceID != "" {
		p = p.WithTraceID(traceID)
	}

	return Write(c, p)
}
