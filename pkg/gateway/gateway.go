// Package gateway is the HTTP ingress ModKit's composition root wires
// in front of the runtime (spec §5): it owns the fiber.App and the
// openapi.Registry every module's REST operations register into,
// applies the cross-cutting middleware (request id, recover, CORS,
// auth extraction, timeout, rate limiting) ahead of any module route,
// and freezes the OpenAPI document once the runtime finishes starting
// (the fiber router itself is not frozen; see Ready).
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/modkit-dev/modkit/pkg/mlog"
	"github.com/modkit-dev/modkit/pkg/openapi"
	"github.com/modkit-dev/modkit/pkg/problem"
)

// DefaultBodyLimit bounds request bodies ahead of JSON decoding (spec
// §5's body-size-limit concern); oversized bodies fail fast as a 413
// from fiber's own body-limit handling rather than reaching a module.
const DefaultBodyLimit = 4 << 20 // 4 MiB

// Config controls the cross-cutting behavior Gateway installs ahead of
// any module route. AuthProvider and RateLimiter are optional: a
// deployment with no external identity provider or no redis leaves
// them nil and gets passthrough behavior (authenticated routes still
// get their 401 from restop's own per-route guard, since no Security
// Context ever lands in locals).
type Config struct {
	Title          string
	Version        string
	BodyLimit      int
	HandlerTimeout time.Duration
	AuthProvider   AuthProvider
	RateLimiter    *RateLimiter
	Logger         mlog.Logger
}

// HealthFunc reports every module's current health, converted from the
// map[string]module.Health that runtime.Runtime.Health returns.
type HealthFunc func() map[string]ModuleHealth

// ModuleHealth mirrors module.Health without gateway importing
// pkg/module, which would otherwise create an import cycle back
// through pkg/runtime in a full build graph that also wires gateway
// into cmd/modkitd's runtime.Deps construction.
type ModuleHealth struct {
	Status string
	Reason string
}

// Gateway is the process's single HTTP entrypoint. It satisfies
// runtime.Deps' Router/OpenAPI fields so every module's
// RegisterREST call lands on the same app and document.
type Gateway struct {
	app        *fiber.App
	openapi    *openapi.Registry
	logger     mlog.Logger
	healthFunc HealthFunc
}

// SetHealthFunc wires the runtime's live health snapshot into the
// gateway's /health endpoint. Called once by the composition root
// after runtime.New, before runtime.Start.
func (g *Gateway) SetHealthFunc(fn HealthFunc) {
	g.healthFunc = fn
}

// New builds a Gateway with the cross-cutting middleware chain applied
// in the order spec §5 lists it: request id, recover, CORS, auth
// extraction, rate limiting, timeout. Module routes are registered by
// the runtime after New returns, ahead of the gateway going Ready.
func New(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = mlog.Nop()
	}

	bodyLimit := cfg.BodyLimit
	if bodyLimit == 0 {
		bodyLimit = DefaultBodyLimit
	}

	handlerTimeout := cfg.HandlerTimeout
	if handlerTimeout == 0 {
		handlerTimeout = DefaultHandlerTimeout
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ErrorHandler:          fiberErrorHandler(logger),
	})

	app.Use(requestIDMiddleware())
	app.Use(recover.New())
	app.Use(cors.New())

	if cfg.AuthProvider != nil {
		app.Use(authExtractorMiddleware(cfg.AuthProvider))
	}

	if cfg.RateLimiter != nil {
		app.Use(cfg.RateLimiter.Middleware())
	}

	app.Use(timeoutMiddleware(handlerTimeout))

	gw := &Gateway{
		app:     app,
		openapi: openapi.New(cfg.Title, cfg.Version),
		logger:  logger,
	}

	gw.registerWellKnownRoutes()

	return gw
}

// Router is what runtime.Deps.Router expects: the fiber.Router modules
// register their operations onto.
func (g *Gateway) Router() fiber.Router {
	return g.app
}

// OpenAPI is what runtime.Deps.OpenAPI expects.
func (g *Gateway) OpenAPI() *openapi.Registry {
	return g.openapi
}

func (g *Gateway) registerWellKnownRoutes() {
	g.app.Get("/health", func(c *fiber.Ctx) error {
		if g.healthFunc == nil {
			return c.JSON(fiber.Map{"status": "ok"})
		}

		modules := g.healthFunc()
		overall := "ok"
		for _, h := range modules {
			if h.Status != "healthy" {
				overall = "degraded"
				break
			}
		}

		return c.JSON(fiber.Map{"status": overall, "modules": modules})
	})

	// Freeze is idempotent, so serving it here is safe even though Ready
	// will also have called it by the time Listen accepts traffic — the
	// composition root always calls Ready before Listen.
	g.app.Get("/openapi.json", func(c *fiber.Ctx) error {
		return c.JSON(g.openapi.Freeze())
	})
}

// Ready freezes the OpenAPI document so no module registered after
// startup can silently change the served contract (spec §5 "HTTP
// router is likewise frozen"). The fiber router itself has no runtime
// "freeze" primitive; refusing further Register calls is enforced at
// the runtime layer, which only calls RegisterREST during phase 5.
func (g *Gateway) Ready() openapi.Document {
	return g.openapi.Freeze()
}

// Listen starts serving on addr and blocks until the listener exits.
func (g *Gateway) Listen(addr string) error {
	return g.app.Listen(addr)
}

// Shutdown gracefully drains in-flight requests within ctx's deadline.
func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.app.ShutdownWithContext(ctx)
}

func fiberErrorHandler(logger mlog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}

		logger.Errorf("gateway: unhandled error on %s %s: %v", c.Method(), c.OriginalURL(), err)

		return problem.Write(c, problem.Problem{
			Type:   "https://errors.example/GATEWAY_INTERNAL",
			Title:  "Internal Server Error",
			Status: code,
			Code:   "GATEWAY_INTERNAL",
			Detail: fmt.Sprintf("unhandled error: %s", http.StatusText(code)),
		})
	}
}
