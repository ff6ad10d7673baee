// Command modkitd is the reference composition root: it loads
// configuration, builds the shared database pool and Security Context
// pipeline, constructs the gateway and runtime, and drives the process
// lifecycle end to end (spec §4.1, §5). It registers no modules of its
// own and blank imports none, so the process-global inventory
// (pkg/module.Snapshot) it hands the runtime holds only what its
// imported packages registered from init(); a deployment adds a blank
// import for each module it ships.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bxcodec/dbresolver/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/modkit-dev/modkit/pkg/clienthub"
	"github.com/modkit-dev/modkit/pkg/config"
	"github.com/modkit-dev/modkit/pkg/gateway"
	"github.com/modkit-dev/modkit/pkg/mlog"
	"github.com/modkit-dev/modkit/pkg/module"
	"github.com/modkit-dev/modkit/pkg/runtime"
	"github.com/modkit-dev/modkit/pkg/secctx"
	"github.com/modkit-dev/modkit/pkg/secureorm"
)

const appModuleName = "modkitd"

func main() {
	config.LoadDotEnv()

	cfg, err := config.Bind[Config](appModuleName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "modkitd: %v\n", err)
		os.Exit(1)
	}

	logger, err := mlog.NewZapLogger(mlog.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Environment == "development",
		ServiceName: appModuleName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "modkitd: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Errorf("modkitd: %v", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger mlog.Logger) error {
	ctx := context.Background()

	primaryDB, err := sql.Open("pgx", cfg.DatabasePrimaryDSN)
	if err != nil {
		return fmt.Errorf("open primary database: %w", err)
	}
	defer primaryDB.Close()

	replicaDSN := cfg.DatabaseReplicaDSN
	if replicaDSN == "" {
		replicaDSN = cfg.DatabasePrimaryDSN
	}

	replicaDB, err := sql.Open("pgx", replicaDSN)
	if err != nil {
		return fmt.Errorf("open replica database: %w", err)
	}
	defer replicaDB.Close()

	pool := dbresolver.New(
		dbresolver.WithPrimaryDBs(primaryDB),
		dbresolver.WithReplicaDBs(replicaDB),
		dbresolver.WithLoadBalancer(dbresolver.RoundRobinLB),
	)

	var authProvider gateway.AuthProvider
	if cfg.JWTSecret != "" {
		authProvider = gateway.NewBreakingAuthProvider(
			gateway.NewJWTAuthProvider([]byte(cfg.JWTSecret)),
			cfg.AuthCBMaxFailures,
			cfg.AuthCBResetTimeout,
		)
	}

	var rateLimiter *gateway.RateLimiter
	if cfg.RedisURL != "" {
		conn := &gateway.RedisConnection{ConnectionStringSource: cfg.RedisURL, Logger: logger}
		rateLimiter = gateway.NewRateLimiter(conn, cfg.RateLimitPerMin, time.Minute, callerKey)
	}

	gw := gateway.New(gateway.Config{
		Title:        appModuleName,
		Version:      "0.1.0",
		AuthProvider: authProvider,
		RateLimiter:  rateLimiter,
		Logger:       logger,
	})

	hub := clienthub.New()
	instanceID := uuid.New()

	deps := runtime.Deps{
		Logger:     logger,
		DB:         pool,
		Hub:        hub,
		Router:     gw.Router(),
		OpenAPI:    gw.OpenAPI(),
		InstanceID: instanceID,
		Migrate:    secureorm.NewPostgresMigrator(primaryDB),
	}

	rt, err := runtime.New(deps, module.Snapshot())
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}

	gw.SetHealthFunc(func() map[string]gateway.ModuleHealth {
		out := make(map[string]gateway.ModuleHealth)
		for name, h := range rt.Health() {
			out[name] = gateway.ModuleHealth{Status: string(h.Status), Reason: h.Reason}
		}
		return out
	})

	if err := rt.Start(ctx); err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}

	gw.Ready()
	logger.Infof("modkitd: listening on %s", cfg.ServerAddress)

	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Listen(cfg.ServerAddress)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("modkitd: gateway listener stopped: %v", err)
		}
	case sig := <-quit:
		logger.Infof("modkitd: received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("modkitd: gateway shutdown: %v", err)
	}

	return rt.Shutdown(shutdownCtx, fmt.Errorf("modkitd: process shutdown"))
}

// callerKey rate-limits by authenticated subject when the request has
// already gone through auth extraction, falling back to the remote IP
// for unauthenticated traffic (e.g. login attempts).
func callerKey(c *fiber.Ctx) string {
	if sc, ok := c.Locals(secctx.LocalsKey).(secctx.SecurityContext); ok {
		return sc.SubjectID().String()
	}

	return c.IP()
}
