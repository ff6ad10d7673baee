package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/modkit-dev/modkit/pkg/mlog"
	"github.com/modkit-dev/modkit/pkg/problem"
)

// RedisConnection lazily connects to redis and hands out the shared
// client, the same wrapper shape Midaz's common/mredis.RedisConnection
// uses (ConnectionStringSource + Connected flag + lazy GetDB).
type RedisConnection struct {
	ConnectionStringSource string
	Client                 *redis.Client
	Connected              bool
	Logger                 mlog.Logger
}

// Connect dials redis and verifies it with a Ping before marking the
// connection usable.
func (rc *RedisConnection) Connect(ctx context.Context) error {
	logger := rc.logger()
	logger.Info("gateway: connecting to redis")

	opts, err := redis.ParseURL(rc.ConnectionStringSource)
	if err != nil {
		return fmt.Errorf("gateway: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Errorf("gateway: redis ping failed: %v", err)
		return fmt.Errorf("gateway: redis ping: %w", err)
	}

	logger.Info("gateway: connected to redis")
	rc.Connected = true
	rc.Client = client

	return nil
}

// GetClient returns the shared client, connecting on first use.
func (rc *RedisConnection) GetClient(ctx context.Context) (*redis.Client, error) {
	if rc.Client == nil {
		if err := rc.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return rc.Client, nil
}

func (rc *RedisConnection) logger() mlog.Logger {
	if rc.Logger == nil {
		return mlog.Nop()
	}

	return rc.Logger
}

// RateLimiter enforces a fixed-window request quota per caller using
// redis INCR+EXPIRE, the counter primitive spec §5 names for the
// gateway's "per-tenant/per-caller rate limiting" cross-cutting
// concern. Keying is left to the caller (KeyFunc) so it can rate-limit
// by tenant, subject, or IP depending on deployment policy.
type RateLimiter struct {
	conn   *RedisConnection
	limit  int64
	window time.Duration
	keyFn  func(*fiber.Ctx) string
}

// NewRateLimiter builds a limiter allowing at most limit requests per
// window for each key keyFn derives from a request.
func NewRateLimiter(conn *RedisConnection, limit int64, window time.Duration, keyFn func(*fiber.Ctx) string) *RateLimiter {
	return &RateLimiter{conn: conn, limit: limit, window: window, keyFn: keyFn}
}

// Middleware returns fiber middleware that writes a 429 Problem once a
// key's quota for the current window is exhausted.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		client, err := rl.conn.GetClient(c.Context())
		if err != nil {
			// Rate limiting is best-effort: a broken redis must not take
			// the whole gateway down.
			return c.Next()
		}

		key := "modkit:ratelimit:" + rl.keyFn(c)

		count, err := client.Incr(c.Context(), key).Result()
		if err != nil {
			return c.Next()
		}

		if count == 1 {
			client.Expire(c.Context(), key, rl.window)
		}

		if count > rl.limit {
			return problem.WriteError(c, "gateway", problem.RateLimited(
				fmt.Sprintf("more than %d requests in %s", rl.limit, rl.window)))
		}

		return c.Next()
	}
}
