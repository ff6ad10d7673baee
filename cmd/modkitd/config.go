package main

import "time"

// Config is the composition root's own settings, bound the same way
// every module's settings are (pkg/config), but under the reserved
// "modkitd" module name rather than a tenant module's.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Environment   string `env:"ENV" envDefault:"development"`

	DatabasePrimaryDSN string `env:"DATABASE_PRIMARY_DSN,required"`
	DatabaseReplicaDSN string `env:"DATABASE_REPLICA_DSN"`

	JWTSecret          string        `env:"JWT_SECRET"`
	AuthCBMaxFailures  uint32        `env:"AUTH_CB_MAX_FAILURES" envDefault:"5"`
	AuthCBResetTimeout time.Duration `env:"AUTH_CB_RESET_TIMEOUT" envDefault:"30s"`

	RedisURL          string `env:"REDIS_URL"`
	RateLimitPerMin   int64  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"600"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}
