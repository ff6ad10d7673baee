// Package config binds each module's slice of the global configuration
// document out of the process environment. There is one flat
// environment namespace; every module's variables are prefixed
// MODKIT_<MODULE>_ so modules cannot collide (spec §4.1 "Config
// bind").
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file into the process environment if one is
// present in the working directory. It is a no-op, not an error, when
// no file exists — local development convenience only; production
// deployments set real environment variables.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// EnvPrefix returns the environment variable prefix a module's config
// struct is bound under.
func EnvPrefix(moduleName string) string {
	return "MODKIT_" + strings.ToUpper(strings.ReplaceAll(moduleName, "-", "_")) + "_"
}

// Bind decodes moduleName's environment slice into a T, using `env`
// and `envDefault` struct tags. An env var that fails to parse into
// its field's type is an error; a field with no matching variable and
// no envDefault keeps its zero value. Because T's fields are the only
// addressable destination, an unrecognized variable under the
// module's prefix is silently ignored rather than rejected — Go has
// no runtime notion of "extra key in a flat namespace" the way a
// decoded map would, so the typed destination itself is what bounds
// what a module can see.
func Bind[T any](moduleName string) (T, error) {
	var cfg T

	opts := env.Options{Prefix: EnvPrefix(moduleName)}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("config: bind %q: %w", moduleName, err)
	}

	return cfg, nil
}

// BindFrom is Bind against an explicit environment map instead of the
// process environment — used by tests and by the runtime when modules
// are constructed with a synthetic config document.
func BindFrom[T any](moduleName string, environment map[string]string) (T, error) {
	var cfg T

	opts := env.Options{
		Prefix:      EnvPrefix(moduleName),
		Environment: environment,
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("config: bind %q: %w", moduleName, err)
	}

	return cfg, nil
}
