// Package config loads process configuration from environment variables so
// main stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr string `env:"OWNIDP_ADDR" envDefault:":8080"`

	// BaseURL overrides the externally visible origin used in the discovery
	// document and redirects. When empty it is derived per request from the
	// Host header.
	BaseURL string `env:"OWNIDP_BASE_URL"`

	// DataDir holds the trust-root files and the password file.
	DataDir string `env:"OWNIDP_DATA_DIR" envDefault:"./data"`

	// TrustStore selects the trust-root backend: file, postgres, or memory.
	TrustStore  string `env:"OWNIDP_TRUST_STORE" envDefault:"file"`
	PostgresURL string `env:"OWNIDP_POSTGRES_URL"`

	// RedisURL enables the Redis session backend; empty keeps sessions
	// in process memory.
	RedisURL string `env:"OWNIDP_REDIS_URL"`

	// SessionKey signs the browser session token. Generated at startup when
	// empty, which invalidates sessions across restarts.
	SessionKey string        `env:"OWNIDP_SESSION_KEY"`
	SessionTTL time.Duration `env:"OWNIDP_SESSION_TTL" envDefault:"12h"`

	// ExtractTimeout bounds the profile-document fetch so attribute
	// exchange can never stall an authentication request for long.
	ExtractTimeout time.Duration `env:"OWNIDP_EXTRACT_TIMEOUT" envDefault:"5s"`

	LogLevel string `env:"OWNIDP_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
