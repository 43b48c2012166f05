// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the service configuration, loaded from environment variables.
// godotenv/autoload in main picks up a local .env file first.
type Config struct {
	Addr     string `env:"UNO_ADDR" envDefault:":8080"`
	LogLevel string `env:"UNO_LOG_LEVEL" envDefault:"info"`

	// MaxPlayers caps a single game's seating, host included.
	MaxPlayers int `env:"UNO_MAX_PLAYERS" envDefault:"12"`

	// IdleTimeout is how long a game may sit without a state-mutating
	// action before admission checks reclaim it.
	IdleTimeout time.Duration `env:"UNO_IDLE_TIMEOUT" envDefault:"10m"`

	// DatabaseURL enables finished-match recording when set.
	DatabaseURL string `env:"DATABASE_URL"`

	// RedisAddr enables the action-record queue when set.
	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}
