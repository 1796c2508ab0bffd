package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Env is the process configuration, loaded from INFRATRACK_* environment
// variables.
type Env struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DBPath string `envconfig:"DB_PATH" default:".infratrack/portal.db"`

	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"8h"`

	// Bootstrap super_admin, created on first start when absent.
	// Leave AdminPassword empty to skip bootstrapping.
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

const namespace = "INFRATRACK"

// LoadEnv reads configuration from the environment.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}
	return &env, nil
}

// SlogLevel parses LogLevel, defaulting to info on bad input.
func (e *Env) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
