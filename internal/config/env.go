package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds settings that come from the process environment rather than
// stageline.yml. Secrets belong here.
type Env struct {
	JWTSecret     string `env:"STAGELINE_JWT_SECRET"`
	AccessSecret  string `env:"STAGELINE_ACCESS_SECRET"`
	DBDriver      string `env:"STAGELINE_DB_DRIVER"`
	DBDSN         string `env:"STAGELINE_DB_DSN"`
	PublicBaseURL string `env:"STAGELINE_PUBLIC_BASE_URL"`
	LegacyRole    bool   `env:"STAGELINE_ALLOW_LEGACY_ROLE_HEADER" envDefault:"false"`
}

func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overlays the non-empty environment values onto c and revalidates.
func (c *Config) Apply(e Env) error {
	if e.AccessSecret != "" {
		c.Access.Secret = e.AccessSecret
	}
	if e.DBDriver != "" {
		c.Database.Driver = e.DBDriver
	}
	if e.DBDSN != "" {
		c.Database.DSN = e.DBDSN
	}
	if e.PublicBaseURL != "" {
		c.Storage.PublicBaseURL = e.PublicBaseURL
	}
	return c.Validate()
}

// StagedTTL is how long an uploaded file may wait for a form submission.
func (c *Config) StagedTTL() (time.Duration, error) {
	if c.Storage.StagedTTL == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(c.Storage.StagedTTL)
	if err != nil {
		return 0, fmt.Errorf("config.storage.staged_ttl: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config.storage.staged_ttl must be positive")
	}
	return d, nil
}
