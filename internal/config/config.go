// Package config loads runtime settings from the environment into a typed
// struct once at startup. Nothing reads the environment after Load returns.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// JWT holds session-token signing settings.
type JWT struct {
	Issuer        string `env:"ISSUER" envDefault:"inno-shop-users"`
	Audience      string `env:"AUDIENCE" envDefault:"inno-shop"`
	Key           string `env:"KEY"`
	ExpiryMinutes int    `env:"EXPIRY_MINUTES" envDefault:"60"`
}

// Config holds all runtime settings for the service.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	DatabaseDriver  string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN     string        `env:"DATABASE_DSN" envDefault:"inno-shop-users.db"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"12"`
	ConfirmTokenTTL time.Duration `env:"CONFIRM_TOKEN_TTL" envDefault:"24h"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	JWT             JWT           `envPrefix:"JWT_"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Key == "" {
		return fmt.Errorf("JWT_KEY is required")
	}
	if len(c.JWT.Key) < 32 {
		return fmt.Errorf("JWT_KEY must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.JWT.ExpiryMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRY_MINUTES must be positive, got %d", c.JWT.ExpiryMinutes)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}

// TokenValidity returns the configured session-token lifetime.
func (c *Config) TokenValidity() time.Duration {
	return time.Duration(c.JWT.ExpiryMinutes) * time.Minute
}
