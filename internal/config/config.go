// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// DatabaseURL is required unless UseMemoryStore is set.
	DatabaseURL string `env:"DATABASE_URL"`

	PlaidClientID string `env:"PLAID_CLIENT_ID"`
	PlaidSecret   string `env:"PLAID_SECRET"`
	PlaidEnv      string `env:"PLAID_ENV,default=sandbox"`

	// UseMemoryStore swaps PostgreSQL for the in-memory store, for local
	// development and smoke tests.
	UseMemoryStore bool `env:"USE_MEMORY_STORE,default=false"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load reads the .env file if present, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if !cfg.UseMemoryStore && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required unless USE_MEMORY_STORE=true")
	}
	if cfg.PlaidClientID == "" || cfg.PlaidSecret == "" {
		return nil, fmt.Errorf("PLAID_CLIENT_ID and PLAID_SECRET are required")
	}

	return &cfg, nil
}
