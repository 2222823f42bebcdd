// Package config reads service configuration from a .env file, the
// environment and command-line flags, in that order of precedence
// (flags fill whatever the environment left empty).
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the service configuration.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET"`
	SeedDemo    bool   `env:"SEED_DEMO"`
}

// Parse reads configuration from .env, environment variables and flags.
func Parse() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURL := cfg.DatabaseURL
	envJWTSecret := cfg.JWTSecret
	envSeedDemo := cfg.SeedDemo

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURL, "d", "", "PostgreSQL connection string")
	flag.StringVar(&cfg.JWTSecret, "s", "dev-secret", "JWT signing secret")
	flag.BoolVar(&cfg.SeedDemo, "seed", false, "seed demo accounts and live-feed posts at startup")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURL != "" {
		cfg.DatabaseURL = envDatabaseURL
	}
	if envJWTSecret != "" {
		cfg.JWTSecret = envJWTSecret
	}
	if envSeedDemo {
		cfg.SeedDemo = true
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
