// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds the server's runtime configuration.
type Config struct {
	// DBPath is the filesystem path of the SQLite database.
	DBPath string

	// Addr is the listen address for the HTTP server.
	Addr string

	// JWTSecret signs session tokens. Required; the server refuses to start
	// without it.
	JWTSecret string

	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration

	// SweepInterval is how often due recurring schedules are executed and
	// expired reset tokens cleaned up.
	SweepInterval time.Duration
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:    getEnv("DB_PATH", "./data/fintrack.db"),
		Addr:      getEnv("ADDR", ":8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	return cfg, nil
}
