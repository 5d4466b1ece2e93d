package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the database settings for integration tests from TEST_* variables.
// Missing variables yield an empty Config so callers can skip the integration suite.
func LoadTestConfig() (*Config, error) {
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}

	keys := []struct {
		env string
		dst *string
	}{
		{"TEST_DB_HOST", &cfg.Database.Host},
		{"TEST_DB_USER", &cfg.Database.User},
		{"TEST_DB_PASSWORD", &cfg.Database.Password},
		{"TEST_DB_NAME", &cfg.Database.DBName},
	}
	for _, k := range keys {
		v := os.Getenv(k.env)
		if v == "" {
			return &Config{}, nil
		}
		*k.dst = v
	}

	portStr := os.Getenv("TEST_DB_PORT")
	if portStr == "" {
		return &Config{}, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database.Port = port

	cfg.JWT.Secret = stringOr("TEST_JWT_SECRET", "integration-test-secret")
	return cfg, nil
}

// HasDatabase reports whether the integration database is configured
func (c *Config) HasDatabase() bool {
	return c.Database.Host != "" && c.Database.DBName != ""
}
