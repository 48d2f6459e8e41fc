package provider

import (
	"fmt"
	"os"
	"time"
)

// Config holds Test Provider client configuration.
type Config struct {
	// BaseURL is the provider API root, e.g. "https://api.example.com".
	BaseURL string

	// Token is the bearer token identifying the authenticated user.
	// How the token is obtained is outside this client's scope.
	Token string

	// Timeout is the per-request deadline. The assessment countdown is
	// the only other time bound the session engine applies. Default: 30s.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling
// back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if u := os.Getenv("PROCTOR_API_BASE_URL"); u != "" {
		cfg.BaseURL = u
	}
	if t := os.Getenv("PROCTOR_API_TOKEN"); t != "" {
		cfg.Token = t
	}
	if d := os.Getenv("PROCTOR_API_TIMEOUT"); d != "" {
		if parsed, err := time.ParseDuration(d); err == nil {
			cfg.Timeout = parsed
		}
	}

	return cfg
}

// Validate checks that required fields are set.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("PROCTOR_API_BASE_URL is required")
	}
	if c.Token == "" {
		return fmt.Errorf("PROCTOR_API_TOKEN is required")
	}
	return nil
}
