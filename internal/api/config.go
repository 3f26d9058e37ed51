package api

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultBaseURL is the server root used when none is configured.
const DefaultBaseURL = "http://localhost:8008/api/v1"

// Config holds client settings.
type Config struct {
	BaseURL string

	// Timeout bounds a single request including retries. Default: 15s.
	Timeout time.Duration

	Retry RetryConfig
}

// RetryConfig configures retries of idempotent requests.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 15 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 300 * time.Millisecond,
			MaxWait:     3 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// Validate checks that the base URL is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url %q must be http or https", c.BaseURL)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
