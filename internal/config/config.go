// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseDSN is the sqlite data source name.
	DatabaseDSN string `koanf:"database_dsn"`

	// ContentAPIBaseURL is the external content provider endpoint.
	ContentAPIBaseURL string `koanf:"content_api_base_url"`

	// ContentAPIToken authenticates against the content provider.
	ContentAPIToken string `koanf:"content_api_token"`

	// FetchTimeoutMS bounds a single content fetch.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// CodeAttempts is the invite code allocation retry ceiling.
	CodeAttempts int `koanf:"code_attempts"`

	// TopRankedLimit caps the leaderboard top-users strip.
	TopRankedLimit int `koanf:"top_ranked_limit"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		DatabaseDSN:       "growthboard.db",
		ContentAPIBaseURL: "https://api.socialdata.tools",
		FetchTimeoutMS:    10_000,
		CodeAttempts:      5,
		TopRankedLimit:    5,
	}
	return c
}
