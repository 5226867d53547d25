// Package appconfig holds environment-derived defaults for docxreview,
// in the style of a plain env-var config loader: small Load() struct,
// an envString helper with a fallback.
package appconfig

import "os"

// Config holds defaults sourced from the environment, each overridable by
// a CLI flag.
type Config struct {
	Author   string
	LogLevel string
	Color    string
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() *Config {
	return &Config{
		Author:   envString("DOCXREVIEW_AUTHOR", ""),
		LogLevel: envString("DOCXREVIEW_LOG_LEVEL", "warn"),
		Color:    envString("DOCXREVIEW_COLOR", "auto"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
