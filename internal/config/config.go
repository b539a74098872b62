// Package config loads process configuration from the environment
// (optionally via a .env file), following
// intelligencedev-manifold/internal/config/loader.go's Load() shape:
// godotenv.Overload() first, then explicit os.Getenv reads with
// trimming and typed defaults, no framework.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration for the search server.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string
	// LogLevel controls the zap logger's level ("debug", "info", "warn",
	// "error").
	LogLevel string
	// FederationDefaultLimit/Offset are the defaults applied when a
	// multi-search request omits federation.limit/offset (spec §6.1).
	FederationDefaultLimit  int
	FederationDefaultOffset int
	// ProximityRuleWeight scales the cost the proximity GBRR instance
	// assigns its edges (spec §4.4's per-rule weight knob). Typo edges
	// are not weighted.
	ProximityRuleWeight uint16
}

// Load reads Config from the environment, applying .env overrides via
// godotenv.Overload() the way the teacher's config loader does.
func Load() Config {
	_ = godotenv.Overload()

	cfg := Config{
		Addr:                    firstNonEmpty(trimmed("GOKITT_ADDR"), ":8080"),
		LogLevel:                firstNonEmpty(trimmed("GOKITT_LOG_LEVEL"), "info"),
		FederationDefaultLimit:  envInt("GOKITT_FEDERATION_LIMIT", 20),
		FederationDefaultOffset: envInt("GOKITT_FEDERATION_OFFSET", 0),
		ProximityRuleWeight:     uint16(envInt("GOKITT_PROXIMITY_WEIGHT", 1)),
	}
	return cfg
}

func trimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, def int) int {
	v := trimmed(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
