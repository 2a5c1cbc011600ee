package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by LoadConfig.
const (
	EnvEnabled        = "RATE_LIMIT_ENABLED"
	EnvDefaultLimit   = "RATE_LIMIT_DEFAULT_LIMIT"
	EnvDefaultWindow  = "RATE_LIMIT_DEFAULT_WINDOW"
	EnvCleanup        = "RATE_LIMIT_CLEANUP_INTERVAL"
	EnvIdleTimeout    = "RATE_LIMIT_IDLE_TIMEOUT"
	EnvWhitelist      = "RATE_LIMIT_WHITELIST"
	EnvBlacklist      = "RATE_LIMIT_BLACKLIST"
	EnvUploadsPerHour = "RATE_LIMIT_UPLOADS_PER_HOUR"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern, see MatchEndpoint
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig builds the limiter configuration from the environment. Unset or unparsable
// values keep their defaults.
func LoadConfig() *Config {
	if !envValue(EnvEnabled, true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envValue(EnvDefaultLimit, 600, strconv.Atoi),
		DefaultWindow:   envValue(EnvDefaultWindow, time.Minute, time.ParseDuration),
		CleanupInterval: envValue(EnvCleanup, 5*time.Minute, time.ParseDuration),
		IdleTimeout:     envValue(EnvIdleTimeout, time.Hour, time.ParseDuration),
		Whitelist:       clientSet(os.Getenv(EnvWhitelist)),
		Blacklist:       clientSet(os.Getenv(EnvBlacklist)),
		EndpointConfigs: DefaultEndpointConfigs(envValue(EnvUploadsPerHour, 30, strconv.Atoi)),
	}
}

// DefaultEndpointConfigs returns the endpoint rules for the comparison API.
func DefaultEndpointConfigs(uploadsPerHour int) []EndpointConfig {
	return []EndpointConfig{
		// PDF extraction is the expensive path.
		{Path: "/comparisons", Method: "POST", Limit: uploadsPerHour, Window: time.Hour, Burst: 5},
		{Path: "/comparisons/stream", Method: "POST", Limit: uploadsPerHour, Window: time.Hour, Burst: 5},

		// Contact toggles are cheap but frequent during a follow-up session.
		{Path: "/comparisons/*/contacts/", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},

		// Workbook rendering.
		{Path: "/comparisons/*/export.xlsx", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/comparisons/*/export.csv", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

func envValue[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// clientSet splits a comma-separated list of client addresses.
func clientSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
