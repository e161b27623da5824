package config

import (
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Environment variable names.
const (
	EnvHome           = "TRICKLE_HOME"
	EnvNetwork        = "TRICKLE_NETWORK"
	EnvRPCURL         = "TRICKLE_RPC_URL"
	EnvLogLevel       = "TRICKLE_LOG_LEVEL"
	EnvTransfers      = "TRICKLE_TRANSFERS"
	EnvPolicy         = "TRICKLE_POLICY"
	EnvCadence        = "TRICKLE_CADENCE"
	EnvMetricsListen  = "TRICKLE_METRICS_LISTEN"
	EnvKeysPassphrase = "TRICKLE_KEYS_PASSPHRASE" // #nosec G101 -- variable name, not a credential
	EnvNoColor        = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		cfg.Network = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvRPCURL); v != "" {
		cfg.RPCURL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}

	// TRICKLE_TRANSFERS sets the per-account transfer count for the random policy
	if v := os.Getenv(EnvTransfers); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.Dispatch.TransfersPerAccount = n
		}
	}

	if v := os.Getenv(EnvPolicy); v != "" {
		cfg.Dispatch.Policy = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvCadence); v != "" {
		cfg.Schedule.Cadence = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvMetricsListen); v != "" {
		cfg.Metrics.Listen = strings.TrimSpace(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Logging.Color = "never"
	}
}

// SanitizeURL strips whitespace and control characters that copy-paste
// tends to leave in RPC URLs.
func SanitizeURL(url string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, url)
}
