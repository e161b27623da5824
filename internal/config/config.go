// Package config provides configuration management for trickle.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/trickle/internal/fileutil"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version      int            `yaml:"version"`
	Home         string         `yaml:"home,omitempty"`
	Network      string         `yaml:"network"`
	NetworksFile string         `yaml:"networks_file"`
	RPCURL       string         `yaml:"rpc_url"`
	Inputs       InputsConfig   `yaml:"inputs"`
	Dispatch     DispatchConfig `yaml:"dispatch"`
	Retry        RetryConfig    `yaml:"retry"`
	Schedule     ScheduleConfig `yaml:"schedule"`
	RPC          RPCConfig      `yaml:"rpc"`
	Logging      LoggingConfig  `yaml:"logging"`
	Output       OutputConfig   `yaml:"output"`
	Metrics      MetricsConfig  `yaml:"metrics"`
}

// InputsConfig locates the key and destination lists.
type InputsConfig struct {
	KeysFile          string `yaml:"keys_file"`
	AddressesFile     string `yaml:"addresses_file"`
	KeysPassphraseEnv string `yaml:"keys_passphrase_env"`
}

// DispatchConfig defines how each account's transfers are built.
type DispatchConfig struct {
	MinReserve          string         `yaml:"min_reserve"`
	AmountMin           string         `yaml:"amount_min"`
	AmountMax           string         `yaml:"amount_max"`
	Policy              string         `yaml:"policy"`
	TransfersPerAccount int            `yaml:"transfers_per_account"`
	Seed                uint64         `yaml:"seed"`
	SettleDelay         time.Duration  `yaml:"settle_delay"`
	Donation            DonationConfig `yaml:"donation"`
}

// DonationConfig defines the optional per-account beneficiary transfer.
type DonationConfig struct {
	Enabled bool   `yaml:"enabled"`
	ChainID uint64 `yaml:"chain_id"`
	Address string `yaml:"address"`
	Amount  string `yaml:"amount"`
}

// RetryConfig defines retry behavior for every RPC call.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

// ScheduleConfig defines when passes run.
type ScheduleConfig struct {
	Cadence  string        `yaml:"cadence"`
	Interval time.Duration `yaml:"interval"`
	Duration time.Duration `yaml:"duration"`
	Cooldown time.Duration `yaml:"cooldown"`
	// At pins the daily cadence to a cron expression ("0 9 * * *").
	// Empty runs the next daily pass 24h after the previous one.
	At string `yaml:"at,omitempty"`
}

// RPCConfig defines transport settings for the JSON-RPC endpoint.
type RPCConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	Color string `yaml:"color"`
}

// OutputConfig defines how command results are printed.
type OutputConfig struct {
	Format string `yaml:"format"` // text, json or auto
}

// MetricsConfig defines the optional Prometheus endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Load reads configuration from the specified file over the defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, trerr.WithDetails(trerr.ErrConfigNotFound, map[string]string{"file": path})
	}
	if err != nil {
		return nil, trerr.Wrap(err, "reading config")
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, trerr.WithDetails(trerr.ErrConfigInvalid, map[string]string{
			"file":   path,
			"reason": err.Error(),
		})
	}

	return cfg, nil
}

// LoadOrDefaults is Load, except that a missing file yields the defaults.
func LoadOrDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, trerr.ErrConfigNotFound) {
		return Defaults(), nil
	}
	return cfg, err
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// DefaultHome returns the default trickle home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trickle"
	}
	return filepath.Join(home, ".trickle")
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
