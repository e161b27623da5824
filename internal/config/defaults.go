package config

import (
	"time"

	"github.com/mrz1836/trickle/internal/chain"
)

// Policy and cadence names.
const (
	PolicySequential = "sequential"
	PolicyRandom     = "random"

	CadenceTight = "tight"
	CadenceDaily = "daily"
)

// DefaultDonationAddress is the beneficiary used when donation is enabled
// without an explicit address.
const DefaultDonationAddress = "0xf01fb9a6855f175d3f3e28e00fa617009c38ef59"

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Network: "sepolia",
		Inputs: InputsConfig{
			KeysFile:          "privateKeys.json",
			AddressesFile:     "addresses.json",
			KeysPassphraseEnv: EnvKeysPassphrase,
		},
		Dispatch: DispatchConfig{
			MinReserve:  "0.001",
			AmountMin:   "0.00000001",
			AmountMax:   "0.0000001",
			Policy:      PolicySequential,
			SettleDelay: 15 * time.Second,
			Donation: DonationConfig{
				Address: DefaultDonationAddress,
				Amount:  "0.0001",
			},
		},
		Retry: RetryConfig{
			MaxAttempts: chain.DefaultMaxAttempts,
			Delay:       chain.DefaultRetryDelay,
		},
		Schedule: ScheduleConfig{
			Cadence:  CadenceTight,
			Interval: 10 * time.Minute,
			Duration: 24 * time.Hour,
			Cooldown: 60 * time.Second,
		},
		RPC: RPCConfig{
			Timeout:       30 * time.Second,
			RatePerSecond: chain.DefaultRatePerSecond,
			Burst:         chain.DefaultRateBurst,
		},
		Logging: LoggingConfig{
			Level: "info",
			Color: "auto",
		},
		Output: OutputConfig{Format: "auto"},
	}
}
