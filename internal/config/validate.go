package config

import (
	"math/big"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/chain/eth"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// Amounts are the dispatch amounts in wei.
type Amounts struct {
	MinReserve *big.Int
	Min        *big.Int
	Max        *big.Int
	Donation   *big.Int
}

// Amounts parses the configured decimal amounts.
func (d DispatchConfig) Amounts() (Amounts, error) {
	var a Amounts
	for _, f := range []struct {
		field string
		value string
		dst   **big.Int
	}{
		{"dispatch.min_reserve", d.MinReserve, &a.MinReserve},
		{"dispatch.amount_min", d.AmountMin, &a.Min},
		{"dispatch.amount_max", d.AmountMax, &a.Max},
		{"dispatch.donation.amount", d.Donation.Amount, &a.Donation},
	} {
		v, err := chain.ParseNative(f.value)
		if err != nil {
			return Amounts{}, invalid(f.field, "not a non-negative decimal amount: "+f.value)
		}
		*f.dst = v
	}

	if a.Min.Cmp(a.Max) > 0 {
		return Amounts{}, invalid("dispatch.amount_min", "must not exceed dispatch.amount_max")
	}
	if a.Max.Sign() == 0 {
		return Amounts{}, invalid("dispatch.amount_max", "must be positive")
	}
	return a, nil
}

// Validate checks the configuration for values that would make the
// dispatcher misbehave, returning ErrConfigInvalid with the offending field.
//
//nolint:gocognit,gocyclo // Field checks are sequential
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Network) == "" {
		return invalid("network", "a network name or chain id is required")
	}

	switch c.Dispatch.Policy {
	case PolicySequential, PolicyRandom:
	default:
		return invalid("dispatch.policy", "must be sequential or random")
	}

	if c.Dispatch.TransfersPerAccount < 0 {
		return invalid("dispatch.transfers_per_account", "must not be negative")
	}

	if c.Dispatch.SettleDelay < 0 {
		return invalid("dispatch.settle_delay", "must not be negative")
	}

	if _, err := c.Dispatch.Amounts(); err != nil {
		return err
	}

	if c.Dispatch.Donation.Enabled {
		if c.Dispatch.Donation.ChainID == 0 {
			return invalid("dispatch.donation.chain_id", "required when donation is enabled")
		}
		if _, err := eth.ParseAddress(c.Dispatch.Donation.Address); err != nil {
			return invalid("dispatch.donation.address", "not a valid address")
		}
	}

	if c.Retry.MaxAttempts < 1 {
		return invalid("retry.max_attempts", "must be at least 1")
	}
	if c.Retry.Delay < 0 {
		return invalid("retry.delay", "must not be negative")
	}

	switch c.Schedule.Cadence {
	case CadenceTight:
		if c.Schedule.Interval <= 0 {
			return invalid("schedule.interval", "must be positive")
		}
		if c.Schedule.Duration <= 0 {
			return invalid("schedule.duration", "must be positive")
		}
	case CadenceDaily:
		if c.Schedule.At != "" {
			if _, err := cron.ParseStandard(c.Schedule.At); err != nil {
				return invalid("schedule.at", err.Error())
			}
		}
	default:
		return invalid("schedule.cadence", "must be tight or daily")
	}
	if c.Schedule.Cooldown < 0 {
		return invalid("schedule.cooldown", "must not be negative")
	}

	if c.RPC.Timeout < 0 {
		return invalid("rpc.timeout", "must not be negative")
	}

	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Color {
	case "auto", "always", "never":
	default:
		return invalid("logging.color", "must be auto, always or never")
	}
	switch c.Output.Format {
	case "auto", "text", "json":
	default:
		return invalid("output.format", "must be auto, text or json")
	}

	return nil
}

func invalid(field, reason string) error {
	return trerr.WithDetails(trerr.ErrConfigInvalid, map[string]string{
		"field":  field,
		"reason": reason,
	})
}
