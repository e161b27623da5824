package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trickle/internal/config"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.Defaults()
	cfg.Network = "base-sepolia"
	cfg.Dispatch.Policy = config.PolicyRandom
	cfg.Dispatch.TransfersPerAccount = 7
	cfg.Schedule.Interval = 3 * time.Minute

	require.NoError(t, config.Save(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: base\nschedule:\n  cadence: daily\nretry:\n  delay: 2s\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "base", cfg.Network)
	assert.Equal(t, config.CadenceDaily, cfg.Schedule.Cadence)
	assert.Equal(t, 2*time.Second, cfg.Retry.Delay)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, "0.001", cfg.Dispatch.MinReserve)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.ErrorIs(t, err, trerr.ErrConfigNotFound)
	})

	t.Run("missing falls back to defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.LoadOrDefaults(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		assert.Equal(t, config.Defaults(), cfg)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retry: [1, 2"), 0o600))
		_, err := config.Load(path)
		require.ErrorIs(t, err, trerr.ErrConfigInvalid)
	})
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "sepolia", cfg.Network)
	assert.Equal(t, "privateKeys.json", cfg.Inputs.KeysFile)
	assert.Equal(t, "addresses.json", cfg.Inputs.AddressesFile)
	assert.Equal(t, config.PolicySequential, cfg.Dispatch.Policy)
	assert.Equal(t, 15*time.Second, cfg.Dispatch.SettleDelay)
	assert.False(t, cfg.Dispatch.Donation.Enabled)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Retry.Delay)
	assert.Equal(t, config.CadenceTight, cfg.Schedule.Cadence)
	assert.Equal(t, 10*time.Minute, cfg.Schedule.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Schedule.Duration)
	assert.Equal(t, time.Minute, cfg.Schedule.Cooldown)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestDispatchAmounts(t *testing.T) {
	t.Parallel()
	a, err := config.Defaults().Dispatch.Amounts()
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000", a.MinReserve.String())
	assert.Equal(t, "10000000000", a.Min.String())
	assert.Equal(t, "100000000000", a.Max.String())
	assert.Equal(t, "100000000000000", a.Donation.String())
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		field  string
	}{
		{"no network", func(c *config.Config) { c.Network = " " }, "network"},
		{"bad policy", func(c *config.Config) { c.Dispatch.Policy = "roundrobin" }, "dispatch.policy"},
		{"negative transfers", func(c *config.Config) { c.Dispatch.TransfersPerAccount = -1 }, "dispatch.transfers_per_account"},
		{"min above max", func(c *config.Config) { c.Dispatch.AmountMin = "1" }, "dispatch.amount_min"},
		{"bad reserve", func(c *config.Config) { c.Dispatch.MinReserve = "-0.1" }, "dispatch.min_reserve"},
		{"zero max", func(c *config.Config) { c.Dispatch.AmountMin, c.Dispatch.AmountMax = "0", "0" }, "dispatch.amount_max"},
		{"donation without chain", func(c *config.Config) { c.Dispatch.Donation.Enabled = true }, "dispatch.donation.chain_id"},
		{"donation bad address", func(c *config.Config) {
			c.Dispatch.Donation.Enabled = true
			c.Dispatch.Donation.ChainID = 1
			c.Dispatch.Donation.Address = "0x123"
		}, "dispatch.donation.address"},
		{"zero attempts", func(c *config.Config) { c.Retry.MaxAttempts = 0 }, "retry.max_attempts"},
		{"bad cadence", func(c *config.Config) { c.Schedule.Cadence = "hourly" }, "schedule.cadence"},
		{"zero interval", func(c *config.Config) { c.Schedule.Interval = 0 }, "schedule.interval"},
		{"zero duration", func(c *config.Config) { c.Schedule.Duration = 0 }, "schedule.duration"},
		{"bad daily pin", func(c *config.Config) {
			c.Schedule.Cadence = config.CadenceDaily
			c.Schedule.At = "every morning"
		}, "schedule.at"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"bad color", func(c *config.Config) { c.Logging.Color = "rainbow" }, "logging.color"},
		{"bad output", func(c *config.Config) { c.Output.Format = "xml" }, "output.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, trerr.ErrConfigInvalid)
			assert.Equal(t, tt.field, trerr.Detail(err, "field"))
		})
	}
}

func TestValidate_DailyIgnoresDuration(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Schedule.Cadence = config.CadenceDaily
	cfg.Schedule.Duration = 0
	require.NoError(t, cfg.Validate())

	cfg.Schedule.At = "30 6 * * *"
	require.NoError(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "relative/file", config.ExpandPath("relative/file"))
	home, err := os.UserHomeDir()
	if err == nil {
		assert.Equal(t, filepath.Join(home, "x.log"), config.ExpandPath("~/x.log"))
	}
}
