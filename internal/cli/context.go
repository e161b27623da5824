package cli

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/chain/eth"
	"github.com/mrz1836/trickle/internal/config"
	"github.com/mrz1836/trickle/internal/metrics"
	"github.com/mrz1836/trickle/internal/output"
	"github.com/mrz1836/trickle/internal/scheduler"
)

// RPCClient is a dialed endpoint.
type RPCClient interface {
	chain.Client
	Close()
}

// DialFunc connects to the network described by profile.
type DialFunc func(ctx context.Context, profile chain.Profile, opts *eth.ClientOptions) (RPCClient, error)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Log       zerolog.Logger
	Formatter *output.Formatter
	Metrics   *metrics.Metrics
	Dial      DialFunc
	Clock     scheduler.Clock
	Stdin     io.Reader
	Stderr    io.Writer
}

// NewCommandContext creates a context with production dependencies.
func NewCommandContext(cfg *config.Config, log zerolog.Logger, formatter *output.Formatter) *CommandContext {
	return &CommandContext{
		Cfg:       cfg,
		Log:       log,
		Formatter: formatter,
		Metrics:   metrics.Global,
		Dial:      dialEth,
		Clock:     scheduler.RealClock(),
		Stdin:     os.Stdin,
		Stderr:    os.Stderr,
	}
}

// WithDial sets the dial function.
func (c *CommandContext) WithDial(dial DialFunc) *CommandContext {
	c.Dial = dial
	return c
}

// WithClock sets the scheduler clock.
func (c *CommandContext) WithClock(clock scheduler.Clock) *CommandContext {
	c.Clock = clock
	return c
}

func dialEth(ctx context.Context, profile chain.Profile, opts *eth.ClientOptions) (RPCClient, error) {
	c, err := eth.Dial(ctx, profile, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}
