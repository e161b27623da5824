package dispatch

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/mrz1836/trickle/internal/account"
	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/metrics"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// Gate decides whether an account holds enough to keep sending.
// Balances are never cached; every call reads the network.
type Gate struct {
	client     chain.BalanceReader
	retry      chain.RetryConfig
	minReserve *big.Int
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

// NewGate creates a gate that requires at least minReserve wei.
func NewGate(client chain.BalanceReader, retry chain.RetryConfig, minReserve *big.Int, log zerolog.Logger, m *metrics.Metrics) *Gate {
	if m == nil {
		m = metrics.Global
	}
	return &Gate{
		client:     client,
		retry:      retry,
		minReserve: new(big.Int).Set(minReserve),
		log:        log,
		metrics:    m,
	}
}

// Check returns the current balance of acct in wei. When every attempt
// fails the error matches ErrQuery and the last attempt's error. A canceled
// context is returned unchanged.
func (g *Gate) Check(ctx context.Context, acct *account.Account) (*big.Int, error) {
	cfg := retryFor(g.retry, g.log.With().Str("account", acct.String()).Logger(), g.metrics, "balance")

	balance, err := chain.Retry(ctx, cfg, func(ctx context.Context) (*big.Int, error) {
		return g.client.GetBalance(ctx, acct.Address)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, trerr.WithDetails(fmt.Errorf("%w: %w", trerr.ErrQuery, err), map[string]string{
			"account": acct.String(),
		})
	}
	return balance, nil
}

// Eligible reports whether balance is at or above the minimum reserve.
func (g *Gate) Eligible(balance *big.Int) bool {
	return balance != nil && balance.Cmp(g.minReserve) >= 0
}

// Require returns nil when balance meets the reserve and an error matching
// ErrBelowReserve otherwise.
func (g *Gate) Require(balance *big.Int) error {
	if g.Eligible(balance) {
		return nil
	}
	have := "unknown"
	if balance != nil {
		have = chain.FormatNative(balance)
	}
	return trerr.WithDetails(trerr.ErrBelowReserve, map[string]string{
		"balance": have,
		"reserve": chain.FormatNative(g.minReserve),
	})
}

// MinReserve returns the reserve threshold in wei.
func (g *Gate) MinReserve() *big.Int {
	return new(big.Int).Set(g.minReserve)
}
