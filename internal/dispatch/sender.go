package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/mrz1836/trickle/internal/account"
	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/chain/eth"
	"github.com/mrz1836/trickle/internal/metrics"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// DefaultSettleDelay is the pause between submission and the first receipt poll.
const DefaultSettleDelay = 15 * time.Second

// SenderConfig configures a Sender.
type SenderConfig struct {
	Profile     chain.Profile
	Retry       chain.RetryConfig
	SettleDelay time.Duration
	Nonces      *eth.NonceManager // nil creates a private manager
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
}

// Sender builds, signs, submits and confirms single native transfers.
type Sender struct {
	client  chain.Client
	profile chain.Profile
	retry   chain.RetryConfig
	settle  time.Duration
	nonces  *eth.NonceManager
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewSender creates a Sender bound to client.
func NewSender(client chain.Client, cfg SenderConfig) *Sender {
	if cfg.Nonces == nil {
		cfg.Nonces = eth.NewNonceManager()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Global
	}
	return &Sender{
		client:  client,
		profile: cfg.Profile,
		retry:   cfg.Retry,
		settle:  cfg.SettleDelay,
		nonces:  cfg.Nonces,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}
}

// Send transfers amount from acct to to. balance is the balance read
// immediately before the call; the transfer is skipped when amount plus the
// worst-case fee exceeds it. Send never panics on network failure and
// always returns a classified Outcome.
//
//nolint:gocognit,gocyclo // Linear pipeline with one exit per failure mode
func (s *Sender) Send(ctx context.Context, acct *account.Account, to common.Address, amount, balance *big.Int) Outcome {
	out := Outcome{From: acct.Address, To: to, Amount: new(big.Int).Set(amount)}
	log := s.log.With().Str("account", acct.String()).Str("destination", to.Hex()).Logger()
	details := func(step string) map[string]string {
		return map[string]string{"account": acct.String(), "destination": to.Hex(), "step": step}
	}
	skip := func(err error) Outcome {
		out.Status, out.Err = StatusSkipped, err
		return out
	}

	// Fee per gas unit
	gasPrice, err := chain.Retry(ctx, retryFor(s.retry, log, s.metrics, "fee"), s.client.GasPrice)
	if err != nil {
		if ctx.Err() != nil {
			return skip(ctx.Err())
		}
		return skip(trerr.WithDetails(fmt.Errorf("%w: %w", trerr.ErrFeeQuery, err), details("fee")))
	}

	// Affordability
	cost := eth.TransferCost(amount, gasPrice)
	if cost.Cmp(balance) > 0 {
		d := details("affordability")
		d["cost"] = chain.FormatNative(cost)
		d["balance"] = chain.FormatNative(balance)
		return skip(trerr.WithDetails(trerr.ErrInsufficientFunds, d))
	}

	// Nonce
	pending, err := chain.Retry(ctx, retryFor(s.retry, log, s.metrics, "nonce"), func(ctx context.Context) (uint64, error) {
		return s.client.PendingNonce(ctx, acct.Address)
	})
	if err != nil {
		if ctx.Err() != nil {
			return skip(ctx.Err())
		}
		return skip(trerr.WithDetails(fmt.Errorf("%w: %w", trerr.ErrTransientNetwork, err), details("nonce")))
	}
	nonce := s.nonces.Next(acct.Address, pending)

	// Build and sign
	signed, err := s.sign(acct, to, amount, gasPrice, nonce)
	if err != nil {
		s.nonces.Reset(acct.Address)
		out.Status, out.Err = StatusFailed, trerr.WithDetails(err, details("sign"))
		return out
	}

	log.Info().
		Str("amount", chain.FormatNative(amount)+" "+s.profile.Symbol).
		Str("gas_price", eth.FormatGasPrice(gasPrice)).
		Uint64("nonce", nonce).
		Msg("sending transfer")

	// Submit
	_, err = chain.Retry(ctx, retryFor(s.retry, log, s.metrics, "submit"), func(ctx context.Context) (struct{}, error) {
		err := s.client.SendTransaction(ctx, signed)
		if err != nil && alreadyKnown(err) {
			return struct{}{}, nil
		}
		return struct{}{}, err
	})
	if err != nil {
		s.nonces.Reset(acct.Address)
		if ctx.Err() != nil {
			out.Status, out.Err = StatusFailed, ctx.Err()
			return out
		}
		out.Status, out.Err = StatusFailed, trerr.WithDetails(err, details("submit"))
		log.Error().Err(out.Err).Msg("transfer not submitted")
		return out
	}

	out.TxHash = signed.Hash()
	out.TxURL = s.profile.TxURL(out.TxHash.Hex())
	log = log.With().Str("tx", out.TxHash.Hex()).Logger()
	log.Info().Msg("transfer submitted")

	out = s.confirm(ctx, log, out)
	if out.Status == StatusPending {
		// The pool may drop an unmined transfer; the next send must not
		// build on its nonce.
		s.nonces.Reset(acct.Address)
	}
	return out
}

func (s *Sender) sign(acct *account.Account, to common.Address, amount, gasPrice *big.Int, nonce uint64) (*types.Transaction, error) {
	chainID := s.profile.ChainIDBig()
	tx, err := eth.BuildTransaction(eth.NewTransferParams(to, amount, gasPrice, nonce, chainID))
	if err != nil {
		return nil, err
	}
	signed, err := eth.SignTransaction(tx, acct.Key(), chainID)
	if err != nil {
		return nil, trerr.Wrap(trerr.ErrInvalidTransaction, "%v", err)
	}
	return signed, nil
}

// confirm waits for the settle delay and classifies the receipt. Running
// out of receipt attempts leaves the transfer Pending.
func (s *Sender) confirm(ctx context.Context, log zerolog.Logger, out Outcome) Outcome {
	if err := chain.Sleep(ctx, s.settle); err != nil {
		out.Status, out.Err = StatusPending, err
		return out
	}

	receipt, err := chain.Retry(ctx, retryFor(s.retry, log, s.metrics, "receipt"), func(ctx context.Context) (*types.Receipt, error) {
		return s.client.Receipt(ctx, out.TxHash)
	})
	switch {
	case err != nil:
		out.Status, out.Err = StatusPending, err
		log.Warn().Err(err).Msg("receipt not available, transfer left pending")
	case receipt.Status == types.ReceiptStatusSuccessful:
		out.Status = StatusConfirmed
		ev := log.Info().Uint64("block", blockNumber(receipt))
		if out.TxURL != "" {
			ev = ev.Str("explorer", out.TxURL)
		}
		ev.Msg("transfer confirmed")
	default:
		out.Status = StatusReverted
		out.Err = trerr.WithDetails(trerr.ErrTxReverted, map[string]string{
			"tx": out.TxHash.Hex(),
		})
		log.Error().Msg("transfer reverted")
	}
	return out
}

func blockNumber(r *types.Receipt) uint64 {
	if r.BlockNumber == nil {
		return 0
	}
	return r.BlockNumber.Uint64()
}

// alreadyKnown reports whether a submission error means the pool already
// holds this exact transaction, which happens when an earlier attempt
// reached the node but its response was lost.
func alreadyKnown(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already known") || strings.Contains(msg, "known transaction")
}
