package dispatch

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/mrz1836/trickle/internal/account"
	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/chain/eth"
	"github.com/mrz1836/trickle/internal/metrics"
)

// Donation is a fixed transfer sent once per account per pass before the
// regular transfers, only on the network whose chain id matches.
type Donation struct {
	ChainID uint64
	To      common.Address
	Amount  *big.Int
}

// Options configures a Processor.
type Options struct {
	Profile     chain.Profile
	Retry       chain.RetryConfig
	SettleDelay time.Duration
	MinReserve  *big.Int
	Amounts     *AmountSource
	Policy      Policy
	Donation    *Donation // nil disables the donation step
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

// Processor runs one pass over every account.
type Processor struct {
	gate     *Gate
	sender   *Sender
	amounts  *AmountSource
	policy   Policy
	donation *Donation
	profile  chain.Profile
	log      zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewProcessor wires a gate and a sender around client.
func NewProcessor(client chain.Client, opts Options) *Processor {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Global
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy == nil {
		opts.Policy = Sequential{}
	}
	if opts.MinReserve == nil {
		opts.MinReserve = new(big.Int)
	}

	donation := opts.Donation
	if donation != nil && donation.ChainID != opts.Profile.ChainID {
		donation = nil
	}

	return &Processor{
		gate: NewGate(client, opts.Retry, opts.MinReserve, opts.Logger, opts.Metrics),
		sender: NewSender(client, SenderConfig{
			Profile:     opts.Profile,
			Retry:       opts.Retry,
			SettleDelay: opts.SettleDelay,
			Nonces:      eth.NewNonceManager(),
			Logger:      opts.Logger,
			Metrics:     opts.Metrics,
		}),
		amounts:  opts.Amounts,
		policy:   opts.Policy,
		donation: donation,
		profile:  opts.Profile,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
}

// ProcessCycle visits every account in order and never fails: every
// problem is logged, counted in the report and the pass moves on.
// A canceled context stops the pass between sends.
func (p *Processor) ProcessCycle(ctx context.Context, accounts []*account.Account, destinations []common.Address) *CycleReport {
	report := &CycleReport{StartedAt: p.now()}
	defer func() { report.FinishedAt = p.now() }()

	for i, acct := range accounts {
		if ctx.Err() != nil {
			report.Interrupted = true
			return report
		}
		report.Accounts++

		log := p.log.With().Int("index", i+1).Int("of", len(accounts)).Str("account", acct.String()).Logger()
		if !p.processAccount(ctx, log, acct, destinations, report) {
			report.Interrupted = true
			return report
		}
	}
	return report
}

// processAccount runs the per-account steps. It returns false only when
// the context was canceled.
func (p *Processor) processAccount(ctx context.Context, log zerolog.Logger, acct *account.Account, destinations []common.Address, report *CycleReport) bool {
	balance, ok := p.eligibleBalance(ctx, log, acct, report)
	if !ok {
		return ctx.Err() == nil
	}

	if p.donation != nil {
		o := p.sender.Send(ctx, acct, p.donation.To, p.donation.Amount, balance)
		p.metrics.RecordOutcome(string(o.Status))
		if o.Submitted() {
			report.Donations++
		}
		if o.Err != nil {
			log.Warn().Err(o.Err).Str("status", string(o.Status)).Msg("donation transfer not confirmed")
		}
		if ctx.Err() != nil {
			return false
		}
		if balance, ok = p.eligibleBalance(ctx, log, acct, report); !ok {
			return ctx.Err() == nil
		}
	}

	for n, to := range p.policy.Targets(destinations) {
		if ctx.Err() != nil {
			return false
		}
		if n > 0 {
			if balance, ok = p.eligibleBalance(ctx, log, acct, report); !ok {
				return ctx.Err() == nil
			}
		}

		o := p.sender.Send(ctx, acct, to, p.amounts.Next(), balance)
		report.Add(o)
		p.metrics.RecordOutcome(string(o.Status))
		p.logOutcome(log, o)
	}
	return ctx.Err() == nil
}

// eligibleBalance reads the balance and applies the reserve gate.
func (p *Processor) eligibleBalance(ctx context.Context, log zerolog.Logger, acct *account.Account, report *CycleReport) (*big.Int, bool) {
	balance, err := p.gate.Check(ctx, acct)
	if err != nil {
		if ctx.Err() == nil {
			report.QueryFailures++
			log.Error().Err(err).Msg("balance query failed, skipping account")
		}
		return nil, false
	}

	log.Info().Str("balance", eth.FormatBalance(balance, p.profile.Symbol)).Msg("current balance")

	if err := p.gate.Require(balance); err != nil {
		report.BelowReserve++
		log.Warn().
			Err(err).
			Str("reserve", eth.FormatBalance(p.gate.MinReserve(), p.profile.Symbol)).
			Msg("balance below minimum reserve, skipping account")
		return nil, false
	}
	return balance, true
}

func (p *Processor) logOutcome(log zerolog.Logger, o Outcome) {
	switch o.Status {
	case StatusConfirmed:
		// Sender already logged the explorer link.
	case StatusSkipped:
		log.Warn().Err(o.Err).Str("destination", o.To.Hex()).Msg("transfer skipped")
	case StatusPending:
		log.Warn().Str("destination", o.To.Hex()).Str("tx", o.TxHash.Hex()).Msg("transfer pending")
	default:
		log.Error().Err(o.Err).Str("destination", o.To.Hex()).Str("status", string(o.Status)).Msg("transfer failed")
	}
}
