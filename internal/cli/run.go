package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/trickle/internal/account"
	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/chain/eth"
	"github.com/mrz1836/trickle/internal/config"
	"github.com/mrz1836/trickle/internal/dispatch"
	"github.com/mrz1836/trickle/internal/inputs"
	"github.com/mrz1836/trickle/internal/metrics"
	"github.com/mrz1836/trickle/internal/network"
	"github.com/mrz1836/trickle/internal/output"
	"github.com/mrz1836/trickle/internal/scheduler"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	runNetwork       string
	runRPCURL        string
	runKeys          string
	runAddresses     string
	runPolicy        string
	runTransfers     int
	runCadence       string
	runSeed          uint64
	runMetricsListen string
	runOnce          bool
)

// runCmd starts the dispatcher.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch transfers on a schedule",
	Long: `Load the funded accounts and destinations, then send a transfer from
every account to its targets on every pass.

The tight cadence repeats a pass every schedule.interval until
schedule.duration has elapsed. The daily cadence repeats forever, once
a day. Ctrl-C stops the run between sends.`,
	Example: `  trickle run --network sepolia --keys keys.json --addresses addresses.json
  trickle run --policy random --transfers 3 --cadence daily
  trickle run --once --network 11155111`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyRunFlags(cmd, cfg); err != nil {
			return err
		}
		return runDispatch(cmd.Context(), Context(), runOnce)
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	f := runCmd.Flags()
	f.StringVarP(&runNetwork, "network", "n", "", "network name or chain id")
	f.StringVar(&runRPCURL, "rpc-url", "", "override the network's RPC endpoint")
	f.StringVar(&runKeys, "keys", "", "private key file (.json, text or .age)")
	f.StringVar(&runAddresses, "addresses", "", "destination address file")
	f.StringVar(&runPolicy, "policy", "", "destination policy: sequential or random")
	f.IntVarP(&runTransfers, "transfers", "t", 0, "transfers per account for the random policy")
	f.StringVar(&runCadence, "cadence", "", "schedule cadence: tight or daily")
	f.Uint64Var(&runSeed, "seed", 0, "random seed for amounts and targets (0 = time-based)")
	f.StringVar(&runMetricsListen, "metrics-listen", "", "serve Prometheus metrics on this address")
	f.BoolVar(&runOnce, "once", false, "run a single pass and exit")

	runCmd.GroupID = groupDispatch
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags copies explicitly set flags over the configuration.
func applyRunFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("network") {
		c.Network = strings.TrimSpace(runNetwork)
	}
	if flags.Changed("rpc-url") {
		c.RPCURL = config.SanitizeURL(runRPCURL)
	}
	if flags.Changed("keys") {
		c.Inputs.KeysFile = runKeys
	}
	if flags.Changed("addresses") {
		c.Inputs.AddressesFile = runAddresses
	}
	if flags.Changed("policy") {
		c.Dispatch.Policy = strings.ToLower(strings.TrimSpace(runPolicy))
	}
	if flags.Changed("transfers") {
		if runTransfers < 1 {
			return usageError(fmt.Errorf("--transfers must be positive, got %d", runTransfers)) //nolint:err113 // one-off usage message
		}
		c.Dispatch.TransfersPerAccount = runTransfers
	}
	if flags.Changed("cadence") {
		c.Schedule.Cadence = strings.ToLower(strings.TrimSpace(runCadence))
	}
	if flags.Changed("seed") {
		c.Dispatch.Seed = runSeed
	}
	if flags.Changed("metrics-listen") {
		c.Metrics.Listen = strings.TrimSpace(runMetricsListen)
	}
	return nil
}

// runDispatch loads every input, dials the network and drives the
// processor either once or through the scheduler.
//
//nolint:gocognit,gocyclo // Startup is a linear sequence of steps
func runDispatch(ctx context.Context, cc *CommandContext, once bool) error {
	c := cc.Cfg
	if err := c.Validate(); err != nil {
		return err
	}

	profile, err := resolveProfile(c)
	if err != nil {
		return err
	}
	log := cc.Log.With().Str("network", profile.Name).Logger()

	amounts, err := c.Dispatch.Amounts()
	if err != nil {
		return err
	}

	accounts, err := inputs.LoadKeys(config.ExpandPath(c.Inputs.KeysFile), passphraseFor(c))
	if err != nil {
		return err
	}
	destinations, err := inputs.LoadAddresses(config.ExpandPath(c.Inputs.AddressesFile))
	if err != nil {
		return err
	}

	seed := c.Dispatch.Seed
	if seed == 0 {
		seed = uint64(cc.Clock.Now().UnixNano()) //nolint:gosec // G115: any bit pattern is a valid seed
	}
	rng := dispatch.NewSeededRand(seed)
	log.Debug().Uint64("seed", seed).Msg("random source seeded")

	source, err := dispatch.NewAmountSource(rng, amounts.Min, amounts.Max)
	if err != nil {
		return err
	}

	policy, err := policyFor(cc, rng)
	if err != nil {
		return err
	}

	var donation *dispatch.Donation
	if c.Dispatch.Donation.Enabled {
		to, perr := eth.ParseAddress(c.Dispatch.Donation.Address)
		if perr != nil {
			return perr
		}
		donation = &dispatch.Donation{ChainID: c.Dispatch.Donation.ChainID, To: to, Amount: amounts.Donation}
		if donation.ChainID != profile.ChainID {
			log.Debug().Uint64("donation_chain_id", donation.ChainID).Msg("donation disabled on this network")
		}
	}

	output.Banner(cc.Stderr, output.BannerInfo{
		Version:      buildInfo.Current(),
		Network:      profile.Name,
		ChainID:      profile.ChainID,
		Symbol:       profile.Symbol,
		RPCURL:       redactURL(profile.RPCURL),
		Accounts:     len(accounts),
		Destinations: len(destinations),
		Policy:       policy.Name(),
		Cadence:      cadenceLabel(c, once),
	})

	if c.Metrics.Listen != "" {
		srv, lerr := metrics.Listen(c.Metrics.Listen, cc.Metrics)
		if lerr != nil {
			return trerr.WithDetails(trerr.Wrap(lerr, "starting metrics endpoint"), map[string]string{"listen": c.Metrics.Listen})
		}
		log.Info().Str("addr", srv.Addr()).Msg("serving metrics")
		go func() {
			if serr := srv.Serve(ctx); serr != nil {
				log.Warn().Err(serr).Msg("metrics endpoint stopped")
			}
		}()
	}

	client, err := cc.Dial(ctx, profile, &eth.ClientOptions{
		Timeout: c.RPC.Timeout,
		Limiter: chain.NewRateLimiter(c.RPC.RatePerSecond, c.RPC.Burst),
		Metrics: cc.Metrics,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	proc := dispatch.NewProcessor(client, dispatch.Options{
		Profile: profile,
		Retry: chain.RetryConfig{
			MaxAttempts: c.Retry.MaxAttempts,
			Delay:       c.Retry.Delay,
		},
		SettleDelay: c.Dispatch.SettleDelay,
		MinReserve:  amounts.MinReserve,
		Amounts:     source,
		Policy:      policy,
		Donation:    donation,
		Logger:      log,
		Metrics:     cc.Metrics,
		Now:         cc.Clock.Now,
	})

	pass := newPass(proc, accounts, destinations, log)

	if once {
		return stopReason(ctx, cc, pass(ctx))
	}

	sched, err := scheduler.New(scheduler.Config{
		Cadence:  scheduler.Cadence(c.Schedule.Cadence),
		Interval: c.Schedule.Interval,
		Duration: c.Schedule.Duration,
		Cooldown: c.Schedule.Cooldown,
		At:       c.Schedule.At,
		Clock:    cc.Clock,
		Logger:   log,
		Metrics:  cc.Metrics,
	}, pass)
	if err != nil {
		return err
	}

	_, err = sched.Run(ctx, scheduler.State{})
	return stopReason(ctx, cc, err)
}

// newPass adapts the processor to the scheduler. A pass in which no
// balance could be read at all is reported as an error so the scheduler
// treats it as critical.
func newPass(proc *dispatch.Processor, accounts []*account.Account, destinations []common.Address, log zerolog.Logger) scheduler.Pass {
	return func(ctx context.Context) error {
		report := proc.ProcessCycle(ctx, accounts, destinations)
		log.Info().EmbedObject(report).Msg("cycle summary")

		if report.Interrupted {
			return ctx.Err()
		}
		if report.Accounts > 0 && report.QueryFailures == report.Accounts {
			return trerr.WithDetails(trerr.ErrQuery, map[string]string{
				"accounts": strconv.Itoa(report.Accounts),
				"reason":   "no account balance could be read",
			})
		}
		return nil
	}
}

// stopReason turns the clean ways a run ends into a nil error.
func stopReason(ctx context.Context, cc *CommandContext, err error) error {
	switch {
	case err == nil:
		cc.Log.Info().Msg("pass complete")
		return nil
	case errors.Is(err, trerr.ErrDeadlineReached):
		cc.Log.Info().Str("cycles", trerr.Detail(err, "cycles")).Msg("run complete")
		cc.Log.Info().Str("address", config.DefaultDonationAddress).
			Msg("if trickle saved you time, donations are welcome")
		return nil
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		cc.Log.Warn().Msg("interrupted, stopping")
		return nil
	default:
		return err
	}
}

// resolveProfile looks up the configured network and applies the RPC
// override. A chain id missing from the catalog is accepted when an RPC
// URL is given.
func resolveProfile(c *config.Config) (chain.Profile, error) {
	catalog, err := network.Load(config.ExpandPath(c.NetworksFile))
	if err != nil {
		return chain.Profile{}, err
	}

	profile, err := catalog.Lookup(c.Network)
	if err != nil {
		id, perr := strconv.ParseUint(strings.TrimSpace(c.Network), 10, 64)
		if perr != nil || c.RPCURL == "" || id == 0 {
			return chain.Profile{}, err
		}
		profile = chain.Profile{Name: "chain-" + strconv.FormatUint(id, 10), ChainID: id, Symbol: "ETH"}
	}

	if c.RPCURL != "" {
		profile.RPCURL = c.RPCURL
	}
	if profile.RPCURL == "" {
		return chain.Profile{}, trerr.WithSuggestion(
			trerr.WithDetails(trerr.ErrRPCURLRequired, map[string]string{"network": profile.Name}),
			"pass --rpc-url or set TRICKLE_RPC_URL")
	}
	return profile, nil
}

// policyFor builds the configured destination policy. The random policy
// asks for its transfer count when none is configured and a terminal is
// attached.
func policyFor(cc *CommandContext, rng *rand.Rand) (dispatch.Policy, error) {
	if cc.Cfg.Dispatch.Policy != config.PolicyRandom {
		return dispatch.Sequential{}, nil
	}

	n := cc.Cfg.Dispatch.TransfersPerAccount
	if n < 1 {
		if !stdinIsTerminal() {
			return nil, trerr.WithSuggestion(
				trerr.WithDetails(trerr.ErrInvalidInput, map[string]string{"reason": "random policy needs a transfer count"}),
				"pass --transfers or set TRICKLE_TRANSFERS")
		}
		var err error
		if n, err = promptTransfersFn(cc.Stdin, cc.Stderr); err != nil {
			return nil, err
		}
	}
	return dispatch.NewRandom(n, rng), nil
}

func cadenceLabel(c *config.Config, once bool) string {
	switch {
	case once:
		return "single pass"
	case c.Schedule.Cadence == config.CadenceDaily && c.Schedule.At != "":
		return "daily at " + c.Schedule.At
	case c.Schedule.Cadence == config.CadenceDaily:
		return "daily"
	default:
		return fmt.Sprintf("every %s for %s", c.Schedule.Interval, c.Schedule.Duration)
	}
}

// redactURL keeps the scheme and host of an RPC URL. Paths and query
// strings of hosted providers usually carry API keys.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(custom)"
	}
	out := u.Scheme + "://" + u.Host
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" {
		out += "/…"
	}
	return out
}
