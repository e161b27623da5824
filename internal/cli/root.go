// Package cli implements the trickle command-line interface.
//
// Commands share state through package-level variables that are set up in
// PersistentPreRunE and released in PersistentPostRun, the usual Cobra layout.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/trickle/internal/config"
	"github.com/mrz1836/trickle/internal/output"
	"github.com/mrz1836/trickle/internal/version"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	logLevel     string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    = zerolog.Nop()
	logCloser io.Closer
	formatter *output.Formatter
	cmdCtx    *CommandContext

	buildInfo version.BuildInfo
)

// Help groups for top-level commands.
const (
	groupDispatch = "dispatch"
	groupConfig   = "config"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "trickle",
	Short: "Unattended micro-transfer dispatcher for EVM networks",
	Long: `trickle sends small native-currency transfers from a set of funded
accounts to a set of destination addresses, over and over, on a schedule.

Every account is checked against a minimum reserve before each transfer,
every network call is retried, and a failed pass never stops the schedule.`,
	Example: `  trickle init
  trickle networks --testnet
  trickle run --network sepolia --keys keys.json --addresses addresses.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context so a running schedule stops between sends.
func Execute(info version.BuildInfo) error {
	buildInfo = info

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		formatErr(err)
		return err
	}
	return nil
}

// ExitCode returns the process exit code for an error returned by Execute.
// An interrupt is a clean stop.
func ExitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return trerr.ExitSuccess
	}
	return trerr.ExitCode(err)
}

// formatErr prints err in the active output format.
func formatErr(err error) {
	format := output.FormatText
	if formatter != nil {
		format = formatter.Format()
	}
	_ = output.FormatError(os.Stderr, err, format)
}

// initGlobals loads configuration and builds the logger and formatter.
// Precedence: flags, then environment, then the config file, then defaults.
func initGlobals(cmd *cobra.Command) error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	loaded, err := config.LoadOrDefaults(config.Path(home))
	if err != nil {
		return err
	}
	cfg = loaded
	cfg.Home = home

	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if outputFormat != "" && outputFormat != string(output.FormatAuto) {
		cfg.Output.Format = outputFormat
	}

	var lerr error
	logger, logCloser, lerr = config.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if lerr != nil {
		return lerr
	}

	formatter = output.NewFormatter(output.ParseFormat(cfg.Output.Format), cmd.OutOrStdout())
	cmdCtx = NewCommandContext(cfg, logger, formatter)
	cmdCtx.Stderr = cmd.ErrOrStderr()
	return nil
}

// cleanup releases resources.
func cleanup() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// Context returns the dependencies shared by commands.
func Context() *CommandContext {
	return cmdCtx
}

// usageError marks bad flag values so they exit with the usage code.
func usageError(err error) error {
	return trerr.WithDetails(trerr.ErrInvalidInput, map[string]string{"reason": err.Error()})
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "trickle data directory (default: ~/.trickle)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupDispatch, Title: "Dispatch:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
}
