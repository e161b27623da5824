// Package errors provides structured error handling for trickle.
// It defines the closed set of error kinds the dispatcher works with,
// process exit codes, and helpers for attaching context to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"maps"
	"sort"
)

// Exit codes.
const (
	ExitSuccess = 0 // Clean shutdown (deadline reached or interrupted)
	ExitStartup = 1 // Unrecoverable startup error (config, key or address files)
	ExitUsage   = 2 // Invalid flag or argument values
)

// TrickleError is the structured error type for trickle.
type TrickleError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context (account, destination, step)
	Suggestion string            // Actionable suggestion for the operator
	Cause      error             // Underlying error
	ExitCode   int               // Exit code if this error stops the process
}

func (e *TrickleError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TrickleError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for TrickleError.
func (e *TrickleError) Is(target error) bool {
	var t *TrickleError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Runtime error kinds. None of these stop the process.
var (
	ErrTransientNetwork = &TrickleError{
		Code:     "TRANSIENT_NETWORK",
		Message:  "network call failed",
		ExitCode: ExitStartup,
	}

	ErrQuery = &TrickleError{
		Code:     "BALANCE_QUERY_FAILED",
		Message:  "balance query failed",
		ExitCode: ExitStartup,
	}

	ErrFeeQuery = &TrickleError{
		Code:     "FEE_QUERY_FAILED",
		Message:  "fee estimate query failed",
		ExitCode: ExitStartup,
	}

	ErrInsufficientFunds = &TrickleError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds for amount plus gas",
		ExitCode: ExitStartup,
	}

	ErrBelowReserve = &TrickleError{
		Code:     "BELOW_RESERVE",
		Message:  "balance below minimum reserve",
		ExitCode: ExitStartup,
	}

	ErrRetryExhausted = &TrickleError{
		Code:     "RETRY_EXHAUSTED",
		Message:  "retry attempts exhausted",
		ExitCode: ExitStartup,
	}

	ErrReceiptNotFound = &TrickleError{
		Code:     "RECEIPT_NOT_FOUND",
		Message:  "transaction receipt not available yet",
		ExitCode: ExitStartup,
	}

	ErrTxReverted = &TrickleError{
		Code:     "TX_REVERTED",
		Message:  "transaction reverted",
		ExitCode: ExitStartup,
	}

	ErrCriticalCycle = &TrickleError{
		Code:     "CRITICAL_CYCLE_ERROR",
		Message:  "cycle aborted unexpectedly",
		ExitCode: ExitStartup,
	}

	ErrDeadlineReached = &TrickleError{
		Code:     "DEADLINE_REACHED",
		Message:  "run duration elapsed",
		ExitCode: ExitSuccess,
	}
)

// Startup error kinds. These stop the process with ExitStartup or ExitUsage.
var (
	ErrConfigNotFound = &TrickleError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitStartup,
	}

	ErrConfigInvalid = &TrickleError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration is invalid",
		ExitCode: ExitStartup,
	}

	ErrInvalidInput = &TrickleError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitUsage,
	}

	ErrInvalidAddress = &TrickleError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitStartup,
	}

	ErrInvalidChecksum = &TrickleError{
		Code:     "INVALID_CHECKSUM",
		Message:  "invalid address checksum",
		ExitCode: ExitStartup,
	}

	ErrInvalidKey = &TrickleError{
		Code:     "INVALID_KEY",
		Message:  "invalid private key",
		ExitCode: ExitStartup,
	}

	ErrNoKeys = &TrickleError{
		Code:     "NO_KEYS",
		Message:  "no private keys configured",
		ExitCode: ExitStartup,
	}

	ErrNoDestinations = &TrickleError{
		Code:     "NO_DESTINATIONS",
		Message:  "no destination addresses configured",
		ExitCode: ExitStartup,
	}

	ErrInputFile = &TrickleError{
		Code:     "INPUT_FILE_INVALID",
		Message:  "input file could not be read",
		ExitCode: ExitStartup,
	}

	ErrDecryptionFailed = &TrickleError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong passphrase or corrupted file",
		ExitCode: ExitStartup,
	}

	ErrUnknownNetwork = &TrickleError{
		Code:     "UNKNOWN_NETWORK",
		Message:  "unknown network",
		ExitCode: ExitStartup,
	}

	ErrChainIDMismatch = &TrickleError{
		Code:     "CHAIN_ID_MISMATCH",
		Message:  "RPC endpoint reports a different chain id",
		ExitCode: ExitStartup,
	}

	ErrRPCURLRequired = &TrickleError{
		Code:     "RPC_URL_REQUIRED",
		Message:  "RPC URL is required",
		ExitCode: ExitStartup,
	}

	ErrInvalidAmount = &TrickleError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitStartup,
	}

	ErrInvalidTransaction = &TrickleError{
		Code:     "INVALID_TRANSACTION",
		Message:  "invalid transaction parameters",
		ExitCode: ExitStartup,
	}
)

// New creates a new TrickleError with the given code and message.
func New(code, message string) *TrickleError {
	return &TrickleError{
		Code:     code,
		Message:  message,
		ExitCode: ExitStartup,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var te *TrickleError
	if errors.As(err, &te) {
		return &TrickleError{
			Code:       te.Code,
			Message:    fmt.Sprintf("%s: %s", msg, te.Message),
			Details:    te.Details,
			Suggestion: te.Suggestion,
			Cause:      err,
			ExitCode:   te.ExitCode,
		}
	}

	return &TrickleError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitStartup,
	}
}

// WithDetails adds details to an error. Details already present on the
// error are kept unless overwritten by the same key.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var te *TrickleError
	if errors.As(err, &te) {
		merged := make(map[string]string, len(te.Details)+len(details))
		maps.Copy(merged, te.Details)
		maps.Copy(merged, details)

		// Keep the full chain when err is a wrapper around the kind.
		cause := te.Cause
		if err != error(te) {
			cause = unwrapOnce(err, te)
		}

		return &TrickleError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    merged,
			Suggestion: te.Suggestion,
			Cause:      cause,
			ExitCode:   te.ExitCode,
		}
	}

	return &TrickleError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitStartup,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var te *TrickleError
	if errors.As(err, &te) {
		return &TrickleError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    te.Details,
			Suggestion: suggestion,
			Cause:      te.Cause,
			ExitCode:   te.ExitCode,
		}
	}

	return &TrickleError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitStartup,
	}
}

// unwrapOnce returns the errors joined with kind by a multi-%w wrapper, or
// err itself when kind is buried deeper in the chain.
func unwrapOnce(err error, kind *TrickleError) error {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		var rest []error
		for _, e := range multi.Unwrap() {
			if e != error(kind) {
				rest = append(rest, e)
			}
		}
		if len(rest) == 1 {
			return rest[0]
		}
		return errors.Join(rest...)
	}
	return err
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var te *TrickleError
	if errors.As(err, &te) {
		return te.ExitCode
	}

	return ExitStartup
}

// Code returns the error code for an error.
func Code(err error) string {
	var te *TrickleError
	if errors.As(err, &te) {
		return te.Code
	}
	return "GENERAL_ERROR"
}

// Detail returns a single detail value, or "" when absent.
func Detail(err error, key string) string {
	var te *TrickleError
	if errors.As(err, &te) {
		return te.Details[key]
	}
	return ""
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
