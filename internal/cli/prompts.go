package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/mrz1836/trickle/internal/config"
	"github.com/mrz1836/trickle/internal/inputs"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// maxPromptAttempts bounds re-asking after invalid answers.
const maxPromptAttempts = 3

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // Swappable for tests
var (
	promptPasswordFn  = promptPassword
	promptTransfersFn = promptTransfers
	stdinIsTerminal   = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) } //nolint:gosec // G115: fd fits in int
)

// promptPassword reads a secret without echo.
func promptPassword(prompt string) (string, error) {
	_, _ = fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec // G115: fd fits in int
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(secret), nil
}

// promptTransfers asks how many transfers each account sends per pass.
func promptTransfers(in io.Reader, out io.Writer) (int, error) {
	scanner := bufio.NewScanner(in)
	for attempt := 1; attempt <= maxPromptAttempts; attempt++ {
		_, _ = fmt.Fprint(out, "How many transfers per account per cycle? ")
		if !scanner.Scan() {
			break
		}
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && n > 0 {
			return n, nil
		}
		_, _ = fmt.Fprintln(out, "Please enter a whole number greater than zero.")
	}
	return 0, trerr.WithSuggestion(
		trerr.WithDetails(trerr.ErrInvalidInput, map[string]string{"reason": "no valid transfer count entered"}),
		"pass --transfers or set "+config.EnvTransfers,
	)
}

// passphraseFor returns the passphrase source for an encrypted key file:
// the configured environment variable first, then a hidden prompt when
// stdin is a terminal. Nil means no source is available.
func passphraseFor(c *config.Config) inputs.PassphraseFunc {
	if name := c.Inputs.KeysPassphraseEnv; name != "" {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return func() (string, error) { return v, nil }
		}
	}
	if !stdinIsTerminal() {
		return nil
	}
	return func() (string, error) {
		return promptPasswordFn("Key file passphrase: ")
	}
}
