package inputs

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/mrz1836/trickle/internal/account"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// PassphraseFunc supplies the passphrase for an encrypted key file.
type PassphraseFunc func() (string, error)

// LoadKeys reads the private key list at path and builds one account per
// key, in file order. Files ending in .age are decrypted with the
// passphrase returned by passphrase.
func LoadKeys(path string, passphrase PassphraseFunc) ([]*account.Account, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	defer zero(data)

	var plain *secureBytes
	if IsEncrypted(path) {
		if passphrase == nil {
			return nil, trerr.WithDetails(trerr.ErrDecryptionFailed, map[string]string{
				"file":   path,
				"reason": "no passphrase available",
			})
		}
		pass, perr := passphrase()
		if perr != nil {
			return nil, trerr.Wrap(perr, "reading passphrase")
		}
		if plain, err = decrypt(data, pass); err != nil {
			return nil, trerr.WithDetails(err, map[string]string{"file": path})
		}
	} else {
		plain = newSecureBytes(data)
	}
	defer plain.destroy()

	accounts, err := parseKeys(plain.bytes())
	if err != nil {
		return nil, trerr.WithDetails(err, map[string]string{"file": path})
	}
	if len(accounts) == 0 {
		return nil, trerr.WithDetails(trerr.ErrNoKeys, map[string]string{"file": path})
	}
	return accounts, nil
}

// parseKeys extracts hex keys without copying them into strings. It accepts
// the same layouts as parseList: tokens are runs of alphanumerics, so JSON
// quoting, YAML dashes and line breaks all act as separators.
func parseKeys(data []byte) ([]*account.Account, error) {
	var accounts []*account.Account
	for _, line := range bytes.Split(data, []byte("\n")) {
		for _, tok := range bytes.FieldsFunc(stripComment(line), isSeparator) {
			acct, err := account.FromHex(tok, len(accounts))
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, acct)
		}
	}
	return accounts, nil
}

// stripComment drops everything from the first # on a line.
func stripComment(line []byte) []byte {
	if i := bytes.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func isSeparator(r rune) bool {
	alnum := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	return !alnum
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if errors.Is(err, fs.ErrNotExist) {
		return nil, trerr.WithSuggestion(
			trerr.WithDetails(trerr.ErrInputFile, map[string]string{"file": path, "reason": "not found"}),
			"create the file or point the configuration at it",
		)
	}
	if err != nil {
		return nil, trerr.WithDetails(trerr.ErrInputFile, map[string]string{
			"file":   path,
			"reason": err.Error(),
		})
	}
	return data, nil
}
