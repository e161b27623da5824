package inputs

import (
	"bytes"
	"io"
	"strings"

	"filippo.io/age"

	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// EncryptedSuffix marks an input file as an age passphrase-encrypted list.
const EncryptedSuffix = ".age"

// IsEncrypted reports whether path names an age-encrypted input file.
func IsEncrypted(path string) bool {
	return strings.HasSuffix(path, EncryptedSuffix)
}

// decrypt opens an age scrypt-encrypted payload into locked memory.
func decrypt(ciphertext []byte, passphrase string) (*secureBytes, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, trerr.Wrap(trerr.ErrDecryptionFailed, "%v", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, trerr.WithSuggestion(
			trerr.ErrDecryptionFailed,
			"check the passphrase environment variable or retype the passphrase",
		)
	}

	plaintext, err := io.ReadAll(r)
	defer zero(plaintext)
	if err != nil {
		return nil, trerr.Wrap(trerr.ErrDecryptionFailed, "reading decrypted data")
	}

	return newSecureBytes(plaintext), nil
}
