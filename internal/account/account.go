// Package account holds the signing accounts the dispatcher sends from.
package account

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// keyHexLen is the length of a hex-encoded secp256k1 private key.
const keyHexLen = 64

// Account is a signing key with its derived address.
// The key never appears in String output or errors.
type Account struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

// FromHex builds an account from a hex private key with or without the 0x
// prefix. index is the key's position in its source list and is only used
// in error details.
func FromHex(hexKey []byte, index int) (*Account, error) {
	if len(hexKey) >= 2 && hexKey[0] == '0' && (hexKey[1] == 'x' || hexKey[1] == 'X') {
		hexKey = hexKey[2:]
	}
	if len(hexKey) != keyHexLen {
		return nil, invalidKey(index, "expected 32 bytes of hex")
	}

	raw := make([]byte, keyHexLen/2)
	defer zero(raw)

	if _, err := hex.Decode(raw, hexKey); err != nil {
		return nil, invalidKey(index, "not hex encoded")
	}
	return FromBytes(raw, index)
}

// FromBytes builds an account from a raw 32-byte private key.
func FromBytes(raw []byte, index int) (*Account, error) {
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, invalidKey(index, "not a valid secp256k1 scalar")
	}
	return &Account{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}, nil
}

// Key returns the signing key.
func (a *Account) Key() *ecdsa.PrivateKey {
	return a.key
}

// String returns the checksummed address.
func (a *Account) String() string {
	return a.Address.Hex()
}

// Short returns an abbreviated address for compact log lines, e.g. 0x71C7…976F.
func (a *Account) Short() string {
	h := a.Address.Hex()
	return h[:6] + "…" + h[len(h)-4:]
}

func invalidKey(index int, reason string) error {
	return trerr.WithDetails(trerr.ErrInvalidKey, map[string]string{
		"index":  strconv.Itoa(index),
		"reason": reason,
	})
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
