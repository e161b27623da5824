package eth

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// IsValidAddress checks if the address is a valid Ethereum address format.
// This validates the format (40 hex chars with 0x prefix) but does not validate checksum.
func IsValidAddress(address string) bool {
	return len(address) == 42 && strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

// ToChecksumAddress converts an Ethereum address to EIP-55 checksum format.
// If the input is invalid, it returns the original input unchanged.
func ToChecksumAddress(address string) string {
	if !IsValidAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}

// ParseAddress validates address and returns it as a common.Address.
// All lowercase and all uppercase addresses are accepted as non-checksummed.
// Mixed-case addresses must carry a correct EIP-55 checksum.
func ParseAddress(address string) (common.Address, error) {
	address = strings.TrimSpace(address)
	if !IsValidAddress(address) {
		return common.Address{}, trerr.WithDetails(trerr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}

	addrPart := address[2:]
	if addrPart != strings.ToLower(addrPart) && addrPart != strings.ToUpper(addrPart) {
		if expected := ToChecksumAddress(address); address != expected {
			return common.Address{}, trerr.WithDetails(trerr.ErrInvalidChecksum, map[string]string{
				"expected": expected,
				"actual":   address,
			})
		}
	}

	return common.HexToAddress(address), nil
}
