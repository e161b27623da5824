package chain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// ParseDecimalAmount parses a decimal amount string to big.Int with the given decimal places.
// For example, "1.5" with 18 decimals returns 1500000000000000000.
// Digits beyond decimalPlaces are truncated. Negative amounts are rejected.
func ParseDecimalAmount(amount string, decimalPlaces int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, trerr.ErrInvalidAmount
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, trerr.WithDetails(trerr.ErrInvalidAmount, map[string]string{"amount": amount})
	}

	if d.IsNegative() {
		return nil, trerr.WithDetails(trerr.ErrInvalidAmount, map[string]string{
			"amount": amount,
			"reason": "negative",
		})
	}

	//nolint:gosec // G115: decimal places are 0..18 for native currencies
	return d.Shift(int32(decimalPlaces)).BigInt(), nil
}

// ParseNative parses a human-readable native currency amount into wei.
func ParseNative(amount string) (*big.Int, error) {
	return ParseDecimalAmount(amount, NativeDecimals)
}

// FormatDecimalAmount converts a big.Int to a human-readable string with the given decimal places.
// Trailing zeros after the decimal point are removed.
// For example, 1500000000000000000 with 18 decimals returns "1.5".
func FormatDecimalAmount(amount *big.Int, decimalPlaces int) string {
	if amount == nil {
		return "0"
	}
	//nolint:gosec // G115: decimal places are 0..18 for native currencies
	return decimal.NewFromBigInt(amount, -int32(decimalPlaces)).String()
}

// FormatNative formats a wei amount as native currency.
func FormatNative(amount *big.Int) string {
	return FormatDecimalAmount(amount, NativeDecimals)
}
