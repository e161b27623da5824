package eth

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// GasLimitTransfer is the gas limit of a plain native-currency transfer.
const GasLimitTransfer uint64 = 21000

// TransferCost returns amount + GasLimitTransfer * gasPrice in wei.
func TransferCost(amount, gasPrice *big.Int) *big.Int {
	fee := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(GasLimitTransfer))
	return fee.Add(fee, amount)
}

// FormatGasPrice formats a gas price in Gwei for log output, e.g. "1.5 Gwei".
func FormatGasPrice(gasPrice *big.Int) string {
	if gasPrice == nil {
		return "0 Gwei"
	}
	return decimal.NewFromBigInt(gasPrice, -9).String() + " Gwei"
}
