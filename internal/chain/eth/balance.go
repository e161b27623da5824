package eth

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/trickle/internal/chain"
)

// GetBalance retrieves the native balance in wei at the latest block.
func (c *Client) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	var balance *big.Int
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		balance, err = c.ethClient.BalanceAt(ctx, address, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}
	return balance, nil
}

// FormatBalance formats a wei amount with the profile's symbol, e.g. "0.5 ETH".
func FormatBalance(amount *big.Int, symbol string) string {
	s := chain.FormatNative(amount)
	if symbol == "" {
		return s
	}
	return s + " " + symbol
}
