// Package chain provides the network profile, the RPC capability interface
// used by the dispatcher, and common utilities (retry, rate limiting, amounts).
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// NativeDecimals is the number of decimals of every EVM native currency.
const NativeDecimals = 18

// Profile describes one target network. Profiles are read-only once built.
type Profile struct {
	Name        string `yaml:"name" json:"name"`
	RPCURL      string `yaml:"rpc_url" json:"rpc_url"`
	ChainID     uint64 `yaml:"chain_id" json:"chain_id"`
	Symbol      string `yaml:"symbol" json:"symbol"`
	ExplorerURL string `yaml:"explorer" json:"explorer,omitempty"`
	Testnet     bool   `yaml:"testnet" json:"testnet"`
}

// ChainIDBig returns the chain id as a big.Int for transaction signing.
func (p Profile) ChainIDBig() *big.Int {
	return new(big.Int).SetUint64(p.ChainID)
}

// TxURL returns the explorer link for a transaction hash, or "" when the
// profile has no explorer.
func (p Profile) TxURL(hash string) string {
	if p.ExplorerURL == "" {
		return ""
	}
	return strings.TrimSuffix(p.ExplorerURL, "/") + "/tx/" + hash
}

// String returns a short description used in logs.
func (p Profile) String() string {
	return fmt.Sprintf("%s (chain %d)", p.Name, p.ChainID)
}

// BalanceReader provides balance querying capabilities.
type BalanceReader interface {
	// GetBalance retrieves the native balance in wei at the latest block.
	GetBalance(ctx context.Context, address common.Address) (*big.Int, error)
}

// FeeEstimator provides the current fee per gas unit.
type FeeEstimator interface {
	// GasPrice returns the suggested legacy gas price in wei.
	GasPrice(ctx context.Context) (*big.Int, error)
}

// NonceReader provides the next usable nonce for an address.
type NonceReader interface {
	// PendingNonce returns the nonce including pool transactions.
	PendingNonce(ctx context.Context, address common.Address) (uint64, error)
}

// Submitter broadcasts signed transactions.
type Submitter interface {
	// SendTransaction submits a signed transaction.
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// ReceiptReader fetches transaction receipts.
type ReceiptReader interface {
	// Receipt returns the receipt for hash, or an error matching
	// errors.ErrReceiptNotFound while the transaction is not yet included.
	Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Client is the full RPC capability set the dispatcher needs.
type Client interface {
	BalanceReader
	FeeEstimator
	NonceReader
	Submitter
	ReceiptReader
}
