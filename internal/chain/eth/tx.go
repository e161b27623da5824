package eth

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// TxParams contains parameters for building a transfer.
type TxParams struct {
	To       common.Address // Recipient address
	Value    *big.Int       // Value in wei
	GasLimit uint64         // Gas limit
	GasPrice *big.Int       // Gas price in wei
	Nonce    uint64         // Transaction nonce
	ChainID  *big.Int       // Network chain ID
}

// NewTransferParams creates parameters for a native transfer with the
// standard gas limit.
func NewTransferParams(to common.Address, value, gasPrice *big.Int, nonce uint64, chainID *big.Int) *TxParams {
	return &TxParams{
		To:       to,
		Value:    value,
		GasLimit: GasLimitTransfer,
		GasPrice: gasPrice,
		Nonce:    nonce,
		ChainID:  chainID,
	}
}

// Validate checks that the transaction parameters are valid.
func (p *TxParams) Validate() error {
	invalid := func(reason string) error {
		return trerr.WithDetails(trerr.ErrInvalidTransaction, map[string]string{"reason": reason})
	}

	switch {
	case p.To == (common.Address{}):
		return invalid("recipient is the zero address")
	case p.Value == nil || p.Value.Sign() < 0:
		return invalid("value must be non-negative")
	case p.GasPrice == nil || p.GasPrice.Sign() < 0:
		return invalid("gas price must be non-negative")
	case p.ChainID == nil || p.ChainID.Sign() <= 0:
		return invalid("chain id must be positive")
	case p.GasLimit == 0:
		return invalid("gas limit must be positive")
	}
	return nil
}

// BuildTransaction creates an unsigned legacy transaction from parameters.
func BuildTransaction(params *TxParams) (*types.Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	to := params.To
	return types.NewTx(&types.LegacyTx{
		Nonce:    params.Nonce,
		To:       &to,
		Value:    params.Value,
		Gas:      params.GasLimit,
		GasPrice: params.GasPrice,
	}), nil
}

// SignTransaction signs tx for chainID with an EIP-155 signer.
func SignTransaction(tx *types.Transaction, key *ecdsa.PrivateKey, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}
