package dispatch

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/trickle/internal/metrics"
)

// Status is the final classification of one transfer attempt.
type Status string

// Transfer statuses. Only Confirmed, Reverted and Pending attempts reached
// the network.
const (
	StatusConfirmed Status = metrics.OutcomeConfirmed
	StatusReverted  Status = metrics.OutcomeReverted
	StatusPending   Status = metrics.OutcomePending
	StatusSkipped   Status = metrics.OutcomeSkipped
	StatusFailed    Status = metrics.OutcomeFailed
)

// Outcome describes what happened to one transfer attempt.
type Outcome struct {
	Status Status
	From   common.Address
	To     common.Address
	Amount *big.Int
	TxHash common.Hash // zero when nothing was submitted
	TxURL  string      // explorer link when known
	Err    error       // cause for every status except Confirmed
}

// Submitted reports whether the transaction was accepted by the endpoint.
func (o Outcome) Submitted() bool {
	return o.TxHash != (common.Hash{})
}
