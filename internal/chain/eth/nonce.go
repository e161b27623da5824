package eth

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// NonceManager tracks the next nonce per sender so that back-to-back
// transfers from one account never reuse a nonce the endpoint has not
// reflected in its pending count yet.
type NonceManager struct {
	mu     sync.Mutex
	nonces map[common.Address]uint64 // next nonce (one past the highest used)
}

// NewNonceManager creates a new NonceManager.
func NewNonceManager() *NonceManager {
	return &NonceManager{
		nonces: make(map[common.Address]uint64),
	}
}

// Next returns the higher of rpcNonce and the locally tracked nonce for
// address, and advances the local nonce past it.
func (nm *NonceManager) Next(address common.Address, rpcNonce uint64) uint64 {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	nonce := rpcNonce
	if local, ok := nm.nonces[address]; ok && local > rpcNonce {
		nonce = local
	}
	nm.nonces[address] = nonce + 1

	return nonce
}

// Reset forgets the local nonce for address so the next call to Next
// follows the endpoint. Called after a submission that never reached the
// pool or was never mined.
func (nm *NonceManager) Reset(address common.Address) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	delete(nm.nonces, address)
}
