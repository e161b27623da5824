package dispatch

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trickle/internal/account"
	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/metrics"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

var (
	errRPCDown   = errors.New("rpc unavailable")
	errRejected  = errors.New("replacement transaction underpriced")
	testChainID  = uint64(11155111)
	testGasPrice = big.NewInt(1_000_000_000) // 1 gwei
)

// fakeChain is an in-memory chain.Client. Submitted transfers are debited
// from the sender's balance so successive gate checks see the spend.
type fakeChain struct {
	mu sync.Mutex

	balances    map[common.Address]*big.Int
	balanceErr  map[common.Address]error
	gasPrice    *big.Int
	gasErr      error
	nonceErr    error
	sendErr     error // returned by every submission
	sendFailsN  int   // fail this many submissions before succeeding
	receipt     uint64
	noReceipt   bool
	calls       map[string]int
	sent        []*types.Transaction
	overspent   bool // a submission exceeded the sender's balance
	receiptHits int

	dropSendsN   int                  // accept this many submissions but never include them
	dropped      map[common.Hash]bool // accepted, never mined
	gasAfterSend *big.Int             // gas price once a submission is included
	events       []string             // calls in order
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		balances:   make(map[common.Address]*big.Int),
		balanceErr: make(map[common.Address]error),
		gasPrice:   new(big.Int).Set(testGasPrice),
		receipt:    types.ReceiptStatusSuccessful,
		calls:      make(map[string]int),
		dropped:    make(map[common.Hash]bool),
	}
}

var _ chain.Client = (*fakeChain)(nil)

func (f *fakeChain) setBalance(addr common.Address, wei *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[addr] = new(big.Int).Set(wei)
}

func (f *fakeChain) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// sequence returns the recorded calls in order, keeping only methods.
func (f *fakeChain) sequence(methods ...string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keep := make(map[string]bool, len(methods))
	for _, m := range methods {
		keep[m] = true
	}
	var out []string
	for _, e := range f.events {
		if keep[e] {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeChain) record(method string) {
	f.calls[method]++
	f.events = append(f.events, method)
}

func (f *fakeChain) sentTxs() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.Transaction(nil), f.sent...)
}

func (f *fakeChain) GetBalance(_ context.Context, addr common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("balance")
	if err := f.balanceErr[addr]; err != nil {
		return nil, err
	}
	if b, ok := f.balances[addr]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (f *fakeChain) GasPrice(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("gas")
	if f.gasErr != nil {
		return nil, f.gasErr
	}
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeChain) PendingNonce(_ context.Context, addr common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("nonce")
	if f.nonceErr != nil {
		return 0, f.nonceErr
	}
	var n uint64
	for _, tx := range f.sent {
		if from, _ := types.Sender(types.NewEIP155Signer(tx.ChainId()), tx); from == addr {
			n++
		}
	}
	return n, nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("send")
	if f.sendErr != nil {
		return f.sendErr
	}
	if f.sendFailsN > 0 {
		f.sendFailsN--
		return errRPCDown
	}
	if f.dropSendsN > 0 {
		f.dropSendsN--
		f.dropped[tx.Hash()] = true
		return nil
	}

	from, err := types.Sender(types.NewEIP155Signer(tx.ChainId()), tx)
	if err != nil {
		return err
	}
	bal := f.balances[from]
	if bal == nil || tx.Cost().Cmp(bal) > 0 {
		f.overspent = true
		return errors.New("insufficient funds for gas * price + value")
	}
	bal.Sub(bal, tx.Cost())
	if to := tx.To(); to != nil {
		if f.balances[*to] == nil {
			f.balances[*to] = new(big.Int)
		}
		f.balances[*to].Add(f.balances[*to], tx.Value())
	}
	f.sent = append(f.sent, tx)
	if f.gasAfterSend != nil {
		f.gasPrice = new(big.Int).Set(f.gasAfterSend)
	}
	return nil
}

func (f *fakeChain) Receipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("receipt")
	f.receiptHits++
	if f.noReceipt || f.dropped[hash] {
		return nil, trerr.WithDetails(trerr.ErrReceiptNotFound, map[string]string{"tx": hash.Hex()})
	}
	return &types.Receipt{Status: f.receipt, TxHash: hash, BlockNumber: big.NewInt(100)}, nil
}

// Test fixtures

const (
	keyA = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
	keyB = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
)

//nolint:gochecknoglobals // Test data
var (
	destA = common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	destB = common.HexToAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	destC = common.HexToAddress("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
)

func testAccount(t *testing.T, hexKey string) *account.Account {
	t.Helper()
	acct, err := account.FromHex([]byte(hexKey), 0)
	require.NoError(t, err)
	return acct
}

func testProfile() chain.Profile {
	return chain.Profile{
		Name:        "Sepolia",
		ChainID:     testChainID,
		Symbol:      "ETH",
		ExplorerURL: "https://sepolia.etherscan.io",
		Testnet:     true,
	}
}

func fastRetry() chain.RetryConfig {
	return chain.RetryConfig{MaxAttempts: 5, Delay: time.Millisecond}
}

func ether(s string) *big.Int {
	v, err := chain.ParseNative(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestSender(f *fakeChain) *Sender {
	return NewSender(f, SenderConfig{
		Profile: testProfile(),
		Retry:   fastRetry(),
		Logger:  zerolog.Nop(),
		Metrics: &metrics.Metrics{},
	})
}

func senderOf(tx *types.Transaction) (common.Address, error) {
	return types.Sender(types.NewEIP155Signer(tx.ChainId()), tx)
}
