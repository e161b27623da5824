package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trickle/internal/account"
	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/chain/eth"
	"github.com/mrz1836/trickle/internal/config"
	"github.com/mrz1836/trickle/internal/metrics"
	"github.com/mrz1836/trickle/internal/output"
)

var errNodeDown = errors.New("node unavailable")

const (
	testKeyA = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
	testKeyB = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

	testDestA = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	testDestB = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

// fakeRPC is an in-memory RPCClient. Every account starts with the same
// balance and submissions are debited from it.
type fakeRPC struct {
	mu sync.Mutex

	profile    chain.Profile
	start      *big.Int
	balances   map[common.Address]*big.Int
	balanceErr error
	sent       []*types.Transaction
	closed     bool
}

var _ RPCClient = (*fakeRPC)(nil)

func newFakeRPC(start *big.Int) *fakeRPC {
	return &fakeRPC{start: start, balances: make(map[common.Address]*big.Int)}
}

func (f *fakeRPC) balance(addr common.Address) *big.Int {
	b, ok := f.balances[addr]
	if !ok {
		b = new(big.Int).Set(f.start)
		f.balances[addr] = b
	}
	return b
}

func (f *fakeRPC) GetBalance(_ context.Context, addr common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return new(big.Int).Set(f.balance(addr)), nil
}

func (f *fakeRPC) GasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeRPC) PendingNonce(_ context.Context, addr common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n uint64
	for _, tx := range f.sent {
		if from, _ := types.Sender(types.NewEIP155Signer(tx.ChainId()), tx); from == addr {
			n++
		}
	}
	return n, nil
}

func (f *fakeRPC) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	from, err := types.Sender(types.NewEIP155Signer(tx.ChainId()), tx)
	if err != nil {
		return err
	}
	bal := f.balance(from)
	bal.Sub(bal, tx.Cost())
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeRPC) Receipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, BlockNumber: big.NewInt(7)}, nil
}

func (f *fakeRPC) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeRPC) sentTxs() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.Transaction(nil), f.sent...)
}

func (f *fakeRPC) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// dial returns a DialFunc handing out f and recording the profile.
func (f *fakeRPC) dial() DialFunc {
	return func(_ context.Context, profile chain.Profile, _ *eth.ClientOptions) (RPCClient, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.profile = profile
		return f, nil
	}
}

// fakeClock advances instantly on every wait.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// testEnv is a dispatch setup with input files and fakes.
type testEnv struct {
	cfg    *config.Config
	rpc    *fakeRPC
	clock  *fakeClock
	stderr *bytes.Buffer
	cc     *CommandContext
}

// newTestEnv writes two keys and two destinations and returns a command
// context whose retries and settle delay never sleep.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	keys := filepath.Join(dir, "keys.json")
	writeFile(t, keys, `["`+testKeyA+`", "`+testKeyB+`"]`)
	addrs := filepath.Join(dir, "addresses.json")
	writeFile(t, addrs, `["`+testDestA+`", "`+testDestB+`"]`)

	c := config.Defaults()
	c.Home = dir
	c.Inputs.KeysFile = keys
	c.Inputs.AddressesFile = addrs
	c.Inputs.KeysPassphraseEnv = ""
	c.Dispatch.Seed = 42
	c.Dispatch.SettleDelay = 0
	c.Retry.Delay = 0
	c.Schedule.Interval = 10 * time.Minute
	c.Schedule.Duration = 30 * time.Minute

	env := &testEnv{
		cfg:    c,
		rpc:    newFakeRPC(ether(t, "1")),
		clock:  newFakeClock(),
		stderr: new(bytes.Buffer),
	}
	env.cc = NewCommandContext(c, zerolog.Nop(), output.NewFormatter(output.FormatText, new(bytes.Buffer))).
		WithDial(env.rpc.dial()).
		WithClock(env.clock)
	env.cc.Metrics = &metrics.Metrics{}
	env.cc.Stderr = env.stderr
	env.cc.Stdin = strings.NewReader("")
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func ether(t *testing.T, s string) *big.Int {
	t.Helper()
	v, err := chain.ParseNative(s)
	require.NoError(t, err)
	return v
}

func addressOf(t *testing.T, hexKey string) common.Address {
	t.Helper()
	acct, err := account.FromHex([]byte(hexKey), 0)
	require.NoError(t, err)
	return acct.Address
}

// withTerminal sets the TTY check and transfer prompt for one test.
func withTerminal(t *testing.T, tty bool, transfers func() (int, error)) {
	t.Helper()
	origTTY := stdinIsTerminal
	origTransfers := promptTransfersFn
	t.Cleanup(func() {
		stdinIsTerminal = origTTY
		promptTransfersFn = origTransfers
	})
	stdinIsTerminal = func() bool { return tty }
	if transfers != nil {
		promptTransfersFn = func(_ io.Reader, _ io.Writer) (int, error) { return transfers() }
	}
}
