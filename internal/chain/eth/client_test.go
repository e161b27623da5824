package eth

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/metrics"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

const testAddress = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("creates client without contacting endpoint", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(context.Background(), testProfile("http://127.0.0.1:1"), nil)
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, uint64(11155111), c.Profile().ChainID)
	})

	t.Run("returns error for empty URL", func(t *testing.T) {
		t.Parallel()
		_, err := NewClient(context.Background(), chain.Profile{Name: "x"}, nil)
		require.ErrorIs(t, err, trerr.ErrRPCURLRequired)
	})
}

func TestDial_VerifiesChainID(t *testing.T) {
	t.Parallel()

	t.Run("matching chain id", func(t *testing.T) {
		t.Parallel()
		f := newFakeRPC(t, map[string]rpcHandler{"eth_chainId": result("0xaa36a7")})
		c, err := Dial(context.Background(), testProfile(f.URL), &ClientOptions{Metrics: &metrics.Metrics{}})
		require.NoError(t, err)
		c.Close()
	})

	t.Run("mismatched chain id", func(t *testing.T) {
		t.Parallel()
		f := newFakeRPC(t, map[string]rpcHandler{"eth_chainId": result("0x1")})
		_, err := Dial(context.Background(), testProfile(f.URL), &ClientOptions{Metrics: &metrics.Metrics{}})
		require.ErrorIs(t, err, trerr.ErrChainIDMismatch)
		assert.Equal(t, "1", trerr.Detail(err, "actual"))
		assert.Equal(t, "11155111", trerr.Detail(err, "expected"))
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		t.Parallel()
		f := newFakeRPC(t, map[string]rpcHandler{"eth_chainId": failure("boom")})
		_, err := Dial(context.Background(), testProfile(f.URL), &ClientOptions{Metrics: &metrics.Metrics{}})
		require.ErrorIs(t, err, trerr.ErrTransientNetwork)
	})
}

func TestClient_GetBalance(t *testing.T) {
	t.Parallel()
	var gotParams []json.RawMessage
	f := newFakeRPC(t, map[string]rpcHandler{
		"eth_getBalance": func(params []json.RawMessage) (any, string) {
			gotParams = params
			return "0xde0b6b3a7640000", ""
		},
	})
	m := &metrics.Metrics{}
	c := newTestClient(t, f, m)

	balance, err := c.GetBalance(context.Background(), common.HexToAddress(testAddress))
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", balance.String())

	require.Len(t, gotParams, 2)
	assert.JSONEq(t, `"latest"`, string(gotParams[1]))
	assert.Equal(t, int64(1), m.Snapshot().RPCCallsTotal)
}

func TestClient_GetBalanceError(t *testing.T) {
	t.Parallel()
	f := newFakeRPC(t, map[string]rpcHandler{"eth_getBalance": failure("upstream timeout")})
	m := &metrics.Metrics{}
	c := newTestClient(t, f, m)

	_, err := c.GetBalance(context.Background(), common.HexToAddress(testAddress))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getting balance")
	assert.Equal(t, int64(1), m.Snapshot().RPCErrorsTotal)
}

func TestClient_GasPrice(t *testing.T) {
	t.Parallel()
	f := newFakeRPC(t, map[string]rpcHandler{"eth_gasPrice": result("0x3b9aca00")})
	c := newTestClient(t, f, &metrics.Metrics{})

	price, err := c.GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_000), price.Int64())
}

func TestClient_PendingNonce(t *testing.T) {
	t.Parallel()
	var tag string
	f := newFakeRPC(t, map[string]rpcHandler{
		"eth_getTransactionCount": func(params []json.RawMessage) (any, string) {
			_ = json.Unmarshal(params[1], &tag)
			return "0x7", ""
		},
	})
	c := newTestClient(t, f, &metrics.Metrics{})

	nonce, err := c.PendingNonce(context.Background(), common.HexToAddress(testAddress))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)
	assert.Equal(t, "pending", tag)
}

func TestClient_SendTransaction(t *testing.T) {
	t.Parallel()
	key := testKey(t)
	tx, err := BuildTransaction(NewTransferParams(common.HexToAddress(testAddress), big.NewInt(1), big.NewInt(1), 0, big.NewInt(11155111)))
	require.NoError(t, err)
	signed, err := SignTransaction(tx, key, big.NewInt(11155111))
	require.NoError(t, err)

	var raw string
	f := newFakeRPC(t, map[string]rpcHandler{
		"eth_sendRawTransaction": func(params []json.RawMessage) (any, string) {
			_ = json.Unmarshal(params[0], &raw)
			return signed.Hash().Hex(), ""
		},
	})
	c := newTestClient(t, f, &metrics.Metrics{})

	require.NoError(t, c.SendTransaction(context.Background(), signed))

	decoded := new(types.Transaction)
	require.NoError(t, decoded.UnmarshalBinary(common.FromHex(raw)))
	assert.Equal(t, signed.Hash(), decoded.Hash())
}

func TestClient_SendTransactionRejected(t *testing.T) {
	t.Parallel()
	f := newFakeRPC(t, map[string]rpcHandler{"eth_sendRawTransaction": failure("nonce too low")})
	c := newTestClient(t, f, &metrics.Metrics{})

	tx, err := BuildTransaction(NewTransferParams(common.HexToAddress(testAddress), big.NewInt(1), big.NewInt(1), 0, big.NewInt(1)))
	require.NoError(t, err)
	signed, err := SignTransaction(tx, testKey(t), big.NewInt(1))
	require.NoError(t, err)

	err = c.SendTransaction(context.Background(), signed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonce too low")
}

func TestClient_Receipt(t *testing.T) {
	t.Parallel()
	hash := common.HexToHash("0x1122")

	tests := []struct {
		name       string
		handler    rpcHandler
		wantStatus uint64
		wantErr    error
	}{
		{"success", result(receiptJSON(hash.Hex(), "0x1")), types.ReceiptStatusSuccessful, nil},
		{"reverted", result(receiptJSON(hash.Hex(), "0x0")), types.ReceiptStatusFailed, nil},
		{"not yet mined", result(nil), 0, trerr.ErrReceiptNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFakeRPC(t, map[string]rpcHandler{"eth_getTransactionReceipt": tt.handler})
			c := newTestClient(t, f, &metrics.Metrics{})

			receipt, err := c.Receipt(context.Background(), hash)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, hash.Hex(), trerr.Detail(err, "tx"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, receipt.Status)
		})
	}
}

func TestClient_RateLimited(t *testing.T) {
	t.Parallel()
	f := newFakeRPC(t, map[string]rpcHandler{"eth_gasPrice": result("0x1")})
	c, err := NewClient(context.Background(), testProfile(f.URL), &ClientOptions{
		Limiter: chain.NewRateLimiter(0.001, 1),
		Metrics: &metrics.Metrics{},
	})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GasPrice(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.GasPrice(ctx)
	require.Error(t, err, "second call must wait for a token and hit the deadline")
	assert.Equal(t, 1, f.callCount("eth_gasPrice"))
}
