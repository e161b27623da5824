package eth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/metrics"
)

// rpcHandler answers one JSON-RPC method. Returning a non-empty errMsg
// produces a JSON-RPC error response.
type rpcHandler func(params []json.RawMessage) (result any, errMsg string)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeRPC is a minimal JSON-RPC server for exercising the client.
type fakeRPC struct {
	*httptest.Server

	mu    sync.Mutex
	calls map[string]int
}

func newFakeRPC(t *testing.T, handlers map[string]rpcHandler) *fakeRPC {
	t.Helper()
	f := &fakeRPC{calls: make(map[string]int)}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}

		f.mu.Lock()
		f.calls[req.Method]++
		f.mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		handler, ok := handlers[req.Method]
		if !ok {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found: " + req.Method}
		} else if result, errMsg := handler(req.Params); errMsg != "" {
			resp["error"] = map[string]any{"code": -32000, "message": errMsg}
		} else {
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeRPC) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func result(v any) rpcHandler {
	return func([]json.RawMessage) (any, string) { return v, "" }
}

func failure(msg string) rpcHandler {
	return func([]json.RawMessage) (any, string) { return nil, msg }
}

func testProfile(url string) chain.Profile {
	return chain.Profile{
		Name:        "Testnet",
		RPCURL:      url,
		ChainID:     11155111,
		Symbol:      "ETH",
		ExplorerURL: "https://sepolia.etherscan.io",
		Testnet:     true,
	}
}

func newTestClient(t *testing.T, f *fakeRPC, m *metrics.Metrics) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), testProfile(f.URL), &ClientOptions{Metrics: m})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// emptyBloom is a zeroed 256-byte logs bloom.
func emptyBloom() string {
	return "0x" + strings.Repeat("0", 512)
}

func receiptJSON(txHash, status string) map[string]any {
	return map[string]any{
		"transactionHash":   txHash,
		"transactionIndex":  "0x0",
		"blockHash":         "0x" + strings.Repeat("ab", 32),
		"blockNumber":       "0x10",
		"cumulativeGasUsed": "0x5208",
		"gasUsed":           "0x5208",
		"effectiveGasPrice": "0x3b9aca00",
		"logsBloom":         emptyBloom(),
		"logs":              []any{},
		"status":            status,
		"type":              "0x0",
	}
}
