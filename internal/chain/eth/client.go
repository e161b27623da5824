// Package eth implements chain.Client over an EVM JSON-RPC endpoint.
package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/metrics"
	trerr "github.com/mrz1836/trickle/pkg/errors"
)

// DefaultTimeout bounds a single JSON-RPC HTTP request.
const DefaultTimeout = 30 * time.Second

// ClientOptions contains optional configuration for the ETH client.
type ClientOptions struct {
	// Timeout is the per-request HTTP timeout. Zero uses DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the pooled HTTP client. Timeout is ignored when set.
	HTTPClient *http.Client
	// Limiter throttles calls to the endpoint. Nil disables throttling.
	Limiter *chain.RateLimiter
	// Metrics receives one record per RPC call. Nil uses metrics.Global.
	Metrics *metrics.Metrics
}

// Compile-time interface check
var _ chain.Client = (*Client)(nil)

// Client provides EVM network operations for one profile.
type Client struct {
	profile   chain.Profile
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	limiter   *chain.RateLimiter
	metrics   *metrics.Metrics
}

// newHTTPClient creates an HTTP client tuned for a long-running process that
// talks to a single endpoint.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: timeout,
	}
}

// NewClient creates a client for profile without contacting the endpoint.
func NewClient(ctx context.Context, profile chain.Profile, opts *ClientOptions) (*Client, error) {
	if profile.RPCURL == "" {
		return nil, trerr.WithDetails(trerr.ErrRPCURLRequired, map[string]string{"network": profile.Name})
	}

	if opts == nil {
		opts = &ClientOptions{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = newHTTPClient(timeout)
	}

	rpcClient, err := rpc.DialOptions(ctx, profile.RPCURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, trerr.Wrap(err, "connecting to %s", profile.RPCURL)
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.Global
	}

	return &Client{
		profile:   profile,
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		limiter:   opts.Limiter,
		metrics:   m,
	}, nil
}

// Dial creates a client and verifies the endpoint serves the profile's chain.
func Dial(ctx context.Context, profile chain.Profile, opts *ClientOptions) (*Client, error) {
	c, err := NewClient(ctx, profile, opts)
	if err != nil {
		return nil, err
	}
	if err := c.VerifyChainID(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Profile returns the network profile this client serves.
func (c *Client) Profile() chain.Profile {
	return c.profile
}

// ChainID queries the chain id reported by the endpoint.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		id, err = c.ethClient.ChainID(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting chain ID: %w", err)
	}
	return id, nil
}

// VerifyChainID fails with ErrChainIDMismatch when the endpoint reports a
// chain id different from the profile's.
func (c *Client) VerifyChainID(ctx context.Context) error {
	remote, err := c.ChainID(ctx)
	if err != nil {
		return trerr.WithDetails(trerr.Wrap(trerr.ErrTransientNetwork, "%v", err), map[string]string{
			"rpc": c.profile.RPCURL,
		})
	}
	if remote.Cmp(c.profile.ChainIDBig()) != 0 {
		return trerr.WithDetails(trerr.ErrChainIDMismatch, map[string]string{
			"expected": c.profile.ChainIDBig().String(),
			"actual":   remote.String(),
			"rpc":      c.profile.RPCURL,
		})
	}
	return nil
}

// GasPrice returns the suggested legacy gas price in wei.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		price, err = c.ethClient.SuggestGasPrice(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting gas price: %w", err)
	}
	return price, nil
}

// PendingNonce returns the account nonce including pool transactions.
func (c *Client) PendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	var nonce uint64
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		nonce, err = c.ethClient.PendingNonceAt(ctx, address)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("getting nonce: %w", err)
	}
	return nonce, nil
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	err := c.call(ctx, func(ctx context.Context) error {
		return c.ethClient.SendTransaction(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("broadcasting transaction: %w", err)
	}
	return nil
}

// Receipt returns the receipt for hash. A transaction that is not yet
// included yields ErrReceiptNotFound.
func (c *Client) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := c.call(ctx, func(ctx context.Context) error {
		var err error
		receipt, err = c.ethClient.TransactionReceipt(ctx, hash)
		return err
	})
	if errors.Is(err, ethereum.NotFound) {
		return nil, trerr.WithDetails(trerr.ErrReceiptNotFound, map[string]string{"tx": hash.Hex()})
	}
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// Close closes the client connection.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// call runs fn behind the rate limiter and records its latency.
func (c *Client) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.profile.RPCURL); err != nil {
			return err
		}
	}

	start := time.Now()
	err := fn(ctx)
	c.metrics.RecordRPCCall(time.Since(start), err)
	return err
}
