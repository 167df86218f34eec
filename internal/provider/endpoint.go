package provider

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/config"
	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/util"
)

// Endpoint is the public read-only chain connection. It is always
// available regardless of wallet state; contract handles bound to it
// can read but never transact. Reads are rate limited so polling
// callers cannot hammer the fallback endpoint.
type Endpoint struct {
	cfg     config.NetworkConfig
	chainID *big.Int

	mu       sync.RWMutex
	client   *ethclient.Client
	wsClient *ethclient.Client
}

// NewEndpoint creates an Endpoint from the network configuration. The
// connection is established by Connect.
func NewEndpoint(cfg config.NetworkConfig) *Endpoint {
	return &Endpoint{
		cfg:     cfg,
		chainID: big.NewInt(cfg.ChainID),
	}
}

// Connect dials the configured RPC endpoint and verifies its chain id
// against the configured one. A mismatched endpoint is a configuration
// defect, not a transient failure.
func (e *Endpoint) Connect(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	client, err := util.DoValue(ctx, nil, func() (*ethclient.Client, error) {
		return ethclient.DialContext(ctx, e.cfg.RPCURL)
	})
	if err != nil {
		return chainerr.New(chainerr.Network, "endpoint.connect",
			fmt.Errorf("failed to dial %s: %w", e.cfg.RPCURL, err))
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return chainerr.New(chainerr.Network, "endpoint.connect",
			fmt.Errorf("failed to get chain id: %w", err))
	}
	if chainID.Cmp(e.chainID) != 0 {
		client.Close()
		return chainerr.Newf(chainerr.Config, "endpoint.connect",
			"endpoint chain id mismatch: expected %d, got %s", e.cfg.ChainID, chainID)
	}
	e.client = client

	// WebSocket is optional; without it event subscriptions degrade to
	// nothing and polling carries the refresh load.
	if e.cfg.WSEndpoint != "" {
		wsClient, err := ethclient.DialContext(ctx, e.cfg.WSEndpoint)
		if err != nil {
			logging.Warn("websocket endpoint unavailable, subscriptions disabled",
				"endpoint", e.cfg.WSEndpoint, logging.Err(err))
		} else {
			e.wsClient = wsClient
		}
	}

	logging.Info("connected to chain endpoint",
		logging.ChainID(e.cfg.ChainID), "rpc_url", e.cfg.RPCURL)
	return nil
}

// Close releases both connections.
func (e *Endpoint) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		e.client.Close()
		e.client = nil
	}
	if e.wsClient != nil {
		e.wsClient.Close()
		e.wsClient = nil
	}
}

// ChainID returns the configured chain id.
func (e *Endpoint) ChainID() *big.Int {
	return new(big.Int).Set(e.chainID)
}

// Client returns the raw HTTP client, or nil before Connect.
func (e *Endpoint) Client() *ethclient.Client {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.client
}

// WSClient returns the websocket client for subscriptions, or nil.
func (e *Endpoint) WSClient() *ethclient.Client {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wsClient
}

// Backend returns a rate-limited contract backend over the endpoint.
// Returns an error before Connect.
func (e *Endpoint) Backend() (bind.ContractBackend, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.client == nil {
		return nil, chainerr.Newf(chainerr.Network, "endpoint.backend", "endpoint not connected")
	}

	rps := e.cfg.RateLimitRPS
	if rps <= 0 {
		rps = 10
	}
	burst := e.cfg.RateLimitBurst
	if burst <= 0 {
		burst = int(2 * rps)
	}
	return &limitedBackend{
		inner:   e.client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// WaitForTransaction waits for a transaction to be mined and returns
// its receipt. A failed receipt is returned alongside a Reverted error
// so callers can still inspect it.
func (e *Endpoint) WaitForTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	e.mu.RLock()
	client := e.client
	e.mu.RUnlock()

	if client == nil {
		return nil, chainerr.Newf(chainerr.Network, "endpoint.wait", "endpoint not connected")
	}

	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		return nil, chainerr.New(chainerr.Network, "endpoint.wait",
			fmt.Errorf("failed waiting for %s: %w", tx.Hash().Hex(), err))
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, chainerr.Newf(chainerr.Reverted, "endpoint.wait",
			"transaction reverted: %s", tx.Hash().Hex())
	}
	return receipt, nil
}

// ethBackend is the slice of ethclient the limited backend delegates
// to. Narrowed to an interface so tests can substitute a fake.
type ethBackend interface {
	bind.ContractBackend
}

// limitedBackend throttles every RPC round-trip through a token bucket.
// It satisfies bind.ContractBackend so bound contracts use it directly.
type limitedBackend struct {
	inner   ethBackend
	limiter *rate.Limiter
}

func (b *limitedBackend) wait(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (b *limitedBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.inner.CodeAt(ctx, contract, blockNumber)
}

func (b *limitedBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.inner.CallContract(ctx, call, blockNumber)
}

func (b *limitedBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.inner.HeaderByNumber(ctx, number)
}

func (b *limitedBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.inner.PendingCodeAt(ctx, account)
}

func (b *limitedBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if err := b.wait(ctx); err != nil {
		return 0, err
	}
	return b.inner.PendingNonceAt(ctx, account)
}

func (b *limitedBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.inner.SuggestGasPrice(ctx)
}

func (b *limitedBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.inner.SuggestGasTipCap(ctx)
}

func (b *limitedBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	if err := b.wait(ctx); err != nil {
		return 0, err
	}
	return b.inner.EstimateGas(ctx, call)
}

func (b *limitedBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	return b.inner.SendTransaction(ctx, tx)
}

func (b *limitedBackend) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.inner.FilterLogs(ctx, query)
}

func (b *limitedBackend) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.inner.SubscribeFilterLogs(ctx, query, ch)
}

var _ bind.ContractBackend = (*limitedBackend)(nil)
