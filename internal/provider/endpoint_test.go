package provider

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/config"
)

// fakeBackend counts calls and returns canned values.
type fakeBackend struct {
	calls atomic.Int64
}

func (f *fakeBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	f.calls.Add(1)
	return []byte{0x60}, nil
}

func (f *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.calls.Add(1)
	return nil, nil
}

func (f *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	f.calls.Add(1)
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (f *fakeBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	f.calls.Add(1)
	return nil, nil
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	f.calls.Add(1)
	return 7, nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	f.calls.Add(1)
	return big.NewInt(1e9), nil
}

func (f *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	f.calls.Add(1)
	return big.NewInt(1e8), nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	f.calls.Add(1)
	return 21000, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.calls.Add(1)
	return nil
}

func (f *fakeBackend) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	f.calls.Add(1)
	return nil, nil
}

func (f *fakeBackend) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	f.calls.Add(1)
	return nil, nil
}

func TestLimitedBackendDelegates(t *testing.T) {
	inner := &fakeBackend{}
	b := &limitedBackend{inner: inner, limiter: rate.NewLimiter(rate.Inf, 1)}
	ctx := context.Background()

	if _, err := b.CodeAt(ctx, common.Address{}, nil); err != nil {
		t.Fatalf("CodeAt: %v", err)
	}
	nonce, err := b.PendingNonceAt(ctx, common.Address{})
	if err != nil {
		t.Fatalf("PendingNonceAt: %v", err)
	}
	if nonce != 7 {
		t.Errorf("nonce = %d", nonce)
	}
	gas, err := b.EstimateGas(ctx, ethereum.CallMsg{})
	if err != nil {
		t.Fatalf("EstimateGas: %v", err)
	}
	if gas != 21000 {
		t.Errorf("gas = %d", gas)
	}
	if got := inner.calls.Load(); got != 3 {
		t.Errorf("inner saw %d calls, want 3", got)
	}
}

func TestLimitedBackendHonorsContext(t *testing.T) {
	inner := &fakeBackend{}
	// One token, no refill: the second call must block until the context
	// deadline.
	b := &limitedBackend{inner: inner, limiter: rate.NewLimiter(rate.Limit(0.001), 1)}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := b.SuggestGasPrice(ctx); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := b.SuggestGasPrice(ctx); err == nil {
		t.Fatal("second call should fail on rate limit wait")
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("inner saw %d calls, want 1", got)
	}
}

func TestEndpointBackendBeforeConnect(t *testing.T) {
	e := NewEndpoint(config.DefaultConfig().Network)
	if _, err := e.Backend(); err == nil {
		t.Fatal("expected error before Connect")
	}
}

func TestEndpointBackendRateLimitDefaults(t *testing.T) {
	cfg := config.DefaultConfig().Network
	cfg.RateLimitRPS = 2.5
	cfg.RateLimitBurst = 0

	e := NewEndpoint(cfg)
	e.client = &ethclient.Client{} // never invoked, only nil-checked

	backend, err := e.Backend()
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	lb, ok := backend.(*limitedBackend)
	if !ok {
		t.Fatalf("backend type = %T", backend)
	}
	if got := lb.limiter.Limit(); got != rate.Limit(2.5) {
		t.Errorf("limit = %v, want 2.5", got)
	}
	// An unset burst defaults to twice the refill rate.
	if got := lb.limiter.Burst(); got != 5 {
		t.Errorf("burst = %d, want 5", got)
	}
}

func TestEndpointConnectBadURL(t *testing.T) {
	cfg := config.DefaultConfig().Network
	cfg.RPCURL = "http://127.0.0.1:1" // nothing listens here
	cfg.WSEndpoint = ""
	e := NewEndpoint(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := e.Connect(ctx)
	if err == nil {
		e.Close()
		t.Fatal("expected connect failure")
	}
	if chainerr.KindOf(err) != chainerr.Network {
		t.Errorf("expected Network classification, got %v", chainerr.KindOf(err))
	}
}

func TestEndpointChainID(t *testing.T) {
	e := NewEndpoint(config.DefaultConfig().Network)
	if e.ChainID().Int64() != 42161 {
		t.Errorf("chain id = %d", e.ChainID().Int64())
	}
}
