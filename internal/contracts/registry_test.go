package contracts

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/config"
)

// nullBackend satisfies bind.ContractBackend without any network.
// Binding never touches the backend, so every method can fail loudly.
type nullBackend struct{}

func (nullBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return nil, context.Canceled
}

func (nullBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return nil, context.Canceled
}

func (nullBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
	return nil, context.Canceled
}

func (nullBackend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return nil, context.Canceled
}

func (nullBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 0, context.Canceled
}

func (nullBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return nil, context.Canceled
}

func (nullBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return nil, context.Canceled
}

func (nullBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 0, context.Canceled
}

func (nullBackend) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	return context.Canceled
}

func (nullBackend) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]ethtypes.Log, error) {
	return nil, context.Canceled
}

func (nullBackend) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- ethtypes.Log) (ethereum.Subscription, error) {
	return nil, context.Canceled
}

func testContracts() config.ContractsConfig {
	return config.ContractsConfig{
		Token:     "0x1000000000000000000000000000000000000001",
		Staking:   "0x1000000000000000000000000000000000000002",
		Rewards:   "0x1000000000000000000000000000000000000003",
		Booster:   "0x1000000000000000000000000000000000000004",
		Sale:      "0x1000000000000000000000000000000000000005",
		Game:      "0x1000000000000000000000000000000000000006",
		Ecosystem: "0x1000000000000000000000000000000000000007",
	}
}

func TestBindPublishesFullSet(t *testing.T) {
	r := NewRegistry(testContracts())

	set, err := r.Bind("public", nullBackend{}, nil)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if set.Signer {
		t.Error("nil auth must yield a read-only set")
	}
	if set.Token == nil || set.Staking == nil || set.Rewards == nil ||
		set.Booster == nil || set.Sale == nil || set.Game == nil || set.Ecosystem == nil {
		t.Fatal("core handle missing from set")
	}
	if set.Faucet != nil || set.Notary != nil {
		t.Error("optional handles must be nil without addresses")
	}
	if r.Current() != set {
		t.Error("Current must return the freshly bound set")
	}
}

func TestBindOptionalAddresses(t *testing.T) {
	cfg := testContracts()
	cfg.Faucet = "0x1000000000000000000000000000000000000008"
	cfg.Notary = "0x1000000000000000000000000000000000000009"
	r := NewRegistry(cfg)

	set, err := r.Bind("public", nullBackend{}, nil)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if set.Faucet == nil || set.Notary == nil {
		t.Error("configured optional handles must be bound")
	}
}

func TestBindIdempotent(t *testing.T) {
	r := NewRegistry(testContracts())

	first, err := r.Bind("public", nullBackend{}, nil)
	if err != nil {
		t.Fatalf("first bind: %v", err)
	}
	second, err := r.Bind("public", nullBackend{}, nil)
	if err != nil {
		t.Fatalf("second bind: %v", err)
	}

	if first == second {
		t.Fatal("rebind must produce a fresh set")
	}
	if first.Token.Address() != second.Token.Address() {
		t.Error("token address drifted between binds")
	}
	if first.Staking.Address() != second.Staking.Address() {
		t.Error("staking address drifted between binds")
	}
	if r.Current() != second {
		t.Error("Current must be the latest set")
	}
}

func TestBindMissingCoreAddressIsFatal(t *testing.T) {
	cfg := testContracts()
	cfg.Rewards = ""
	r := NewRegistry(cfg)

	prev := r.Current()
	_, err := r.Bind("public", nullBackend{}, nil)
	if err == nil {
		t.Fatal("expected error for missing rewards address")
	}
	if !chainerr.IsConfig(err) {
		t.Errorf("expected ConfigurationError, got %v", chainerr.KindOf(err))
	}
	if r.Current() != prev {
		t.Error("failed bind must not publish a partial set")
	}
}

func TestBindZeroCoreAddressIsFatal(t *testing.T) {
	cfg := testContracts()
	cfg.Token = "0x0000000000000000000000000000000000000000"
	r := NewRegistry(cfg)

	if _, err := r.Bind("public", nullBackend{}, nil); err == nil {
		t.Fatal("expected error for zero token address")
	}
}

func TestBindMock(t *testing.T) {
	r := NewRegistry(config.ContractsConfig{})
	owner := common.HexToAddress("0xaa")

	set := r.BindMock(owner)
	if !set.Signer {
		t.Error("mock set must be able to transact")
	}
	if !set.Token.IsMockMode() || !set.Ecosystem.IsMockMode() {
		t.Error("mock set must contain mock handles")
	}
	if r.Current() != set {
		t.Error("Current must return the mock set")
	}
}
