package contracts

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/backchain/backchain/pkg/types"
)

// Booster is the typed handle for the discount NFT contract.
type Booster struct {
	handle

	mockMu    sync.RWMutex
	mockTiers map[common.Address]types.BoosterTier
}

// NewBooster binds the booster NFT contract.
func NewBooster(addr common.Address, backend bind.ContractBackend, auth AuthFn) (*Booster, error) {
	h, err := newHandle(types.ContractBooster, addr, BoosterABI, backend, auth)
	if err != nil {
		return nil, err
	}
	return &Booster{handle: h}, nil
}

// NewMockBooster creates an in-memory booster handle.
func NewMockBooster() *Booster {
	return &Booster{
		handle:    mockHandle(types.ContractBooster),
		mockTiers: make(map[common.Address]types.BoosterTier),
	}
}

// HighestTierOf returns the best booster tier the account owns; tier 0
// means no booster and no discount.
func (b *Booster) HighestTierOf(ctx context.Context, account common.Address) (types.BoosterTier, error) {
	if b.mock {
		b.mockMu.RLock()
		defer b.mockMu.RUnlock()
		return b.mockTiers[account], nil
	}

	var result []interface{}
	if err := b.call(ctx, &result, "highestTierOf", account); err != nil {
		return types.BoosterNone, err
	}
	if len(result) == 0 {
		return types.BoosterNone, nil
	}
	if tier, ok := result[0].(uint8); ok {
		return types.BoosterTier(tier), nil
	}
	return types.BoosterNone, nil
}

// BalanceOf returns how many booster NFTs the account holds.
func (b *Booster) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	if b.mock {
		b.mockMu.RLock()
		defer b.mockMu.RUnlock()
		if b.mockTiers[account] != types.BoosterNone {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	}

	var result []interface{}
	if err := b.call(ctx, &result, "balanceOf", account); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}

// Mint buys a booster of the given tier for the attached value.
func (b *Booster) Mint(ctx context.Context, tier types.BoosterTier, value *big.Int) (*ethtypes.Transaction, error) {
	if b.mock {
		return nil, nil
	}
	return b.transactValue(ctx, value, "mint", uint8(tier))
}

// SetMockTier seeds the owned tier in mock mode.
func (b *Booster) SetMockTier(account common.Address, tier types.BoosterTier) {
	if !b.mock {
		return
	}
	b.mockMu.Lock()
	defer b.mockMu.Unlock()
	b.mockTiers[account] = tier
}
