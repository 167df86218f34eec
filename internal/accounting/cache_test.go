package accounting

import (
	"context"
	"math/big"
	"testing"

	"github.com/backchain/backchain/internal/config"
	"github.com/backchain/backchain/internal/contracts"
	"github.com/backchain/backchain/pkg/types"
)

func TestCacheFallsBackToDefaults(t *testing.T) {
	cache := NewCache(config.DefaultConfig().Accounting)

	rules := cache.Rules(context.Background(), nil)
	if rules.ClaimFeeBips != 2000 {
		t.Errorf("default claim fee = %d, want 2000", rules.ClaimFeeBips)
	}
	if cache.Loaded() {
		t.Error("defaults must not count as a chain load")
	}
}

func TestCacheReadThrough(t *testing.T) {
	cache := NewCache(config.DefaultConfig().Accounting)
	eco := contracts.NewMockEcosystem()
	eco.SetMockClaimFee(1234)
	eco.SetMockDiscount(types.BoosterGold, 999)
	ctx := context.Background()

	rules := cache.Rules(ctx, eco)
	if rules.ClaimFeeBips != 1234 {
		t.Errorf("claim fee = %d, want 1234", rules.ClaimFeeBips)
	}
	if rules.Discount(types.BoosterGold) != 999 {
		t.Errorf("gold discount = %d, want 999", rules.Discount(types.BoosterGold))
	}
	if !cache.Loaded() {
		t.Error("rules must be cached after a successful load")
	}

	// The cache, not the contract, answers subsequent reads.
	eco.SetMockClaimFee(5555)
	rules = cache.Rules(ctx, eco)
	if rules.ClaimFeeBips != 1234 {
		t.Errorf("stale read expected 1234, got %d", rules.ClaimFeeBips)
	}
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	cache := NewCache(config.DefaultConfig().Accounting)
	eco := contracts.NewMockEcosystem()
	eco.SetMockClaimFee(1000)
	ctx := context.Background()

	cache.Rules(ctx, eco)
	eco.SetMockClaimFee(3000)
	cache.Invalidate()

	rules := cache.Rules(ctx, eco)
	if rules.ClaimFeeBips != 3000 {
		t.Errorf("claim fee after invalidate = %d, want 3000", rules.ClaimFeeBips)
	}
}

func TestCacheReload(t *testing.T) {
	cache := NewCache(config.DefaultConfig().Accounting)
	eco := contracts.NewMockEcosystem()
	eco.SetMockClaimFee(1000)
	eco.SetMockServiceFee(types.ServiceGame, big.NewInt(77))
	ctx := context.Background()

	if err := cache.Reload(ctx, eco); err != nil {
		t.Fatalf("reload: %v", err)
	}
	rules := cache.Rules(ctx, eco)
	if rules.ServiceFees[types.ServiceGame].Cmp(big.NewInt(77)) != 0 {
		t.Errorf("game fee = %s, want 77", rules.ServiceFees[types.ServiceGame])
	}
}

func TestCacheDefaultDiscountTable(t *testing.T) {
	cache := NewCache(config.DefaultConfig().Accounting)
	rules := cache.Rules(context.Background(), nil)

	if rules.Discount(types.BoosterNone) != 0 {
		t.Errorf("no-booster discount = %d, want 0", rules.Discount(types.BoosterNone))
	}
	if rules.Discount(types.BoosterDiamond) != 2000 {
		t.Errorf("diamond discount = %d, want 2000", rules.Discount(types.BoosterDiamond))
	}
}
