// Package accounting derives the figures a user sees before confirming
// a transaction: claim quotes, approval sizing and stake power. All
// arithmetic is integer basis-point math mirroring the contracts; no
// floating point anywhere.
package accounting

import (
	"context"
	"math/big"
	"sync"

	"github.com/backchain/backchain/internal/config"
	"github.com/backchain/backchain/internal/contracts"
	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/metrics"
	"github.com/backchain/backchain/pkg/types"
)

// Rules is one snapshot of the protocol parameter tables.
type Rules struct {
	ClaimFeeBips  int64
	DiscountBips  map[types.BoosterTier]int64
	ServiceFees   map[types.ServiceName]*big.Int
	MinStakePower map[types.ServiceName]*big.Int
}

// Discount returns the fee discount for a tier, zero when unlisted.
func (r *Rules) Discount(tier types.BoosterTier) int64 {
	return r.DiscountBips[tier]
}

// Cache is the process-wide read-through cache of protocol parameters.
// It is populated lazily from the fee registry contract, falls back to
// configured defaults when the chain read fails, and is invalidated
// only by explicit reload after rules change. Staleness is acceptable:
// quotes are best-effort snapshots and the contract re-validates at
// execution time.
type Cache struct {
	defaults Rules

	mu    sync.RWMutex
	rules *Rules
}

// NewCache builds a Cache whose fallback rules come from configuration.
func NewCache(cfg config.AccountingConfig) *Cache {
	defaults := Rules{
		ClaimFeeBips:  cfg.DefaultClaimFeeBips,
		DiscountBips:  make(map[types.BoosterTier]int64),
		ServiceFees:   make(map[types.ServiceName]*big.Int),
		MinStakePower: make(map[types.ServiceName]*big.Int),
	}
	for i, bips := range cfg.DefaultDiscountBips {
		defaults.DiscountBips[types.BoosterTier(i)] = bips
	}
	return &Cache{defaults: defaults}
}

// Rules returns the cached parameter tables, loading them from the fee
// registry on first use. A failed load returns the configured defaults
// without caching them, so a later call retries the chain.
func (c *Cache) Rules(ctx context.Context, eco *contracts.Ecosystem) Rules {
	c.mu.RLock()
	cached := c.rules
	c.mu.RUnlock()
	if cached != nil {
		return *cached
	}

	if eco == nil {
		return c.defaults
	}

	loaded, err := c.load(ctx, eco)
	if err != nil {
		logging.Warn("fee registry read failed, using default rules", logging.Err(err))
		return c.defaults
	}

	c.mu.Lock()
	c.rules = loaded
	c.mu.Unlock()
	return *loaded
}

// Invalidate drops the cached tables; the next Rules call reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.rules = nil
	c.mu.Unlock()
	logging.Info("fee and stake rules cache invalidated")
}

// Reload fetches fresh tables immediately, replacing the cache.
func (c *Cache) Reload(ctx context.Context, eco *contracts.Ecosystem) error {
	loaded, err := c.load(ctx, eco)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.rules = loaded
	c.mu.Unlock()
	return nil
}

// Loaded reports whether chain-sourced rules are cached.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rules != nil
}

func (c *Cache) load(ctx context.Context, eco *contracts.Ecosystem) (*Rules, error) {
	rules := &Rules{
		DiscountBips:  make(map[types.BoosterTier]int64),
		ServiceFees:   make(map[types.ServiceName]*big.Int),
		MinStakePower: make(map[types.ServiceName]*big.Int),
	}

	fee, err := eco.ClaimFeeBips(ctx)
	if err != nil {
		return nil, err
	}
	rules.ClaimFeeBips = fee

	for tier := types.BoosterNone; tier <= types.BoosterDiamond; tier++ {
		bips, err := eco.DiscountBips(ctx, tier)
		if err != nil {
			return nil, err
		}
		rules.DiscountBips[tier] = bips
	}

	for _, svc := range []types.ServiceName{
		types.ServiceClaim, types.ServiceGame, types.ServiceNotary, types.ServiceDelegate,
	} {
		fee, err := eco.ServiceFee(ctx, svc)
		if err != nil {
			return nil, err
		}
		rules.ServiceFees[svc] = fee

		gate, err := eco.MinStakePower(ctx, svc)
		if err != nil {
			return nil, err
		}
		rules.MinStakePower[svc] = gate
	}

	metrics.Default().RecordCacheReload()
	logging.Info("fee and stake rules loaded", "claim_fee_bips", rules.ClaimFeeBips)
	return rules, nil
}
