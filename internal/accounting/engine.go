package accounting

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/config"
	"github.com/backchain/backchain/internal/contracts"
	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/pkg/types"
)

var bipsDenom = big.NewInt(types.BipsDenominator)

// ClaimQuote is the precomputed breakdown shown before a claim.
// NetClaim plus FeeAmount always equals Gross exactly.
type ClaimQuote struct {
	Gross        *big.Int
	Tier         types.BoosterTier
	BaseFeeBips  int64
	DiscountBips int64
	NetFeeBips   int64
	FeeAmount    *big.Int
	NetClaim     *big.Int
}

// Zero reports whether there is nothing to claim; callers disable the
// claim action on a zero quote.
func (q *ClaimQuote) Zero() bool {
	return q.Gross.Sign() == 0
}

// ApprovalQuote sizes a token approval with drift tolerance.
type ApprovalQuote struct {
	Required  *big.Int
	Tolerated *big.Int
}

// Satisfied reports whether an allowance covers the quote.
func (q *ApprovalQuote) Satisfied(allowance *big.Int) bool {
	return allowance.Cmp(q.Tolerated) >= 0
}

// AccountSummary is the dashboard snapshot for one account.
type AccountSummary struct {
	Balance    *big.Int
	Staked     *big.Int
	StakePower *big.Int
	Quote      *ClaimQuote
}

// Waiter blocks until a transaction is mined. The chain endpoint
// satisfies it.
type Waiter interface {
	WaitForTransaction(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Receipt, error)
}

// Engine computes user-facing amounts from chain reads and the rules
// cache. Quotes carry no cross-call consistency guarantee; each one is
// a best-effort snapshot the contract re-validates at execution time.
type Engine struct {
	registry      *contracts.Registry
	cache         *Cache
	waiter        Waiter
	toleranceBips int64
}

// NewEngine creates an Engine over the registry's current handle set.
func NewEngine(registry *contracts.Registry, cache *Cache, waiter Waiter, cfg config.AccountingConfig) *Engine {
	return &Engine{
		registry:      registry,
		cache:         cache,
		waiter:        waiter,
		toleranceBips: cfg.ApprovalToleranceBips,
	}
}

// Cache exposes the rules cache for invalidation hooks.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// handles fetches the current handle set. Handle references are never
// retained across calls; every read re-fetches so a rebind between two
// reads is picked up.
func (e *Engine) handles() (*contracts.HandleSet, error) {
	set := e.registry.Current()
	if set == nil {
		return nil, chainerr.Newf(chainerr.Config, "accounting.handles",
			"no contract handle set bound")
	}
	return set, nil
}

// ComputeClaimQuote reads gross pending rewards and the account's best
// booster tier, then applies the fee schedule. Zero gross rewards
// short-circuit to an all-zero quote without further reads.
func (e *Engine) ComputeClaimQuote(ctx context.Context, account common.Address) (*ClaimQuote, error) {
	set, err := e.handles()
	if err != nil {
		return nil, err
	}

	gross, err := set.Rewards.Pending(ctx, account)
	if err != nil {
		return nil, err
	}
	if gross.Sign() == 0 {
		return &ClaimQuote{
			Gross:     big.NewInt(0),
			FeeAmount: big.NewInt(0),
			NetClaim:  big.NewInt(0),
		}, nil
	}

	tier, err := set.Booster.HighestTierOf(ctx, account)
	if err != nil {
		return nil, err
	}

	rules := e.cache.Rules(ctx, set.Ecosystem)
	return buildClaimQuote(gross, tier, rules.ClaimFeeBips, rules.Discount(tier)), nil
}

// buildClaimQuote applies the fee schedule to a gross amount. The net
// fee floors at zero when the discount exceeds the base fee, and the
// fee amount is derived once so NetClaim+FeeAmount == Gross exactly.
func buildClaimQuote(gross *big.Int, tier types.BoosterTier, baseFeeBips, discountBips int64) *ClaimQuote {
	netFee := baseFeeBips - discountBips
	if netFee < 0 {
		netFee = 0
	}

	feeAmount := new(big.Int).Mul(gross, big.NewInt(netFee))
	feeAmount.Div(feeAmount, bipsDenom)

	return &ClaimQuote{
		Gross:        new(big.Int).Set(gross),
		Tier:         tier,
		BaseFeeBips:  baseFeeBips,
		DiscountBips: discountBips,
		NetFeeBips:   netFee,
		FeeAmount:    feeAmount,
		NetClaim:     new(big.Int).Sub(gross, feeAmount),
	}
}

// ComputeApprovalQuote sizes an approval with the given tolerance so
// minor rounding or price drift between quote and execution does not
// force a second approval transaction.
func ComputeApprovalQuote(required *big.Int, toleranceBips int64) ApprovalQuote {
	tolerated := new(big.Int).Mul(required, big.NewInt(types.BipsDenominator+toleranceBips))
	tolerated.Div(tolerated, bipsDenom)
	return ApprovalQuote{
		Required:  new(big.Int).Set(required),
		Tolerated: tolerated,
	}
}

// ComputeStakePower derives pStake from amount and lock duration using
// the contract's exact truncation order: the duration floors to whole
// days first, then multiplies, then scales down by the token decimals.
func ComputeStakePower(amount *big.Int, lockSeconds int64) *big.Int {
	if amount == nil || amount.Sign() <= 0 || lockSeconds <= 0 {
		return big.NewInt(0)
	}
	days := lockSeconds / types.SecondsPerDay
	power := new(big.Int).Mul(amount, big.NewInt(days))
	return power.Div(power, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// EnsureApproval guarantees spender may move required tokens for the
// account. When the live allowance is below the tolerated amount it
// submits an approval for the tolerated amount and waits for
// confirmation; it never reports success with the approval unconfirmed.
func (e *Engine) EnsureApproval(ctx context.Context, account, spender common.Address, required *big.Int) error {
	if required.Sign() == 0 {
		return nil
	}

	set, err := e.handles()
	if err != nil {
		return err
	}

	quote := ComputeApprovalQuote(required, e.toleranceBips)
	allowance, err := set.Token.Allowance(ctx, account, spender)
	if err != nil {
		return err
	}
	if quote.Satisfied(allowance) {
		return nil
	}

	logging.Info("submitting approval",
		logging.Wallet(account.Hex()),
		"spender", spender.Hex(),
		"amount", quote.Tolerated.String())

	tx, err := set.Token.Approve(ctx, spender, quote.Tolerated)
	if err != nil {
		return err
	}
	if tx == nil {
		// Mock binding confirms synchronously.
		return nil
	}

	if _, err := e.waiter.WaitForTransaction(ctx, tx); err != nil {
		return err
	}
	return nil
}

// Prime performs the initial account data load required before a
// session may report Connected: rules, pending rewards and tier.
func (e *Engine) Prime(ctx context.Context, account common.Address) error {
	set, err := e.handles()
	if err != nil {
		return err
	}
	e.cache.Rules(ctx, set.Ecosystem)

	if _, err := e.ComputeClaimQuote(ctx, account); err != nil {
		return err
	}
	return nil
}

// Summary reads the dashboard figures for one account.
func (e *Engine) Summary(ctx context.Context, account common.Address) (*AccountSummary, error) {
	set, err := e.handles()
	if err != nil {
		return nil, err
	}

	balance, err := set.Token.BalanceOf(ctx, account)
	if err != nil {
		return nil, err
	}
	staked, err := set.Staking.StakedOf(ctx, account)
	if err != nil {
		return nil, err
	}
	power, err := set.Staking.StakePowerOf(ctx, account)
	if err != nil {
		return nil, err
	}
	quote, err := e.ComputeClaimQuote(ctx, account)
	if err != nil {
		return nil, err
	}

	return &AccountSummary{
		Balance:    balance,
		Staked:     staked,
		StakePower: power,
		Quote:      quote,
	}, nil
}

// Refresh recomputes the account figures after a confirmed transaction.
// Errors are logged, not returned: the refresh is advisory and the next
// render recomputes anyway.
func (e *Engine) Refresh(ctx context.Context, account common.Address) {
	if _, err := e.Summary(ctx, account); err != nil {
		logging.Warn("post-transaction refresh failed",
			logging.Wallet(account.Hex()), logging.Err(err))
	}
}
