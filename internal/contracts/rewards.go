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

// Rewards is the typed handle for the reward distributor.
type Rewards struct {
	handle

	mockMu      sync.RWMutex
	mockPending map[common.Address]*big.Int
	mockClaims  int
}

// NewRewards binds the reward distributor contract.
func NewRewards(addr common.Address, backend bind.ContractBackend, auth AuthFn) (*Rewards, error) {
	h, err := newHandle(types.ContractRewards, addr, RewardsABI, backend, auth)
	if err != nil {
		return nil, err
	}
	return &Rewards{handle: h}, nil
}

// NewMockRewards creates an in-memory rewards handle.
func NewMockRewards() *Rewards {
	return &Rewards{
		handle:      mockHandle(types.ContractRewards),
		mockPending: make(map[common.Address]*big.Int),
	}
}

// Pending returns the account's gross accrued rewards.
func (r *Rewards) Pending(ctx context.Context, account common.Address) (*big.Int, error) {
	if r.mock {
		r.mockMu.RLock()
		defer r.mockMu.RUnlock()
		if v, ok := r.mockPending[account]; ok {
			return new(big.Int).Set(v), nil
		}
		return big.NewInt(0), nil
	}

	var result []interface{}
	if err := r.call(ctx, &result, "pendingRewards", account); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}

// Claim pays out the signer's accrued rewards, net of the claim fee.
func (r *Rewards) Claim(ctx context.Context) (*ethtypes.Transaction, error) {
	if r.mock {
		r.mockMu.Lock()
		defer r.mockMu.Unlock()
		r.mockClaims++
		return nil, nil
	}
	return r.transact(ctx, "claim")
}

// SetMockPending seeds pending rewards in mock mode.
func (r *Rewards) SetMockPending(account common.Address, amount *big.Int) {
	if !r.mock {
		return
	}
	r.mockMu.Lock()
	defer r.mockMu.Unlock()
	r.mockPending[account] = new(big.Int).Set(amount)
}

// MockClaimCount reports how many mock claims were submitted.
func (r *Rewards) MockClaimCount() int {
	r.mockMu.RLock()
	defer r.mockMu.RUnlock()
	return r.mockClaims
}
