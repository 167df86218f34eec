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

// Staking is the typed handle for the staking/delegation manager.
type Staking struct {
	handle

	mockMu     sync.RWMutex
	mockStakes map[common.Address]*big.Int
	mockPowers map[common.Address]*big.Int
}

// NewStaking binds the staking contract.
func NewStaking(addr common.Address, backend bind.ContractBackend, auth AuthFn) (*Staking, error) {
	h, err := newHandle(types.ContractStaking, addr, StakingABI, backend, auth)
	if err != nil {
		return nil, err
	}
	return &Staking{handle: h}, nil
}

// NewMockStaking creates an in-memory staking handle.
func NewMockStaking() *Staking {
	return &Staking{
		handle:     mockHandle(types.ContractStaking),
		mockStakes: make(map[common.Address]*big.Int),
		mockPowers: make(map[common.Address]*big.Int),
	}
}

// Stake locks amount for lockSeconds.
func (s *Staking) Stake(ctx context.Context, amount, lockSeconds *big.Int) (*ethtypes.Transaction, error) {
	if s.mock {
		return nil, nil
	}
	return s.transact(ctx, "stake", amount, lockSeconds)
}

// Unstake releases amount after its lock expires.
func (s *Staking) Unstake(ctx context.Context, amount *big.Int) (*ethtypes.Transaction, error) {
	if s.mock {
		return nil, nil
	}
	return s.transact(ctx, "unstake", amount)
}

// StakedOf returns the account's total locked amount.
func (s *Staking) StakedOf(ctx context.Context, account common.Address) (*big.Int, error) {
	if s.mock {
		s.mockMu.RLock()
		defer s.mockMu.RUnlock()
		if v, ok := s.mockStakes[account]; ok {
			return new(big.Int).Set(v), nil
		}
		return big.NewInt(0), nil
	}

	var result []interface{}
	if err := s.call(ctx, &result, "stakedOf", account); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}

// StakePowerOf returns the account's pStake as the contract accounts it.
func (s *Staking) StakePowerOf(ctx context.Context, account common.Address) (*big.Int, error) {
	if s.mock {
		s.mockMu.RLock()
		defer s.mockMu.RUnlock()
		if v, ok := s.mockPowers[account]; ok {
			return new(big.Int).Set(v), nil
		}
		return big.NewInt(0), nil
	}

	var result []interface{}
	if err := s.call(ctx, &result, "stakePowerOf", account); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}

// SetMockStake seeds stake state in mock mode.
func (s *Staking) SetMockStake(account common.Address, staked, power *big.Int) {
	if !s.mock {
		return
	}
	s.mockMu.Lock()
	defer s.mockMu.Unlock()
	s.mockStakes[account] = new(big.Int).Set(staked)
	s.mockPowers[account] = new(big.Int).Set(power)
}
