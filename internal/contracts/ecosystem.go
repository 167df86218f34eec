package contracts

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/backchain/backchain/pkg/types"
)

// Ecosystem is the typed handle for the fee registry holding the
// protocol parameter tables: claim fee, per-tier discounts, flat
// service fees and pStake gates.
type Ecosystem struct {
	handle

	mockMu          sync.RWMutex
	mockClaimFee    int64
	mockDiscounts   map[types.BoosterTier]int64
	mockServiceFees map[types.ServiceName]*big.Int
	mockPowerGates  map[types.ServiceName]*big.Int
}

// NewEcosystem binds the fee registry contract.
func NewEcosystem(addr common.Address, backend bind.ContractBackend, auth AuthFn) (*Ecosystem, error) {
	h, err := newHandle(types.ContractEcosystem, addr, EcosystemABI, backend, auth)
	if err != nil {
		return nil, err
	}
	return &Ecosystem{handle: h}, nil
}

// NewMockEcosystem creates an in-memory fee registry.
func NewMockEcosystem() *Ecosystem {
	return &Ecosystem{
		handle:          mockHandle(types.ContractEcosystem),
		mockDiscounts:   make(map[types.BoosterTier]int64),
		mockServiceFees: make(map[types.ServiceName]*big.Int),
		mockPowerGates:  make(map[types.ServiceName]*big.Int),
	}
}

// ClaimFeeBips returns the base reward-claim fee in basis points.
func (e *Ecosystem) ClaimFeeBips(ctx context.Context) (int64, error) {
	if e.mock {
		e.mockMu.RLock()
		defer e.mockMu.RUnlock()
		return e.mockClaimFee, nil
	}

	var result []interface{}
	if err := e.call(ctx, &result, "claimFeeBips"); err != nil {
		return 0, err
	}
	return bigResult(result).Int64(), nil
}

// DiscountBips returns the fee discount granted by a booster tier.
func (e *Ecosystem) DiscountBips(ctx context.Context, tier types.BoosterTier) (int64, error) {
	if e.mock {
		e.mockMu.RLock()
		defer e.mockMu.RUnlock()
		return e.mockDiscounts[tier], nil
	}

	var result []interface{}
	if err := e.call(ctx, &result, "discountBips", uint8(tier)); err != nil {
		return 0, err
	}
	return bigResult(result).Int64(), nil
}

// ServiceFee returns the flat fee charged for a service.
func (e *Ecosystem) ServiceFee(ctx context.Context, service types.ServiceName) (*big.Int, error) {
	if e.mock {
		e.mockMu.RLock()
		defer e.mockMu.RUnlock()
		if v, ok := e.mockServiceFees[service]; ok {
			return new(big.Int).Set(v), nil
		}
		return big.NewInt(0), nil
	}

	var result []interface{}
	if err := e.call(ctx, &result, "serviceFee", string(service)); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}

// MinStakePower returns the pStake required to use a service.
func (e *Ecosystem) MinStakePower(ctx context.Context, service types.ServiceName) (*big.Int, error) {
	if e.mock {
		e.mockMu.RLock()
		defer e.mockMu.RUnlock()
		if v, ok := e.mockPowerGates[service]; ok {
			return new(big.Int).Set(v), nil
		}
		return big.NewInt(0), nil
	}

	var result []interface{}
	if err := e.call(ctx, &result, "minStakePower", string(service)); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}

// SetMockClaimFee seeds the base claim fee in mock mode.
func (e *Ecosystem) SetMockClaimFee(bips int64) {
	if !e.mock {
		return
	}
	e.mockMu.Lock()
	defer e.mockMu.Unlock()
	e.mockClaimFee = bips
}

// SetMockDiscount seeds a tier discount in mock mode.
func (e *Ecosystem) SetMockDiscount(tier types.BoosterTier, bips int64) {
	if !e.mock {
		return
	}
	e.mockMu.Lock()
	defer e.mockMu.Unlock()
	e.mockDiscounts[tier] = bips
}

// SetMockServiceFee seeds a flat service fee in mock mode.
func (e *Ecosystem) SetMockServiceFee(service types.ServiceName, fee *big.Int) {
	if !e.mock {
		return
	}
	e.mockMu.Lock()
	defer e.mockMu.Unlock()
	e.mockServiceFees[service] = new(big.Int).Set(fee)
}

// SetMockMinStakePower seeds a service pStake gate in mock mode.
func (e *Ecosystem) SetMockMinStakePower(service types.ServiceName, power *big.Int) {
	if !e.mock {
		return
	}
	e.mockMu.Lock()
	defer e.mockMu.Unlock()
	e.mockPowerGates[service] = new(big.Int).Set(power)
}
