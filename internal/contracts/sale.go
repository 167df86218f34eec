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

// Sale is the typed handle for the presale contract.
type Sale struct {
	handle

	mockMu    sync.RWMutex
	mockPrice *big.Int
}

// NewSale binds the sale contract.
func NewSale(addr common.Address, backend bind.ContractBackend, auth AuthFn) (*Sale, error) {
	h, err := newHandle(types.ContractSale, addr, SaleABI, backend, auth)
	if err != nil {
		return nil, err
	}
	return &Sale{handle: h}, nil
}

// NewMockSale creates an in-memory sale handle.
func NewMockSale() *Sale {
	return &Sale{handle: mockHandle(types.ContractSale), mockPrice: big.NewInt(0)}
}

// Price returns the current per-token presale price in native wei.
func (s *Sale) Price(ctx context.Context) (*big.Int, error) {
	if s.mock {
		s.mockMu.RLock()
		defer s.mockMu.RUnlock()
		return new(big.Int).Set(s.mockPrice), nil
	}

	var result []interface{}
	if err := s.call(ctx, &result, "price"); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}

// Buy purchases amount tokens, paying the attached native value.
func (s *Sale) Buy(ctx context.Context, amount, value *big.Int) (*ethtypes.Transaction, error) {
	if s.mock {
		return nil, nil
	}
	return s.transactValue(ctx, value, "buy", amount)
}

// SetMockPrice seeds the price in mock mode.
func (s *Sale) SetMockPrice(price *big.Int) {
	if !s.mock {
		return
	}
	s.mockMu.Lock()
	defer s.mockMu.Unlock()
	s.mockPrice = new(big.Int).Set(price)
}
