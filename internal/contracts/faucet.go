package contracts

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/backchain/backchain/pkg/types"
)

// Faucet is the typed handle for the optional test-token faucet.
type Faucet struct {
	handle

	mockMu     sync.Mutex
	mockClaims int
}

// NewFaucet binds the faucet contract.
func NewFaucet(addr common.Address, backend bind.ContractBackend, auth AuthFn) (*Faucet, error) {
	h, err := newHandle(types.ContractFaucet, addr, FaucetABI, backend, auth)
	if err != nil {
		return nil, err
	}
	return &Faucet{handle: h}, nil
}

// NewMockFaucet creates an in-memory faucet handle.
func NewMockFaucet() *Faucet {
	return &Faucet{handle: mockHandle(types.ContractFaucet)}
}

// Claim requests test tokens for the signer.
func (f *Faucet) Claim(ctx context.Context) (*ethtypes.Transaction, error) {
	if f.mock {
		f.mockMu.Lock()
		defer f.mockMu.Unlock()
		f.mockClaims++
		return nil, nil
	}
	return f.transact(ctx, "claim")
}
