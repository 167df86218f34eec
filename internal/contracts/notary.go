package contracts

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/backchain/backchain/pkg/types"
)

// Notary is the typed handle for the optional notarization contract.
type Notary struct {
	handle

	mockMu      sync.RWMutex
	mockDigests map[[32]byte]bool
}

// NewNotary binds the notary contract.
func NewNotary(addr common.Address, backend bind.ContractBackend, auth AuthFn) (*Notary, error) {
	h, err := newHandle(types.ContractNotary, addr, NotaryABI, backend, auth)
	if err != nil {
		return nil, err
	}
	return &Notary{handle: h}, nil
}

// NewMockNotary creates an in-memory notary handle.
func NewMockNotary() *Notary {
	return &Notary{
		handle:      mockHandle(types.ContractNotary),
		mockDigests: make(map[[32]byte]bool),
	}
}

// Submit records a document digest on chain.
func (n *Notary) Submit(ctx context.Context, digest [32]byte) (*ethtypes.Transaction, error) {
	if n.mock {
		n.mockMu.Lock()
		defer n.mockMu.Unlock()
		n.mockDigests[digest] = true
		return nil, nil
	}
	return n.transact(ctx, "submit", digest)
}

// IsNotarized reports whether a digest was previously submitted.
func (n *Notary) IsNotarized(ctx context.Context, digest [32]byte) (bool, error) {
	if n.mock {
		n.mockMu.RLock()
		defer n.mockMu.RUnlock()
		return n.mockDigests[digest], nil
	}

	var result []interface{}
	if err := n.call(ctx, &result, "isNotarized", digest); err != nil {
		return false, err
	}
	if len(result) == 0 {
		return false, nil
	}
	if v, ok := result[0].(bool); ok {
		return v, nil
	}
	return false, nil
}
