package contracts

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/backchain/backchain/pkg/types"
)

// Token is the typed handle for the $BKC ERC20 contract.
type Token struct {
	handle

	mockMu         sync.RWMutex
	mockOwner      common.Address
	mockBalances   map[common.Address]*big.Int
	mockAllowances map[common.Address]map[common.Address]*big.Int
}

// NewToken binds the token contract.
func NewToken(addr common.Address, backend bind.ContractBackend, auth AuthFn) (*Token, error) {
	h, err := newHandle(types.ContractToken, addr, TokenABI, backend, auth)
	if err != nil {
		return nil, err
	}
	return &Token{handle: h}, nil
}

// NewMockToken creates an in-memory token for tests and --mock runs.
func NewMockToken() *Token {
	return &Token{
		handle:         mockHandle(types.ContractToken),
		mockBalances:   make(map[common.Address]*big.Int),
		mockAllowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// BalanceOf returns the token balance of an account.
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	if t.mock {
		t.mockMu.RLock()
		defer t.mockMu.RUnlock()
		if b, ok := t.mockBalances[account]; ok {
			return new(big.Int).Set(b), nil
		}
		return big.NewInt(0), nil
	}

	var result []interface{}
	if err := t.call(ctx, &result, "balanceOf", account); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}

// Allowance returns the amount spender may move on behalf of owner.
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	if t.mock {
		t.mockMu.RLock()
		defer t.mockMu.RUnlock()
		if byOwner, ok := t.mockAllowances[owner]; ok {
			if a, ok := byOwner[spender]; ok {
				return new(big.Int).Set(a), nil
			}
		}
		return big.NewInt(0), nil
	}

	var result []interface{}
	if err := t.call(ctx, &result, "allowance", owner, spender); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}

// Approve lets spender move up to amount of the signer's tokens.
func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	if t.mock {
		t.mockMu.Lock()
		defer t.mockMu.Unlock()
		owner := t.mockOwner
		if _, ok := t.mockAllowances[owner]; !ok {
			t.mockAllowances[owner] = make(map[common.Address]*big.Int)
		}
		t.mockAllowances[owner][spender] = new(big.Int).Set(amount)
		return nil, nil
	}

	return t.transact(ctx, "approve", spender, amount)
}

// Transfer moves tokens from the signer to another account.
func (t *Token) Transfer(ctx context.Context, to common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	if t.mock {
		t.mockMu.Lock()
		defer t.mockMu.Unlock()
		from := t.mockOwner
		balance, ok := t.mockBalances[from]
		if !ok || balance.Cmp(amount) < 0 {
			return nil, fmt.Errorf("insufficient balance")
		}
		t.mockBalances[from] = new(big.Int).Sub(balance, amount)
		if existing, ok := t.mockBalances[to]; ok {
			t.mockBalances[to] = new(big.Int).Add(existing, amount)
		} else {
			t.mockBalances[to] = new(big.Int).Set(amount)
		}
		return nil, nil
	}

	return t.transact(ctx, "transfer", to, amount)
}

// SetMockOwner sets the account mock transactions act as.
func (t *Token) SetMockOwner(owner common.Address) {
	if !t.mock {
		return
	}
	t.mockMu.Lock()
	defer t.mockMu.Unlock()
	t.mockOwner = owner
}

// SetMockBalance seeds a balance in mock mode.
func (t *Token) SetMockBalance(account common.Address, amount *big.Int) {
	if !t.mock {
		return
	}
	t.mockMu.Lock()
	defer t.mockMu.Unlock()
	t.mockBalances[account] = new(big.Int).Set(amount)
}

// SetMockAllowance seeds an allowance in mock mode.
func (t *Token) SetMockAllowance(owner, spender common.Address, amount *big.Int) {
	if !t.mock {
		return
	}
	t.mockMu.Lock()
	defer t.mockMu.Unlock()
	if _, ok := t.mockAllowances[owner]; !ok {
		t.mockAllowances[owner] = make(map[common.Address]*big.Int)
	}
	t.mockAllowances[owner][spender] = new(big.Int).Set(amount)
}
