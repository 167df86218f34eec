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

// Game is the typed handle for the Fortune Pool game contract.
type Game struct {
	handle

	mockMu    sync.RWMutex
	mockRound *big.Int
	mockPlays int
}

// NewGame binds the game contract.
func NewGame(addr common.Address, backend bind.ContractBackend, auth AuthFn) (*Game, error) {
	h, err := newHandle(types.ContractGame, addr, GameABI, backend, auth)
	if err != nil {
		return nil, err
	}
	return &Game{handle: h}, nil
}

// NewMockGame creates an in-memory game handle.
func NewMockGame() *Game {
	return &Game{handle: mockHandle(types.ContractGame), mockRound: big.NewInt(1)}
}

// Play enters the current round with the given wager.
func (g *Game) Play(ctx context.Context, wager *big.Int) (*ethtypes.Transaction, error) {
	if g.mock {
		g.mockMu.Lock()
		defer g.mockMu.Unlock()
		g.mockPlays++
		return nil, nil
	}
	return g.transact(ctx, "play", wager)
}

// Resolve settles a finished round.
func (g *Game) Resolve(ctx context.Context, roundID *big.Int) (*ethtypes.Transaction, error) {
	if g.mock {
		g.mockMu.Lock()
		defer g.mockMu.Unlock()
		g.mockRound = new(big.Int).Add(g.mockRound, big.NewInt(1))
		return nil, nil
	}
	return g.transact(ctx, "resolve", roundID)
}

// CurrentRound returns the active round id.
func (g *Game) CurrentRound(ctx context.Context) (*big.Int, error) {
	if g.mock {
		g.mockMu.RLock()
		defer g.mockMu.RUnlock()
		return new(big.Int).Set(g.mockRound), nil
	}

	var result []interface{}
	if err := g.call(ctx, &result, "currentRound"); err != nil {
		return nil, err
	}
	return bigResult(result), nil
}
