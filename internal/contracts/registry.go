package contracts

import (
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/config"
	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/metrics"
	"github.com/backchain/backchain/pkg/types"
)

// HandleSet is one generation of bound contract handles. All handles
// in a set share the same backend and signer; the set is immutable
// once published. Faucet and Notary are nil when their addresses are
// not deployed.
type HandleSet struct {
	// Provider names the binding source ("public", "bridge", ...).
	Provider string
	// Signer is true when the set can transact.
	Signer bool

	Token     *Token
	Staking   *Staking
	Rewards   *Rewards
	Booster   *Booster
	Sale      *Sale
	Game      *Game
	Faucet    *Faucet
	Notary    *Notary
	Ecosystem *Ecosystem
}

// Registry owns the process-wide handle set. Bind replaces the whole
// set atomically; readers loading Current never observe a mix of old
// and new bindings.
type Registry struct {
	cfg config.ContractsConfig

	bindMu  sync.Mutex
	current atomic.Pointer[HandleSet]
}

// NewRegistry creates a Registry over the configured address table.
func NewRegistry(cfg config.ContractsConfig) *Registry {
	return &Registry{cfg: cfg}
}

// Current returns the published handle set, or nil before the first
// Bind. Callers must re-fetch after any operation that can change the
// provider; holding a set across a rebind reads stale bindings.
func (r *Registry) Current() *HandleSet {
	return r.current.Load()
}

// Bind constructs a fresh handle set against the given backend and
// publishes it. A missing or zero core address is a fatal configuration
// error and leaves the previous set in place; optional contracts with
// no address are skipped.
func (r *Registry) Bind(providerName string, backend bind.ContractBackend, auth AuthFn) (*HandleSet, error) {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()

	for _, name := range types.CoreContracts {
		if _, ok := r.cfg.Address(name); !ok {
			return nil, chainerr.Newf(chainerr.Config, "contracts.bind",
				"missing address for core contract %s", name)
		}
	}

	set := &HandleSet{Provider: providerName, Signer: auth != nil}

	var err error
	if set.Token, err = NewToken(r.coreAddr(types.ContractToken), backend, auth); err != nil {
		return nil, err
	}
	if set.Staking, err = NewStaking(r.coreAddr(types.ContractStaking), backend, auth); err != nil {
		return nil, err
	}
	if set.Rewards, err = NewRewards(r.coreAddr(types.ContractRewards), backend, auth); err != nil {
		return nil, err
	}
	if set.Booster, err = NewBooster(r.coreAddr(types.ContractBooster), backend, auth); err != nil {
		return nil, err
	}
	if set.Sale, err = NewSale(r.coreAddr(types.ContractSale), backend, auth); err != nil {
		return nil, err
	}
	if set.Game, err = NewGame(r.coreAddr(types.ContractGame), backend, auth); err != nil {
		return nil, err
	}
	if set.Ecosystem, err = NewEcosystem(r.coreAddr(types.ContractEcosystem), backend, auth); err != nil {
		return nil, err
	}

	if addr, ok := r.cfg.Address(types.ContractFaucet); ok {
		if set.Faucet, err = NewFaucet(addr, backend, auth); err != nil {
			return nil, err
		}
	} else {
		logging.Debug("faucet address not configured, handle skipped")
	}
	if addr, ok := r.cfg.Address(types.ContractNotary); ok {
		if set.Notary, err = NewNotary(addr, backend, auth); err != nil {
			return nil, err
		}
	} else {
		logging.Debug("notary address not configured, handle skipped")
	}

	r.current.Store(set)
	metrics.Default().RecordRebind()
	logging.Info("contract handle set rebound",
		"provider", providerName, "signer", set.Signer)
	return set, nil
}

// BindMock publishes an all-mock handle set acting as owner.
func (r *Registry) BindMock(owner common.Address) *HandleSet {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()

	set := &HandleSet{
		Provider:  "mock",
		Signer:    true,
		Token:     NewMockToken(),
		Staking:   NewMockStaking(),
		Rewards:   NewMockRewards(),
		Booster:   NewMockBooster(),
		Sale:      NewMockSale(),
		Game:      NewMockGame(),
		Faucet:    NewMockFaucet(),
		Notary:    NewMockNotary(),
		Ecosystem: NewMockEcosystem(),
	}
	set.Token.SetMockOwner(owner)

	r.current.Store(set)
	metrics.Default().RecordRebind()
	return set
}

// coreAddr resolves a core contract address; zero when unset, which
// Bind reports as a configuration error after the lookup pass.
func (r *Registry) coreAddr(name types.ContractName) common.Address {
	addr, _ := r.cfg.Address(name)
	return addr
}
