package commands

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/backchain/backchain/internal/accounting"
	"github.com/backchain/backchain/internal/config"
	"github.com/backchain/backchain/internal/contracts"
	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/provider"
	"github.com/backchain/backchain/internal/session"
	"github.com/backchain/backchain/internal/txexec"
	"github.com/backchain/backchain/pkg/types"
)

// mockOwner is the account every --mock run operates as.
var mockOwner = common.HexToAddress("0x00000000000000000000000000000000000000b1")

// App wires the full client stack for one CLI invocation. Machine and
// Endpoint are nil in mock mode.
type App struct {
	Cfg      *config.Config
	Endpoint *provider.Endpoint
	Provider provider.Provider
	Registry *contracts.Registry
	Cache    *accounting.Cache
	Engine   *accounting.Engine
	Machine  *session.Machine
	Executor *txexec.Executor
}

// newApp assembles the stack. needWallet selects a real wallet
// provider; read-only commands run against the public endpoint alone.
func newApp(ctx context.Context, needWallet bool) (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyLogConfig(cfg)

	registry := contracts.NewRegistry(cfg.Contracts)
	cache := accounting.NewCache(cfg.Accounting)

	if MockMode {
		return newMockApp(cfg, registry, cache), nil
	}

	endpoint := provider.NewEndpoint(cfg.Network)
	if err := endpoint.Connect(ctx); err != nil {
		return nil, err
	}

	var prov provider.Provider
	if !needWallet {
		// A permanently disconnected provider; the machine binds the
		// public endpoint and stays read-only.
		prov = provider.NewMock()
	} else if cfg.Wallet.BridgeURL != "" {
		prov, err = provider.DialBridge(ctx, cfg.Wallet.BridgeURL)
	} else {
		prov, err = provider.NewKeystore(cfg.Wallet.KeyringService, cfg.Wallet.KeyName, cfg.Network.ChainID)
	}
	if err != nil {
		endpoint.Close()
		return nil, err
	}

	engine := accounting.NewEngine(registry, cache, endpoint, cfg.Accounting)
	machine := session.NewMachine(cfg.Network, prov, registry, engine, endpoint)
	if err := machine.Initialize(ctx); err != nil {
		prov.Close()
		endpoint.Close()
		return nil, err
	}

	// Fee rules live in the config file; a rewrite drops the cached
	// rules so the next quote re-reads them.
	if path := configFilePath(); path != "" {
		if err := config.Watch(ctx, path, cache.Invalidate); err != nil {
			logging.Warn("config watch unavailable", logging.Err(err))
		}
	}

	return &App{
		Cfg:      cfg,
		Endpoint: endpoint,
		Provider: prov,
		Registry: registry,
		Cache:    cache,
		Engine:   engine,
		Machine:  machine,
		Executor: txexec.NewExecutor(endpoint, engine, cfg.Accounting),
	}, nil
}

// newMockApp binds in-memory contracts seeded with demo figures.
func newMockApp(cfg *config.Config, registry *contracts.Registry, cache *accounting.Cache) *App {
	set := registry.BindMock(mockOwner)

	tokens := func(n int64) *big.Int {
		return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
	}
	set.Token.SetMockBalance(mockOwner, tokens(1000))
	set.Rewards.SetMockPending(mockOwner, tokens(42))
	set.Booster.SetMockTier(mockOwner, types.BoosterSilver)
	set.Ecosystem.SetMockClaimFee(cfg.Accounting.DefaultClaimFeeBips)
	for tier, bips := range cfg.Accounting.DefaultDiscountBips {
		set.Ecosystem.SetMockDiscount(types.BoosterTier(tier), bips)
	}

	engine := accounting.NewEngine(registry, cache, nil, cfg.Accounting)
	return &App{
		Cfg:      cfg,
		Registry: registry,
		Cache:    cache,
		Engine:   engine,
		Executor: txexec.NewExecutor(nil, engine, cfg.Accounting),
	}
}

// Close releases everything the app holds.
func (a *App) Close() {
	if a.Machine != nil {
		a.Machine.Close()
	}
	if a.Provider != nil {
		a.Provider.Close()
	}
	if a.Endpoint != nil {
		a.Endpoint.Close()
	}
}

// Account returns the session account.
func (a *App) Account() common.Address {
	if MockMode {
		return mockOwner
	}
	return a.Machine.Current().Address
}

// Session returns a session snapshot; mock mode is always connected.
func (a *App) Session() session.Session {
	if MockMode {
		return session.Session{
			Status:   types.StatusConnected,
			Address:  mockOwner,
			ChainID:  a.Cfg.Network.ChainID,
			Provider: "mock",
		}
	}
	return a.Machine.Current()
}

// connectWallet drives the session to Connected and returns the bound
// account. The wait has no deadline of its own beyond ctx; wallet
// prompts take as long as the user takes.
func (a *App) connectWallet(ctx context.Context) (common.Address, error) {
	if MockMode {
		return mockOwner, nil
	}

	// A fresh bridge pairing needs an explicit account request before
	// it reports anything.
	if bridge, ok := a.Provider.(*provider.Bridge); ok {
		if _, err := bridge.RequestAccounts(ctx); err != nil {
			return common.Address{}, err
		}
		if err := a.Machine.Resync(ctx); err != nil {
			return common.Address{}, err
		}
	}

	for {
		s := a.Machine.Current()
		if s.Status == types.StatusConnected {
			return s.Address, nil
		}

		select {
		case <-ctx.Done():
			return common.Address{}, ctx.Err()
		case n := <-a.Machine.Notices():
			return common.Address{}, fmt.Errorf("%s", n.Message)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// waitDisconnected blocks briefly until the machine settles back to
// Disconnected.
func waitDisconnected(a *App) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if a.Machine.Current().Status == types.StatusDisconnected {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// handleSet returns the current contract bindings.
func (a *App) handleSet() (*contracts.HandleSet, error) {
	set := a.Registry.Current()
	if set == nil {
		return nil, fmt.Errorf("contracts are not bound")
	}
	return set, nil
}
