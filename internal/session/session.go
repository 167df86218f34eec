// Package session owns the wallet connection lifecycle. A single
// machine drives the Disconnected/Connecting/ChainMismatch/Connected
// states, validates and switches chains, and rebinds the contract
// registry on every provider change. All wallet events flow through
// one ordered queue so initial-state replay and live notifications can
// never interleave inconsistently.
package session

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/backchain/backchain/internal/accounting"
	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/config"
	"github.com/backchain/backchain/internal/contracts"
	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/metrics"
	"github.com/backchain/backchain/internal/provider"
	"github.com/backchain/backchain/internal/util"
	"github.com/backchain/backchain/pkg/types"
)

// Session is a read-only snapshot of the machine's state. Address is
// zero whenever Status is Disconnected.
type Session struct {
	Status   types.ConnectionStatus
	Address  common.Address
	ChainID  int64
	Provider string
}

// Notice is a user-facing message produced by the machine when it
// absorbs a recoverable failure.
type Notice struct {
	Kind    chainerr.Kind
	Message string
}

// Backend supplies the read path every handle set binds against. The
// public chain endpoint satisfies it; the wallet only ever signs.
type Backend interface {
	Backend() (bind.ContractBackend, error)
}

// Machine is the session state machine. It is the only writer of the
// session state and the only caller of Registry.Bind.
type Machine struct {
	network  config.NetworkConfig
	prov     provider.Provider
	registry *contracts.Registry
	engine   *accounting.Engine
	backend  Backend

	queue   chan provider.Event
	notices chan Notice
	stop    chan struct{}
	stopped sync.Once
	loopWG  sync.WaitGroup

	mu      sync.RWMutex
	session Session
}

// NewMachine wires the machine. Initialize starts event processing.
func NewMachine(network config.NetworkConfig, prov provider.Provider, registry *contracts.Registry, engine *accounting.Engine, backend Backend) *Machine {
	return &Machine{
		network:  network,
		prov:     prov,
		registry: registry,
		engine:   engine,
		backend:  backend,
		queue:    make(chan provider.Event, 32),
		notices:  make(chan Notice, 16),
		stop:     make(chan struct{}),
		session:  Session{Status: types.StatusDisconnected},
	}
}

// Current returns the session snapshot.
func (m *Machine) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Notices streams user-facing messages. Consumers that fall behind
// lose the oldest notices.
func (m *Machine) Notices() <-chan Notice {
	return m.notices
}

// Initialize binds the public endpoint, replays the wallet's current
// snapshot, and starts consuming live provider events. The replayed
// snapshot is queued ahead of any live event so a page-reload style
// startup with a still-attached wallet resolves deterministically.
func (m *Machine) Initialize(ctx context.Context) error {
	if err := m.bindPublic(); err != nil {
		// A failed public bind means the address table or ABI set is
		// defective; nothing downstream can work.
		return err
	}

	snap, err := m.prov.Current(ctx)
	if err != nil {
		logging.Warn("initial wallet snapshot unavailable", logging.Err(err))
	} else if snap.Connected {
		m.queue <- snap
	}

	m.loopWG.Add(1)
	util.SafeGoWithName("session-forwarder", func() {
		defer m.loopWG.Done()
		for {
			select {
			case <-m.stop:
				return
			case ev, ok := <-m.prov.Events():
				if !ok {
					return
				}
				select {
				case m.queue <- ev:
				case <-m.stop:
					return
				}
			}
		}
	})

	m.loopWG.Add(1)
	util.SafeGoWithName("session-loop", func() {
		defer m.loopWG.Done()
		for {
			select {
			case <-m.stop:
				return
			case ev := <-m.queue:
				m.handleEvent(ctx, ev)
			}
		}
	})

	return nil
}

// Disconnect tears the session down explicitly.
func (m *Machine) Disconnect() {
	m.queue <- provider.Event{Connected: false}
}

// Resync re-queues the provider's current snapshot. Callers use it
// after an out-of-band action that changed wallet state without a
// notification, such as an account request on a fresh bridge pairing.
func (m *Machine) Resync(ctx context.Context) error {
	snap, err := m.prov.Current(ctx)
	if err != nil {
		return err
	}
	m.queue <- snap
	return nil
}

// Close stops event processing. The provider is closed by its owner.
func (m *Machine) Close() {
	m.stopped.Do(func() {
		close(m.stop)
	})
	m.loopWG.Wait()
}

// handleEvent is the single transition function. It runs on the loop
// goroutine only.
func (m *Machine) handleEvent(ctx context.Context, ev provider.Event) {
	if !ev.Connected {
		m.teardown("wallet disconnected")
		return
	}

	cur := m.Current()
	if cur.Status == types.StatusConnected && cur.Address == ev.Address && cur.ChainID == ev.ChainID {
		// Duplicate of the bound state; a rebind here would churn
		// handles for nothing.
		return
	}

	m.setStatus(types.StatusConnecting, ev.Address, ev.ChainID)

	if ev.ChainID != m.network.ChainID {
		m.handleMismatch(ctx, ev)
		return
	}

	// Acquire the signer before anything becomes caller-visible. A
	// rejected prompt rolls the whole session back.
	if _, err := m.prov.Signer(ctx); err != nil {
		m.notify(err, "signer acquisition failed")
		m.teardown("signer unavailable")
		return
	}

	backend, err := m.backend.Backend()
	if err != nil {
		m.notify(err, "chain endpoint unavailable")
		m.teardown("no read backend")
		return
	}

	auth := func(ctx context.Context) (*bind.TransactOpts, error) {
		return m.prov.Signer(ctx)
	}
	if _, err := m.registry.Bind(m.prov.Name(), backend, auth); err != nil {
		m.notify(err, "contract binding failed")
		m.teardown("bind failed")
		return
	}

	if err := m.engine.Prime(ctx, ev.Address); err != nil {
		m.notify(err, "initial account load failed")
		m.teardown("prime failed")
		return
	}

	m.setStatus(types.StatusConnected, ev.Address, ev.ChainID)
	logging.Audit(logging.AuditEvent{
		Operation: "session_connected",
		Actor:     ev.Address.Hex(),
		Target:    m.prov.Name(),
		Result:    "success",
	})
}

// handleMismatch runs the switch/add flow. On success the machine
// stays in ChainMismatch; the wallet confirms the switch with a fresh
// event carrying the matching chain id, and that event drives the
// normal connect path (and exactly one rebind).
func (m *Machine) handleMismatch(ctx context.Context, ev provider.Event) {
	m.setStatus(types.StatusChainMismatch, ev.Address, ev.ChainID)
	logging.Info("wallet on wrong network",
		logging.ChainID(ev.ChainID), "required_chain_id", m.network.ChainID)

	err := m.prov.SwitchChain(ctx, m.network.ChainID)
	if err == nil {
		return
	}

	if chainerr.IsChainUnknown(err) {
		addErr := m.prov.AddChain(ctx, provider.ChainMetadata{
			ChainID:        m.network.ChainID,
			Name:           m.network.ChainName,
			RPCURL:         m.network.RPCURL,
			NativeCurrency: m.network.NativeCurrency,
			NativeDecimals: m.network.NativeDecimals,
			ExplorerURL:    m.network.ExplorerURL,
		})
		if addErr == nil {
			return
		}
		m.notify(addErr, "adding the network failed")
		m.teardown("add chain failed")
		return
	}

	m.notify(err, "switching networks failed")
	m.teardown("switch chain failed")
}

// teardown resets to Disconnected. The registry is rebound to the
// public endpoint before the status flips so no caller can observe a
// Disconnected session with signer-bound handles.
func (m *Machine) teardown(reason string) {
	cur := m.registry.Current()
	if cur == nil || cur.Provider != "public" {
		if err := m.bindPublic(); err != nil {
			logging.Error("failed to rebind public endpoint", logging.Err(err))
		}
	}

	prev := m.Current()
	if prev.Status != types.StatusDisconnected {
		logging.Info("session torn down", "reason", reason,
			logging.Wallet(prev.Address.Hex()))
	}
	m.setStatus(types.StatusDisconnected, common.Address{}, 0)
}

func (m *Machine) bindPublic() error {
	backend, err := m.backend.Backend()
	if err != nil {
		return err
	}
	_, err = m.registry.Bind("public", backend, nil)
	return err
}

func (m *Machine) setStatus(status types.ConnectionStatus, addr common.Address, chainID int64) {
	m.mu.Lock()
	prev := m.session.Status
	m.session = Session{
		Status:   status,
		Address:  addr,
		ChainID:  chainID,
		Provider: m.prov.Name(),
	}
	if status == types.StatusDisconnected {
		m.session.Address = common.Address{}
		m.session.Provider = "public"
	}
	m.mu.Unlock()

	if prev != status {
		metrics.Default().RecordTransition(string(prev), string(status))
		logging.Debug("session transition",
			"from", string(prev), "to", string(status))
	}
}

// notify classifies err and emits exactly one user-facing notice.
func (m *Machine) notify(err error, context string) {
	kind := chainerr.KindOf(err)
	n := Notice{Kind: kind, Message: kind.Message()}
	logging.Warn(context, "kind", kind.String(), logging.Err(err))
	select {
	case m.notices <- n:
	default:
		logging.Warn("notice dropped, consumer behind", "kind", kind.String())
	}
}
