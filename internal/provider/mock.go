package provider

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/backchain/backchain/internal/chainerr"
)

// Mock is a scriptable in-memory provider. Tests (and --mock CLI runs)
// drive wallet behavior by setting the error fields and emitting events
// by hand.
type Mock struct {
	mu     sync.Mutex
	events chan Event
	state  Event
	closed bool

	// CurrentErr, SwitchErr, AddErr and SignerErr are returned verbatim
	// by the corresponding methods when non-nil.
	CurrentErr error
	SwitchErr  error
	AddErr     error
	SignerErr  error

	// SwitchCalls and AddCalls record every request in order.
	SwitchCalls []int64
	AddCalls    []ChainMetadata
}

// NewMock creates a Mock reporting the disconnected state.
func NewMock() *Mock {
	return &Mock{events: make(chan Event, 32)}
}

// Name implements Provider.
func (m *Mock) Name() string { return "mock" }

// Events implements Provider.
func (m *Mock) Events() <-chan Event { return m.events }

// Emit pushes an event and makes it the current snapshot.
func (m *Mock) Emit(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.state = ev
	m.events <- ev
}

// Connect is shorthand for emitting a connected snapshot.
func (m *Mock) Connect(addr common.Address, chainID int64) {
	m.Emit(Event{Connected: true, Address: addr, ChainID: chainID})
}

// Disconnect is shorthand for emitting a disconnected snapshot.
func (m *Mock) Disconnect() {
	m.Emit(Event{Connected: false})
}

// Current implements Provider.
func (m *Mock) Current(ctx context.Context) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CurrentErr != nil {
		return Event{}, m.CurrentErr
	}
	return m.state, nil
}

// SwitchChain implements Provider. The call is recorded; the chain does
// not move until the test emits the matching event, mirroring how real
// wallets confirm switches asynchronously.
func (m *Mock) SwitchChain(ctx context.Context, chainID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SwitchCalls = append(m.SwitchCalls, chainID)
	return m.SwitchErr
}

// AddChain implements Provider.
func (m *Mock) AddChain(ctx context.Context, meta ChainMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls = append(m.AddCalls, meta)
	return m.AddErr
}

// Signer implements Provider.
func (m *Mock) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SignerErr != nil {
		return nil, m.SignerErr
	}
	if !m.state.Connected {
		return nil, chainerr.Newf(chainerr.ProviderUnavailable, "mock.signer", "not connected")
	}
	return &bind.TransactOpts{From: m.state.Address, Context: ctx}, nil
}

// Calls returns copies of the recorded switch and add requests.
func (m *Mock) Calls() ([]int64, []ChainMetadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switches := append([]int64(nil), m.SwitchCalls...)
	adds := append([]ChainMetadata(nil), m.AddCalls...)
	return switches, adds
}

// Close implements Provider.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

var _ Provider = (*Mock)(nil)
