// Package provider abstracts the sources of wallet state: an external
// wallet reached over a websocket bridge, a keyring-backed local signer
// for headless use, and a public read-only endpoint used when no wallet
// is connected. The session state machine consumes all of them through
// the Provider interface.
package provider

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Event is a snapshot of wallet state pushed by a provider. Connected
// false means the wallet dropped the session or has no accounts.
type Event struct {
	Connected bool
	Address   common.Address
	ChainID   int64
}

// ChainMetadata describes a chain for wallet_addEthereumChain requests.
type ChainMetadata struct {
	ChainID        int64
	Name           string
	RPCURL         string
	NativeCurrency string
	NativeDecimals int
	ExplorerURL    string
}

// Provider is a source of wallet accounts, chain state and signing.
// Implementations push state changes on Events; the channel is closed
// when the provider shuts down.
type Provider interface {
	// Name identifies the provider in logs ("bridge", "keystore", "mock").
	Name() string

	// Events streams wallet state changes. Consumers must drain it.
	Events() <-chan Event

	// Current returns the wallet's present accounts/chain snapshot.
	Current(ctx context.Context) (Event, error)

	// SwitchChain asks the wallet to move to the given chain.
	SwitchChain(ctx context.Context, chainID int64) error

	// AddChain asks the wallet to register an unknown chain.
	AddChain(ctx context.Context, meta ChainMetadata) error

	// Signer returns transaction options bound to the active account.
	Signer(ctx context.Context) (*bind.TransactOpts, error)

	// Close releases the provider. Events is closed afterwards.
	Close() error
}
