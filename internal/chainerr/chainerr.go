// Package chainerr defines the error taxonomy for wallet and chain
// interactions. Every provider or contract failure is classified into
// exactly one Kind; retry policy and UI messaging key off the Kind,
// never off error strings at call sites.
package chainerr

import (
	"errors"
	"fmt"
)

// Kind classifies a wallet/chain failure.
type Kind int

const (
	// Unknown is an unclassified failure.
	Unknown Kind = iota
	// UserRejected means the wallet prompt was declined. Informational,
	// never retried.
	UserRejected
	// NetworkMismatch means the wallet is on the wrong chain and a
	// switch/add flow can recover.
	NetworkMismatch
	// ChainUnknown means the wallet does not know the required chain;
	// recovery is a wallet_addEthereumChain request.
	ChainUnknown
	// Config is a fatal configuration defect (missing address, malformed
	// ABI). Never retried, allowed to halt setup.
	Config
	// ProviderUnavailable means no wallet provider is reachable.
	ProviderUnavailable
	// Reverted means an on-chain check failed after gas was spent.
	Reverted
	// Network is a transient RPC/transport failure worth retrying.
	Network
)

func (k Kind) String() string {
	switch k {
	case UserRejected:
		return "user_rejected"
	case NetworkMismatch:
		return "network_mismatch"
	case ChainUnknown:
		return "chain_unknown"
	case Config:
		return "configuration_error"
	case ProviderUnavailable:
		return "provider_unavailable"
	case Reverted:
		return "contract_reverted"
	case Network:
		return "network_error"
	default:
		return "unknown"
	}
}

// Message returns the user-facing message for the kind.
func (k Kind) Message() string {
	switch k {
	case UserRejected:
		return "Request was declined in the wallet"
	case NetworkMismatch:
		return "Wallet is connected to the wrong network"
	case ChainUnknown:
		return "The required network is not configured in the wallet"
	case Config:
		return "The application is misconfigured and cannot continue"
	case ProviderUnavailable:
		return "No wallet detected; install or open a wallet to connect"
	case Reverted:
		return "The transaction was rejected by the contract"
	case Network:
		return "A network error occurred; please try again"
	default:
		return "An unexpected error occurred"
	}
}

// Error wraps an underlying error with its classification and the
// operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and operation name.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf creates a classified error from a format string.
func Newf(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the classification of err, consulting an explicit
// *Error in the chain first and falling back to Classify.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Classify(err)
}

// Retryable reports whether an error of this classification is worth
// another attempt. Only transient network failures qualify.
func Retryable(err error) bool {
	return KindOf(err) == Network
}

// IsUserRejected reports whether err is a declined wallet prompt.
func IsUserRejected(err error) bool {
	return KindOf(err) == UserRejected
}

// IsChainUnknown reports whether err means the wallet lacks the chain.
func IsChainUnknown(err error) bool {
	return KindOf(err) == ChainUnknown
}

// IsConfig reports whether err is a fatal configuration defect.
func IsConfig(err error) bool {
	return KindOf(err) == Config
}
