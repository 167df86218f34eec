package chainerr

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 provider error codes surfaced by browser wallets and
// bridge sessions.
const (
	codeUserRejected      = 4001
	codeUnauthorized      = 4100
	codeUnsupportedMethod = 4200
	codeDisconnected      = 4900
	codeChainDisconnected = 4901
	codeChainNotAdded     = 4902
)

// jsonErrCode extracts a JSON-RPC error code if the chain carries one.
func jsonErrCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

// Classify maps an arbitrary error from a provider or contract call to
// a Kind. It inspects JSON-RPC error codes and well-known go-ethereum
// failure shapes; it is the only place in the codebase allowed to look
// at error text.
func Classify(err error) Kind {
	if err == nil {
		return Unknown
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}

	if code, ok := jsonErrCode(err); ok {
		switch code {
		case codeUserRejected, codeUnauthorized:
			return UserRejected
		case codeChainNotAdded:
			return ChainUnknown
		case codeDisconnected, codeChainDisconnected:
			return ProviderUnavailable
		case 3:
			// EIP-1474: execution error with revert data.
			return Reverted
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Network
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Network
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "execution reverted"):
		return Reverted
	case strings.Contains(msg, "insufficient funds"):
		return Reverted
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "too many requests"):
		return Network
	}

	return Unknown
}

// RevertReason extracts the decoded revert reason from an error, when
// the node returned one. Returns "" when no reason is available.
func RevertReason(err error) string {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return ""
	}
	if s, ok := dataErr.ErrorData().(string); ok {
		return s
	}
	return ""
}
