// Package contracts holds typed handles for the Backchain contract
// boundary. Every handle is a narrow wrapper over a bound ABI exposing
// only the calls the client makes; each supports a mock mode so the
// whole stack runs in-memory for tests and --mock runs.
package contracts

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/metrics"
	"github.com/backchain/backchain/pkg/types"
)

// AuthFn supplies transaction options for the active signer. Nil on a
// read-only binding; transact calls then fail with ProviderUnavailable.
type AuthFn func(ctx context.Context) (*bind.TransactOpts, error)

// handle is the shared core of every typed contract wrapper.
type handle struct {
	name     types.ContractName
	addr     common.Address
	contract *bind.BoundContract
	auth     AuthFn
	mock     bool
}

// newHandle parses the ABI and binds the contract. A malformed ABI is
// a fatal configuration defect, not a transient condition.
func newHandle(name types.ContractName, addr common.Address, abiJSON string, backend bind.ContractBackend, auth AuthFn) (handle, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return handle{}, chainerr.New(chainerr.Config, "contracts.bind",
			fmt.Errorf("failed to parse %s ABI: %w", name, err))
	}
	return handle{
		name:     name,
		addr:     addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
		auth:     auth,
	}, nil
}

func mockHandle(name types.ContractName) handle {
	return handle{name: name, mock: true}
}

// Address returns the deployed contract address.
func (h *handle) Address() common.Address { return h.addr }

// IsMockMode reports whether the handle runs against in-memory state.
func (h *handle) IsMockMode() bool { return h.mock }

// call performs a read, recording its latency.
func (h *handle) call(ctx context.Context, result *[]interface{}, method string, args ...interface{}) error {
	start := time.Now()
	err := h.contract.Call(&bind.CallOpts{Context: ctx}, result, method, args...)
	metrics.Default().RecordRPCRead(string(h.name), time.Since(start))
	if err != nil {
		return chainerr.New(chainerr.KindOf(err), fmt.Sprintf("%s.%s", h.name, method), err)
	}
	return nil
}

// transact submits a state-mutating call through the bound signer.
func (h *handle) transact(ctx context.Context, method string, args ...interface{}) (*ethtypes.Transaction, error) {
	return h.transactValue(ctx, nil, method, args...)
}

// transactValue is transact with attached native value for payable calls.
func (h *handle) transactValue(ctx context.Context, value *big.Int, method string, args ...interface{}) (*ethtypes.Transaction, error) {
	op := fmt.Sprintf("%s.%s", h.name, method)
	if h.auth == nil {
		return nil, chainerr.Newf(chainerr.ProviderUnavailable, op,
			"read-only binding cannot transact")
	}

	auth, err := h.auth(ctx)
	if err != nil {
		return nil, chainerr.New(chainerr.KindOf(err), op, err)
	}
	auth.Context = ctx
	if value != nil {
		auth.Value = value
	}

	tx, err := h.contract.Transact(auth, method, args...)
	if err != nil {
		return nil, chainerr.New(chainerr.KindOf(err), op, err)
	}
	return tx, nil
}

// bigResult extracts the single uint256 output of a call.
func bigResult(result []interface{}) *big.Int {
	if len(result) == 0 {
		return big.NewInt(0)
	}
	if v, ok := result[0].(*big.Int); ok {
		return v
	}
	return big.NewInt(0)
}

// tokenDecimals is the fixed 18-decimal scale of $BKC amounts.
var tokenDecimals = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FormatTokenAmount renders a wei amount with up to 4 decimal places.
func FormatTokenAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}

	whole := new(big.Int).Div(amount, tokenDecimals)
	frac := new(big.Int).Mod(amount, tokenDecimals)

	if frac.Sign() == 0 {
		return whole.String()
	}

	fracStr := frac.String()
	for len(fracStr) < 18 {
		fracStr = "0" + fracStr
	}
	for len(fracStr) > 0 && fracStr[len(fracStr)-1] == '0' {
		fracStr = fracStr[:len(fracStr)-1]
	}
	if len(fracStr) > 4 {
		fracStr = fracStr[:4]
		for len(fracStr) > 0 && fracStr[len(fracStr)-1] == '0' {
			fracStr = fracStr[:len(fracStr)-1]
		}
	}

	if len(fracStr) == 0 {
		return whole.String()
	}
	return whole.String() + "." + fracStr
}

// ParseTokenAmount parses a decimal token string into wei.
func ParseTokenAmount(amount string) (*big.Int, error) {
	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}

	whole, ok := new(big.Int).SetString(parts[0], 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}
	if whole.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %s", amount)
	}

	result := new(big.Int).Mul(whole, tokenDecimals)

	if len(parts) == 2 {
		fracStr := parts[1]
		for len(fracStr) < 18 {
			fracStr += "0"
		}
		if len(fracStr) > 18 {
			fracStr = fracStr[:18]
		}
		frac, ok := new(big.Int).SetString(fracStr, 10)
		if !ok {
			return nil, fmt.Errorf("invalid decimal: %s", parts[1])
		}
		result.Add(result, frac)
	}

	return result, nil
}
