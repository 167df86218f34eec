// Package txexec runs prepared contract calls through the transaction
// lifecycle: Idle, AwaitingSignature, Pending, then one of Confirmed,
// Reverted or Rejected. It classifies failures, enforces one in-flight
// transaction per action, and schedules the post-confirmation account
// refresh.
package txexec

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/backchain/backchain/internal/accounting"
	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/config"
	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/metrics"
	"github.com/backchain/backchain/internal/util"
	"github.com/backchain/backchain/pkg/types"
)

// ErrInFlight rejects a duplicate submission while the same action is
// awaiting signature or inclusion.
var ErrInFlight = errors.New("a transaction for this action is already in flight")

// SendFn broadcasts the prepared call and returns the signed
// transaction. A nil transaction with a nil error means a mock binding
// confirmed synchronously.
type SendFn func(ctx context.Context) (*ethtypes.Transaction, error)

// Result is the terminal outcome of one execution.
type Result struct {
	Status  types.TxStatus
	Kind    chainerr.Kind
	TxHash  common.Hash
	Receipt *ethtypes.Receipt
	Err     error
}

// Executor drives transactions and owns their UI-facing status. One
// Executor serves the whole process; actions are independent.
type Executor struct {
	waiter       accounting.Waiter
	refreshDelay time.Duration

	// RefreshFn runs after a confirmation, delayed so indexing can
	// catch up. Defaults to the accounting engine's refresh.
	RefreshFn func(account common.Address)

	mu       sync.Mutex
	statuses map[string]types.TxStatus
}

// NewExecutor wires an Executor over the chain waiter and engine.
func NewExecutor(waiter accounting.Waiter, engine *accounting.Engine, cfg config.AccountingConfig) *Executor {
	e := &Executor{
		waiter:       waiter,
		refreshDelay: time.Duration(cfg.RefreshDelaySecs) * time.Second,
		statuses:     make(map[string]types.TxStatus),
	}
	e.RefreshFn = func(account common.Address) {
		engine.Refresh(context.Background(), account)
	}
	return e
}

// Status reports the current lifecycle state of an action.
func (e *Executor) Status(action string) types.TxStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.statuses[action]; ok {
		return s
	}
	return types.TxIdle
}

// Execute runs send through the transaction lifecycle for account. The
// returned Result always carries a terminal status; the action's
// control is re-enabled before Execute returns, whatever the outcome.
func (e *Executor) Execute(ctx context.Context, action string, account common.Address, send SendFn) (*Result, error) {
	if err := e.begin(action); err != nil {
		return nil, err
	}

	res := e.run(ctx, action, account, send)

	e.finish(action, res.Status)
	switch res.Status {
	case types.TxConfirmed, types.TxReverted, types.TxRejected:
		metrics.Default().RecordTxOutcome(action, string(res.Status))
	}

	if res.Status == types.TxConfirmed {
		e.scheduleRefresh(account)
	}
	return res, nil
}

func (e *Executor) run(ctx context.Context, action string, account common.Address, send SendFn) *Result {
	e.setStatus(action, types.TxAwaitingSignature)

	tx, err := send(ctx)
	if err != nil {
		kind := chainerr.KindOf(err)
		status := types.TxRejected
		if kind != chainerr.UserRejected {
			// A pre-broadcast failure that was not a declined prompt:
			// reverts surface as Reverted, the rest roll back cleanly.
			status = types.TxReverted
			if kind != chainerr.Reverted {
				status = types.TxIdle
			}
		}
		logging.Warn("transaction not broadcast",
			"action", action, "kind", kind.String(), logging.Err(err))
		return &Result{Status: status, Kind: kind, Err: err}
	}

	if tx == nil {
		// Mock bindings apply state synchronously.
		return &Result{Status: types.TxConfirmed}
	}

	e.setStatus(action, types.TxPending)
	logging.Info("transaction broadcast",
		"action", action, logging.TxHash(tx.Hash().Hex()))

	receipt, err := e.waiter.WaitForTransaction(ctx, tx)
	if err != nil {
		kind := chainerr.KindOf(err)
		status := types.TxReverted
		if kind != chainerr.Reverted {
			status = types.TxIdle
		}
		if reason := chainerr.RevertReason(err); reason != "" {
			logging.Warn("transaction reverted",
				"action", action, "reason", reason, logging.TxHash(tx.Hash().Hex()))
		}
		return &Result{Status: status, Kind: kind, TxHash: tx.Hash(), Receipt: receipt, Err: err}
	}

	logging.Audit(logging.AuditEvent{
		Operation: action + "_confirmed",
		Actor:     account.Hex(),
		Target:    tx.Hash().Hex(),
		Result:    "success",
	})
	return &Result{Status: types.TxConfirmed, TxHash: tx.Hash(), Receipt: receipt}
}

// begin claims the in-flight slot for an action.
func (e *Executor) begin(action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.statuses[action] {
	case types.TxAwaitingSignature, types.TxPending:
		return ErrInFlight
	}
	e.statuses[action] = types.TxAwaitingSignature
	return nil
}

func (e *Executor) setStatus(action string, status types.TxStatus) {
	e.mu.Lock()
	e.statuses[action] = status
	e.mu.Unlock()
}

// finish records the terminal status, releasing the in-flight slot.
func (e *Executor) finish(action string, status types.TxStatus) {
	e.setStatus(action, status)
}

// scheduleRefresh recomputes the account figures after a short delay;
// node state is not instantaneously consistent after inclusion.
func (e *Executor) scheduleRefresh(account common.Address) {
	delay := e.refreshDelay
	refresh := e.RefreshFn
	util.SafeGoWithName("post-tx-refresh", func() {
		time.Sleep(delay)
		refresh(account)
	})
}
