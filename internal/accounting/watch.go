package accounting

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/util"
)

// LogSource is the subscription half of a chain endpoint. The public
// endpoint's websocket client satisfies it when a websocket URL is
// configured.
type LogSource interface {
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- ethtypes.Log) (ethereum.Subscription, error)
}

// Watcher refreshes the account figures when the staking or rewards
// contracts emit events. It is an optimization over polling; a session
// without a websocket endpoint simply runs without one.
type Watcher struct {
	source LogSource
	addrs  []common.Address

	// RefreshFn runs on every observed log. Defaults to the engine's
	// refresh.
	RefreshFn func(ctx context.Context, account common.Address)
}

// NewWatcher wires a watcher over the engine for the given contract
// addresses.
func NewWatcher(engine *Engine, source LogSource, addrs []common.Address) *Watcher {
	return &Watcher{
		source:    source,
		addrs:     addrs,
		RefreshFn: engine.Refresh,
	}
}

// Run subscribes and refreshes account on every matching log until ctx
// is canceled. Subscription drops are resubscribed with a short pause;
// Run only returns on cancellation.
func (w *Watcher) Run(ctx context.Context, account common.Address) {
	for {
		if err := w.watch(ctx, account); err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Warn("event subscription dropped, resubscribing", logging.Err(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

// Start runs the watcher on its own goroutine.
func (w *Watcher) Start(ctx context.Context, account common.Address) {
	util.SafeGoWithName("accounting-watcher", func() {
		w.Run(ctx, account)
	})
}

func (w *Watcher) watch(ctx context.Context, account common.Address) error {
	logs := make(chan ethtypes.Log, 16)
	sub, err := w.source.SubscribeFilterLogs(ctx, ethereum.FilterQuery{Addresses: w.addrs}, logs)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return err
		case lg := <-logs:
			logging.Debug("contract event observed",
				logging.Contract(lg.Address.Hex()), "block", lg.BlockNumber)
			w.RefreshFn(ctx, account)
		}
	}
}
