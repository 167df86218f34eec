package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/backchain/backchain/internal/accounting"
)

// NewMonitorCmd creates the monitor command
func NewMonitorCmd() *cobra.Command {
	var (
		address  string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch an account's balances and rewards live",
		Long: `Continuously display an account's balance, stake and claim quote.

With a websocket endpoint configured (network.ws_endpoint), staking and
reward events trigger an immediate refresh; otherwise the view refreshes
on the polling interval alone. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close()

			var account common.Address
			switch {
			case address != "":
				if !common.IsHexAddress(address) {
					return fmt.Errorf("invalid address %q", address)
				}
				account = common.HexToAddress(address)
			case MockMode:
				account = mockOwner
			default:
				return fmt.Errorf("an account address is required, pass --address")
			}

			refresh := make(chan struct{}, 1)
			kick := func(context.Context, common.Address) {
				select {
				case refresh <- struct{}{}:
				default:
				}
			}

			if !MockMode {
				if ws := app.Endpoint.WSClient(); ws != nil {
					set, err := app.handleSet()
					if err != nil {
						return err
					}
					w := accounting.NewWatcher(app.Engine, ws, []common.Address{
						set.Staking.Address(),
						set.Rewards.Address(),
					})
					w.RefreshFn = kick
					w.Start(ctx, account)
				} else {
					fmt.Println(Hint("No websocket endpoint configured; polling only."))
				}
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				summary, err := app.Engine.Summary(ctx, account)
				if err != nil {
					Warning("Refresh failed: " + err.Error())
				} else {
					fmt.Println(StatusBox(
						fmt.Sprintf("Account %s  %s", FormatAddress(account.Hex()), time.Now().Format("15:04:05")),
						[][2]string{
							{"Balance", FormatBKC(summary.Balance)},
							{"Staked", FormatBKC(summary.Staked)},
							{"Stake Power", FormatBKC(summary.StakePower)},
							{"Claimable", FormatBKC(summary.Quote.NetClaim)},
						}))
				}

				select {
				case <-sig:
					return nil
				case <-ticker.C:
				case <-refresh:
				}
			}
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Account address to monitor")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "Polling interval")

	return cmd
}
