package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// NewConnectCmd creates the connect command
func NewConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect a wallet and show the session",
		Long: `Connect the configured wallet provider and bind the contract handles.

The provider is selected by config:
  wallet.bridge_url set    -> external wallet over a websocket pairing
  wallet.bridge_url empty  -> local key from the platform keyring

If the wallet reports a different network, a switch (or add) request is
sent and the session completes once the wallet confirms it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer app.Close()

			var addr common.Address
			if err := WithSpinner("Connecting wallet", func() error {
				var err error
				addr, err = app.connectWallet(ctx)
				return err
			}); err != nil {
				Error("Connection failed: " + err.Error())
				return err
			}

			s := app.Session()
			Success("Wallet connected!")
			fmt.Println(StatusBox("Session", [][2]string{
				{"Status", string(s.Status)},
				{"Address", addr.Hex()},
				{"Chain", fmt.Sprintf("%d (%s)", s.ChainID, app.Cfg.Network.ChainName)},
				{"Provider", s.Provider},
			}))

			summary, err := app.Engine.Summary(ctx, addr)
			if err != nil {
				Warning("Account summary unavailable: " + err.Error())
				return nil
			}
			fmt.Println(StatusBox("Account", [][2]string{
				{"Balance", FormatBKC(summary.Balance)},
				{"Staked", FormatBKC(summary.Staked)},
				{"Stake Power", FormatBKC(summary.StakePower)},
				{"Claimable", FormatBKC(summary.Quote.NetClaim)},
			}))
			return nil
		},
	}
}

// NewDisconnectCmd creates the disconnect command
func NewDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Tear down the wallet session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if MockMode {
				Info("Mock session; nothing to disconnect.")
				return nil
			}

			ctx := cmd.Context()
			app, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer app.Close()

			app.Machine.Disconnect()
			waitDisconnected(app)
			Success("Wallet disconnected; reads fall back to the public endpoint.")
			return nil
		},
	}
}
