package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show network, contract and account status",
		Long: `Show the configured network, the deployed contract addresses, and
(with --address or in mock mode) the account's balances and claim quote.
Runs read-only against the public endpoint; no wallet is needed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Println(Logo())
			fmt.Println(StatusBox("Network", [][2]string{
				{"Chain", fmt.Sprintf("%d (%s)", app.Cfg.Network.ChainID, app.Cfg.Network.ChainName)},
				{"RPC", app.Cfg.Network.RPCURL},
				{"Explorer", app.Cfg.Network.ExplorerURL},
			}))

			set, err := app.handleSet()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"token", set.Token.Address().Hex()},
				{"staking", set.Staking.Address().Hex()},
				{"rewards", set.Rewards.Address().Hex()},
				{"booster", set.Booster.Address().Hex()},
				{"sale", set.Sale.Address().Hex()},
				{"game", set.Game.Address().Hex()},
				{"ecosystem", set.Ecosystem.Address().Hex()},
			}
			if set.Faucet != nil {
				rows = append(rows, []string{"faucet", set.Faucet.Address().Hex()})
			} else {
				rows = append(rows, []string{"faucet", "not deployed"})
			}
			if set.Notary != nil {
				rows = append(rows, []string{"notary", set.Notary.Address().Hex()})
			} else {
				rows = append(rows, []string{"notary", "not deployed"})
			}
			fmt.Println(SectionHeader("Contracts"))
			fmt.Println(RenderTable([]string{"CONTRACT", "ADDRESS"}, rows))

			target := address
			if target == "" && MockMode {
				target = mockOwner.Hex()
			}
			if target == "" {
				fmt.Println(Hint("Pass --address to include account balances."))
				return nil
			}
			if !common.IsHexAddress(target) {
				return fmt.Errorf("invalid address %q", target)
			}

			summary, err := app.Engine.Summary(ctx, common.HexToAddress(target))
			if err != nil {
				return err
			}
			fmt.Println(StatusBox("Account "+FormatAddress(target), [][2]string{
				{"Balance", FormatBKC(summary.Balance)},
				{"Staked", FormatBKC(summary.Staked)},
				{"Stake Power", FormatBKC(summary.StakePower)},
				{"Booster", summary.Quote.Tier.String()},
				{"Claimable", FormatBKC(summary.Quote.NetClaim)},
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Account address to summarize")

	return cmd
}
