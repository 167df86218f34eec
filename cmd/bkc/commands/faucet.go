package commands

import (
	"context"
	"fmt"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
)

// NewFaucetCmd creates the faucet command
func NewFaucetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "faucet",
		Short: "Claim test tokens from the faucet",
		Long: `Claim test tokens from the faucet contract. Only available on
deployments that configure a faucet address (testnets).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer app.Close()

			account, err := app.connectWallet(ctx)
			if err != nil {
				return err
			}

			set, err := app.handleSet()
			if err != nil {
				return err
			}
			if set.Faucet == nil {
				return fmt.Errorf("no faucet is deployed on this network")
			}

			return runTx(ctx, app, "faucet", account, func(ctx context.Context) (*ethtypes.Transaction, error) {
				return set.Faucet.Claim(ctx)
			})
		},
	}
}
