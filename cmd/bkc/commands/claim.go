package commands

import (
	"context"
	"fmt"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
)

// NewClaimCmd creates the claim command
func NewClaimCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim pending rewards",
		Long: `Claim all pending rewards for the connected wallet.

A quote is shown first: the gross amount, the booster-discounted claim
fee, and the net payout. The claim only proceeds after confirmation.`,
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

			quote, err := app.Engine.ComputeClaimQuote(ctx, account)
			if err != nil {
				return err
			}
			if quote.Zero() {
				Info("Nothing to claim.")
				return nil
			}

			fmt.Println(StatusBox("Claim Quote", [][2]string{
				{"Gross", FormatBKC(quote.Gross)},
				{"Net Fee", FormatBips(quote.NetFeeBips)},
				{"Fee Amount", FormatBKC(quote.FeeAmount)},
				{"Net Claim", FormatBKC(quote.NetClaim)},
			}))

			proceed, err := confirmAction(fmt.Sprintf("Claim %s?", FormatBKC(quote.NetClaim)), yes)
			if err != nil {
				return err
			}
			if !proceed {
				Info("Claim canceled.")
				return nil
			}

			set, err := app.handleSet()
			if err != nil {
				return err
			}
			return runTx(ctx, app, "claim", account, func(ctx context.Context) (*ethtypes.Transaction, error) {
				return set.Rewards.Claim(ctx)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
