package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/backchain/backchain/internal/accounting"
	"github.com/backchain/backchain/internal/contracts"
)

// NewApproveCmd creates the approve command
func NewApproveCmd() *cobra.Command {
	var spender string

	cmd := &cobra.Command{
		Use:   "approve <amount>",
		Short: "Ensure a token allowance for a spender",
		Long: `Ensure the spender's allowance covers the given amount.

The submitted approval includes the configured drift tolerance so a
quote that moves slightly between preview and execution does not force
a second approval. If the current allowance already covers the
tolerated amount, nothing is submitted.

The spender defaults to the staking contract.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := contracts.ParseTokenAmount(args[0])
			if err != nil {
				return err
			}

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

			target := set.Staking.Address()
			if spender != "" {
				if !common.IsHexAddress(spender) {
					return fmt.Errorf("invalid spender address %q", spender)
				}
				target = common.HexToAddress(spender)
			}

			quote := accounting.ComputeApprovalQuote(amount, app.Cfg.Accounting.ApprovalToleranceBips)
			fmt.Println(StatusBox("Approval", [][2]string{
				{"Spender", target.Hex()},
				{"Required", FormatBKC(quote.Required)},
				{"Tolerated", FormatBKC(quote.Tolerated)},
			}))

			if err := WithSpinner("Ensuring approval", func() error {
				return app.Engine.EnsureApproval(ctx, account, target, amount)
			}); err != nil {
				return err
			}

			Success("Allowance covers the requested amount.")
			return nil
		},
	}

	cmd.Flags().StringVar(&spender, "spender", "", "Spender address (default: the staking contract)")

	return cmd
}
