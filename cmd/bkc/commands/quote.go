package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// NewQuoteCmd creates the quote command
func NewQuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote [address]",
		Short: "Preview the claim fee breakdown for an account",
		Long: `Compute the claim quote for an account: gross pending rewards, the
booster-discounted fee, and the net amount a claim would pay out.
Runs read-only; the contract re-validates everything at claim time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close()

			var account common.Address
			switch {
			case len(args) == 1:
				if !common.IsHexAddress(args[0]) {
					return fmt.Errorf("invalid address %q", args[0])
				}
				account = common.HexToAddress(args[0])
			case MockMode:
				account = mockOwner
			default:
				return fmt.Errorf("an account address is required")
			}

			quote, err := app.Engine.ComputeClaimQuote(ctx, account)
			if err != nil {
				return err
			}

			if quote.Zero() {
				Info("Nothing to claim for " + FormatAddress(account.Hex()))
				return nil
			}

			fmt.Println(StatusBox("Claim Quote "+FormatAddress(account.Hex()), [][2]string{
				{"Gross", FormatBKC(quote.Gross)},
				{"Booster", quote.Tier.String()},
				{"Base Fee", FormatBips(quote.BaseFeeBips)},
				{"Discount", FormatBips(quote.DiscountBips)},
				{"Net Fee", FormatBips(quote.NetFeeBips)},
				{"Fee Amount", FormatBKC(quote.FeeAmount)},
				{"Net Claim", FormatBKC(quote.NetClaim)},
			}))
			return nil
		},
	}
}
