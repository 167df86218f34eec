package commands

import (
	"context"
	"fmt"
	"math/big"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"

	"github.com/backchain/backchain/internal/accounting"
	"github.com/backchain/backchain/internal/contracts"
	"github.com/backchain/backchain/pkg/types"
)

// NewStakeCmd creates the stake command
func NewStakeCmd() *cobra.Command {
	var (
		days int64
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "stake <amount>",
		Short: "Stake tokens with a lock duration",
		Long: `Stake BKC with a lock duration in whole days.

Stake power accrues as amount x whole locked days. The token approval
for the staking contract is topped up automatically if the current
allowance does not cover the stake.

Examples:
  bkc stake 100 --days 30
  bkc stake 2500.5 --days 365 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := contracts.ParseTokenAmount(args[0])
			if err != nil {
				return err
			}
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			lockSeconds := days * types.SecondsPerDay

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

			power := accounting.ComputeStakePower(amount, lockSeconds)
			fmt.Println(StatusBox("Stake", [][2]string{
				{"Amount", FormatBKC(amount)},
				{"Lock", fmt.Sprintf("%d days", days)},
				{"Stake Power", FormatBKC(power)},
			}))

			proceed, err := confirmAction(fmt.Sprintf("Stake %s for %d days?", FormatBKC(amount), days), yes)
			if err != nil {
				return err
			}
			if !proceed {
				Info("Stake canceled.")
				return nil
			}

			set, err := app.handleSet()
			if err != nil {
				return err
			}

			if err := WithSpinner("Checking token approval", func() error {
				return app.Engine.EnsureApproval(ctx, account, set.Staking.Address(), amount)
			}); err != nil {
				return err
			}

			return runTx(ctx, app, "stake", account, func(ctx context.Context) (*ethtypes.Transaction, error) {
				return set.Staking.Stake(ctx, amount, big.NewInt(lockSeconds))
			})
		},
	}

	cmd.Flags().Int64Var(&days, "days", 30, "Lock duration in days")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// NewUnstakeCmd creates the unstake command
func NewUnstakeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "unstake <amount>",
		Short: "Withdraw staked tokens",
		Args:  cobra.ExactArgs(1),
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

			proceed, err := confirmAction(fmt.Sprintf("Unstake %s?", FormatBKC(amount)), yes)
			if err != nil {
				return err
			}
			if !proceed {
				Info("Unstake canceled.")
				return nil
			}

			set, err := app.handleSet()
			if err != nil {
				return err
			}
			return runTx(ctx, app, "unstake", account, func(ctx context.Context) (*ethtypes.Transaction, error) {
				return set.Staking.Unstake(ctx, amount)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
