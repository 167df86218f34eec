package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/ethereum/go-ethereum/common"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/txexec"
	"github.com/backchain/backchain/pkg/types"
)

// confirmAction asks before an irreversible on-chain action. Non-TTY
// runs and --yes skip the prompt.
func confirmAction(title string, yes bool) (bool, error) {
	if yes || !isTTY() {
		return true, nil
	}
	var proceed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Submit").
			Negative("Cancel").
			Value(&proceed),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return proceed, nil
}

// runTx drives one call through the transaction lifecycle and reports
// the outcome.
func runTx(ctx context.Context, app *App, action string, account common.Address, send txexec.SendFn) error {
	var res *txexec.Result
	err := WithSpinner("Submitting "+action, func() error {
		var err error
		res, err = app.Executor.Execute(ctx, action, account, send)
		return err
	})
	if err != nil {
		return err
	}

	switch res.Status {
	case types.TxConfirmed:
		Success("Transaction confirmed!")
		if res.TxHash != (common.Hash{}) {
			fmt.Println(KeyValue("Tx", res.TxHash.Hex()))
			if app.Cfg.Network.ExplorerURL != "" {
				fmt.Println(Hint(app.Cfg.Network.ExplorerURL + "/tx/" + res.TxHash.Hex()))
			}
		}
		return nil
	case types.TxRejected:
		Warning("Signature request declined; nothing was submitted.")
		return nil
	case types.TxReverted:
		Error("Transaction reverted.")
		if reason := chainerr.RevertReason(res.Err); reason != "" {
			fmt.Println(Hint("Reason: " + reason))
		}
		return res.Err
	default:
		return res.Err
	}
}
