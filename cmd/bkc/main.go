package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backchain/backchain/cmd/bkc/commands"
)

var rootCmd = &cobra.Command{
	Use:   "bkc",
	Short: "Backchain wallet session and reward accounting client",
	Long:  "Connect a wallet, stake BKC, and claim rewards on the Backchain ecosystem contracts",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "Path to config file (default: ~/.backchain/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&commands.MockMode, "mock", false, "Run against in-memory mock contracts")
}

func main() {
	rootCmd.AddCommand(commands.NewConnectCmd())
	rootCmd.AddCommand(commands.NewDisconnectCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewQuoteCmd())
	rootCmd.AddCommand(commands.NewClaimCmd())
	rootCmd.AddCommand(commands.NewApproveCmd())
	rootCmd.AddCommand(commands.NewStakeCmd())
	rootCmd.AddCommand(commands.NewUnstakeCmd())
	rootCmd.AddCommand(commands.NewFaucetCmd())
	rootCmd.AddCommand(commands.NewNotarizeCmd())
	rootCmd.AddCommand(commands.NewMonitorCmd())
	rootCmd.AddCommand(commands.NewKeyCmd())
	rootCmd.AddCommand(commands.NewServeMetricsCmd())
	rootCmd.AddCommand(commands.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
