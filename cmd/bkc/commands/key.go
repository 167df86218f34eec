package commands

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/backchain/backchain/internal/provider"
)

// NewKeyCmd creates the key command group
func NewKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the local signing key",
		Long: `Manage the private key used by the keystore wallet provider.

The key is held in your platform keyring:
  macOS:           Keychain
  Linux (desktop): GNOME Keyring / KDE Wallet
  elsewhere:       encrypted file under ~/.backchain/keyring

Examples:
  bkc key store    # Import a private key
  bkc key show     # Show the derived address
  bkc key delete   # Remove the key from the keyring`,
	}

	cmd.AddCommand(newKeyStoreCmd())
	cmd.AddCommand(newKeyShowCmd())
	cmd.AddCommand(newKeyDeleteCmd())

	return cmd
}

func newKeyStoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "store",
		Short: "Import a private key into the keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Fprint(os.Stderr, "Enter private key (hex, with or without 0x prefix): ")
			input, err := readSecret()
			if err != nil {
				return fmt.Errorf("failed to read private key: %w", err)
			}
			fmt.Fprintln(os.Stderr)

			trimmed := strings.TrimPrefix(strings.TrimSpace(input), "0x")
			if len(trimmed) != 64 {
				return fmt.Errorf("private key must be 64 hex characters (32 bytes), got %d", len(trimmed))
			}

			if err := provider.StoreKey(cfg.Wallet.KeyringService, cfg.Wallet.KeyName, trimmed); err != nil {
				return err
			}

			Success("Key stored in the keyring.")
			fmt.Println(Hint("Check the derived address with: bkc key show"))
			return nil
		},
	}
}

func newKeyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the address derived from the stored key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ks, err := provider.NewKeystore(cfg.Wallet.KeyringService, cfg.Wallet.KeyName, cfg.Network.ChainID)
			if err != nil {
				return fmt.Errorf("no usable key in the keyring: %w", err)
			}
			defer ks.Close()

			ev, err := ks.Current(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(StatusBox("Signing Key", [][2]string{
				{"Address", ev.Address.Hex()},
				{"Service", cfg.Wallet.KeyringService},
				{"Key Name", cfg.Wallet.KeyName},
			}))
			return nil
		},
	}
}

func newKeyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the key from the keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if err := provider.DeleteKey(cfg.Wallet.KeyringService, cfg.Wallet.KeyName); err != nil {
				return err
			}
			Success("Key removed from the keyring.")
			return nil
		},
	}
}

// readSecret reads a line from stdin with echo disabled.
func readSecret() (string, error) {
	secret, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
