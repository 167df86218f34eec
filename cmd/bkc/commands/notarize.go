package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
)

// NewNotarizeCmd creates the notarize command
func NewNotarizeCmd() *cobra.Command {
	var (
		fromFile string
		verify   bool
	)

	cmd := &cobra.Command{
		Use:   "notarize [data]",
		Short: "Anchor a document digest on chain",
		Long: `Submit the SHA-256 digest of a document to the notary contract,
or check whether a digest has already been anchored.

Examples:
  bkc notarize "release v1.4.0"
  bkc notarize --file ./build/artifact.tar.gz
  bkc notarize --verify --file ./build/artifact.tar.gz`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := resolveDigest(args, fromFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := newApp(ctx, !verify)
			if err != nil {
				return err
			}
			defer app.Close()

			if !verify {
				if _, err := app.connectWallet(ctx); err != nil {
					return err
				}
			}

			set, err := app.handleSet()
			if err != nil {
				return err
			}
			if set.Notary == nil {
				return fmt.Errorf("no notary is deployed on this network")
			}

			fmt.Println(KeyValue("Digest", "0x"+hex.EncodeToString(digest[:])))

			if verify {
				anchored, err := set.Notary.IsNotarized(ctx, digest)
				if err != nil {
					return err
				}
				if anchored {
					Success("Digest is anchored on chain.")
				} else {
					Warning("Digest is not anchored.")
				}
				return nil
			}

			return runTx(ctx, app, "notarize", app.Account(), func(ctx context.Context) (*ethtypes.Transaction, error) {
				return set.Notary.Submit(ctx, digest)
			})
		},
	}

	cmd.Flags().StringVar(&fromFile, "file", "", "Hash the contents of a file instead of the argument")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check anchoring instead of submitting")

	return cmd
}

// resolveDigest hashes either the file or the literal argument.
func resolveDigest(args []string, fromFile string) ([32]byte, error) {
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return [32]byte{}, fmt.Errorf("failed to read %s: %w", fromFile, err)
		}
		return sha256.Sum256(data), nil
	}
	if len(args) == 0 {
		return [32]byte{}, fmt.Errorf("pass data to hash or use --file")
	}
	return sha256.Sum256([]byte(args[0])), nil
}
