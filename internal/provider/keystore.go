package provider

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/term"

	"github.com/backchain/backchain/internal/chainerr"
	"github.com/backchain/backchain/internal/logging"
)

// Keystore is a headless provider backed by a private key held in the
// platform keyring. It never prompts and never changes accounts, so it
// emits exactly one connected event followed by whatever chain switches
// the caller performs locally.
type Keystore struct {
	key     *ecdsa.PrivateKey
	address common.Address

	mu      sync.Mutex
	chainID int64
	closed  bool
	events  chan Event
}

// NewKeystore loads the named key from the keyring and builds a
// provider pinned to the given chain.
func NewKeystore(service, keyName string, chainID int64) (*Keystore, error) {
	ring, err := openRing(service)
	if err != nil {
		return nil, chainerr.New(chainerr.ProviderUnavailable, "keystore.open", err)
	}

	item, err := ring.Get(keyName)
	if err == keyring.ErrKeyNotFound {
		return nil, chainerr.Newf(chainerr.ProviderUnavailable, "keystore.open",
			"no key named %q in keyring service %q", keyName, service)
	}
	if err != nil {
		return nil, chainerr.New(chainerr.ProviderUnavailable, "keystore.open", err)
	}

	return newKeystoreFromHex(strings.TrimSpace(string(item.Data)), chainID)
}

func newKeystoreFromHex(hexKey string, chainID int64) (*Keystore, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, chainerr.New(chainerr.Config, "keystore.parse",
			fmt.Errorf("stored key is not a valid private key: %w", err))
	}

	ks := &Keystore{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		events:  make(chan Event, 4),
	}
	ks.events <- Event{Connected: true, Address: ks.address, ChainID: chainID}
	logging.Info("keystore signer loaded", logging.Wallet(ks.address.Hex()))
	return ks, nil
}

// StoreKey writes a private key hex string into the keyring so later
// runs can load it with NewKeystore.
func StoreKey(service, keyName, hexKey string) error {
	if _, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")); err != nil {
		return chainerr.New(chainerr.Config, "keystore.store",
			fmt.Errorf("not a valid private key: %w", err))
	}

	ring, err := openRing(service)
	if err != nil {
		return chainerr.New(chainerr.ProviderUnavailable, "keystore.store", err)
	}
	return ring.Set(keyring.Item{
		Key:         keyName,
		Data:        []byte(strings.TrimSpace(hexKey)),
		Label:       "Backchain signer key",
		Description: "Private key for the backchain local signer",
	})
}

// DeleteKey removes a stored key. Missing keys are not an error.
func DeleteKey(service, keyName string) error {
	ring, err := openRing(service)
	if err != nil {
		return chainerr.New(chainerr.ProviderUnavailable, "keystore.delete", err)
	}
	err = ring.Remove(keyName)
	if err == keyring.ErrKeyNotFound {
		return nil
	}
	return err
}

// Name implements Provider.
func (k *Keystore) Name() string { return "keystore" }

// Events implements Provider.
func (k *Keystore) Events() <-chan Event { return k.events }

// Current implements Provider.
func (k *Keystore) Current(ctx context.Context) (Event, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return Event{}, chainerr.Newf(chainerr.ProviderUnavailable, "keystore.current",
			"keystore provider closed")
	}
	return Event{Connected: true, Address: k.address, ChainID: k.chainID}, nil
}

// SwitchChain implements Provider. A local signer has no wallet UI to
// move, so a switch just repins the chain and emits the new snapshot.
func (k *Keystore) SwitchChain(ctx context.Context, chainID int64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return chainerr.Newf(chainerr.ProviderUnavailable, "keystore.switch_chain",
			"keystore provider closed")
	}
	if k.chainID == chainID {
		return nil
	}
	k.chainID = chainID
	select {
	case k.events <- Event{Connected: true, Address: k.address, ChainID: chainID}:
	default:
	}
	return nil
}

// AddChain implements Provider. The local signer keeps no chain list.
func (k *Keystore) AddChain(ctx context.Context, meta ChainMetadata) error {
	return nil
}

// Signer implements Provider.
func (k *Keystore) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	k.mu.Lock()
	chainID := k.chainID
	closed := k.closed
	k.mu.Unlock()

	if closed {
		return nil, chainerr.Newf(chainerr.ProviderUnavailable, "keystore.signer",
			"keystore provider closed")
	}

	auth, err := bind.NewKeyedTransactorWithChainID(k.key, big.NewInt(chainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx
	return auth, nil
}

// Close implements Provider.
func (k *Keystore) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.closed {
		k.closed = true
		close(k.events)
	}
	return nil
}

// openRing opens the platform-native keyring, falling back to an
// encrypted file store where no native backend exists (servers, CI).
func openRing(service string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:                    service,
		AllowedBackends:                ringBackends(),
		KeychainTrustApplication:       true,
		KeychainAccessibleWhenUnlocked: true,
		KeychainSynchronizable:         false,
		FileDir:                        "~/.backchain/keyring",
		FilePasswordFunc:               promptPassphrase,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return ring, nil
}

func ringBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.FileBackend}
	case "linux":
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	default:
		return []keyring.BackendType{keyring.FileBackend}
	}
}

// promptPassphrase reads the file-backend passphrase without echo.
func promptPassphrase(prompt string) (string, error) {
	if pw := os.Getenv("BKC_KEYRING_PASSPHRASE"); pw != "" {
		return pw, nil
	}
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(pw), nil
}

var _ Provider = (*Keystore)(nil)
