package provider

import (
	"context"
	"testing"
	"time"

	"github.com/backchain/backchain/internal/chainerr"
)

// Well-known throwaway development key, never funded on any network.
const devKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const devKeyAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestKeystoreEmitsConnectedSnapshot(t *testing.T) {
	ks, err := newKeystoreFromHex(devKeyHex, 42161)
	if err != nil {
		t.Fatalf("new keystore: %v", err)
	}
	defer ks.Close()

	select {
	case ev := <-ks.Events():
		if !ev.Connected {
			t.Error("expected connected event")
		}
		if ev.Address.Hex() != devKeyAddress {
			t.Errorf("address = %s, want %s", ev.Address.Hex(), devKeyAddress)
		}
		if ev.ChainID != 42161 {
			t.Errorf("chain id = %d", ev.ChainID)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial event")
	}
}

func TestKeystoreAcceptsPrefixedKey(t *testing.T) {
	ks, err := newKeystoreFromHex("0x"+devKeyHex, 1)
	if err != nil {
		t.Fatalf("new keystore: %v", err)
	}
	defer ks.Close()

	ev, err := ks.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if ev.Address.Hex() != devKeyAddress {
		t.Errorf("address = %s", ev.Address.Hex())
	}
}

func TestKeystoreRejectsMalformedKey(t *testing.T) {
	_, err := newKeystoreFromHex("not-a-key", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !chainerr.IsConfig(err) {
		t.Errorf("expected ConfigurationError, got %v", chainerr.KindOf(err))
	}
}

func TestKeystoreSwitchChain(t *testing.T) {
	ks, err := newKeystoreFromHex(devKeyHex, 1)
	if err != nil {
		t.Fatalf("new keystore: %v", err)
	}
	defer ks.Close()
	<-ks.Events() // initial snapshot

	if err := ks.SwitchChain(context.Background(), 42161); err != nil {
		t.Fatalf("switch chain: %v", err)
	}

	select {
	case ev := <-ks.Events():
		if ev.ChainID != 42161 {
			t.Errorf("chain id = %d after switch", ev.ChainID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event after switch")
	}

	// Same-chain switches are silent.
	if err := ks.SwitchChain(context.Background(), 42161); err != nil {
		t.Fatalf("repeat switch: %v", err)
	}
	select {
	case ev := <-ks.Events():
		t.Errorf("unexpected event %+v for no-op switch", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestKeystoreSigner(t *testing.T) {
	ks, err := newKeystoreFromHex(devKeyHex, 42161)
	if err != nil {
		t.Fatalf("new keystore: %v", err)
	}
	defer ks.Close()

	auth, err := ks.Signer(context.Background())
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	if auth.From.Hex() != devKeyAddress {
		t.Errorf("signer from = %s", auth.From.Hex())
	}
	if auth.Signer == nil {
		t.Error("signer function missing")
	}
}

func TestKeystoreCloseRejectsFurtherUse(t *testing.T) {
	ks, err := newKeystoreFromHex(devKeyHex, 1)
	if err != nil {
		t.Fatalf("new keystore: %v", err)
	}
	ks.Close()
	ks.Close() // idempotent

	if _, err := ks.Current(context.Background()); err == nil {
		t.Error("Current after Close must fail")
	}
	if _, err := ks.Signer(context.Background()); err == nil {
		t.Error("Signer after Close must fail")
	}
	if err := ks.SwitchChain(context.Background(), 5); err == nil {
		t.Error("SwitchChain after Close must fail")
	}
}
