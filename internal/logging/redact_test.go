package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newRedactedBuffer() (*bytes.Buffer, *slog.Logger) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	return &buf, slog.New(NewRedactingHandler(inner))
}

func TestRedactSensitiveKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"password key", "password", "hunter2"},
		{"passphrase key", "keystore_passphrase", "open sesame"},
		{"private key", "private_key", "0x1111111111111111111111111111111111111111111111111111111111111111"},
		{"mnemonic", "wallet_mnemonic", "abandon abandon abandon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, logger := newRedactedBuffer()
			logger.Info("msg", tt.key, tt.val)

			out := buf.String()
			if strings.Contains(out, tt.val) {
				t.Errorf("secret value leaked into log output: %s", out)
			}
			if !strings.Contains(out, "[REDACTED]") {
				t.Errorf("expected [REDACTED] marker, got: %s", out)
			}
		})
	}
}

func TestRedactPrivateKeyInValue(t *testing.T) {
	buf, logger := newRedactedBuffer()

	key := "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	logger.Info("msg", "detail", "imported key "+key)

	out := buf.String()
	if strings.Contains(out, key) {
		t.Errorf("full private key leaked into log output: %s", out)
	}
}

func TestAddressesAndHashesNotRedacted(t *testing.T) {
	buf, logger := newRedactedBuffer()

	addr := "0x1234567890123456789012345678901234567890"
	hash := "0xabcdef"
	logger.Info("msg", "wallet", addr, "tx_hash", hash)

	out := buf.String()
	if !strings.Contains(out, addr) {
		t.Errorf("wallet address should not be redacted, got: %s", out)
	}
	if !strings.Contains(out, hash) {
		t.Errorf("tx hash should not be redacted, got: %s", out)
	}
}

func TestEnableRedactionIdempotent(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetOutput(&buf)

	EnableRedaction()
	EnableRedaction() // second call must not double-wrap

	Info("msg", "password", "secret-value")

	out := buf.String()
	if strings.Contains(out, "secret-value") {
		t.Errorf("secret leaked after EnableRedaction: %s", out)
	}
}

func TestRedactString(t *testing.T) {
	in := "key 0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa end"
	out := redactString(in)
	if out == in {
		t.Error("expected private key pattern to be redacted")
	}
	if !strings.Contains(out, "...") {
		t.Errorf("expected truncation marker, got: %s", out)
	}
}
