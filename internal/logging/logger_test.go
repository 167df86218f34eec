package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetAndGetLogger(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	customLogger := slog.New(slog.NewJSONHandler(&buf, nil))

	SetLogger(customLogger)

	got := Logger()
	if got != customLogger {
		t.Error("Logger() did not return the logger set by SetLogger()")
	}
}

func TestSetOutput(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("test message", "key", "value")

	output := buf.String()
	if output == "" {
		t.Error("expected log output to be written to buffer")
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"key"`) {
		t.Errorf("expected output to contain key, got: %s", output)
	}
}

func TestSetTextOutput(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetTextOutput(&buf)

	Debug("dev message")

	if !strings.Contains(buf.String(), "dev message") {
		t.Errorf("expected text output to contain debug message, got: %s", buf.String())
	}
}

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{"wallet", Wallet("0xabc"), "wallet", "0xabc"},
		{"contract", Contract("staking"), "contract", "staking"},
		{"tx_hash", TxHash("0xdeadbeef"), "tx_hash", "0xdeadbeef"},
		{"component", Component("session"), "component", "session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.key)
			}
			if tt.attr.Value.String() != tt.want {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.want)
			}
		})
	}
}

func TestChainIDHelper(t *testing.T) {
	attr := ChainID(42161)
	if attr.Key != "chain_id" {
		t.Errorf("key = %q, want chain_id", attr.Key)
	}
	if attr.Value.Int64() != 42161 {
		t.Errorf("value = %d, want 42161", attr.Value.Int64())
	}
}

func TestErrHelper(t *testing.T) {
	attr := Err(nil)
	if attr.Value.String() != "" {
		t.Errorf("Err(nil) value = %q, want empty", attr.Value.String())
	}
}

func TestWith(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetOutput(&buf)

	l := With("component", "accounting")
	l.Info("cache reloaded")

	output := buf.String()
	if !strings.Contains(output, "accounting") {
		t.Errorf("expected component field in output, got: %s", output)
	}
}
