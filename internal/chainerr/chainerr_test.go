package chainerr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeRPCError implements the go-ethereum rpc.Error interface.
type fakeRPCError struct {
	code int
	msg  string
}

func (e *fakeRPCError) Error() string  { return e.msg }
func (e *fakeRPCError) ErrorCode() int { return e.code }

// fakeDataError implements the go-ethereum rpc.DataError interface.
type fakeDataError struct {
	msg  string
	data interface{}
}

func (e *fakeDataError) Error() string          { return e.msg }
func (e *fakeDataError) ErrorData() interface{} { return e.data }

func TestClassifyRPCCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Kind
	}{
		{"user rejected", 4001, UserRejected},
		{"unauthorized", 4100, UserRejected},
		{"chain not added", 4902, ChainUnknown},
		{"provider disconnected", 4900, ProviderUnavailable},
		{"chain disconnected", 4901, ProviderUnavailable},
		{"execution error", 3, Reverted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &fakeRPCError{code: tt.code, msg: "provider error"}
			if got := Classify(err); got != tt.want {
				t.Errorf("Classify(code %d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassifyWrappedRPCError(t *testing.T) {
	inner := &fakeRPCError{code: 4001, msg: "user denied"}
	wrapped := fmt.Errorf("switch chain: %w", inner)

	if got := Classify(wrapped); got != UserRejected {
		t.Errorf("Classify(wrapped) = %v, want UserRejected", got)
	}
}

func TestClassifyTextFallbacks(t *testing.T) {
	tests := []struct {
		msg  string
		want Kind
	}{
		{"execution reverted: BKC: claim below minimum", Reverted},
		{"insufficient funds for gas * price + value", Reverted},
		{"dial tcp: connection refused", Network},
		{"read tcp: connection reset by peer", Network},
		{"post failed: i/o timeout", Network},
		{"something else entirely", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := Classify(errors.New(tt.msg)); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassifyContextDeadline(t *testing.T) {
	if got := Classify(context.DeadlineExceeded); got != Network {
		t.Errorf("Classify(DeadlineExceeded) = %v, want Network", got)
	}
}

func TestKindOfExplicitError(t *testing.T) {
	err := New(Config, "registry.bind", errors.New("malformed ABI"))
	if got := KindOf(err); got != Config {
		t.Errorf("KindOf = %v, want Config", got)
	}

	wrapped := fmt.Errorf("setup: %w", err)
	if got := KindOf(wrapped); got != Config {
		t.Errorf("KindOf(wrapped) = %v, want Config", got)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(New(UserRejected, "connect", nil)) {
		t.Error("user rejection must not be retryable")
	}
	if Retryable(New(Config, "bind", nil)) {
		t.Error("config error must not be retryable")
	}
	if Retryable(New(Reverted, "claim", nil)) {
		t.Error("revert must not be retryable")
	}
	if !Retryable(New(Network, "read", nil)) {
		t.Error("network error must be retryable")
	}
}

func TestErrorString(t *testing.T) {
	err := New(NetworkMismatch, "session.validate", errors.New("chain 1 != 42161"))
	s := err.Error()
	if s == "" {
		t.Fatal("empty error string")
	}
	if !errors.Is(err, err) {
		t.Error("error should match itself")
	}
}

func TestRevertReason(t *testing.T) {
	err := &fakeDataError{msg: "execution reverted", data: "BKC: fee table frozen"}
	if got := RevertReason(err); got != "BKC: fee table frozen" {
		t.Errorf("RevertReason = %q", got)
	}

	if got := RevertReason(errors.New("plain")); got != "" {
		t.Errorf("RevertReason(plain) = %q, want empty", got)
	}
}

func TestKindMessagesNonEmpty(t *testing.T) {
	kinds := []Kind{Unknown, UserRejected, NetworkMismatch, ChainUnknown, Config, ProviderUnavailable, Reverted, Network}
	for _, k := range kinds {
		if k.Message() == "" {
			t.Errorf("kind %v has empty message", k)
		}
		if k.String() == "" {
			t.Errorf("kind %v has empty string", k)
		}
	}
}
