package session

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Machine loops run via util.SafeGoWithName and may still be
		// shutting down when goleak checks after test completion.
		goleak.IgnoreAnyFunction("github.com/backchain/backchain/internal/util.SafeGoWithName.func1"),
		// The keyring D-Bus session opened at import time parks worker
		// goroutines for the process lifetime.
		goleak.IgnoreAnyFunction("github.com/godbus/dbus.(*Conn).inWorker"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
