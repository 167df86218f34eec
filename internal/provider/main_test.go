package provider

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Bridge read loops run via util.SafeGoWithName and may still be
		// shutting down when goleak checks after test completion.
		goleak.IgnoreAnyFunction("github.com/backchain/backchain/internal/util.SafeGoWithName.func1"),
		// httptest servers keep accept/poll goroutines alive briefly.
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
