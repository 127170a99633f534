// Package testutil provides helpers shared by qrregister tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Test timeouts.
const (
	// DefaultTestTimeout is used for most asynchronous test steps.
	DefaultTestTimeout = 5 * time.Second

	// ShortTestTimeout is for steps expected to finish at once.
	ShortTestTimeout = 1 * time.Second
)

// WaitForChannel waits for a value on ch or a close of ch, failing the test
// after timeout.
func WaitForChannel[T any](t *testing.T, ch <-chan T, timeout time.Duration, msg string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		require.Fail(t, msg)
		var zero T
		return zero
	}
}
