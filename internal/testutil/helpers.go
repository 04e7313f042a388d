package testutil

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
)

// NewTestRNG returns a generator seeded for reproducible searches and maps.
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a logger that discards everything.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// AssertPanic fails the test unless f panics. It returns the recovered value
// so callers can inspect it.
func AssertPanic(t *testing.T, f func(), msgAndArgs ...interface{}) (recovered interface{}) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Errorf("expected a panic: %v", msgAndArgs)
		}
	}()
	f()
	return nil
}
