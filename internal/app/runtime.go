package app

import (
	"os"
	"sync"
	"sync/atomic"
)

// TestModeEnv disables network side effects of the binaries when set to "1".
const TestModeEnv = "INFOGATE_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeOnce sync.Once
)

func loadTestMode() {
	testMode.Store(os.Getenv(TestModeEnv) == "1")
}

// InTestMode reports whether the binaries should exit before dialing
// Postgres, Redis or the language model.
func InTestMode() bool {
	testModeOnce.Do(loadTestMode)
	return testMode.Load()
}

// RefreshTestMode re-reads the environment.
func RefreshTestMode() {
	testModeOnce.Do(func() {})
	loadTestMode()
}
