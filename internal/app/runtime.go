package app

import (
	"os"
	"sync"
)

const testModeEnv = "CONSOLE_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the console should skip runtime side effects
// such as dialing Redis or binding the listen address.
func InTestMode() bool {
	return testMode()
}

// EffectiveStoreBackend is the backend the persisted auth record really
// uses. Test mode always keeps it in memory.
func (c *Config) EffectiveStoreBackend() string {
	if InTestMode() || c == nil {
		return StoreMemory
	}
	return c.StoreBackend
}
