package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("CONSOLE_TEST_MODE", "1")
		if os.Getenv("CONSOLE_PROFILE") == "" {
			_ = os.Setenv("CONSOLE_PROFILE", "test")
		}
		if os.Getenv("DIRECTORY_URL") == "" {
			_ = os.Setenv("DIRECTORY_URL", "http://127.0.0.1:0")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
