package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("OPICAMP_TEST_MODE") == "" {
			_ = os.Setenv("OPICAMP_TEST_MODE", "1")
		}
	})
}
