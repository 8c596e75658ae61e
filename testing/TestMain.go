// Package testing flips the binaries into test mode. Test packages import it for its side effect.
package testing

import "os"

func init() {
	if os.Getenv("HRMS_TEST_MODE") == "" {
		_ = os.Setenv("HRMS_TEST_MODE", "1")
	}
}
