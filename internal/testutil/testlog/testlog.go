package testlog

import (
	"testing"

	"github.com/ntpcore/cmdmon/internal/logging"
)

// Start configures the process-wide test logger once per test binary and
// emits a debug line naming the running test.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logger := logging.Logger()
	logger.Debug().Str("test", t.Name()).Msg("starting test")
}
