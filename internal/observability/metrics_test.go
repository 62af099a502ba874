package observability

import (
	"testing"
	"time"

	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)

	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/healthz", 200, 12*time.Millisecond)
	RecordDispatch("N_SOURCES", "SUCCESS", 5*time.Millisecond)
	RecordDrop("bad_version")
}
