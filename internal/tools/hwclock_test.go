package tools

import (
	"errors"
	"testing"

	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/testutil/testlog"
)

type fakeRunner struct {
	stdout   []byte
	stderr   []byte
	exitCode int32
	err      error
}

func (f fakeRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	return f.stdout, f.stderr, f.exitCode, f.err
}

func TestHwclockRtcReportParsesTimestamp(t *testing.T) {
	testlog.Start(t)

	r := NewHwclockRtc(fakeRunner{stdout: []byte("2024-01-01 12:00:00.000000+00:00\n")})

	report, result := r.Report()
	if result != collab.RtcOK {
		t.Fatalf("Report() result = %v, want RtcOK", result)
	}
	if report.RefTime.Seconds == 0 {
		t.Fatalf("Report() RefTime.Seconds = 0, want nonzero")
	}
}

func TestHwclockRtcReportMissingDeviceIsNoRtc(t *testing.T) {
	testlog.Start(t)

	r := NewHwclockRtc(fakeRunner{
		stderr: []byte("hwclock: Cannot access the Hardware Clock via any known method."),
		err:    errors.New("exit status 1"),
	})

	_, result := r.Report()
	if result != collab.RtcNoRtc {
		t.Fatalf("Report() result = %v, want RtcNoRtc", result)
	}
}

func TestHwclockRtcWriteSuccess(t *testing.T) {
	testlog.Start(t)

	r := NewHwclockRtc(fakeRunner{})
	if result := r.Write(); result != collab.RtcOK {
		t.Fatalf("Write() result = %v, want RtcOK", result)
	}
}

func TestHwclockRtcTrimBadFile(t *testing.T) {
	testlog.Start(t)

	r := NewHwclockRtc(fakeRunner{stderr: []byte("ioctl failed"), err: errors.New("exit status 1")})
	if result := r.Trim(); result != collab.RtcBadFile {
		t.Fatalf("Trim() result = %v, want RtcBadFile", result)
	}
}
