package tools

import (
	"bytes"
	"strings"
	"time"

	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/wire"
)

// HwclockRtc implements collab.Rtc by shelling out to the hwclock binary
// through a CommandRunner.
type HwclockRtc struct {
	Runner CommandRunner
}

// NewHwclockRtc returns an HwclockRtc that executes commands through
// runner.
func NewHwclockRtc(runner CommandRunner) *HwclockRtc {
	return &HwclockRtc{Runner: runner}
}

// Write copies the system clock to the hardware clock.
func (h *HwclockRtc) Write() collab.RtcResult {
	_, stderr, _, err := h.Runner.Run("hwclock", "--systohc")
	if err != nil {
		return rtcResultForError(stderr)
	}
	return collab.RtcOK
}

// Trim adjusts the hardware clock to compensate for accumulated drift.
func (h *HwclockRtc) Trim() collab.RtcResult {
	_, stderr, _, err := h.Runner.Run("hwclock", "--adjust")
	if err != nil {
		return rtcResultForError(stderr)
	}
	return collab.RtcOK
}

// Report reads the hardware clock's current time. hwclock does not expose
// the sample count, run count, or frequency/skew history a full RTC
// driver tracks internally, so those fields are left at zero; only the
// reference timestamp reflects a real reading.
func (h *HwclockRtc) Report() (wire.RtcReport, collab.RtcResult) {
	stdout, stderr, _, err := h.Runner.Run("hwclock", "--show")
	if err != nil {
		return wire.RtcReport{}, rtcResultForError(stderr)
	}
	ts, ok := parseHwclockShow(stdout)
	if !ok {
		return wire.RtcReport{}, collab.RtcBadFile
	}
	return wire.RtcReport{RefTime: wire.NewTimestamp(ts)}, collab.RtcOK
}

// parseHwclockShow extracts the leading RFC3339-ish timestamp from
// hwclock --show output, e.g. "2024-01-01 12:00:00.000000+00:00".
func parseHwclockShow(out []byte) (time.Time, bool) {
	line := strings.TrimSpace(string(bytes.SplitN(out, []byte("\n"), 2)[0]))
	if line == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999-07:00",
		"2006-01-02 15:04:05-07:00",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, line); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// rtcResultForError maps hwclock's stderr onto the RtcResult taxonomy:
// a missing device node or driver means NO-RTC, anything else is treated
// as a bad/unreadable RTC file.
func rtcResultForError(stderr []byte) collab.RtcResult {
	msg := strings.ToLower(string(stderr))
	if strings.Contains(msg, "no such file") || strings.Contains(msg, "no such device") || strings.Contains(msg, "cannot access") {
		return collab.RtcNoRtc
	}
	return collab.RtcBadFile
}
