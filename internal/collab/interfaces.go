package collab

import (
	"net"
	"time"

	"github.com/ntpcore/cmdmon/internal/wire"
)

// SourceResult is the outcome enum returned by Sources' mutating and
// lookup operations; handlers map it directly onto a wire.Status.
type SourceResult int

const (
	SourceOK SourceResult = iota
	SourceNoSuchSource
	SourceAlreadyKnown
	SourceTooMany
	SourceInvalidAF
)

// SourceParams is the address-independent parameter bundle for
// Sources.Add, decoded straight from wire.NTPSourceParams.
type SourceParams struct {
	Port             uint16
	Minpoll          int16
	Maxpoll          int16
	Presend          int32
	MaxDelay         float64
	MaxDelayRatio    float64
	MaxDelayDevRatio float64
	MinStratum       uint8
	PollTarget       uint8
	Version          uint8
	AutoOffline      bool
	Iburst           bool
	Interleaved      bool
}

// Sources is the NTP source registry: add/remove/modify by address, take
// sources online/offline by (mask, address), initiate burst, report by
// index, get activity counts, and force re-resolution of every source's
// address.
type Sources interface {
	AddServer(addr net.IP, params SourceParams) SourceResult
	AddPeer(addr net.IP, params SourceParams) SourceResult
	Delete(addr net.IP) SourceResult
	Online(mask, addr net.IP) SourceResult
	Offline(mask, addr net.IP) SourceResult
	Burst(mask, addr net.IP, nGood, nTotal uint32) SourceResult
	ModifyMinpoll(addr net.IP, value int32) SourceResult
	ModifyMaxpoll(addr net.IP, value int32) SourceResult
	ModifyMaxdelay(addr net.IP, value float64) SourceResult
	ModifyMaxdelayRatio(addr net.IP, value float64) SourceResult
	ModifyMaxdelayDevRatio(addr net.IP, value float64) SourceResult
	ModifyMinstratum(addr net.IP, value int32) SourceResult
	ModifyPolltarget(addr net.IP, value int32) SourceResult
	Count() int
	ReportByIndex(index int) (wire.SourceReport, SourceResult)
	StatsByIndex(index int) (wire.SourceStatsReport, SourceResult)
	Activity() wire.ActivityReport
	Refresh()
}

// RefClocks is the reference-clock registry.
type RefClocks interface {
	ReportByIndex(index int) (wire.SourceReport, SourceResult)
}

// LocalClock is the local clock driver.
type LocalClock interface {
	AccumulateFrequency(deltaPpm float64)
	AccumulateOffset(deltaSeconds float64)
	MakeStep()
}

// Reference is the tracking/reference subsystem. REFRESH and REKEY are
// dispatched to Sources.Refresh and Keys.Reload respectively, not to this
// interface: both are really about re-resolving/reloading state owned by
// those collaborators, not the reference subsystem itself.
type Reference interface {
	ModifyMaxUpdateSkew(ppm float64)
	ModifyMakestep(threshold float64, limit int32)
	SetLocalStratum(enabled bool, stratum uint32, orphanDistance float64)
	SetReselectDistance(seconds float64)
	Reselect()
	Tracking() wire.TrackingReport
}

// ManualResult is the outcome enum returned by Manual operations.
type ManualResult int

const (
	ManualOK ManualResult = iota
	ManualNotEnabled
	ManualBadSample
)

// ManualOption mirrors wire.OptionRequest's Option byte for MANUAL.
type ManualOption uint8

const (
	ManualDisable ManualOption = iota
	ManualEnable
	ManualReset
)

// Manual is the manual-timestamp engine.
type Manual interface {
	SetMode(opt ManualOption)
	AcceptTimestamp(when time.Time) ManualResult
	List() wire.ManualListReport
	Delete(index int32) ManualResult
}

// SmoothOption mirrors wire.OptionRequest's Option byte for SMOOTHTIME.
type SmoothOption uint8

const (
	SmoothReset SmoothOption = iota
	SmoothActivate
)

// Smooth is the offset-smoothing module.
type Smooth interface {
	IsEnabled() bool
	Report() wire.SmoothingReport
	Apply(opt SmoothOption) ManualResult // reuses ManualResult: OK or NotEnabled
}

// RtcResult is the outcome enum returned by Rtc operations.
type RtcResult int

const (
	RtcOK RtcResult = iota
	RtcNoRtc
	RtcBadFile
)

// Rtc is the real-time-clock module.
type Rtc interface {
	Write() RtcResult
	Trim() RtcResult
	Report() (wire.RtcReport, RtcResult)
}

// Housekeeping covers the two disk-touching maintenance operations: DUMP
// writes the current source/measurement state to the dump directory,
// CYCLELOGS forces the log files to rotate. Both are bounded-latency
// best-effort and may briefly block the dispatch loop.
type Housekeeping interface {
	Dump() error
	CycleLogs() error
}

// AccessNamespace distinguishes the NTP client-access table from the C/M
// namespace's own table, mirroring ALLOW/DENY vs CMDALLOW/CMDDENY.
type AccessNamespace uint8

const (
	AccessNamespaceNTP AccessNamespace = iota
	AccessNamespaceCmd
)

// AccessFilter is the CIDR allow/deny decision table contract; handlers
// call it symmetrically for both namespaces. AccessAdapter, built over an
// internal/access.Policy, satisfies this.
type AccessFilter interface {
	Allow(ns AccessNamespace, addr net.IP, maskBits int) error
	Deny(ns AccessNamespace, addr net.IP, maskBits int) error
	AllowAll(ns AccessNamespace)
	DenyAll(ns AccessNamespace)
	IsAllowed(ns AccessNamespace, addr net.IP) bool
}

// ClientLogEventKind distinguishes a normal access from a bad-packet
// event in the validation pipeline.
type ClientLogEventKind uint8

const (
	ClientLogNormal ClientLogEventKind = iota
	ClientLogBadPacket
)

// ClientLog is the client-access accounting module.
type ClientLog interface {
	Record(addr net.IP, opcode wire.Opcode, kind ClientLogEventKind)
	ReportByIndex(firstIndex, nClients uint32) (wire.ClientAccessesByIndexReply, wire.Status)
}

// Keys is the symmetric-key store.
type Keys interface {
	Reload() error
}

// DescriptorCallback is invoked by the Scheduler when its descriptor has a
// pending datagram.
type DescriptorCallback func()

// Scheduler is the cooperative event loop's registration surface.
type Scheduler interface {
	Register(fd int, cb DescriptorCallback)
	Unregister(fd int)
	LastEventTime() time.Time
}

// Config is the daemon-wide configuration loader's C/M-relevant surface.
type Config interface {
	BindCmdAddress(family AddressFamily) net.IP
	BindCmdPath() string
	CmdPort() uint16
}

// AddressFamily selects which configured bind address to fetch.
type AddressFamily uint8

const (
	AddressFamilyV4 AddressFamily = iota
	AddressFamilyV6
)
