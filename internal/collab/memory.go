package collab

import (
	"net"
	"sync"
	"time"

	"github.com/ntpcore/cmdmon/internal/wire"
)

// MemorySources is a reference Sources implementation backed by a plain
// map, adequate for wiring a runnable daemon without a real NTP engine
// behind it and for exercising internal/handlers' tests.
type MemorySources struct {
	mu       sync.Mutex
	byAddr   map[string]*memorySource
	order    []string
	maxCount int
}

type memorySource struct {
	addr    net.IP
	isPeer  bool
	params  SourceParams
	online  bool
	minpoll int32
	maxpoll int32
}

// NewMemorySources returns an empty registry capped at maxCount sources.
func NewMemorySources(maxCount int) *MemorySources {
	return &MemorySources{byAddr: make(map[string]*memorySource), maxCount: maxCount}
}

func (s *MemorySources) add(addr net.IP, params SourceParams, isPeer bool) SourceResult {
	if addr.To4() == nil && addr.To16() == nil {
		return SourceInvalidAF
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := addr.String()
	if _, ok := s.byAddr[key]; ok {
		return SourceAlreadyKnown
	}
	if len(s.order) >= s.maxCount {
		return SourceTooMany
	}
	s.byAddr[key] = &memorySource{addr: addr, isPeer: isPeer, params: params, online: true}
	s.order = append(s.order, key)
	return SourceOK
}

func (s *MemorySources) AddServer(addr net.IP, params SourceParams) SourceResult {
	return s.add(addr, params, false)
}

func (s *MemorySources) AddPeer(addr net.IP, params SourceParams) SourceResult {
	return s.add(addr, params, true)
}

func (s *MemorySources) lookup(addr net.IP) (*memorySource, bool) {
	src, ok := s.byAddr[addr.String()]
	return src, ok
}

func (s *MemorySources) Delete(addr net.IP) SourceResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := addr.String()
	if _, ok := s.byAddr[key]; !ok {
		return SourceNoSuchSource
	}
	delete(s.byAddr, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return SourceOK
}

func (s *MemorySources) withSource(addr net.IP, fn func(*memorySource)) SourceResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.lookup(addr)
	if !ok {
		return SourceNoSuchSource
	}
	fn(src)
	return SourceOK
}

// withMaskedSources applies fn to every source whose address matches
// addr under mask, a subnet match rather than an exact lookup. Returns
// SourceNoSuchSource if nothing matched.
func (s *MemorySources) withMaskedSources(mask, addr net.IP, fn func(*memorySource)) SourceResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := false
	for _, key := range s.order {
		src := s.byAddr[key]
		if maskedEqual(src.addr, addr, mask) {
			fn(src)
			matched = true
		}
	}
	if !matched {
		return SourceNoSuchSource
	}
	return SourceOK
}

// maskedEqual reports whether a and b agree on every bit set in mask.
func maskedEqual(a, b, mask net.IP) bool {
	a4, b4, m4 := a.To4(), b.To4(), mask.To4()
	if a4 != nil && b4 != nil && m4 != nil {
		a, b, mask = a4, b4, m4
	} else {
		a, b, mask = a.To16(), b.To16(), mask.To16()
	}
	if a == nil || b == nil || mask == nil || len(a) != len(b) || len(a) != len(mask) {
		return false
	}
	for i := range a {
		if a[i]&mask[i] != b[i]&mask[i] {
			return false
		}
	}
	return true
}

func (s *MemorySources) Online(mask, addr net.IP) SourceResult {
	return s.withMaskedSources(mask, addr, func(src *memorySource) { src.online = true })
}

func (s *MemorySources) Offline(mask, addr net.IP) SourceResult {
	return s.withMaskedSources(mask, addr, func(src *memorySource) { src.online = false })
}

func (s *MemorySources) Burst(mask, addr net.IP, nGood, nTotal uint32) SourceResult {
	return s.withMaskedSources(mask, addr, func(*memorySource) {})
}

func (s *MemorySources) ModifyMinpoll(addr net.IP, value int32) SourceResult {
	return s.withSource(addr, func(src *memorySource) { src.minpoll = value })
}

func (s *MemorySources) ModifyMaxpoll(addr net.IP, value int32) SourceResult {
	return s.withSource(addr, func(src *memorySource) { src.maxpoll = value })
}

func (s *MemorySources) ModifyMaxdelay(addr net.IP, value float64) SourceResult {
	return s.withSource(addr, func(src *memorySource) { src.params.MaxDelay = value })
}

func (s *MemorySources) ModifyMaxdelayRatio(addr net.IP, value float64) SourceResult {
	return s.withSource(addr, func(src *memorySource) { src.params.MaxDelayRatio = value })
}

func (s *MemorySources) ModifyMaxdelayDevRatio(addr net.IP, value float64) SourceResult {
	return s.withSource(addr, func(src *memorySource) { src.params.MaxDelayDevRatio = value })
}

func (s *MemorySources) ModifyMinstratum(addr net.IP, value int32) SourceResult {
	return s.withSource(addr, func(src *memorySource) { src.params.MinStratum = uint8(value) })
}

func (s *MemorySources) ModifyPolltarget(addr net.IP, value int32) SourceResult {
	return s.withSource(addr, func(src *memorySource) { src.params.PollTarget = uint8(value) })
}

func (s *MemorySources) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *MemorySources) ReportByIndex(index int) (wire.SourceReport, SourceResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.order) {
		return wire.SourceReport{}, SourceNoSuchSource
	}
	src := s.byAddr[s.order[index]]
	state := wire.SourceStateSync
	if !src.online {
		state = wire.SourceStateUnreach
	}
	return wire.SourceReport{
		Address: wire.NewIPAddr(src.addr),
		Poll:    int16(src.minpoll),
		State:   state,
	}, SourceOK
}

func (s *MemorySources) StatsByIndex(index int) (wire.SourceStatsReport, SourceResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.order) {
		return wire.SourceStatsReport{}, SourceNoSuchSource
	}
	src := s.byAddr[s.order[index]]
	return wire.SourceStatsReport{Address: wire.NewIPAddr(src.addr)}, SourceOK
}

func (s *MemorySources) Activity() wire.ActivityReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	var report wire.ActivityReport
	for _, key := range s.order {
		if s.byAddr[key].online {
			report.Online++
		} else {
			report.Offline++
		}
	}
	return report
}

func (s *MemorySources) Refresh() {}

// MemoryRefClocks is an empty RefClocks registry; no reference clocks are
// modeled in this reference wiring.
type MemoryRefClocks struct{}

func (MemoryRefClocks) ReportByIndex(int) (wire.SourceReport, SourceResult) {
	return wire.SourceReport{}, SourceNoSuchSource
}

// MemoryLocalClock records the last applied correction in memory.
type MemoryLocalClock struct {
	mu            sync.Mutex
	FrequencyPpm  float64
	OffsetSeconds float64
	Steps         int
}

func (c *MemoryLocalClock) AccumulateFrequency(deltaPpm float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.FrequencyPpm += deltaPpm
}

func (c *MemoryLocalClock) AccumulateOffset(deltaSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.OffsetSeconds += deltaSeconds
}

func (c *MemoryLocalClock) MakeStep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Steps++
}

// MemoryReference is a minimal Reference implementation tracking the
// handful of parameters the RESELECT*/MODIFY_* opcodes touch.
type MemoryReference struct {
	mu               sync.Mutex
	MaxUpdateSkewPpm float64
	StepThreshold    float64
	StepLimit        int32
	LocalEnabled     bool
	LocalStratum     uint32
	OrphanDistance   float64
	ReselectDistance float64
	report           wire.TrackingReport
}

func (r *MemoryReference) ModifyMaxUpdateSkew(ppm float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.MaxUpdateSkewPpm = ppm
}

func (r *MemoryReference) ModifyMakestep(threshold float64, limit int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StepThreshold = threshold
	r.StepLimit = limit
}

func (r *MemoryReference) SetLocalStratum(enabled bool, stratum uint32, orphanDistance float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LocalEnabled = enabled
	r.LocalStratum = stratum
	r.OrphanDistance = orphanDistance
}

func (r *MemoryReference) SetReselectDistance(seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ReselectDistance = seconds
}

func (r *MemoryReference) Reselect() {}
func (r *MemoryReference) Tracking() wire.TrackingReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report
}

// MemoryManual is a minimal Manual implementation.
type MemoryManual struct {
	mu      sync.Mutex
	mode    ManualOption
	samples []wire.ManualSample
}

func (m *MemoryManual) SetMode(opt ManualOption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = opt
	if opt == ManualReset {
		m.samples = nil
	}
}

func (m *MemoryManual) AcceptTimestamp(when time.Time) ManualResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ManualEnable {
		return ManualNotEnabled
	}
	if len(m.samples) < wire.MaxManualSamples {
		m.samples = append(m.samples, wire.ManualSample{SampleTime: wire.NewTimestamp(when)})
	}
	return ManualOK
}

func (m *MemoryManual) List() wire.ManualListReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	var report wire.ManualListReport
	report.NSamples = int32(len(m.samples))
	copy(report.Samples[:], m.samples)
	return report
}

func (m *MemoryManual) Delete(index int32) ManualResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || int(index) >= len(m.samples) {
		return ManualBadSample
	}
	m.samples = append(m.samples[:index], m.samples[index+1:]...)
	return ManualOK
}

// MemorySmooth is a minimal Smooth implementation, disabled by default.
type MemorySmooth struct {
	mu      sync.Mutex
	enabled bool
	report  wire.SmoothingReport
}

// NewMemorySmooth returns a Smooth implementation with smoothing enabled
// or disabled as requested.
func NewMemorySmooth(enabled bool) *MemorySmooth {
	return &MemorySmooth{enabled: enabled}
}

func (s *MemorySmooth) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *MemorySmooth) Report() wire.SmoothingReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.report
	r.Active = s.enabled
	return r
}

func (s *MemorySmooth) Apply(opt SmoothOption) ManualResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return ManualNotEnabled
	}
	if opt == SmoothReset {
		s.report = wire.SmoothingReport{Active: true}
	}
	return ManualOK
}

// MemoryRtc is a minimal Rtc implementation with no backing hardware,
// always reporting NoRtc, matching a daemon running without RTC support
// compiled in.
type MemoryRtc struct{}

func (MemoryRtc) Write() RtcResult { return RtcNoRtc }
func (MemoryRtc) Trim() RtcResult  { return RtcNoRtc }
func (MemoryRtc) Report() (wire.RtcReport, RtcResult) {
	return wire.RtcReport{}, RtcNoRtc
}

// MemoryClientLog is a minimal ClientLog implementation, tracking per-
// address hit counts and exposing them through the paged reply format
// CLIENT_ACCESSES_BY_INDEX needs.
type MemoryClientLog struct {
	mu    sync.Mutex
	order []string
	rows  map[string]*wire.ClientAccessRow
}

// NewMemoryClientLog returns an empty client-access log.
func NewMemoryClientLog() *MemoryClientLog {
	return &MemoryClientLog{rows: make(map[string]*wire.ClientAccessRow)}
}

func (l *MemoryClientLog) Record(addr net.IP, opcode wire.Opcode, kind ClientLogEventKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := addr.String()
	row, ok := l.rows[key]
	if !ok {
		row = &wire.ClientAccessRow{Address: wire.NewIPAddr(addr)}
		l.rows[key] = row
		l.order = append(l.order, key)
	}
	row.LastAccess = wire.NewTimestamp(time.Now())
	switch kind {
	case ClientLogBadPacket:
		row.DroppedHits++
	default:
		row.CmdHits++
	}
}

func (l *MemoryClientLog) ReportByIndex(firstIndex, nClients uint32) (wire.ClientAccessesByIndexReply, wire.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.order) == 0 {
		return wire.ClientAccessesByIndexReply{}, wire.StatusInactive
	}

	if nClients > wire.MaxClientAccessRows {
		nClients = wire.MaxClientAccessRows
	}

	var reply wire.ClientAccessesByIndexReply
	packed := uint32(0)
	for i := uint32(0); i < nClients; i++ {
		idx := firstIndex + i
		if idx >= uint32(len(l.order)) {
			continue
		}
		reply.Rows[packed] = *l.rows[l.order[idx]]
		packed++
	}
	reply.NextIndex = firstIndex + nClients
	reply.NIndices = uint32(len(l.order))
	reply.NClients = packed
	return reply, wire.StatusSuccess
}

// MemoryKeys is a no-op Keys implementation.
type MemoryKeys struct{}

func (MemoryKeys) Reload() error { return nil }

// MemoryHousekeeping counts DUMP and CYCLELOGS calls instead of touching
// disk, for wiring a runnable daemon without a real dump directory or log
// file behind it and for exercising internal/handlers' tests.
type MemoryHousekeeping struct {
	mu     sync.Mutex
	Dumps  int
	Cycles int
}

func (h *MemoryHousekeeping) Dump() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Dumps++
	return nil
}

func (h *MemoryHousekeeping) CycleLogs() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Cycles++
	return nil
}
