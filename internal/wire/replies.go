package wire

import "encoding/binary"

// This file defines the reply-side payload for every reply tag. Handlers
// that only ever return SUCCESS/status with no extra data (ACCHECK family,
// most mutation opcodes, MAKESTEP, WRITERTC, TRIMRTC, DUMP, CYCLELOGS,
// REKEY, REFRESH, RESELECT) use ReplyNull and carry no body.

// NSourcesReply answers N_SOURCES.
type NSourcesReply struct {
	NSources int32
}

const nSourcesReplySize = 4

func (r NSourcesReply) Encode() []byte {
	b := make([]byte, nSourcesReplySize)
	binary.BigEndian.PutUint32(b, uint32(r.NSources))
	return b
}

func DecodeNSourcesReply(b []byte) (NSourcesReply, error) {
	if len(b) < nSourcesReplySize {
		return NSourcesReply{}, ErrTruncated
	}
	return NSourcesReply{NSources: int32(binary.BigEndian.Uint32(b))}, nil
}

// SourceState mirrors the Sources collaborator's per-source state enum.
type SourceState uint16

const (
	SourceStateSync SourceState = iota
	SourceStateUnreach
	SourceStateFalseTicker
	SourceStateJittery
	SourceStateCandidate
	SourceStateOutlier
)

// SourceReport answers SOURCE_DATA for a single source, by index.
type SourceReport struct {
	Address        IPAddr
	Poll           int16
	Stratum        uint16
	State          SourceState
	Mode           uint16
	Flags          uint16
	Reachability   uint16
	SinceSample    uint32
	OrigLatestMeas float64
	LatestMeas     float64
	LatestMeasErr  float64
}

const sourceReportSize = EncodedIPAddrSize + 2 + 2 + 2 + 2 + 2 + 2 + 4 + 4 + 4 + 4

func (r SourceReport) Encode() []byte {
	b := make([]byte, sourceReportSize)
	off := 0
	copy(b[off:], EncodeIPAddr(r.Address))
	off += EncodedIPAddrSize
	binary.BigEndian.PutUint16(b[off:], uint16(r.Poll))
	off += 2
	binary.BigEndian.PutUint16(b[off:], r.Stratum)
	off += 2
	binary.BigEndian.PutUint16(b[off:], uint16(r.State))
	off += 2
	binary.BigEndian.PutUint16(b[off:], r.Mode)
	off += 2
	binary.BigEndian.PutUint16(b[off:], r.Flags)
	off += 2
	binary.BigEndian.PutUint16(b[off:], r.Reachability)
	off += 2
	binary.BigEndian.PutUint32(b[off:], r.SinceSample)
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.OrigLatestMeas))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.LatestMeas))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.LatestMeasErr))
	return b
}

func DecodeSourceReport(b []byte) (SourceReport, error) {
	if len(b) < sourceReportSize {
		return SourceReport{}, ErrTruncated
	}
	var r SourceReport
	var err error
	off := 0
	r.Address, err = DecodeIPAddr(b[off:])
	if err != nil {
		return SourceReport{}, err
	}
	off += EncodedIPAddrSize
	r.Poll = int16(binary.BigEndian.Uint16(b[off:]))
	off += 2
	r.Stratum = binary.BigEndian.Uint16(b[off:])
	off += 2
	r.State = SourceState(binary.BigEndian.Uint16(b[off:]))
	off += 2
	r.Mode = binary.BigEndian.Uint16(b[off:])
	off += 2
	r.Flags = binary.BigEndian.Uint16(b[off:])
	off += 2
	r.Reachability = binary.BigEndian.Uint16(b[off:])
	off += 2
	r.SinceSample = binary.BigEndian.Uint32(b[off:])
	off += 4
	r.OrigLatestMeas = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.LatestMeas = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.LatestMeasErr = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	return r, nil
}

// SourceStatsReport answers SOURCESTATS for a single source, by index.
type SourceStatsReport struct {
	RefID              uint32
	Address            IPAddr
	NSamples           uint32
	NRuns              uint32
	SpanSeconds        uint32
	StandardDeviation  float64
	ResidFreqPpm       float64
	SkewPpm            float64
	EstimatedOffset    float64
	EstimatedOffsetErr float64
}

const sourceStatsReportSize = 4 + EncodedIPAddrSize + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 4

func (r SourceStatsReport) Encode() []byte {
	b := make([]byte, sourceStatsReportSize)
	off := 0
	binary.BigEndian.PutUint32(b[off:], r.RefID)
	off += 4
	copy(b[off:], EncodeIPAddr(r.Address))
	off += EncodedIPAddrSize
	binary.BigEndian.PutUint32(b[off:], r.NSamples)
	off += 4
	binary.BigEndian.PutUint32(b[off:], r.NRuns)
	off += 4
	binary.BigEndian.PutUint32(b[off:], r.SpanSeconds)
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.StandardDeviation))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.ResidFreqPpm))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.SkewPpm))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.EstimatedOffset))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.EstimatedOffsetErr))
	return b
}

func DecodeSourceStatsReport(b []byte) (SourceStatsReport, error) {
	if len(b) < sourceStatsReportSize {
		return SourceStatsReport{}, ErrTruncated
	}
	var r SourceStatsReport
	var err error
	off := 0
	r.RefID = binary.BigEndian.Uint32(b[off:])
	off += 4
	r.Address, err = DecodeIPAddr(b[off:])
	if err != nil {
		return SourceStatsReport{}, err
	}
	off += EncodedIPAddrSize
	r.NSamples = binary.BigEndian.Uint32(b[off:])
	off += 4
	r.NRuns = binary.BigEndian.Uint32(b[off:])
	off += 4
	r.SpanSeconds = binary.BigEndian.Uint32(b[off:])
	off += 4
	r.StandardDeviation = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.ResidFreqPpm = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.SkewPpm = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.EstimatedOffset = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.EstimatedOffsetErr = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	return r, nil
}

// TrackingReport answers TRACKING.
type TrackingReport struct {
	RefID              uint32
	Address            IPAddr
	Stratum            uint16
	LeapStatus         uint16
	RefTime            Timestamp
	CurrentCorrection  float64
	LastOffset         float64
	RmsOffset          float64
	FreqPpm            float64
	ResidFreqPpm       float64
	SkewPpm            float64
	RootDelay          float64
	RootDispersion     float64
	LastUpdateInterval float64
}

const trackingReportSize = 4 + EncodedIPAddrSize + 2 + 2 + EncodedTimestampSize + 4*9

func (r TrackingReport) Encode() []byte {
	b := make([]byte, trackingReportSize)
	off := 0
	binary.BigEndian.PutUint32(b[off:], r.RefID)
	off += 4
	copy(b[off:], EncodeIPAddr(r.Address))
	off += EncodedIPAddrSize
	binary.BigEndian.PutUint16(b[off:], r.Stratum)
	off += 2
	binary.BigEndian.PutUint16(b[off:], r.LeapStatus)
	off += 2
	copy(b[off:], EncodeTimestamp(r.RefTime))
	off += EncodedTimestampSize
	for _, v := range []float64{
		r.CurrentCorrection, r.LastOffset, r.RmsOffset, r.FreqPpm,
		r.ResidFreqPpm, r.SkewPpm, r.RootDelay, r.RootDispersion,
		r.LastUpdateInterval,
	} {
		binary.BigEndian.PutUint32(b[off:], EncodeFloat(v))
		off += 4
	}
	return b
}

func DecodeTrackingReport(b []byte) (TrackingReport, error) {
	if len(b) < trackingReportSize {
		return TrackingReport{}, ErrTruncated
	}
	var r TrackingReport
	var err error
	off := 0
	r.RefID = binary.BigEndian.Uint32(b[off:])
	off += 4
	r.Address, err = DecodeIPAddr(b[off:])
	if err != nil {
		return TrackingReport{}, err
	}
	off += EncodedIPAddrSize
	r.Stratum = binary.BigEndian.Uint16(b[off:])
	off += 2
	r.LeapStatus = binary.BigEndian.Uint16(b[off:])
	off += 2
	r.RefTime, err = DecodeTimestamp(b[off:])
	if err != nil {
		return TrackingReport{}, err
	}
	off += EncodedTimestampSize
	vals := make([]*float64, 9)
	vals[0], vals[1], vals[2] = &r.CurrentCorrection, &r.LastOffset, &r.RmsOffset
	vals[3], vals[4], vals[5] = &r.FreqPpm, &r.ResidFreqPpm, &r.SkewPpm
	vals[6], vals[7], vals[8] = &r.RootDelay, &r.RootDispersion, &r.LastUpdateInterval
	for _, v := range vals {
		*v = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
		off += 4
	}
	return r, nil
}

// RtcReport answers RTCREPORT.
type RtcReport struct {
	RefTime     Timestamp
	NSamples    uint16
	NRuns       uint16
	SpanSeconds uint32
	CoefSeconds float64
	FreqPpm     float64
	SkewPpm     float64
}

const rtcReportSize = EncodedTimestampSize + 2 + 2 + 4 + 4 + 4 + 4

func (r RtcReport) Encode() []byte {
	b := make([]byte, rtcReportSize)
	off := 0
	copy(b[off:], EncodeTimestamp(r.RefTime))
	off += EncodedTimestampSize
	binary.BigEndian.PutUint16(b[off:], r.NSamples)
	off += 2
	binary.BigEndian.PutUint16(b[off:], r.NRuns)
	off += 2
	binary.BigEndian.PutUint32(b[off:], r.SpanSeconds)
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.CoefSeconds))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.FreqPpm))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.SkewPpm))
	return b
}

func DecodeRtcReport(b []byte) (RtcReport, error) {
	if len(b) < rtcReportSize {
		return RtcReport{}, ErrTruncated
	}
	var r RtcReport
	var err error
	off := 0
	r.RefTime, err = DecodeTimestamp(b[off:])
	if err != nil {
		return RtcReport{}, err
	}
	off += EncodedTimestampSize
	r.NSamples = binary.BigEndian.Uint16(b[off:])
	off += 2
	r.NRuns = binary.BigEndian.Uint16(b[off:])
	off += 2
	r.SpanSeconds = binary.BigEndian.Uint32(b[off:])
	off += 4
	r.CoefSeconds = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.FreqPpm = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.SkewPpm = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	return r, nil
}

// ActivityReport answers ACTIVITY.
type ActivityReport struct {
	Online       int32
	Offline      int32
	BurstOnline  int32
	BurstOffline int32
	Unresolved   int32
}

const activityReportSize = 4 * 5

func (r ActivityReport) Encode() []byte {
	b := make([]byte, activityReportSize)
	binary.BigEndian.PutUint32(b[0:4], uint32(r.Online))
	binary.BigEndian.PutUint32(b[4:8], uint32(r.Offline))
	binary.BigEndian.PutUint32(b[8:12], uint32(r.BurstOnline))
	binary.BigEndian.PutUint32(b[12:16], uint32(r.BurstOffline))
	binary.BigEndian.PutUint32(b[16:20], uint32(r.Unresolved))
	return b
}

func DecodeActivityReport(b []byte) (ActivityReport, error) {
	if len(b) < activityReportSize {
		return ActivityReport{}, ErrTruncated
	}
	return ActivityReport{
		Online:       int32(binary.BigEndian.Uint32(b[0:4])),
		Offline:      int32(binary.BigEndian.Uint32(b[4:8])),
		BurstOnline:  int32(binary.BigEndian.Uint32(b[8:12])),
		BurstOffline: int32(binary.BigEndian.Uint32(b[12:16])),
		Unresolved:   int32(binary.BigEndian.Uint32(b[16:20])),
	}, nil
}

// SmoothingReport answers SMOOTHING.
type SmoothingReport struct {
	OffsetSeconds        float64
	FreqPpm              float64
	WanderPpm            float64
	LastUpdateAgoSeconds int32
	RemainingTimeSeconds int32
	Active               bool
	_                    [3]byte
}

const smoothingReportSize = 4 + 4 + 4 + 4 + 4 + 1 + 3

func (r SmoothingReport) Encode() []byte {
	b := make([]byte, smoothingReportSize)
	binary.BigEndian.PutUint32(b[0:4], EncodeFloat(r.OffsetSeconds))
	binary.BigEndian.PutUint32(b[4:8], EncodeFloat(r.FreqPpm))
	binary.BigEndian.PutUint32(b[8:12], EncodeFloat(r.WanderPpm))
	binary.BigEndian.PutUint32(b[12:16], uint32(r.LastUpdateAgoSeconds))
	binary.BigEndian.PutUint32(b[16:20], uint32(r.RemainingTimeSeconds))
	b[20] = boolByte(r.Active)
	return b
}

func DecodeSmoothingReport(b []byte) (SmoothingReport, error) {
	if len(b) < smoothingReportSize {
		return SmoothingReport{}, ErrTruncated
	}
	return SmoothingReport{
		OffsetSeconds:        DecodeFloat(binary.BigEndian.Uint32(b[0:4])),
		FreqPpm:              DecodeFloat(binary.BigEndian.Uint32(b[4:8])),
		WanderPpm:            DecodeFloat(binary.BigEndian.Uint32(b[8:12])),
		LastUpdateAgoSeconds: int32(binary.BigEndian.Uint32(b[12:16])),
		RemainingTimeSeconds: int32(binary.BigEndian.Uint32(b[16:20])),
		Active:               b[20] != 0,
	}, nil
}

// MaxManualSamples bounds MANUAL_LIST's reply, matching the fixed-size
// row array pattern every paged/listing reply in this protocol uses.
const MaxManualSamples = 8

// ManualSample is one row of a MANUAL_LIST reply.
type ManualSample struct {
	SampleTime Timestamp
	Offset     float64
	PeerDelay  float64
}

const manualSampleSize = EncodedTimestampSize + 4 + 4

// ManualListReport answers MANUAL_LIST.
type ManualListReport struct {
	NSamples int32
	Samples  [MaxManualSamples]ManualSample
}

const manualListReportSize = 4 + MaxManualSamples*manualSampleSize

func (r ManualListReport) Encode() []byte {
	b := make([]byte, manualListReportSize)
	binary.BigEndian.PutUint32(b[0:4], uint32(r.NSamples))
	off := 4
	for _, s := range r.Samples {
		copy(b[off:], EncodeTimestamp(s.SampleTime))
		off += EncodedTimestampSize
		binary.BigEndian.PutUint32(b[off:], EncodeFloat(s.Offset))
		off += 4
		binary.BigEndian.PutUint32(b[off:], EncodeFloat(s.PeerDelay))
		off += 4
	}
	return b
}

func DecodeManualListReport(b []byte) (ManualListReport, error) {
	if len(b) < manualListReportSize {
		return ManualListReport{}, ErrTruncated
	}
	var r ManualListReport
	r.NSamples = int32(binary.BigEndian.Uint32(b[0:4]))
	off := 4
	for i := range r.Samples {
		t, err := DecodeTimestamp(b[off:])
		if err != nil {
			return ManualListReport{}, err
		}
		r.Samples[i].SampleTime = t
		off += EncodedTimestampSize
		r.Samples[i].Offset = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
		off += 4
		r.Samples[i].PeerDelay = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
		off += 4
	}
	return r, nil
}

// MaxClientAccessRows bounds CLIENT_ACCESSES_BY_INDEX's per-reply page
// size to an implementation maximum.
const MaxClientAccessRows = 8

// ClientAccessRow is one row of a CLIENT_ACCESSES_BY_INDEX reply.
type ClientAccessRow struct {
	Address     IPAddr
	NTPHits     uint32
	CmdHits     uint32
	DroppedHits uint32
	LastAccess  Timestamp
}

const clientAccessRowSize = EncodedIPAddrSize + 4 + 4 + 4 + EncodedTimestampSize

// ClientAccessesByIndexReply answers CLIENT_ACCESSES_BY_INDEX.
type ClientAccessesByIndexReply struct {
	NextIndex uint32
	NIndices  uint32
	NClients  uint32
	Rows      [MaxClientAccessRows]ClientAccessRow
}

const clientAccessesByIndexReplySize = 4 + 4 + 4 + MaxClientAccessRows*clientAccessRowSize

func (r ClientAccessesByIndexReply) Encode() []byte {
	b := make([]byte, clientAccessesByIndexReplySize)
	binary.BigEndian.PutUint32(b[0:4], r.NextIndex)
	binary.BigEndian.PutUint32(b[4:8], r.NIndices)
	binary.BigEndian.PutUint32(b[8:12], r.NClients)
	off := 12
	for _, row := range r.Rows {
		copy(b[off:], EncodeIPAddr(row.Address))
		off += EncodedIPAddrSize
		binary.BigEndian.PutUint32(b[off:], row.NTPHits)
		off += 4
		binary.BigEndian.PutUint32(b[off:], row.CmdHits)
		off += 4
		binary.BigEndian.PutUint32(b[off:], row.DroppedHits)
		off += 4
		copy(b[off:], EncodeTimestamp(row.LastAccess))
		off += EncodedTimestampSize
	}
	return b
}

func DecodeClientAccessesByIndexReply(b []byte) (ClientAccessesByIndexReply, error) {
	if len(b) < clientAccessesByIndexReplySize {
		return ClientAccessesByIndexReply{}, ErrTruncated
	}
	var r ClientAccessesByIndexReply
	r.NextIndex = binary.BigEndian.Uint32(b[0:4])
	r.NIndices = binary.BigEndian.Uint32(b[4:8])
	r.NClients = binary.BigEndian.Uint32(b[8:12])
	off := 12
	for i := range r.Rows {
		addr, err := DecodeIPAddr(b[off:])
		if err != nil {
			return ClientAccessesByIndexReply{}, err
		}
		r.Rows[i].Address = addr
		off += EncodedIPAddrSize
		r.Rows[i].NTPHits = binary.BigEndian.Uint32(b[off:])
		off += 4
		r.Rows[i].CmdHits = binary.BigEndian.Uint32(b[off:])
		off += 4
		r.Rows[i].DroppedHits = binary.BigEndian.Uint32(b[off:])
		off += 4
		t, err := DecodeTimestamp(b[off:])
		if err != nil {
			return ClientAccessesByIndexReply{}, err
		}
		r.Rows[i].LastAccess = t
		off += EncodedTimestampSize
	}
	return r, nil
}

// replyBodySize gives the exact reply-body byte length for a given reply
// tag. Zero means no body beyond the header (status alone carries the
// answer).
var replyBodySize = [numReplyTags]int{
	ReplyNSources:              nSourcesReplySize,
	ReplySourceData:            sourceReportSize,
	ReplyManualList:            manualListReportSize,
	ReplyTracking:              trackingReportSize,
	ReplySourceStats:           sourceStatsReportSize,
	ReplyRtcReport:             rtcReportSize,
	ReplyActivity:              activityReportSize,
	ReplySmoothing:             smoothingReportSize,
	ReplyClientAccessesByIndex: clientAccessesByIndexReplySize,
}

// ReplyBodyLength returns the expected reply-body length for tag.
func ReplyBodyLength(tag ReplyTag) int {
	if tag >= numReplyTags {
		return 0
	}
	return replyBodySize[tag]
}
