package wire

import "encoding/binary"

// This file defines the request-side payload for every opcode that carries
// one. Opcodes with no request payload (NULL, N_SOURCES, ALLOWALL, DENYALL,
// CMDALLOWALL, CMDDENYALL, DUMP, CYCLELOGS, TRACKING,
// RTCREPORT, ACTIVITY, SMOOTHING, MANUAL_LIST, WRITERTC, TRIMRTC, MAKESTEP,
// RESELECT, REFRESH, REKEY, LOGON) have no struct here; the dispatcher
// treats their body length as zero.

// AddressRequest targets a single source by address: DEL_SOURCE.
type AddressRequest struct {
	Address IPAddr
}

const addressRequestSize = EncodedIPAddrSize

func (r AddressRequest) Encode() []byte {
	return EncodeIPAddr(r.Address)
}

func DecodeAddressRequest(b []byte) (AddressRequest, error) {
	a, err := DecodeIPAddr(b)
	if err != nil {
		return AddressRequest{}, err
	}
	return AddressRequest{Address: a}, nil
}

// MaskedAddressRequest targets every source matching (address & mask):
// ONLINE, OFFLINE. Mask precedes Address on the wire.
type MaskedAddressRequest struct {
	Mask    IPAddr
	Address IPAddr
}

const maskedAddressRequestSize = EncodedIPAddrSize + EncodedIPAddrSize

func (r MaskedAddressRequest) Encode() []byte {
	b := make([]byte, maskedAddressRequestSize)
	copy(b, EncodeIPAddr(r.Mask))
	copy(b[EncodedIPAddrSize:], EncodeIPAddr(r.Address))
	return b
}

func DecodeMaskedAddressRequest(b []byte) (MaskedAddressRequest, error) {
	if len(b) < maskedAddressRequestSize {
		return MaskedAddressRequest{}, ErrTruncated
	}
	mask, err := DecodeIPAddr(b)
	if err != nil {
		return MaskedAddressRequest{}, err
	}
	addr, err := DecodeIPAddr(b[EncodedIPAddrSize:])
	if err != nil {
		return MaskedAddressRequest{}, err
	}
	return MaskedAddressRequest{Mask: mask, Address: addr}, nil
}

// BurstRequest additionally carries the number of good/total samples the
// burst should gather before returning the matched sources to their
// previous mode. The sample counts precede the mask and address on the
// wire.
type BurstRequest struct {
	NGoodSamples  uint32
	NTotalSamples uint32
	Mask          IPAddr
	Address       IPAddr
}

const burstRequestSize = 4 + 4 + EncodedIPAddrSize + EncodedIPAddrSize

func (r BurstRequest) Encode() []byte {
	b := make([]byte, burstRequestSize)
	binary.BigEndian.PutUint32(b[0:4], r.NGoodSamples)
	binary.BigEndian.PutUint32(b[4:8], r.NTotalSamples)
	copy(b[8:], EncodeIPAddr(r.Mask))
	copy(b[8+EncodedIPAddrSize:], EncodeIPAddr(r.Address))
	return b
}

func DecodeBurstRequest(b []byte) (BurstRequest, error) {
	if len(b) < burstRequestSize {
		return BurstRequest{}, ErrTruncated
	}
	mask, err := DecodeIPAddr(b[8:])
	if err != nil {
		return BurstRequest{}, err
	}
	addr, err := DecodeIPAddr(b[8+EncodedIPAddrSize:])
	if err != nil {
		return BurstRequest{}, err
	}
	return BurstRequest{
		NGoodSamples:  binary.BigEndian.Uint32(b[0:4]),
		NTotalSamples: binary.BigEndian.Uint32(b[4:8]),
		Mask:          mask,
		Address:       addr,
	}, nil
}

// AddressIntRequest targets a source by address with a single integer
// parameter: MODIFY_MINPOLL, MODIFY_MAXPOLL, MODIFY_MINSTRATUM,
// MODIFY_POLLTARGET.
type AddressIntRequest struct {
	Address IPAddr
	Value   int32
}

const addressIntRequestSize = EncodedIPAddrSize + 4

func (r AddressIntRequest) Encode() []byte {
	b := make([]byte, addressIntRequestSize)
	copy(b, EncodeIPAddr(r.Address))
	binary.BigEndian.PutUint32(b[EncodedIPAddrSize:], uint32(r.Value))
	return b
}

func DecodeAddressIntRequest(b []byte) (AddressIntRequest, error) {
	if len(b) < addressIntRequestSize {
		return AddressIntRequest{}, ErrTruncated
	}
	addr, err := DecodeIPAddr(b)
	if err != nil {
		return AddressIntRequest{}, err
	}
	return AddressIntRequest{
		Address: addr,
		Value:   int32(binary.BigEndian.Uint32(b[EncodedIPAddrSize:])),
	}, nil
}

// AddressFloatRequest targets a source by address with a single coded-float
// parameter: MODIFY_MAXDELAY, MODIFY_MAXDELAYRATIO, MODIFY_MAXDELAYDEVRATIO.
type AddressFloatRequest struct {
	Address IPAddr
	Value   float64
}

const addressFloatRequestSize = EncodedIPAddrSize + 4

func (r AddressFloatRequest) Encode() []byte {
	b := make([]byte, addressFloatRequestSize)
	copy(b, EncodeIPAddr(r.Address))
	binary.BigEndian.PutUint32(b[EncodedIPAddrSize:], EncodeFloat(r.Value))
	return b
}

func DecodeAddressFloatRequest(b []byte) (AddressFloatRequest, error) {
	if len(b) < addressFloatRequestSize {
		return AddressFloatRequest{}, ErrTruncated
	}
	addr, err := DecodeIPAddr(b)
	if err != nil {
		return AddressFloatRequest{}, err
	}
	return AddressFloatRequest{
		Address: addr,
		Value:   DecodeFloat(binary.BigEndian.Uint32(b[EncodedIPAddrSize:])),
	}, nil
}

// FloatRequest carries a single coded-float parameter with no target
// address: MODIFY_MAXUPDATESKEW, RESELECTDISTANCE, DFREQ, DOFFSET.
type FloatRequest struct {
	Value float64
}

const floatRequestSize = 4

func (r FloatRequest) Encode() []byte {
	b := make([]byte, floatRequestSize)
	binary.BigEndian.PutUint32(b, EncodeFloat(r.Value))
	return b
}

func DecodeFloatRequest(b []byte) (FloatRequest, error) {
	if len(b) < floatRequestSize {
		return FloatRequest{}, ErrTruncated
	}
	return FloatRequest{Value: DecodeFloat(binary.BigEndian.Uint32(b))}, nil
}

// ModifyMakestepRequest is MODIFY_MAKESTEP's payload: a step threshold and
// a limit on the number of clock updates it applies to (0 = unlimited).
type ModifyMakestepRequest struct {
	Threshold float64
	Limit     int32
}

const modifyMakestepRequestSize = 4 + 4

func (r ModifyMakestepRequest) Encode() []byte {
	b := make([]byte, modifyMakestepRequestSize)
	binary.BigEndian.PutUint32(b[0:4], EncodeFloat(r.Threshold))
	binary.BigEndian.PutUint32(b[4:8], uint32(r.Limit))
	return b
}

func DecodeModifyMakestepRequest(b []byte) (ModifyMakestepRequest, error) {
	if len(b) < modifyMakestepRequestSize {
		return ModifyMakestepRequest{}, ErrTruncated
	}
	return ModifyMakestepRequest{
		Threshold: DecodeFloat(binary.BigEndian.Uint32(b[0:4])),
		Limit:     int32(binary.BigEndian.Uint32(b[4:8])),
	}, nil
}

// LocalRequest is LOCAL's payload: enable/disable the daemon acting as an
// unsynchronised local reference, its stratum, and the orphan distance.
type LocalRequest struct {
	OnOff    bool
	Stratum  uint32
	Distance float64
	_        [3]byte // alignment padding, part of the fixed layout
}

const localRequestSize = 1 + 3 + 4 + 4

func (r LocalRequest) Encode() []byte {
	b := make([]byte, localRequestSize)
	if r.OnOff {
		b[0] = 1
	}
	binary.BigEndian.PutUint32(b[4:8], r.Stratum)
	binary.BigEndian.PutUint32(b[8:12], EncodeFloat(r.Distance))
	return b
}

func DecodeLocalRequest(b []byte) (LocalRequest, error) {
	if len(b) < localRequestSize {
		return LocalRequest{}, ErrTruncated
	}
	return LocalRequest{
		OnOff:    b[0] != 0,
		Stratum:  binary.BigEndian.Uint32(b[4:8]),
		Distance: DecodeFloat(binary.BigEndian.Uint32(b[8:12])),
	}, nil
}

// SettimeRequest is SETTIME's payload: the timestamp to apply via the
// manual-timestamp engine.
type SettimeRequest struct {
	When Timestamp
}

const settimeRequestSize = EncodedTimestampSize

func (r SettimeRequest) Encode() []byte {
	return EncodeTimestamp(r.When)
}

func DecodeSettimeRequest(b []byte) (SettimeRequest, error) {
	t, err := DecodeTimestamp(b)
	if err != nil {
		return SettimeRequest{}, err
	}
	return SettimeRequest{When: t}, nil
}

// OptionRequest is a single-byte mode selector: MANUAL (enable/disable/
// reset) and SMOOTHTIME (reset/activate).
type OptionRequest struct {
	Option uint8
	_      [3]byte
}

const optionRequestSize = 4

func (r OptionRequest) Encode() []byte {
	b := make([]byte, optionRequestSize)
	b[0] = r.Option
	return b
}

func DecodeOptionRequest(b []byte) (OptionRequest, error) {
	if len(b) < optionRequestSize {
		return OptionRequest{}, ErrTruncated
	}
	return OptionRequest{Option: b[0]}, nil
}

// IndexRequest names a single row by index: SOURCE_DATA, SOURCESTATS,
// MANUAL_DELETE.
type IndexRequest struct {
	Index int32
}

const indexRequestSize = 4

func (r IndexRequest) Encode() []byte {
	b := make([]byte, indexRequestSize)
	binary.BigEndian.PutUint32(b, uint32(r.Index))
	return b
}

func DecodeIndexRequest(b []byte) (IndexRequest, error) {
	if len(b) < indexRequestSize {
		return IndexRequest{}, ErrTruncated
	}
	return IndexRequest{Index: int32(binary.BigEndian.Uint32(b))}, nil
}

// SubnetRequest names a CIDR subnet: ALLOW, DENY, CMDALLOW, CMDDENY,
// ACCHECK, CMDACCHECK. ALLOWALL, DENYALL, CMDALLOWALL and CMDDENYALL carry
// no payload and name no subnet: they set the whole table's default
// decision.
type SubnetRequest struct {
	Address  IPAddr
	MaskBits int32 // -1 means "whole address, no mask" (ALLOW/DENY of a single host)
}

const subnetRequestSize = EncodedIPAddrSize + 4

func (r SubnetRequest) Encode() []byte {
	b := make([]byte, subnetRequestSize)
	copy(b, EncodeIPAddr(r.Address))
	binary.BigEndian.PutUint32(b[EncodedIPAddrSize:], uint32(r.MaskBits))
	return b
}

func DecodeSubnetRequest(b []byte) (SubnetRequest, error) {
	if len(b) < subnetRequestSize {
		return SubnetRequest{}, ErrTruncated
	}
	addr, err := DecodeIPAddr(b)
	if err != nil {
		return SubnetRequest{}, err
	}
	return SubnetRequest{
		Address:  addr,
		MaskBits: int32(binary.BigEndian.Uint32(b[EncodedIPAddrSize:])),
	}, nil
}

// NTPSourceParams is the parameter bundle for ADD_SERVER / ADD_PEER.
type NTPSourceParams struct {
	Address          IPAddr
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
	_                [1]byte
}

const ntpSourceParamsSize = EncodedIPAddrSize + 2 + 2 + 2 + 4 + 4 + 4 + 4 + 1 + 1 + 1 + 1 + 1 + 1 + 1

func (r NTPSourceParams) Encode() []byte {
	b := make([]byte, ntpSourceParamsSize)
	off := 0
	copy(b[off:], EncodeIPAddr(r.Address))
	off += EncodedIPAddrSize
	binary.BigEndian.PutUint16(b[off:], r.Port)
	off += 2
	binary.BigEndian.PutUint16(b[off:], uint16(r.Minpoll))
	off += 2
	binary.BigEndian.PutUint16(b[off:], uint16(r.Maxpoll))
	off += 2
	binary.BigEndian.PutUint32(b[off:], uint32(r.Presend))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.MaxDelay))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.MaxDelayRatio))
	off += 4
	binary.BigEndian.PutUint32(b[off:], EncodeFloat(r.MaxDelayDevRatio))
	off += 4
	b[off] = r.MinStratum
	off++
	b[off] = r.PollTarget
	off++
	b[off] = r.Version
	off++
	b[off] = boolByte(r.AutoOffline)
	off++
	b[off] = boolByte(r.Iburst)
	off++
	b[off] = boolByte(r.Interleaved)
	return b
}

func DecodeNTPSourceParams(b []byte) (NTPSourceParams, error) {
	if len(b) < ntpSourceParamsSize {
		return NTPSourceParams{}, ErrTruncated
	}
	var r NTPSourceParams
	var err error
	off := 0
	r.Address, err = DecodeIPAddr(b[off:])
	if err != nil {
		return NTPSourceParams{}, err
	}
	off += EncodedIPAddrSize
	r.Port = binary.BigEndian.Uint16(b[off:])
	off += 2
	r.Minpoll = int16(binary.BigEndian.Uint16(b[off:]))
	off += 2
	r.Maxpoll = int16(binary.BigEndian.Uint16(b[off:]))
	off += 2
	r.Presend = int32(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.MaxDelay = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.MaxDelayRatio = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.MaxDelayDevRatio = DecodeFloat(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.MinStratum = b[off]
	off++
	r.PollTarget = b[off]
	off++
	r.Version = b[off]
	off++
	r.AutoOffline = b[off] != 0
	off++
	r.Iburst = b[off] != 0
	off++
	r.Interleaved = b[off] != 0
	return r, nil
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// ClientAccessesByIndexRequest is CLIENT_ACCESSES_BY_INDEX's paging
// request.
type ClientAccessesByIndexRequest struct {
	FirstIndex uint32
	NClients   uint32
}

const clientAccessesByIndexRequestSize = 4 + 4

func (r ClientAccessesByIndexRequest) Encode() []byte {
	b := make([]byte, clientAccessesByIndexRequestSize)
	binary.BigEndian.PutUint32(b[0:4], r.FirstIndex)
	binary.BigEndian.PutUint32(b[4:8], r.NClients)
	return b
}

func DecodeClientAccessesByIndexRequest(b []byte) (ClientAccessesByIndexRequest, error) {
	if len(b) < clientAccessesByIndexRequestSize {
		return ClientAccessesByIndexRequest{}, ErrTruncated
	}
	return ClientAccessesByIndexRequest{
		FirstIndex: binary.BigEndian.Uint32(b[0:4]),
		NClients:   binary.BigEndian.Uint32(b[4:8]),
	}, nil
}

// requestBodySize gives the exact request-body byte length the dispatcher
// expects for op, used to compute the packet's total expected length. Zero
// means the opcode carries no payload.
var requestBodySize = [NumOpcodes]int{
	ReqOnline:                 maskedAddressRequestSize,
	ReqOffline:                maskedAddressRequestSize,
	ReqBurst:                  burstRequestSize,
	ReqModifyMinpoll:          addressIntRequestSize,
	ReqModifyMaxpoll:          addressIntRequestSize,
	ReqModifyMaxdelay:         addressFloatRequestSize,
	ReqModifyMaxdelayRatio:    addressFloatRequestSize,
	ReqModifyMaxdelayDevRatio: addressFloatRequestSize,
	ReqModifyMaxupdateskew:    floatRequestSize,
	ReqModifyMakestep:         modifyMakestepRequestSize,
	ReqSettime:                settimeRequestSize,
	ReqLocal:                  localRequestSize,
	ReqManual:                 optionRequestSize,
	ReqSourceData:             indexRequestSize,
	ReqAllow:                  subnetRequestSize,
	ReqDeny:                   subnetRequestSize,
	ReqCmdAllow:               subnetRequestSize,
	ReqCmdDeny:                subnetRequestSize,
	ReqAccheck:                subnetRequestSize,
	ReqCmdAccheck:             subnetRequestSize,
	ReqAddServer:              ntpSourceParamsSize,
	ReqAddPeer:                ntpSourceParamsSize,
	ReqDelSource:              addressRequestSize,
	ReqDfreq:                  floatRequestSize,
	ReqDoffset:                floatRequestSize,
	ReqSmoothTime:             optionRequestSize,
	ReqSourceStats:            indexRequestSize,
	ReqClientAccessesByIndex:  clientAccessesByIndexRequestSize,
	ReqManualDelete:           indexRequestSize,
	ReqReselectDistance:       floatRequestSize,
	ReqModifyMinstratum:       addressIntRequestSize,
	ReqModifyPolltarget:       addressIntRequestSize,
}

// RequestBodyLength returns the expected request-body length for op, or 0
// if op carries no payload or is out of range.
func RequestBodyLength(op Opcode) int {
	if op >= NumOpcodes {
		return 0
	}
	return requestBodySize[op]
}
