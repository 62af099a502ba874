// Package dispatch implements the validation pipeline that turns a raw
// datagram into exactly one handler invocation and, usually, one reply.
package dispatch

import (
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ntpcore/cmdmon/internal/access"
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/observability"
	"github.com/ntpcore/cmdmon/internal/wire"
)

// Deps bundles every external collaborator a handler might need. A single
// instance is shared by the whole dispatcher; handlers receive it by
// pointer and must treat it as read-only aside from calling collaborator
// methods.
type Deps struct {
	Sources      collab.Sources
	RefClocks    collab.RefClocks
	Clock        collab.LocalClock
	Reference    collab.Reference
	Manual       collab.Manual
	Smooth       collab.Smooth
	Rtc          collab.Rtc
	Access       collab.AccessFilter
	ClientLog    collab.ClientLog
	Keys         collab.Keys
	Housekeeping collab.Housekeeping

	Policy *access.Policy
	Logger zerolog.Logger
}

// Request is what a handler actually sees: the decoded header, the raw
// opcode-tagged body still unparsed (each handler decodes its own shape),
// and who sent it.
type Request struct {
	Header RequestOrigin
	Body   []byte
}

// RequestOrigin carries the decoded wire header plus the classified sender,
// split out from wire.RequestHeader so handlers never need to re-derive
// trust or address.
type RequestOrigin struct {
	wire.RequestHeader
	Trust access.TrustLevel
	Addr  net.IP
}

// Reply is what a handler hands back: the mutated header (status, reply
// tag) and the encoded reply-tag-specific body, if any.
type Reply struct {
	Header wire.ReplyHeader
	Body   []byte
}

// HandlerFunc implements exactly one opcode. It receives the already
// validated, already authorized request and a reply template with status
// SUCCESS and reply tag NULL; it mutates reply.Header and sets reply.Body
// as needed.
type HandlerFunc func(deps *Deps, req *Request, reply *Reply)

// Table maps opcodes to handlers. Opcodes with no entry reply INVALID, per
// step 6 of the validation pipeline (an opcode within range but never
// registered is equivalent to one the dispatch table has no case for).
type Table map[wire.Opcode]HandlerFunc

// dropHook, when non-nil, is consulted before every outgoing reply write;
// returning true drops the reply as if it had been lost in transit. It
// exists solely to exercise client-side retry logic in tests and is never
// wired in by the production entrypoint.
var dropHook func(seq uint32) bool

// SetDropHook installs or clears the reply-loss test hook. Passing nil
// restores normal delivery. Not safe for concurrent use with Dispatcher.Handle.
func SetDropHook(h func(seq uint32) bool) {
	dropHook = h
}

// Dispatcher runs the validation pipeline and owns the handler table.
type Dispatcher struct {
	deps  *Deps
	table Table
}

// New returns a Dispatcher bound to deps and table.
func New(deps *Deps, table Table) *Dispatcher {
	return &Dispatcher{deps: deps, table: table}
}

// dropReason enumerates the validation pipeline's silent-drop outcomes, used
// only for metrics/log labeling.
type dropReason string

const (
	dropRecvError    dropReason = "recv_error"
	dropAccessDenied dropReason = "access_denied"
	dropHeaderSanity dropReason = "header_sanity"
	dropBadVersion   dropReason = "bad_version"
	dropReplyLost    dropReason = "reply_lost"
)

// Handle runs the full validation pipeline against one received
// datagram from origin and returns the bytes to write back, or nil if
// nothing should be sent. pkt is the raw datagram; n is the number of
// valid bytes within it (Handle does not trust len(pkt) alone, mirroring a
// recvfrom result that may report fewer bytes than the buffer's capacity).
func (d *Dispatcher) Handle(pkt []byte, n int, origin access.Origin) []byte {
	reqID := uuid.New().String()
	log := d.deps.Logger.With().Str("req_id", reqID).Logger()

	// Step 1: recv result and origin sanity.
	if n < 0 || origin.Addr == nil && origin.Trust != access.FilesystemLocal {
		d.recordBadPacket(log, nil, wire.ReqNull, dropRecvError)
		return nil
	}

	// Step 2: access policy. This MUST happen before any ClientLog event is
	// recorded: a CIDR-denied packet produces neither a reply nor a log
	// entry.
	trust, ok := d.deps.Policy.Classify(origin)
	if !ok {
		observability.RecordDrop(string(dropAccessDenied))
		return nil
	}

	// Step 3: compute expected length from the opcode, once the header is
	// available; otherwise treat expected length as zero so step 4 rejects
	// it outright.
	var hdr wire.RequestHeader
	var expected int
	if n >= wire.RequestHeaderSize {
		var err error
		hdr, err = wire.DecodeRequestHeader(pkt[:n])
		if err != nil {
			d.recordBadPacket(log, origin.Addr, wire.ReqNull, dropHeaderSanity)
			return nil
		}
		if wire.Opcode(hdr.Command) < wire.NumOpcodes {
			expected = wire.RequestWireLength(wire.Opcode(hdr.Command))
		}
	}

	// Step 4: header sanity.
	if expected < wire.RequestHeaderSize ||
		n < wire.ReplyHeaderSize ||
		hdr.PktType != wire.PacketTypeRequest ||
		hdr.Res1 != 0 || hdr.Res2 != 0 {
		d.recordBadPacket(log, origin.Addr, wire.Opcode(hdr.Command), dropHeaderSanity)
		return nil
	}

	// Step 5: protocol version.
	if hdr.Version != wire.ProtocolVersion {
		d.recordBadPacket(log, origin.Addr, wire.Opcode(hdr.Command), dropBadVersion)
		if hdr.Version >= wire.CompatibilityFloor {
			reply := wire.NewReplyTemplate(hdr)
			reply.Status = uint16(wire.StatusBadPacketVersion)
			return wire.EncodeReplyHeader(reply)
		}
		return nil
	}

	op := wire.Opcode(hdr.Command)

	// Step 6: opcode range.
	if op >= wire.NumOpcodes {
		return d.finishInvalid(log, origin.Addr, op, hdr)
	}

	// Step 7: received length vs expected length.
	if n < expected {
		d.deps.ClientLog.Record(origin.Addr, op, collab.ClientLogNormal)
		observability.RecordDispatch(strconv.Itoa(int(op)), wire.StatusBadPacketLength.String(), 0)
		reply := wire.NewReplyTemplate(hdr)
		reply.Status = uint16(wire.StatusBadPacketLength)
		return wire.EncodeReplyHeader(reply)
	}

	// Step 8: per-opcode permission check.
	if !access.Authorize(trust, op) {
		d.deps.ClientLog.Record(origin.Addr, op, collab.ClientLogNormal)
		observability.RecordDispatch(strconv.Itoa(int(op)), wire.StatusUnauthorized.String(), 0)
		reply := wire.NewReplyTemplate(hdr)
		reply.Status = uint16(wire.StatusUnauthorized)
		return wire.EncodeReplyHeader(reply)
	}

	handler, registered := d.table[op]
	if !registered {
		return d.finishInvalid(log, origin.Addr, op, hdr)
	}

	d.deps.ClientLog.Record(origin.Addr, op, collab.ClientLogNormal)

	req := &Request{
		Header: RequestOrigin{RequestHeader: hdr, Trust: trust, Addr: origin.Addr},
		Body:   pkt[wire.RequestHeaderSize:n],
	}
	reply := &Reply{Header: wire.NewReplyTemplate(hdr)}
	start := time.Now()
	handler(d.deps, req, reply)
	observability.RecordDispatch(strconv.Itoa(int(op)), wire.Status(reply.Header.Status).String(), time.Since(start))

	out := wire.EncodeReplyHeader(reply.Header)
	out = append(out, reply.Body...)

	if dropHook != nil && dropHook(hdr.Sequence) {
		log.Debug().Uint32("sequence", hdr.Sequence).Msg("reply dropped by test hook")
		observability.RecordDrop(string(dropReplyLost))
		return nil
	}
	return out
}

// finishInvalid replies INVALID for an opcode that is out of range or has
// no registered handler; both cases are equivalent at the wire level.
func (d *Dispatcher) finishInvalid(log zerolog.Logger, addr net.IP, op wire.Opcode, hdr wire.RequestHeader) []byte {
	d.deps.ClientLog.Record(addr, op, collab.ClientLogBadPacket)
	observability.RecordDispatch(opcodeLabel(op), wire.StatusInvalid.String(), 0)
	reply := wire.NewReplyTemplate(hdr)
	reply.Status = uint16(wire.StatusInvalid)
	return wire.EncodeReplyHeader(reply)
}

// recordBadPacket logs and tags a packet dropped before dispatch; op is
// ReqNull when no header could be decoded. addr may be nil for filesystem
// origins.
func (d *Dispatcher) recordBadPacket(log zerolog.Logger, addr net.IP, op wire.Opcode, reason dropReason) {
	log.Debug().Str("reason", string(reason)).Str("opcode", opcodeLabel(op)).Msg("dropping bad packet")
	observability.RecordDrop(string(reason))
	if addr != nil {
		d.deps.ClientLog.Record(addr, op, collab.ClientLogBadPacket)
	}
}

func opcodeLabel(op wire.Opcode) string {
	if op >= wire.NumOpcodes {
		return "out_of_range"
	}
	return strconv.Itoa(int(op))
}
