package wire

// Opcode identifies a request variant. Values follow the dispatch order of
// the original C implementation's request switch, not alphabetical order,
// so that anyone cross-referencing against that source can match entries
// one for one.
type Opcode uint16

const (
	ReqNull Opcode = iota
	ReqDump
	ReqOnline
	ReqOffline
	ReqBurst
	ReqModifyMinpoll
	ReqModifyMaxpoll
	ReqModifyMaxdelay
	ReqModifyMaxdelayRatio
	ReqModifyMaxdelayDevRatio
	ReqModifyMaxupdateskew
	ReqModifyMakestep
	ReqLogon
	ReqSettime
	ReqLocal
	ReqManual
	ReqNSources
	ReqSourceData
	ReqRekey
	ReqAllow
	ReqAllowAll
	ReqDeny
	ReqDenyAll
	ReqCmdAllow
	ReqCmdAllowAll
	ReqCmdDeny
	ReqCmdDenyAll
	ReqAccheck
	ReqCmdAccheck
	ReqAddServer
	ReqAddPeer
	ReqDelSource
	ReqWriteRtc
	ReqDfreq
	ReqDoffset
	ReqTracking
	ReqSmoothing
	ReqSmoothTime
	ReqSourceStats
	ReqRtcReport
	ReqTrimRtc
	ReqCycleLogs
	ReqClientAccessesByIndex
	ReqManualList
	ReqManualDelete
	ReqMakestep
	ReqActivity
	ReqReselectDistance
	ReqReselect
	ReqModifyMinstratum
	ReqModifyPolltarget
	ReqRefresh

	// NumOpcodes must stay last; it is the load-time invariant boundary
	// every table keyed by Opcode is checked against.
	NumOpcodes
)

// PermClass is the static per-opcode authorization requirement.
type PermClass uint8

const (
	// PermOpen: any trust level may invoke.
	PermOpen PermClass = iota
	// PermLocal: filesystem-local or IP-localhost origin required. Not
	// exercised by any opcode today; preserved for forward compatibility
	// per spec.
	PermLocal
	// PermAuth: filesystem-local origin required.
	PermAuth
)

// permissionTable is a byte-for-byte transcription of the historical
// permissions[] array, cross-referenced against the current opcode
// dispatch to drop entries for opcodes that no longer exist (the legacy
// SUBNETS_ACCESSED and by-subnet CLIENT_ACCESSES commands). Ordering
// matches the Opcode enum above.
var permissionTable = [NumOpcodes]PermClass{
	ReqNull:                   PermOpen,
	ReqDump:                   PermAuth,
	ReqOnline:                 PermAuth,
	ReqOffline:                PermAuth,
	ReqBurst:                  PermAuth,
	ReqModifyMinpoll:          PermAuth,
	ReqModifyMaxpoll:          PermAuth,
	ReqModifyMaxdelay:         PermAuth,
	ReqModifyMaxdelayRatio:    PermAuth,
	ReqModifyMaxdelayDevRatio: PermAuth,
	ReqModifyMaxupdateskew:    PermAuth,
	ReqModifyMakestep:         PermAuth,
	ReqLogon:                  PermOpen,
	ReqSettime:                PermAuth,
	ReqLocal:                  PermAuth,
	ReqManual:                 PermAuth,
	ReqNSources:               PermOpen,
	ReqSourceData:             PermOpen,
	ReqRekey:                  PermAuth,
	ReqAllow:                  PermAuth,
	ReqAllowAll:               PermAuth,
	ReqDeny:                   PermAuth,
	ReqDenyAll:                PermAuth,
	ReqCmdAllow:               PermAuth,
	ReqCmdAllowAll:            PermAuth,
	ReqCmdDeny:                PermAuth,
	ReqCmdDenyAll:             PermAuth,
	ReqAccheck:                PermAuth,
	ReqCmdAccheck:             PermAuth,
	ReqAddServer:              PermAuth,
	ReqAddPeer:                PermAuth,
	ReqDelSource:              PermAuth,
	ReqWriteRtc:               PermAuth,
	ReqDfreq:                  PermAuth,
	ReqDoffset:                PermAuth,
	ReqTracking:               PermOpen,
	ReqSmoothing:              PermOpen,
	ReqSmoothTime:             PermAuth,
	ReqSourceStats:            PermOpen,
	ReqRtcReport:              PermOpen,
	ReqTrimRtc:                PermAuth,
	ReqCycleLogs:              PermAuth,
	ReqClientAccessesByIndex:  PermAuth,
	ReqManualList:             PermOpen,
	ReqManualDelete:           PermAuth,
	ReqMakestep:               PermAuth,
	ReqActivity:               PermOpen,
	ReqReselectDistance:       PermAuth,
	ReqReselect:               PermAuth,
	ReqModifyMinstratum:       PermAuth,
	ReqModifyPolltarget:       PermAuth,
	ReqRefresh:                PermAuth,
}

func init() {
	if len(permissionTable) != int(NumOpcodes) {
		panic("wire: permission table size does not match opcode count")
	}
}

// Permission returns the permission class for op, or PermAuth (the safest
// default) if op is out of range. Callers should check op < NumOpcodes
// before relying on the result being meaningful; the dispatcher does this
// as part of its validation pipeline.
func Permission(op Opcode) PermClass {
	if op >= NumOpcodes {
		return PermAuth
	}
	return permissionTable[op]
}

// ReplyTag identifies a reply payload variant.
type ReplyTag uint16

const (
	ReplyNull ReplyTag = iota
	ReplyNSources
	ReplySourceData
	ReplyManualList
	ReplyTracking
	ReplySourceStats
	ReplyRtcReport
	ReplyActivity
	ReplySmoothing
	ReplyClientAccessesByIndex

	numReplyTags
)
