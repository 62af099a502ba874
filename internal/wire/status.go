package wire

// Status is the reply packet's status code.
type Status uint16

const (
	StatusSuccess Status = iota
	StatusFailed
	StatusUnauthorized
	StatusInvalid
	StatusNoSuchSource
	StatusSourceAlreadyKnown
	StatusTooManySources
	StatusNoRtc
	StatusBadRtcFile
	StatusInactive
	StatusBadSubnet
	StatusAccessAllowed
	StatusAccessDenied
	StatusNoHostAccess
	StatusInvalidAf
	StatusBadSample
	StatusBadPacketVersion
	StatusBadPacketLength
	StatusNotEnabled

	numStatuses
)

var statusNames = [numStatuses]string{
	StatusSuccess:            "SUCCESS",
	StatusFailed:             "FAILED",
	StatusUnauthorized:       "UNAUTHORIZED",
	StatusInvalid:            "INVALID",
	StatusNoSuchSource:       "NO_SUCH_SOURCE",
	StatusSourceAlreadyKnown: "SOURCE_ALREADY_KNOWN",
	StatusTooManySources:     "TOO_MANY_SOURCES",
	StatusNoRtc:              "NO_RTC",
	StatusBadRtcFile:         "BAD_RTC_FILE",
	StatusInactive:           "INACTIVE",
	StatusBadSubnet:          "BAD_SUBNET",
	StatusAccessAllowed:      "ACCESS_ALLOWED",
	StatusAccessDenied:       "ACCESS_DENIED",
	StatusNoHostAccess:       "NO_HOSTACCESS",
	StatusInvalidAf:          "INVALID_AF",
	StatusBadSample:          "BAD_SAMPLE",
	StatusBadPacketVersion:   "BAD_PACKET_VERSION",
	StatusBadPacketLength:    "BAD_PACKET_LENGTH",
	StatusNotEnabled:         "NOT_ENABLED",
}

func (s Status) String() string {
	if s >= numStatuses {
		return "UNKNOWN_STATUS"
	}
	return statusNames[s]
}
