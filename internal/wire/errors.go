package wire

import "errors"

var (
	ErrTruncated        = errors.New("wire: truncated packet")
	ErrUnknownOpcode    = errors.New("wire: unknown opcode")
	ErrUnknownReplyTag  = errors.New("wire: unknown reply tag")
	ErrPaddingTooLarge  = errors.New("wire: padding length exceeds 16 bytes")
	ErrPaddingExceedsCmd = errors.New("wire: padding length exceeds command length")
	ErrCommandTooShort  = errors.New("wire: nonzero command length shorter than payload offset")
	ErrBadAddressFamily = errors.New("wire: unrecognized address family")
)
