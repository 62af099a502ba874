// Package wire implements the Command & Monitoring binary wire protocol:
// fixed-layout request/reply headers, the opcode-tagged payload union, the
// per-opcode permission table, and the scalar codecs (integers, timestamps,
// IP addresses, the compact float format) that every payload is built from.
//
// Everything here is a pure function of bytes in, struct out (or the
// reverse). Nothing in this package touches a socket or a collaborator.
package wire
