// Package access implements the C/M layer's authorization policy: the
// transport-trust classification of an incoming packet's origin, the CIDR
// allow/deny decision table backed by a patricia trie, and the combined
// four-step rule from policy.go that the dispatcher calls once per packet.
package access
