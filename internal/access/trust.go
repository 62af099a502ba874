package access

import "net"

// TrustLevel classifies an incoming packet's transport origin.
type TrustLevel uint8

const (
	// UntrustedRemote is any IP origin that is not loopback, including
	// origins the C/M CIDR table allows.
	UntrustedRemote TrustLevel = iota
	// Localhost is an IPv4 or IPv6 loopback origin.
	Localhost
	// FilesystemLocal is the local filesystem datagram socket; always
	// unconditionally trusted.
	FilesystemLocal
)

func (t TrustLevel) String() string {
	switch t {
	case FilesystemLocal:
		return "filesystem-local"
	case Localhost:
		return "localhost"
	default:
		return "untrusted-remote"
	}
}

// ClassifyIP returns Localhost for an IPv4/IPv6 loopback address and
// UntrustedRemote for everything else. Callers that already know the
// packet arrived on the filesystem socket should use FilesystemLocal
// directly rather than calling this.
func ClassifyIP(ip net.IP) TrustLevel {
	if ip != nil && ip.IsLoopback() {
		return Localhost
	}
	return UntrustedRemote
}
