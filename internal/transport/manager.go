// Package transport owns the C/M subsystem's datagram endpoints: an IPv4
// UDP socket, a v6-only IPv6 UDP socket, and a deferred local filesystem
// datagram socket. Each is read by its own goroutine that feeds received
// packets to the dispatcher and writes back whatever it returns.
package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/ntpcore/cmdmon/internal/access"
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/dispatch"
)

// maxPacketSize bounds one recvfrom: every C/M request/reply defined in
// internal/wire fits comfortably within it.
const maxPacketSize = 4096

// endpoint is one of the manager's up to three listening descriptors.
type endpoint struct {
	name  string
	conn  net.PacketConn
	fd    int
	trust func(addr net.Addr) access.Origin
}

// Manager owns the transport descriptors and their read loops. Each
// descriptor is created on Start (the IP sockets) or OpenLocalSocket (the
// filesystem socket, created later, after privilege drop) and is
// exclusively owned by Manager for its entire lifetime.
type Manager struct {
	dispatcher *dispatch.Dispatcher
	scheduler  collab.Scheduler
	logger     zerolog.Logger

	mu         sync.Mutex
	endpoints  []*endpoint
	socketPath string
	wg         sync.WaitGroup
}

func New(dispatcher *dispatch.Dispatcher, scheduler collab.Scheduler, logger zerolog.Logger) *Manager {
	return &Manager{dispatcher: dispatcher, scheduler: scheduler, logger: logger}
}

// Start creates the IPv4 and IPv6 UDP endpoints. Bind failures on one
// family are logged and skipped; Start only fails if neither IP socket
// could be created.
func (m *Manager) Start(cfg collab.Config) error {
	v4Err := m.openUDP("udp4", cfg.BindCmdAddress(collab.AddressFamilyV4), cfg.CmdPort(), false)
	v6Err := m.openUDP("udp6", cfg.BindCmdAddress(collab.AddressFamilyV6), cfg.CmdPort(), true)
	if v4Err != nil && v6Err != nil {
		return errors.Join(v4Err, v6Err)
	}
	return nil
}

func (m *Manager) openUDP(network string, addr net.IP, port uint16, v6Only bool) error {
	if addr == nil {
		m.logger.Warn().Str("network", network).Msg("no bind address configured, skipping endpoint")
		return errors.New("transport: no bind address for " + network)
	}
	lc := net.ListenConfig{Control: m.controlFor(v6Only)}
	pc, err := lc.ListenPacket(context.Background(), network, net.JoinHostPort(addr.String(), portString(port)))
	if err != nil {
		m.logger.Warn().Err(err).Str("network", network).Msg("failed to open transport endpoint")
		return err
	}
	fd := fdOf(pc)
	ep := &endpoint{
		name: network,
		conn: pc,
		fd:   fd,
		trust: func(raddr net.Addr) access.Origin {
			return access.Origin{Trust: access.UntrustedRemote, Addr: udpAddrIP(raddr)}
		},
	}
	m.register(ep)
	m.logger.Info().Str("network", network).Str("addr", pc.LocalAddr().String()).Msg("transport endpoint open")
	return nil
}

// OpenLocalSocket creates the filesystem-namespace datagram socket at
// path, unlinking any stale node left over from a previous run. It is
// meant to be invoked once, after the process has dropped privileges.
func (m *Manager) OpenLocalSocket(path string) error {
	if path == "" {
		return nil
	}
	_ = os.Remove(path)
	addr := &net.UnixAddr{Name: path, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return err
	}
	// net opens every socket it creates with SOCK_CLOEXEC, so close-on-exec
	// is already set here without an extra syscall.
	m.mu.Lock()
	m.socketPath = path
	m.mu.Unlock()
	ep := &endpoint{
		name: "unixgram",
		conn: conn,
		fd:   fdOf(conn),
		trust: func(net.Addr) access.Origin {
			return access.Origin{Trust: access.FilesystemLocal}
		},
	}
	m.register(ep)
	m.logger.Info().Str("path", path).Msg("local transport endpoint open")
	return nil
}

// eventNotifier is the production Scheduler's extra method for recording
// that a descriptor just produced a packet; collab.Scheduler itself has
// no such method since a real poller would drive Register's callback on
// its own. MemoryScheduler implements it; the manager degrades to no
// bookkeeping against a Scheduler that doesn't.
type eventNotifier interface {
	Fire(fd int)
}

// register records ep and starts its read loop.
func (m *Manager) register(ep *endpoint) {
	m.mu.Lock()
	m.endpoints = append(m.endpoints, ep)
	m.mu.Unlock()

	m.scheduler.Register(ep.fd, func() {})

	m.wg.Add(1)
	go m.readLoop(ep)
}

func (m *Manager) readLoop(ep *endpoint) {
	defer m.wg.Done()
	for m.handleOne(ep) {
	}
}

// handleOne blocks for one datagram on ep, dispatches it, and writes back
// whatever reply the dispatcher produced. It returns false once ep's
// connection has been closed, telling the caller's loop to stop.
func (m *Manager) handleOne(ep *endpoint) bool {
	buf := make([]byte, maxPacketSize)
	n, raddr, err := ep.conn.ReadFrom(buf)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return false
		}
		m.logger.Debug().Err(err).Str("endpoint", ep.name).Msg("recv error")
		return true
	}
	if notifier, ok := m.scheduler.(eventNotifier); ok {
		notifier.Fire(ep.fd)
	}

	origin := ep.trust(raddr)
	out := m.dispatcher.Handle(buf, n, origin)
	if out == nil || raddr == nil {
		return true
	}
	if _, err := ep.conn.WriteTo(out, raddr); err != nil {
		m.logger.Debug().Err(err).Str("endpoint", ep.name).Msg("send error")
	}
	return true
}

// Close shuts down every open endpoint and unlinks the local socket path.
func (m *Manager) Close() error {
	m.mu.Lock()
	endpoints := m.endpoints
	path := m.socketPath
	m.endpoints = nil
	m.mu.Unlock()

	var err error
	for _, ep := range endpoints {
		m.scheduler.Unregister(ep.fd)
		if cerr := ep.conn.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	m.wg.Wait()

	if path != "" {
		_ = os.Remove(path)
	}
	return err
}

// controlFor sets address-reuse and, for the v6 socket, v6-only mode.
// Failures are logged but never prevent the bind from proceeding, per the
// accepted best-effort posture for these options.
func (m *Manager) controlFor(v6Only bool) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		return c.Control(func(fd uintptr) {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
				m.logger.Debug().Err(err).Str("network", network).Msg("failed to set SO_REUSEADDR")
			}
			if v6Only {
				if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1); err != nil {
					m.logger.Debug().Err(err).Str("network", network).Msg("failed to set IPV6_V6ONLY")
				}
			}
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
				m.logger.Debug().Err(err).Str("network", network).Msg("failed to set SO_BROADCAST")
			}
		})
	}
}

func fdOf(pc net.PacketConn) int {
	type syscallConner interface {
		SyscallConn() (syscall.RawConn, error)
	}
	sc, ok := pc.(syscallConner)
	if !ok {
		return -1
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return -1
	}
	fd := -1
	rc.Control(func(f uintptr) { fd = int(f) })
	return fd
}

func udpAddrIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP
	default:
		return nil
	}
}

func portString(port uint16) string {
	return strconv.Itoa(int(port))
}
