// Package transmit sends magic packets as single UDP datagrams.
package transmit

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"

	"github.com/fgeck/gowake/internal/sockopt"
)

// DefaultPort is the conventional Wake-on-LAN port (discard).
const DefaultPort = 9

var (
	// LimitedBroadcast is the IPv4 limited broadcast address.
	LimitedBroadcast = net.IPv4bcast
	// LinkLocalAllNodes is the IPv6 all-nodes multicast address, the usual
	// IPv6 destination for magic packets.
	LinkLocalAllNodes = net.IPv6linklocalallnodes
)

// ErrNoDestination is returned when Send is called without a destination.
var ErrNoDestination = errors.New("no destination address")

// Service defines the interface for sending a payload as one UDP datagram.
type Service interface {
	Send(ctx context.Context, payload []byte, dst *net.UDPAddr, sourcePort uint16) error
}

// PacketListener opens packet sockets. *net.ListenConfig implements it.
type PacketListener interface {
	ListenPacket(ctx context.Context, network, address string) (net.PacketConn, error)
}

// Impl implements Service over UDP.
type Impl struct {
	listener PacketListener
}

// New creates a transmitter whose sockets have SO_BROADCAST enabled.
func New() *Impl {
	return &Impl{
		listener: &net.ListenConfig{Control: sockopt.Broadcast},
	}
}

// NewWithListener creates a transmitter with a custom socket factory (for testing).
func NewWithListener(listener PacketListener) *Impl {
	return &Impl{listener: listener}
}

// Send opens a UDP socket of dst's address family, bound to sourcePort or an
// ephemeral port when sourcePort is 0, and writes payload to dst once. The
// socket is closed before Send returns. Socket errors are returned as they
// come from the net package.
func (s *Impl) Send(ctx context.Context, payload []byte, dst *net.UDPAddr, sourcePort uint16) error {
	if dst == nil {
		return ErrNoDestination
	}

	network, laddr := bindAddress(dst, sourcePort)
	conn, err := s.listener.ListenPacket(ctx, network, laddr)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	n, err := conn.WriteTo(payload, dst)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return io.ErrShortWrite
	}
	return nil
}

// bindAddress returns the network and unspecified local address matching
// dst's family.
func bindAddress(dst *net.UDPAddr, sourcePort uint16) (string, string) {
	port := strconv.Itoa(int(sourcePort))
	if dst.IP.To4() != nil {
		return "udp4", net.JoinHostPort(net.IPv4zero.String(), port)
	}
	return "udp6", net.JoinHostPort(net.IPv6unspecified.String(), port)
}
