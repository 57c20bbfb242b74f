// Package listener receives and decodes magic packets on a UDP port.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/fgeck/gowake/internal/packet"
	"github.com/fgeck/gowake/internal/services/transmit"
	"github.com/fgeck/gowake/internal/sockopt"
	"github.com/rs/zerolog"
)

// readBufferSize holds any datagram that fits an Ethernet frame.
const readBufferSize = 1500

// Handler is called for every valid magic packet received.
type Handler func(ctx context.Context, m packet.Magic, from net.Addr)

// Service defines the interface for receiving magic packets.
type Service interface {
	Listen(ctx context.Context, address string, handle Handler) error
}

// Impl implements Service over UDP.
type Impl struct {
	listener transmit.PacketListener
	logger   zerolog.Logger
}

// New creates a listener whose sockets have SO_REUSEADDR and SO_BROADCAST
// enabled, so it can share the port and receive broadcasts.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		listener: &net.ListenConfig{Control: sockopt.Chain(sockopt.ReuseAddr, sockopt.Broadcast)},
		logger:   logger,
	}
}

// NewWithListener creates a listener with a custom socket factory (for testing).
func NewWithListener(logger zerolog.Logger, listener transmit.PacketListener) *Impl {
	return &Impl{listener: listener, logger: logger}
}

// Listen binds address and serves it until ctx is done.
func (s *Impl) Listen(ctx context.Context, address string, handle Handler) error {
	conn, err := s.Open(ctx, address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, conn, handle)
}

// Open binds a UDP socket on address, e.g. ":9" or "[::]:9".
func (s *Impl) Open(ctx context.Context, address string) (net.PacketConn, error) {
	conn, err := s.listener.ListenPacket(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return conn, nil
}

// Serve reads datagrams from conn and calls handle for each valid magic
// packet. Invalid datagrams are logged and dropped. Serve closes conn and
// returns nil once ctx is done; a read error ends it early.
func (s *Impl) Serve(ctx context.Context, conn net.PacketConn, handle Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		if stop() {
			_ = conn.Close()
		}
	}()

	s.logger.Info().
		Stringer("address", conn.LocalAddr()).
		Msg("listening for magic packets")

	buf := make([]byte, readBufferSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info().Msg("listener stopped")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			return fmt.Errorf("reading packet: %w", err)
		}

		m, err := packet.Decode(buf[:n])
		if err != nil {
			s.logger.Debug().
				Err(err).
				Stringer("from", from).
				Int("size", n).
				Msg("ignoring datagram")
			continue
		}

		s.logger.Info().
			Stringer("mac", m.Target).
			Bool("secure_on", m.SecureOn != nil).
			Stringer("from", from).
			Msg("magic packet received")

		if handle != nil {
			handle(ctx, m, from)
		}
	}
}
