package listener

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/fgeck/gowake/internal/macaddr"
	"github.com/fgeck/gowake/internal/packet"
	"github.com/fgeck/gowake/internal/services/transmit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type received struct {
	magic packet.Magic
	from  net.Addr
}

// serve starts a listener on a loopback port and returns its address and a
// channel of received packets. The listener stops when the test ends.
func serve(t *testing.T) (*net.UDPAddr, <-chan received) {
	t.Helper()

	svc := New(testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	conn, err := svc.Open(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	ch := make(chan received, 8)
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx, conn, func(_ context.Context, m packet.Magic, from net.Addr) {
			ch <- received{magic: m, from: from}
		})
	}()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	return conn.LocalAddr().(*net.UDPAddr), ch
}

func wait(t *testing.T, ch <-chan received) received {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for magic packet")
		return received{}
	}
}

func TestServe_RoundTrip(t *testing.T) {
	addr, ch := serve(t)
	target := macaddr.HardwareAddr{0x26, 0xce, 0x55, 0xa5, 0xc2, 0x33}
	token := macaddr.SecureOn{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

	require.NoError(t, transmit.New().Send(context.Background(), packet.Build(target, nil), addr, 0))
	got := wait(t, ch)
	assert.Equal(t, target, got.magic.Target)
	assert.Nil(t, got.magic.SecureOn)

	require.NoError(t, transmit.New().Send(context.Background(), packet.Build(target, &token), addr, 0))
	got = wait(t, ch)
	assert.Equal(t, target, got.magic.Target)
	require.NotNil(t, got.magic.SecureOn)
	assert.Equal(t, token, *got.magic.SecureOn)
}

func TestServe_DropsInvalidDatagrams(t *testing.T) {
	addr, ch := serve(t)
	target := macaddr.HardwareAddr{0x12, 0x13, 0x14, 0x15, 0x16, 0x17}
	sender := transmit.New()

	require.NoError(t, sender.Send(context.Background(), []byte("not a magic packet"), addr, 0))
	bad := packet.Build(target, nil)
	bad[0] = 0x00
	require.NoError(t, sender.Send(context.Background(), bad, addr, 0))
	require.NoError(t, sender.Send(context.Background(), packet.Build(target, nil), addr, 0))

	got := wait(t, ch)
	assert.Equal(t, target, got.magic.Target)

	select {
	case r := <-ch:
		t.Fatalf("unexpected packet for %s", r.magic.Target)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestListen_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(testLogger()).Listen(ctx, "127.0.0.1:0", nil)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
}

type mockListener struct {
	listenFunc func(ctx context.Context, network, address string) (net.PacketConn, error)
}

func (m *mockListener) ListenPacket(ctx context.Context, network, address string) (net.PacketConn, error) {
	return m.listenFunc(ctx, network, address)
}

func TestListen_BindError(t *testing.T) {
	bindErr := errors.New("address already in use")
	svc := NewWithListener(testLogger(), &mockListener{
		listenFunc: func(ctx context.Context, network, address string) (net.PacketConn, error) {
			assert.Equal(t, "udp", network)
			assert.Equal(t, ":9", address)
			return nil, bindErr
		},
	})

	err := svc.Listen(context.Background(), ":9", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, bindErr)
	assert.Contains(t, err.Error(), "failed to listen on :9")
}

type failingConn struct {
	net.PacketConn
	readErr error
	closed  bool
}

func (c *failingConn) ReadFrom([]byte) (int, net.Addr, error) { return 0, nil, c.readErr }
func (c *failingConn) LocalAddr() net.Addr                   { return &net.UDPAddr{} }
func (c *failingConn) Close() error {
	c.closed = true
	return nil
}

func TestServe_ReadError(t *testing.T) {
	readErr := errors.New("connection refused")
	conn := &failingConn{readErr: readErr}

	err := New(testLogger()).Serve(context.Background(), conn, nil)

	assert.ErrorIs(t, err, readErr)
	assert.True(t, conn.closed)
}
