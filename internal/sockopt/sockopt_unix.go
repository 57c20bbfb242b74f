//go:build unix

package sockopt

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Broadcast enables SO_BROADCAST so datagrams may be sent to broadcast
// addresses.
func Broadcast(_, _ string, c syscall.RawConn) error {
	return setInt(c, unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
}

// ReuseAddr enables SO_REUSEADDR so several listeners can share a port.
func ReuseAddr(_, _ string, c syscall.RawConn) error {
	return setInt(c, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}

func setInt(c syscall.RawConn, level, opt, value int) error {
	var serr error
	if err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), level, opt, value)
	}); err != nil {
		return err
	}
	return serr
}
