//go:build !unix

package sockopt

import "syscall"

// Broadcast is a no-op here: the runtime already enables SO_BROADCAST on
// datagram sockets.
func Broadcast(_, _ string, _ syscall.RawConn) error {
	return nil
}

// ReuseAddr is a no-op on this platform.
func ReuseAddr(_, _ string, _ syscall.RawConn) error {
	return nil
}
