// Package sockopt provides net.ListenConfig Control hooks for the socket
// options used when sending and receiving magic packets.
package sockopt

import "syscall"

// Control is the signature of net.ListenConfig.Control.
type Control func(network, address string, c syscall.RawConn) error

// Chain runs each control in order and stops at the first error.
func Chain(controls ...Control) Control {
	return func(network, address string, c syscall.RawConn) error {
		for _, ctl := range controls {
			if err := ctl(network, address, c); err != nil {
				return err
			}
		}
		return nil
	}
}
