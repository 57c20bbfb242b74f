package models

import (
	"net"

	"github.com/fgeck/gowake/internal/macaddr"
)

// WakeRequest is one target to wake up. Zero-valued optional fields fall
// back to the WakeConfig defaults.
type WakeRequest struct {
	HardwareAddr macaddr.HardwareAddr
	SecureOn     *macaddr.SecureOn // nil if not set
	Host         string            // empty if not set
	Port         uint16            // 0 if not set
	Line         int               // 1-based line in a wakeup file; 0 for CLI input
}

// WakeResult holds the outcome of waking one target.
type WakeResult struct {
	Request     WakeRequest
	Destination *net.UDPAddr // nil if resolution failed
	PacketSent  bool
	Error       error
}
