// Package packet builds and decodes Wake-on-LAN magic packets.
package packet

import (
	"errors"
	"fmt"

	"github.com/fgeck/gowake/internal/macaddr"
	"github.com/mdlayher/wol"
)

const (
	// SyncStreamSize is the number of leading 0xFF bytes.
	SyncStreamSize = 6
	// Repetitions is how often the target address is repeated.
	Repetitions = 16
	// Size is the length of a magic packet without a SecureOn token.
	Size = SyncStreamSize + Repetitions*macaddr.Size
	// SecureOnSize is the length of a magic packet with a SecureOn token.
	SecureOnSize = Size + macaddr.Size
)

// ErrInvalidPacket is wrapped by Decode failures.
var ErrInvalidPacket = errors.New("invalid magic packet")

// Magic is the decoded content of a magic packet.
type Magic struct {
	Target   macaddr.HardwareAddr
	SecureOn *macaddr.SecureOn
}

// Build returns the magic packet waking addr: six 0xFF bytes followed by addr
// repeated 16 times, followed by secureOn if it is not nil.
func Build(addr macaddr.HardwareAddr, secureOn *macaddr.SecureOn) []byte {
	n := Size
	if secureOn != nil {
		n = SecureOnSize
	}
	b := make([]byte, n)

	for i := range SyncStreamSize {
		b[i] = 0xff
	}
	for i := range Repetitions {
		off := SyncStreamSize + i*macaddr.Size
		copy(b[off:off+macaddr.Size], addr[:])
	}
	if secureOn != nil {
		copy(b[Size:], secureOn[:])
	}
	return b
}

// Decode parses a received magic packet. Only 102-byte packets and 108-byte
// packets carrying a SecureOn token are accepted.
func Decode(b []byte) (Magic, error) {
	if len(b) != Size && len(b) != SecureOnSize {
		return Magic{}, fmt.Errorf("%w: length %d", ErrInvalidPacket, len(b))
	}

	var mp wol.MagicPacket
	if err := mp.UnmarshalBinary(b); err != nil {
		return Magic{}, fmt.Errorf("%w: %w", ErrInvalidPacket, err)
	}
	if len(mp.Target) != macaddr.Size {
		return Magic{}, fmt.Errorf("%w: target length %d", ErrInvalidPacket, len(mp.Target))
	}

	m := Magic{Target: macaddr.HardwareAddr(mp.Target)}
	if len(mp.Password) == macaddr.Size {
		s := macaddr.SecureOn(mp.Password)
		m.SecureOn = &s
	}
	return m, nil
}
