// Package macaddr parses and formats the 6-byte values carried by Wake-on-LAN
// magic packets: the target hardware address and the SecureOn token.
//
// Both share one textual grammar, six 2-digit hex octets separated uniformly
// by ':' or '-', but they are distinct types so one can never be passed where
// the other is expected.
package macaddr

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the byte length of a hardware address and of a SecureOn token.
const Size = 6

// ErrInvalidFormat is wrapped by every parse failure in this package.
var ErrInvalidFormat = errors.New("invalid format")

// HardwareAddr is a 48-bit link-layer address.
type HardwareAddr [Size]byte

// SecureOn is a 6-byte SecureOn password appended to a magic packet.
//
// It is sent in plain text and should not be treated as a secret.
type SecureOn [Size]byte

// ParseHardwareAddr parses s as XX:XX:XX:XX:XX:XX or XX-XX-XX-XX-XX-XX.
func ParseHardwareAddr(s string) (HardwareAddr, error) {
	b, err := parse(s)
	if err != nil {
		return HardwareAddr{}, fmt.Errorf("hardware address %q: %w", s, err)
	}
	return HardwareAddr(b), nil
}

// ParseSecureOn parses s using the same grammar as ParseHardwareAddr.
func ParseSecureOn(s string) (SecureOn, error) {
	b, err := parse(s)
	if err != nil {
		return SecureOn{}, fmt.Errorf("SecureOn token %q: %w", s, err)
	}
	return SecureOn(b), nil
}

// MustParseHardwareAddr is like ParseHardwareAddr but panics on error.
func MustParseHardwareAddr(s string) HardwareAddr {
	a, err := ParseHardwareAddr(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the address in lowercase colon notation.
func (a HardwareAddr) String() string {
	return format(a, ':')
}

// Format returns the address using sep, which should be ':' or '-'.
func (a HardwareAddr) Format(sep byte) string {
	return format(a, sep)
}

// Compare orders addresses byte-wise and returns -1, 0 or +1.
func (a HardwareAddr) Compare(b HardwareAddr) int {
	for i := range Size {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler.
func (a HardwareAddr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *HardwareAddr) UnmarshalText(text []byte) error {
	v, err := ParseHardwareAddr(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// String returns the token in lowercase colon notation.
func (s SecureOn) String() string {
	return format(s, ':')
}

// Format returns the token using sep, which should be ':' or '-'.
func (s SecureOn) Format(sep byte) string {
	return format(s, sep)
}

// MarshalText implements encoding.TextMarshaler.
func (s SecureOn) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SecureOn) UnmarshalText(text []byte) error {
	v, err := ParseSecureOn(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func parse(s string) ([Size]byte, error) {
	var out [Size]byte

	i := strings.IndexAny(s, ":-")
	if i < 0 {
		return out, fmt.Errorf("%w: no ':' or '-' separator", ErrInvalidFormat)
	}
	sep := s[i]

	groups := strings.Split(s, string(sep))
	if len(groups) != Size {
		if strings.ContainsAny(s, otherSeparator(sep)) {
			return out, fmt.Errorf("%w: mixed separators", ErrInvalidFormat)
		}
		return out, fmt.Errorf("%w: expected %d groups, got %d", ErrInvalidFormat, Size, len(groups))
	}

	for n, g := range groups {
		if len(g) != 2 {
			return out, fmt.Errorf("%w: group %d %q is not 2 hex digits", ErrInvalidFormat, n+1, g)
		}
		hi, lo := hexValue(g[0]), hexValue(g[1])
		if hi < 0 || lo < 0 {
			return out, fmt.Errorf("%w: group %d %q is not hexadecimal", ErrInvalidFormat, n+1, g)
		}
		out[n] = byte(hi<<4 | lo)
	}
	return out, nil
}

func otherSeparator(sep byte) string {
	if sep == ':' {
		return "-"
	}
	return ":"
}

func hexValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c - 'a' + 10)
	case 'A' <= c && c <= 'F':
		return int(c - 'A' + 10)
	default:
		return -1
	}
}

const hexDigits = "0123456789abcdef"

func format(b [Size]byte, sep byte) string {
	buf := make([]byte, 0, Size*3-1)
	for i, v := range b {
		if i > 0 {
			buf = append(buf, sep)
		}
		buf = append(buf, hexDigits[v>>4], hexDigits[v&0x0f])
	}
	return string(buf)
}
