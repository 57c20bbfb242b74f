package macaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHardwareAddr_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  HardwareAddr
	}{
		{"colon", "12:13:14:15:16:17", HardwareAddr{0x12, 0x13, 0x14, 0x15, 0x16, 0x17}},
		{"dash", "12-13-14-15-16-17", HardwareAddr{0x12, 0x13, 0x14, 0x15, 0x16, 0x17}},
		{"uppercase", "AA:BB:CC:DD:EE:FF", HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}},
		{"mixed case", "aA-Bb-cC-dD-eE-Ff", HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}},
		{"zero", "00:00:00:00:00:00", HardwareAddr{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHardwareAddr(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHardwareAddr_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no separator", "121314151617"},
		{"mixed separators", "12:13-14:15:16:17"},
		{"mixed separators at end", "12-13-14-15-16:17"},
		{"five groups", "12:13:14:15:16"},
		{"seven groups", "12:13:14:15:16:17:18"},
		{"one digit group", "1:13:14:15:16:17"},
		{"three digit group", "123:13:14:15:16:17"},
		{"non hex", "jj:13:14:15:16:17"},
		{"empty group", "12::14:15:16:17"},
		{"trailing separator", "12:13:14:15:16:17:"},
		{"dot notation", "1213.1415.1617"},
		{"surrounding space", " 12:13:14:15:16:17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHardwareAddr(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)
			assert.Contains(t, err.Error(), tt.input)
		})
	}
}

func TestParseSecureOn(t *testing.T) {
	got, err := ParseSecureOn("aa-bb-cc-dd-ee-ff")
	require.NoError(t, err)
	assert.Equal(t, SecureOn{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, got)

	_, err = ParseSecureOn("aa-bb-cc-dd-ee-f")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "SecureOn")
}

func TestRoundTrip(t *testing.T) {
	values := []HardwareAddr{
		{},
		{0x12, 0x13, 0x14, 0x15, 0x16, 0x17},
		{0x26, 0xce, 0x55, 0xa5, 0xc2, 0x33},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		{0x00, 0x0a, 0xa0, 0x0f, 0xf0, 0x99},
	}

	for _, v := range values {
		for _, sep := range []byte{':', '-'} {
			a, err := ParseHardwareAddr(v.Format(sep))
			require.NoError(t, err)
			assert.Equal(t, v, a)

			s, err := ParseSecureOn(SecureOn(v).Format(sep))
			require.NoError(t, err)
			assert.Equal(t, SecureOn(v), s)
		}
	}
}

func TestHardwareAddr_String(t *testing.T) {
	a := HardwareAddr{0xAA, 0xBB, 0x0C, 0x0D, 0xEE, 0x01}
	assert.Equal(t, "aa:bb:0c:0d:ee:01", a.String())
	assert.Equal(t, "aa-bb-0c-0d-ee-01", a.Format('-'))
	assert.Equal(t, "aa:bb:0c:0d:ee:01", SecureOn(a).String())
}

func TestHardwareAddr_Compare(t *testing.T) {
	a := MustParseHardwareAddr("00:00:00:00:00:01")
	b := MustParseHardwareAddr("00:00:00:00:01:00")

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a == MustParseHardwareAddr("00-00-00-00-00-01"))
}

func TestText(t *testing.T) {
	var a HardwareAddr
	require.NoError(t, a.UnmarshalText([]byte("12-13-14-15-16-17")))
	text, err := a.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "12:13:14:15:16:17", string(text))

	var s SecureOn
	require.NoError(t, s.UnmarshalText([]byte("01:02:03:04:05:06")))
	assert.Equal(t, SecureOn{1, 2, 3, 4, 5, 6}, s)
	assert.ErrorIs(t, s.UnmarshalText([]byte("nope")), ErrInvalidFormat)
	assert.Equal(t, SecureOn{1, 2, 3, 4, 5, 6}, s)
}

func TestSecureOnFlag(t *testing.T) {
	var f SecureOnFlag
	assert.Equal(t, "", f.String())
	assert.Nil(t, f.Value)

	require.NoError(t, f.Set("AA:BB:CC:DD:EE:FF"))
	require.NotNil(t, f.Value)
	assert.Equal(t, SecureOn{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, *f.Value)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", f.String())
	assert.Equal(t, "token", f.Type())

	assert.ErrorIs(t, f.Set("aa:bb"), ErrInvalidFormat)
}
