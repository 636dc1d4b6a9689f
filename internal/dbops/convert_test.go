package dbops

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIPv4RoundTrip(t *testing.T) {
	v := IPv4ToUint32(net.ParseIP("127.0.0.1"))
	require.Equal(t, "127.0.0.1", Uint32ToIPv4(v))
}

func TestSaturateInt32(t *testing.T) {
	require.Equal(t, int32(2147483647), SaturateInt32(1<<40))
	require.Equal(t, int32(-2147483648), SaturateInt32(-(1 << 40)))
	require.Equal(t, int32(42), SaturateInt32(42))
}

func TestParseIntervalUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"7 days", 7 * 86400},
		{"30 days ago", -30 * 86400},
		{"1 hour", 3600},
		{"2 weeks", 14 * 86400},
		{"01:02:03", 3723},
	}
	for _, c := range cases {
		got, ok := ParseInterval(c.in)
		require.True(t, ok, c.in)
		require.Equal(t, c.want, got, c.in)
	}
}

func TestParseIntervalInvalid(t *testing.T) {
	_, ok := ParseInterval("nonsense")
	require.False(t, ok)
}

func TestPGMicrosToUnix(t *testing.T) {
	// 0 microseconds since PG epoch == 2000-01-01 UTC == 946684800 unix.
	require.Equal(t, int64(946684800), PGMicrosToUnix(0))
}
