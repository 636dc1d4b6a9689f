package dbops

import (
	"encoding/binary"
	"math"
	"net"
	"strconv"
	"strings"
	"time"
)

// pgEpochDelta is the number of seconds between the Unix epoch and
// PostgreSQL's internal epoch (2000-01-01 00:00:00 UTC), used when a
// caller hands us a raw microseconds-since-PG-epoch integer instead of a
// decoded time.Time (spec.md §4.7). pgx itself already decodes
// TIMESTAMPTZ into time.Time for us, so this only matters when reading a
// raw integer column populated by another tool.
const pgEpochDelta int64 = 946684800

// PGMicrosToUnix converts microseconds-since-PostgreSQL-epoch to seconds
// since the Unix epoch, per spec.md §4.7.
func PGMicrosToUnix(micros int64) int64 {
	return micros/1_000_000 + pgEpochDelta
}

// SaturateInt32 clamps v to the int32 range instead of wrapping, per
// spec.md §4.7's overflow rule.
func SaturateInt32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// IPv4ToUint32 converts a dotted-quad address to its 32-bit host-order
// wire representation (spec.md §4.7/§6).
func IPv4ToUint32(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return binary.BigEndian.Uint32(v4)
}

// Uint32ToIPv4 converts a 32-bit host-order value back to a dotted-quad
// string.
func Uint32ToIPv4(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return net.IP(b[:]).String()
}

var intervalUnits = map[string]int64{
	"second":     1,
	"seconds":    1,
	"minute":     60,
	"minutes":    60,
	"hour":       3600,
	"hours":      3600,
	"day":        86400,
	"days":       86400,
	"week":       604800,
	"weeks":      604800,
	"month":      2629800, // 30.44 days, matches Postgres's average month
	"months":     2629800,
	"year":       31557600, // 365.25 days
	"years":      31557600,
	"decade":     315576000,
	"decades":    315576000,
	"century":    3155760000,
	"centuries":  3155760000,
	"millennium": 31557600000,
	"millennia":  31557600000,
}

// ParseInterval parses the small grammar of backend-native interval
// literals from spec.md §4.7: "N unit [ago]" (seconds/minutes/hours/days/
// weeks/months/years/decades/century/millennium) plus "HH:MM:SS[.ffffff]".
// Out-of-range values saturate to the int32 bound (expressed in seconds).
func ParseInterval(s string) (seconds int64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if n, pok := parseClock(s); pok {
		return n, true
	}

	ago := false
	if strings.HasSuffix(s, " ago") {
		ago = true
		s = strings.TrimSuffix(s, " ago")
	}

	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, false
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	unit, known := intervalUnits[strings.ToLower(fields[1])]
	if !known {
		return 0, false
	}

	total := n * float64(unit)
	if ago {
		total = -total
	}
	total = math.Max(math.MinInt32, math.Min(math.MaxInt32, total))
	return int64(total), true
}

// parseClock handles the "HH:MM:SS[.ffffff]" form.
func parseClock(s string) (int64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	secPart := parts[2]
	var frac float64
	if dot := strings.IndexByte(secPart, '.'); dot >= 0 {
		secPart = secPart[:dot]
	}
	sec, err3 := strconv.Atoi(secPart)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	total := int64(h)*3600 + int64(m)*60 + int64(sec) + int64(frac)
	return total, true
}

// UnixSeconds is a convenience alias documenting that a field is stored
// as seconds since the Unix epoch, per spec.md §4.7.
type UnixSeconds = int64

// Now is the ambient clock used by handlers computing expiry timestamps.
// Exists as a single seam so tests can fix time if ever needed — no
// handler calls time.Now() directly.
var Now = func() time.Time { return time.Now() }
