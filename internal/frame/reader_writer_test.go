package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	buf := make([]byte, 256)
	w := NewWriter(buf)
	w.WriteUint8(7)
	w.WriteBool(true)
	w.WriteUint16(0x1234)
	w.WriteUint32(0xCAFEBABE)
	w.WriteUint32BE(0x7F000001) // 127.0.0.1
	w.WriteInt64(-42)
	w.WriteDouble(3.5)
	w.WriteString("Zanera")
	require.False(t, w.Overflow())

	r := NewReader(w.Bytes())
	require.Equal(t, uint8(7), r.ReadUint8())
	require.True(t, r.ReadBool())
	require.Equal(t, uint16(0x1234), r.ReadUint16())
	require.Equal(t, uint32(0xCAFEBABE), r.ReadUint32())
	require.Equal(t, uint32(0x7F000001), r.ReadUint32BE())
	require.Equal(t, int64(-42), r.ReadInt64())
	require.InDelta(t, 3.5, r.ReadDouble(), 0)
	require.Equal(t, "Zanera", r.ReadString())
	require.False(t, r.Overflow())
}

func TestReaderOverflowYieldsZeroValues(t *testing.T) {
	r := NewReader([]byte{0x01})
	require.Equal(t, uint8(1), r.ReadUint8())
	require.False(t, r.Overflow())

	require.Equal(t, uint32(0), r.ReadUint32())
	require.True(t, r.Overflow())

	// Once set, overflow stays set and further reads keep yielding zero.
	require.Equal(t, "", r.ReadString())
	require.True(t, r.Overflow())
}

func TestWriterOverflowDoesNotCorrupt(t *testing.T) {
	buf := make([]byte, 2)
	w := NewWriter(buf)
	w.WriteUint32(123)
	require.True(t, w.Overflow())
	require.Equal(t, 0, w.Len())

	// Buffer itself must remain untouched.
	require.Equal(t, []byte{0, 0}, buf)
}
