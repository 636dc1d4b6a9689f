package frame

import (
	"encoding/binary"
	"math"
)

// Reader reads typed fields from a payload buffer. Unlike the teacher's
// packet.Reader (which returns an error per call), Reader sets a sticky
// Overflow flag on short reads and keeps returning zero values, per
// spec.md §4.1: "a reader that runs past the end yields zero values and
// sets an overflow flag... handlers must check the overflow flag before
// trusting a result".
type Reader struct {
	data     []byte
	pos      int
	overflow bool
}

// NewReader wraps data for sequential typed reads.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Overflow reports whether any read so far ran past the end of the buffer.
func (r *Reader) Overflow() bool { return r.overflow }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) take(n int) []byte {
	if r.pos+n > len(r.data) {
		r.overflow = true
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadBool reads a single 0/1 byte.
func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

// ReadUint16 reads a little-endian u16.
func (r *Reader) ReadUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadUint16BE reads a big-endian u16.
func (r *Reader) ReadUint16BE() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// ReadUint32 reads a little-endian u32.
func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadUint32BE reads a big-endian u32 (used for IPv4 addresses on the wire).
func (r *Reader) ReadUint32BE() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// ReadInt64 reads a little-endian i64.
func (r *Reader) ReadInt64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// ReadDouble reads a little-endian IEEE-754 float64.
func (r *Reader) ReadDouble() float64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// readLength applies the same u16/0xFFFF+u32 rule frame headers use, for
// length-prefixed strings (spec.md §4.1).
func (r *Reader) readLength() int {
	l := r.ReadUint16()
	if l != extendedMarker {
		return int(l)
	}
	return int(r.ReadUint32())
}

// ReadString reads a length-prefixed string. No charset transformation is
// performed at this layer, per spec.md §4.1.
func (r *Reader) ReadString() string {
	n := r.readLength()
	if r.overflow {
		return ""
	}
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// ReadBytes reads n raw bytes (zero-copy subslice of the input).
func (r *Reader) ReadBytes(n int) []byte {
	return r.take(n)
}
