package frame

import (
	"encoding/binary"
	"math"
)

// Writer writes typed fields into a fixed-size destination buffer (the
// Query's shared response view). A write that would run past the end of
// buf sets a sticky Overflow flag instead of panicking or corrupting
// memory, per spec.md §4.1.
type Writer struct {
	buf      []byte
	pos      int
	overflow bool
}

// NewWriter wraps buf for sequential typed writes starting at offset 0.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Overflow reports whether any write so far ran past the end of buf.
func (w *Writer) Overflow() bool { return w.overflow }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.pos }

// Bytes returns the bytes written so far.
func (w *Writer) Bytes() []byte { return w.buf[:w.pos] }

func (w *Writer) room(n int) []byte {
	if w.pos+n > len(w.buf) {
		w.overflow = true
		return nil
	}
	b := w.buf[w.pos : w.pos+n]
	w.pos += n
	return b
}

// WriteUint8 writes one byte.
func (w *Writer) WriteUint8(v uint8) {
	if b := w.room(1); b != nil {
		b[0] = v
	}
}

// WriteBool writes a single 0/1 byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteUint16 writes a little-endian u16.
func (w *Writer) WriteUint16(v uint16) {
	if b := w.room(2); b != nil {
		binary.LittleEndian.PutUint16(b, v)
	}
}

// WriteUint16BE writes a big-endian u16.
func (w *Writer) WriteUint16BE(v uint16) {
	if b := w.room(2); b != nil {
		binary.BigEndian.PutUint16(b, v)
	}
}

// WriteUint32 writes a little-endian u32.
func (w *Writer) WriteUint32(v uint32) {
	if b := w.room(4); b != nil {
		binary.LittleEndian.PutUint32(b, v)
	}
}

// WriteUint32BE writes a big-endian u32 (IPv4 addresses on the wire).
func (w *Writer) WriteUint32BE(v uint32) {
	if b := w.room(4); b != nil {
		binary.BigEndian.PutUint32(b, v)
	}
}

// WriteInt64 writes a little-endian i64.
func (w *Writer) WriteInt64(v int64) {
	if b := w.room(8); b != nil {
		binary.LittleEndian.PutUint64(b, uint64(v))
	}
}

// WriteDouble writes a little-endian IEEE-754 float64.
func (w *Writer) WriteDouble(v float64) {
	if b := w.room(8); b != nil {
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	}
}

func (w *Writer) writeLength(n int) {
	if n < extendedMarker {
		w.WriteUint16(uint16(n))
		return
	}
	w.WriteUint16(extendedMarker)
	w.WriteUint32(uint32(n))
}

// WriteString writes a length-prefixed string using the same length rule
// as frame headers.
func (w *Writer) WriteString(s string) {
	w.writeLength(len(s))
	if b := w.room(len(s)); b != nil {
		copy(b, s)
	}
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	if b := w.room(len(data)); b != nil {
		copy(b, data)
	}
}
