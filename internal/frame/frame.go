// Package frame implements the length-prefixed binary wire format from
// spec.md §4.1/§6: a u16 length, or 0xFFFF followed by a u32 length for
// large payloads, wrapping a payload of typed fields.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// extendedMarker is the u16 sentinel indicating a 4-byte length follows.
const extendedMarker = 0xFFFF

// ErrZeroLength is returned when a frame declares a zero-length payload,
// which is illegal per spec.md §4.1.
var ErrZeroLength = errors.New("frame: zero-length payload")

// ErrTooLarge is returned when a payload exceeds the configured buffer size.
var ErrTooLarge = errors.New("frame: payload exceeds buffer size")

// ReadHeader reads the length header from r and returns the payload size.
func ReadHeader(r io.Reader) (int, error) {
	var short [2]byte
	if _, err := io.ReadFull(r, short[:]); err != nil {
		return 0, fmt.Errorf("reading frame length: %w", err)
	}
	l := binary.LittleEndian.Uint16(short[:])
	if l != extendedMarker {
		if l == 0 {
			return 0, ErrZeroLength
		}
		return int(l), nil
	}

	var ext [4]byte
	if _, err := io.ReadFull(r, ext[:]); err != nil {
		return 0, fmt.Errorf("reading extended frame length: %w", err)
	}
	l32 := binary.LittleEndian.Uint32(ext[:])
	if l32 == 0 {
		return 0, ErrZeroLength
	}
	return int(l32), nil
}

// ReadPayload reads exactly n bytes of payload into buf[:n], failing if n
// exceeds len(buf) (the connection's configured QueryBufferSize).
func ReadPayload(r io.Reader, buf []byte, n int) ([]byte, error) {
	if n > len(buf) {
		return nil, ErrTooLarge
	}
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return buf[:n], nil
}

// ReadFrame reads one full frame (header + payload) from r into buf.
func ReadFrame(r io.Reader, buf []byte) ([]byte, error) {
	n, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	return ReadPayload(r, buf, n)
}

// AppendHeader prepends the length header for a payload of length n to dst
// and returns the extended slice. Symmetric with ReadHeader.
func AppendHeader(dst []byte, n int) []byte {
	if n < extendedMarker {
		var short [2]byte
		binary.LittleEndian.PutUint16(short[:], uint16(n))
		return append(dst, short[:]...)
	}
	var hdr [6]byte
	binary.LittleEndian.PutUint16(hdr[:2], extendedMarker)
	binary.LittleEndian.PutUint32(hdr[2:], uint32(n))
	return append(dst, hdr[:]...)
}

// EncodeFrame returns only the length header for payload, in a slice with
// spare capacity for the payload; the payload bytes are not appended.
func EncodeFrame(payload []byte) []byte {
	return AppendHeader(make([]byte, 0, len(payload)+6), len(payload))
}

// HeaderSize returns the number of header bytes a payload of length n uses:
// 2 for n < 0xFFFF, 6 otherwise. Mirrors spec.md §8's round-trip invariant.
func HeaderSize(n int) int {
	if n < extendedMarker {
		return 2
	}
	return 6
}
