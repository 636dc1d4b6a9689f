package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderSize(t *testing.T) {
	require.Equal(t, 2, HeaderSize(1))
	require.Equal(t, 2, HeaderSize(0xFFFE))
	require.Equal(t, 6, HeaderSize(0xFFFF))
	require.Equal(t, 6, HeaderSize(0x10000))
}

func TestFrameRoundTrip(t *testing.T) {
	for _, n := range []int{1, 10, 0xFFFE, 0xFFFF, 0x10001} {
		payload := bytes.Repeat([]byte{0xAB}, n)
		encoded := EncodeFrame(payload)
		encoded = append(encoded, payload...)

		require.Equal(t, HeaderSize(n)+n, len(encoded))

		r := bytes.NewReader(encoded)
		buf := make([]byte, n)
		got, err := ReadFrame(r, buf)
		require.NoError(t, err)
		require.Equal(t, payload, got)
	}
}

func TestReadFrameZeroLengthIllegal(t *testing.T) {
	r := bytes.NewReader([]byte{0x00, 0x00})
	_, err := ReadFrame(r, make([]byte, 16))
	require.ErrorIs(t, err, ErrZeroLength)
}

func TestReadFrameTooLarge(t *testing.T) {
	encoded := AppendHeader(nil, 100)
	r := bytes.NewReader(append(encoded, bytes.Repeat([]byte{1}, 100)...))
	_, err := ReadFrame(r, make([]byte, 10))
	require.ErrorIs(t, err, ErrTooLarge)
}
