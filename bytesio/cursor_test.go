package bytesio_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lsmview/bytesio"
)

func TestCursorFixedWidthReads(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	c := bytesio.NewCursor(data)

	u16, ok := c.ReadUint16LE()
	require.True(t, ok)
	require.Equal(t, uint16(0x0201), u16)

	b, ok := c.ReadN(2)
	require.True(t, ok)
	require.Equal(t, []byte{0x03, 0x04}, b)

	u32, ok := c.ReadUint32LE()
	require.True(t, ok)
	require.Equal(t, uint32(0x08070605), u32)

	require.Equal(t, 0, c.Len())
}

func TestCursorFixedWidthReadPastEndFails(t *testing.T) {
	c := bytesio.NewCursor([]byte{0x01, 0x02})
	_, ok := c.ReadUint32LE()
	require.False(t, ok)
}

func TestCursorReadByteAndPeek(t *testing.T) {
	c := bytesio.NewCursor([]byte{0xAB, 0xCD})
	peeked, ok := c.PeekByte()
	require.True(t, ok)
	require.Equal(t, byte(0xAB), peeked)

	b, ok := c.ReadByte()
	require.True(t, ok)
	require.Equal(t, byte(0xAB), b)
	require.Equal(t, 1, c.Pos())
}

func TestCursorUvarint32RoundTrip(t *testing.T) {
	// 300 encoded as a base-128 varint: 0xAC 0x02
	c := bytesio.NewCursor([]byte{0xAC, 0x02})
	v, ok := c.ReadUvarint32()
	require.True(t, ok)
	require.Equal(t, uint32(300), v)
}

func TestCursorUvarintExceedsWidthBoundFails(t *testing.T) {
	// five bytes all with the continuation bit set never terminates
	// within the 32-bit varint's 5-byte budget.
	c := bytesio.NewCursor([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	_, ok := c.ReadUvarint32()
	require.False(t, ok)
}

func TestCursorLengthPrefixedSlice(t *testing.T) {
	c := bytesio.NewCursor([]byte{0x03, 'a', 'b', 'c', 'd'})
	s, ok := c.ReadLengthPrefixed()
	require.True(t, ok)
	require.Equal(t, []byte("abc"), s)
	require.Equal(t, 1, c.Len())
}

func TestCursorLengthPrefixedSliceTruncatedFails(t *testing.T) {
	c := bytesio.NewCursor([]byte{0x05, 'a', 'b'})
	_, ok := c.ReadLengthPrefixed()
	require.False(t, ok)
}
