// Package bytesio provides a bounds-checked cursor over an immutable byte
// slice: fixed-width little-endian reads, base-128 varint reads, and
// length-prefixed slice reads. Every operation reports failure instead of
// panicking or silently truncating, so callers can confine a corrupt input
// to the smallest possible unit of work.
package bytesio

import "encoding/binary"

// Cursor walks a byte slice without ever reading past its end.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor wraps data for sequential reads starting at offset 0.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.data) - c.pos }

// ReadByte consumes and returns the next byte.
func (c *Cursor) ReadByte() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	b := c.data[c.pos]
	c.pos++
	return b, true
}

// PeekByte returns the next byte without consuming it.
func (c *Cursor) PeekByte() (byte, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	return c.data[c.pos], true
}

// ReadN consumes and returns the next n bytes as a sub-slice of the
// original input. The returned slice aliases the cursor's backing array.
func (c *Cursor) ReadN(n int) ([]byte, bool) {
	if n < 0 || n > len(c.data)-c.pos {
		return nil, false
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, true
}

// ReadUint16LE consumes a little-endian uint16.
func (c *Cursor) ReadUint16LE() (uint16, bool) {
	b, ok := c.ReadN(2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

// ReadUint32LE consumes a little-endian uint32.
func (c *Cursor) ReadUint32LE() (uint32, bool) {
	b, ok := c.ReadN(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// ReadUint64LE consumes a little-endian uint64.
func (c *Cursor) ReadUint64LE() (uint64, bool) {
	b, ok := c.ReadN(8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

// ReadUvarint32 consumes a base-128 varint of at most 5 bytes.
func (c *Cursor) ReadUvarint32() (uint32, bool) {
	v, ok := c.readUvarint(5)
	return uint32(v), ok
}

// ReadUvarint64 consumes a base-128 varint of at most 10 bytes.
func (c *Cursor) ReadUvarint64() (uint64, bool) {
	return c.readUvarint(10)
}

// readUvarint decodes up to maxBytes base-128 groups, low 7 bits per byte,
// increasing shift, high bit as the continuation flag. A varint that still
// carries a continuation bit after maxBytes groups exceeds its width bound
// and fails, as does a final group whose bits do not fit in the width
// (32 bits for 5 groups, 64 bits for 10).
func (c *Cursor) readUvarint(maxBytes int) (uint64, bool) {
	width := uint(32)
	if maxBytes > 5 {
		width = 64
	}
	var result uint64
	var shift uint
	for i := 0; i < maxBytes; i++ {
		b, ok := c.ReadByte()
		if !ok {
			return 0, false
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if shift+7 > width && b>>(width-shift) != 0 {
				return 0, false
			}
			return result, true
		}
		shift += 7
	}
	return 0, false
}

// ReadLengthPrefixed reads a uvarint length followed by that many bytes.
func (c *Cursor) ReadLengthPrefixed() ([]byte, bool) {
	n, ok := c.ReadUvarint64()
	if !ok {
		return nil, false
	}
	return c.ReadN(int(n))
}
