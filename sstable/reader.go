// Package sstable parses the LevelDB-compatible sorted-string table format:
// footer, index block, and Snappy- or verbatim-compressed data blocks with
// varint-prefix-compressed entries. It is read-only and best-effort: a
// structural problem is confined to the block or entry where it occurs,
// never to the whole file.
package sstable

import (
	"encoding/binary"
	"errors"
	"fmt"

	"lsmview/bytesio"
	"lsmview/entry"
	"lsmview/snappy"
)

// Sentinel errors for the handful of footer- and block-level failures
// that always mean the same thing, so a diagnostic can name the exact
// cause instead of a generic failure.
var (
	ErrShortFile        = errors.New("sstable: file shorter than footer")
	ErrBadFooter        = errors.New("sstable: cannot decode footer block handles")
	ErrBlockOutOfRange  = errors.New("sstable: block handle out of range")
	ErrUnsupportedBlock = errors.New("sstable: unrecognized compression type")
)

// Diagnostics receives one human-readable, component-tagged message per
// notable event. A nil Diagnostics is treated as a no-op.
type Diagnostics func(string)

func (d Diagnostics) emit(format string, args ...interface{}) {
	if d == nil {
		return
	}
	d(fmt.Sprintf("[sstable] "+format, args...))
}

// blockEntry is a single prefix-decompressed entry from a data or index
// block, before internal-key tag decoding.
type blockEntry struct {
	Key   []byte
	Value []byte
}

// ReadEntries returns every raw entry stored in a sorted table file, in
// file order, plus the number of blocks that were skipped due to
// corruption or unsupported compression.
func ReadEntries(data []byte, diag Diagnostics) ([]entry.Entry, int) {
	if len(data) < footerLength {
		diag.emit("%v: got %d bytes", ErrShortFile, len(data))
		return nil, 0
	}

	footer := data[len(data)-footerLength:]
	c := bytesio.NewCursor(footer[:40])

	if _, ok := readBlockHandle(c); !ok { // metaindex handle, ignored
		diag.emit("%v: metaindex handle", ErrBadFooter)
		return nil, 0
	}
	indexBH, ok := readBlockHandle(c)
	if !ok {
		diag.emit("%v: index handle", ErrBadFooter)
		return nil, 0
	}

	indexEntries, skipped := readBlock(data, indexBH, diag)
	blocksSkipped := skipped

	var out []entry.Entry
	for _, ie := range indexEntries {
		bh, ok := decodeBlockHandle(ie.Value)
		if !ok {
			blocksSkipped++
			continue
		}

		dataEntries, skipped := readBlock(data, bh, diag)
		blocksSkipped += skipped

		for _, de := range dataEntries {
			if len(de.Key) < 8 {
				continue
			}
			tag := binary.LittleEndian.Uint64(de.Key[len(de.Key)-8:])
			isDeletion := byte(tag&0xff) == 0

			userKey := append([]byte(nil), de.Key[:len(de.Key)-8]...)
			var value []byte
			if !isDeletion {
				value = append([]byte(nil), de.Value...)
			}
			out = append(out, entry.Entry{UserKey: userKey, Value: value, IsDeletion: isDeletion})
		}
	}

	return out, blocksSkipped
}

// readBlockHandle reads a (offset, size) pair as two consecutive varints.
func readBlockHandle(c *bytesio.Cursor) (blockHandle, bool) {
	offset, ok := c.ReadUvarint64()
	if !ok {
		return blockHandle{}, false
	}
	size, ok := c.ReadUvarint64()
	if !ok {
		return blockHandle{}, false
	}
	return blockHandle{offset: offset, size: size}, true
}

// decodeBlockHandle parses a standalone block handle out of an index
// entry's value bytes.
func decodeBlockHandle(b []byte) (blockHandle, bool) {
	return readBlockHandle(bytesio.NewCursor(b))
}

// readBlock loads the block at bh, decompresses it if needed, and walks
// its prefix-compressed entries. Any failure confines to this one block.
func readBlock(file []byte, bh blockHandle, diag Diagnostics) ([]blockEntry, int) {
	if bh.offset >= uint64(len(file)) {
		diag.emit("%v: offset %d", ErrBlockOutOfRange, bh.offset)
		return nil, 1
	}
	remaining := uint64(len(file)) - bh.offset
	if remaining < 5 || bh.size > remaining-5 {
		diag.emit("%v: offset %d size %d", ErrBlockOutOfRange, bh.offset, bh.size)
		return nil, 1
	}

	payload := file[bh.offset : bh.offset+bh.size]
	compressionType := file[bh.offset+bh.size]

	var block []byte
	switch compressionType {
	case 0:
		block = payload
	case 1:
		decoded, err := snappy.Decode(payload)
		if err != nil {
			diag.emit("snappy decode failed at offset %d: %v", bh.offset, err)
			return nil, 1
		}
		block = decoded
	default:
		diag.emit("%v: type %d at offset %d", ErrUnsupportedBlock, compressionType, bh.offset)
		return nil, 1
	}

	entries, ok := walkBlock(block)
	if !ok {
		diag.emit("malformed block at offset %d", bh.offset)
		return nil, 1
	}
	return entries, 0
}

// walkBlock decodes the prefix-compressed entry region of a data or index
// block payload, stopping at the first entry that fails to decode and
// returning everything decoded up to that point.
func walkBlock(payload []byte) ([]blockEntry, bool) {
	if len(payload) < 4 {
		return nil, false
	}
	restartCount := int(binary.LittleEndian.Uint32(payload[len(payload)-4:]))
	regionEnd := len(payload) - (restartCount+1)*4
	if regionEnd < 0 || regionEnd > len(payload) {
		return nil, false
	}

	var entries []blockEntry
	var lastKey []byte
	pos := 0
	for pos < regionEnd {
		c := bytesio.NewCursor(payload[pos:regionEnd])
		shared, ok1 := c.ReadUvarint64()
		nonShared, ok2 := c.ReadUvarint64()
		valueLen, ok3 := c.ReadUvarint64()
		if !ok1 || !ok2 || !ok3 {
			break
		}
		if shared > uint64(len(lastKey)) {
			break
		}
		if nonShared > uint64(regionEnd-pos) || valueLen > uint64(regionEnd-pos) {
			break
		}

		hdrLen := c.Pos()
		suffixStart := pos + hdrLen
		suffixEnd := suffixStart + int(nonShared)
		valueEnd := suffixEnd + int(valueLen)
		if valueEnd > regionEnd {
			break
		}

		suffix := payload[suffixStart:suffixEnd]
		value := payload[suffixEnd:valueEnd]

		full := make([]byte, int(shared)+int(nonShared))
		copy(full, lastKey[:shared])
		copy(full[shared:], suffix)

		entries = append(entries, blockEntry{Key: full, Value: value})
		lastKey = full
		pos = valueEnd
	}
	return entries, true
}
