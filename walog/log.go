// Package walog parses a LevelDB-compatible write-ahead log: 32 KiB block
// framing around 7-byte-header records that fragment write batches, each
// batch a small tagged sequence of put/delete operations. It is read-only
// and best-effort: a truncated tail or a corrupt record is skipped rather
// than aborting the whole file.
package walog

import (
	"encoding/binary"
	"errors"
	"fmt"

	"lsmview/bytesio"
	"lsmview/entry"
)

// ErrTruncatedRecord and ErrOrphanFragment name the two ways a log's
// record framing can go wrong; a diagnostic quotes one of them alongside
// the offending offset.
var (
	ErrTruncatedRecord = errors.New("walog: record overruns its block")
	ErrOrphanFragment  = errors.New("walog: middle/last record with no open fragment")
)

// Diagnostics receives one human-readable, component-tagged message per
// notable event. A nil Diagnostics is treated as a no-op.
type Diagnostics func(string)

func (d Diagnostics) emit(format string, args ...interface{}) {
	if d == nil {
		return
	}
	d(fmt.Sprintf("[walog] "+format, args...))
}

const (
	blockSize  = 32 * 1024
	headerSize = 7

	recordTypeFull   = 1
	recordTypeFirst  = 2
	recordTypeMiddle = 3
	recordTypeLast   = 4
)

/*
log file layout

	+-------------------+-------------------+-----+
	|      block 0       |      block 1      | ... |
	+-------------------+-------------------+-----+

Each block holds zero or more records, followed by zero padding once a
record would not fit:

	+----------+--------+------+---------+
	| checksum | length | type | payload |
	+----------+--------+------+---------+
	  4-byte checksum, 2-byte little-endian length, 1-byte type precede
	  the record's payload bytes. The checksum is present but this reader
	  never verifies it.

A write batch that spans more than one record is split into a first,
zero or more middle, and a last record; a batch that fits in one record
uses a single full record.
*/

// ReadEntries decodes every write batch in a log file and returns the
// entries they produced. Entries from later records take precedence
// during a merge, so records are decoded in file order and then the
// per-record entry groups are emitted in reverse, keeping each batch's
// internal put/delete order intact.
func ReadEntries(data []byte, diag Diagnostics) ([]entry.Entry, int) {
	var groups [][]entry.Entry
	var fragment []byte
	fragmenting := false
	recordsSkipped := 0

	abandonFragment := func() {
		if fragmenting {
			recordsSkipped++
		}
		fragment = nil
		fragmenting = false
	}

	for blockStart := 0; blockStart < len(data); blockStart += blockSize {
		blockEnd := blockStart + blockSize
		if blockEnd > len(data) {
			blockEnd = len(data)
		}
		pos := blockStart

		for pos+headerSize <= blockEnd {
			length := int(binary.LittleEndian.Uint16(data[pos+4 : pos+6]))
			recordType := data[pos+6]
			checksum := binary.LittleEndian.Uint32(data[pos : pos+4])

			if checksum == 0 && length == 0 && recordType == 0 {
				break // zero padding: rest of this block is unused
			}

			payloadStart := pos + headerSize
			payloadEnd := payloadStart + length
			if payloadEnd > blockEnd {
				diag.emit("%v: offset %d", ErrTruncatedRecord, pos)
				abandonFragment()
				break
			}
			payload := data[payloadStart:payloadEnd]

			switch recordType {
			case recordTypeFull:
				abandonFragment()
				if es := decodeWriteBatch(payload); es != nil {
					groups = append(groups, es)
				}
			case recordTypeFirst:
				abandonFragment()
				fragment = append([]byte(nil), payload...)
				fragmenting = true
			case recordTypeMiddle:
				if fragmenting {
					fragment = append(fragment, payload...)
				} else {
					diag.emit("%v: offset %d", ErrOrphanFragment, pos)
					recordsSkipped++
				}
			case recordTypeLast:
				if fragmenting {
					fragment = append(fragment, payload...)
					if es := decodeWriteBatch(fragment); es != nil {
						groups = append(groups, es)
					}
				} else {
					diag.emit("%v: offset %d", ErrOrphanFragment, pos)
					recordsSkipped++
				}
				fragment = nil
				fragmenting = false
			default:
				diag.emit("unrecognized record type %d at offset %d", recordType, pos)
				abandonFragment()
			}

			pos = payloadEnd
		}
	}
	abandonFragment()

	var out []entry.Entry
	for i := len(groups) - 1; i >= 0; i-- {
		out = append(out, groups[i]...)
	}
	return out, recordsSkipped
}

const writeBatchHeaderSize = 12 // 8-byte sequence number + 4-byte entry count

// decodeWriteBatch parses a write-batch payload into its put/delete
// entries, stopping at the first unrecognized tag and returning whatever
// decoded cleanly before it.
func decodeWriteBatch(rec []byte) []entry.Entry {
	if len(rec) < writeBatchHeaderSize {
		return nil
	}
	c := bytesio.NewCursor(rec[writeBatchHeaderSize:])

	var out []entry.Entry
	for {
		tag, ok := c.ReadByte()
		if !ok {
			break
		}
		switch tag {
		case 0: // delete
			key, ok := c.ReadLengthPrefixed()
			if !ok {
				return out
			}
			out = append(out, entry.Entry{UserKey: key, IsDeletion: true})
		case 1: // put
			key, ok := c.ReadLengthPrefixed()
			if !ok {
				return out
			}
			value, ok := c.ReadLengthPrefixed()
			if !ok {
				return out
			}
			out = append(out, entry.Entry{UserKey: key, Value: value})
		default:
			return out
		}
	}
	return out
}
