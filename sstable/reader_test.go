package sstable_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"lsmview/sstable"
)

// encodeSnappyLiteral produces a raw Snappy block that decodes back to
// data using only short-form literal tags (chunks of at most 60 bytes).
func encodeSnappyLiteral(data []byte) []byte {
	pre := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(pre, uint64(len(data)))
	out := append([]byte(nil), pre[:n]...)
	for len(data) > 0 {
		chunk := data
		if len(chunk) > 60 {
			chunk = chunk[:60]
		}
		out = append(out, byte((len(chunk)-1)<<2))
		out = append(out, chunk...)
		data = data[len(chunk):]
	}
	return out
}

func putUvarint(dst []byte, v uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, v)
	return append(dst, buf[:n]...)
}

func encodeBlockHandle(offset, size uint64) []byte {
	var b []byte
	b = putUvarint(b, offset)
	b = putUvarint(b, size)
	return b
}

// buildDataBlockPayload serializes a single-entry data block: shared=0 prefix,
// internal key with an 8-byte little-endian tag, and a trailing restart
// array of length 1.
func buildDataBlockPayload(userKey []byte, valueType byte, value []byte) []byte {
	tag := make([]byte, 8)
	binary.LittleEndian.PutUint64(tag, uint64(valueType)|(1<<8))
	internalKey := append(append([]byte(nil), userKey...), tag...)

	var b []byte
	b = putUvarint(b, 0)
	b = putUvarint(b, uint64(len(internalKey)))
	b = putUvarint(b, uint64(len(value)))
	b = append(b, internalKey...)
	b = append(b, value...)

	restart := make([]byte, 8)
	binary.LittleEndian.PutUint32(restart[0:4], 0)
	binary.LittleEndian.PutUint32(restart[4:8], 1)
	return append(b, restart...)
}

func buildIndexBlockPayload(key []byte, handle []byte) []byte {
	var b []byte
	b = putUvarint(b, 0)
	b = putUvarint(b, uint64(len(key)))
	b = putUvarint(b, uint64(len(handle)))
	b = append(b, key...)
	b = append(b, handle...)

	restart := make([]byte, 8)
	binary.LittleEndian.PutUint32(restart[0:4], 0)
	binary.LittleEndian.PutUint32(restart[4:8], 1)
	return append(b, restart...)
}

// buildTable assembles a single-data-block sstable file.
func buildTable(userKey []byte, valueType byte, value []byte, compress bool) []byte {
	rawData := buildDataBlockPayload(userKey, valueType, value)

	var dataPayload []byte
	var dataCompression byte
	if compress {
		dataPayload = encodeSnappyLiteral(rawData)
		dataCompression = 1
	} else {
		dataPayload = rawData
		dataCompression = 0
	}

	dataRegion := append(append([]byte(nil), dataPayload...), dataCompression, 0, 0, 0, 0)

	handle := encodeBlockHandle(0, uint64(len(dataPayload)))
	indexPayload := buildIndexBlockPayload(userKey, handle)
	indexRegion := append(append([]byte(nil), indexPayload...), 0, 0, 0, 0, 0)

	indexOffset := uint64(len(dataRegion))

	footer := make([]byte, 0, 48)
	footer = append(footer, encodeBlockHandle(0, 0)...)                       // metaindex, ignored
	footer = append(footer, encodeBlockHandle(indexOffset, uint64(len(indexPayload)))...)
	for len(footer) < 40 {
		footer = append(footer, 0)
	}
	footer = append(footer, "\x57\xfb\x80\x8b\x24\x75\x47\xdb"...)

	file := append(append([]byte(nil), dataRegion...), indexRegion...)
	file = append(file, footer...)
	return file
}

func TestReadEntriesUncompressedBlock(t *testing.T) {
	userKey := []byte("session")
	file := buildTable(userKey, 1, []byte("value-raw"), false)

	entries, skipped := sstable.ReadEntries(file, nil)
	require.Equal(t, 0, skipped)
	require.Len(t, entries, 1)
	require.Equal(t, userKey, entries[0].UserKey)
	require.Equal(t, []byte("value-raw"), entries[0].Value)
	require.False(t, entries[0].IsDeletion)
}

func TestReadEntriesSnappyBlock(t *testing.T) {
	userKey := []byte("access_token")
	file := buildTable(userKey, 1, []byte("token-123"), true)

	entries, skipped := sstable.ReadEntries(file, nil)
	require.Equal(t, 0, skipped)
	require.Len(t, entries, 1)
	require.Equal(t, userKey, entries[0].UserKey)
	require.Equal(t, []byte("token-123"), entries[0].Value)
}

func TestReadEntriesDeletion(t *testing.T) {
	userKey := []byte("gone")
	file := buildTable(userKey, 0, nil, false)

	entries, skipped := sstable.ReadEntries(file, nil)
	require.Equal(t, 0, skipped)
	require.Len(t, entries, 1)
	require.True(t, entries[0].IsDeletion)
	require.Empty(t, entries[0].Value)
}

func TestReadEntriesShortFileIsEmpty(t *testing.T) {
	entries, skipped := sstable.ReadEntries([]byte("too short"), nil)
	require.Nil(t, entries)
	require.Equal(t, 0, skipped)
}

func TestReadEntriesUnsupportedCompressionSkipsBlock(t *testing.T) {
	userKey := []byte("k")
	file := buildTable(userKey, 1, []byte("v"), false)
	// corrupt the compression-type byte just past the data payload.
	dataLen := len(buildDataBlockPayload(userKey, 1, []byte("v")))
	file[dataLen] = 7

	var messages []string
	entries, skipped := sstable.ReadEntries(file, func(msg string) { messages = append(messages, msg) })
	require.Empty(t, entries)
	require.Equal(t, 1, skipped)
	require.NotEmpty(t, messages)
}
