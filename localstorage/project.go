// Package localstorage projects a merged LSM entry stream into the
// Chromium local-storage domain model: origin-scoped key/value records,
// a flattened text view of every entry, and an ASCII token scanner used
// for credential-hunting sweeps.
package localstorage

import (
	"bytes"

	"lsmview/entry"
)

// Record is one decoded local-storage value, scoped to the origin it
// was requested for.
type Record struct {
	Origin         string
	Key            string
	Value          string
	RawValueLength int
}

// TextRecord is one entry's key and value, decoded as text with no
// origin scoping or tombstone handling applied.
type TextRecord struct {
	Key   string
	Value string
}

// ReadEntries projects the merged stream down to the live local-storage
// records for one origin. A deletion always clears any value already
// recorded for its key, even one recorded by an entry that appears
// earlier in the stream, since two entries touching the same key
// inside one write batch preserve their original program order, and a
// delete following a put in the same batch must win.
func ReadEntries(entries []entry.Entry, requestedOrigin string) []Record {
	requestedOrigin = NormalizeRequestedOrigin(requestedOrigin)

	values := map[string]Record{}
	tombstoned := map[string]bool{}
	var order []string

	for _, e := range entries {
		originBytes, keyBytes, ok := splitKey(e.UserKey)
		if !ok {
			continue
		}
		entryOriginText, ok := DecodeText(originBytes)
		if !ok {
			continue
		}
		entryOrigin := normalizeEntryOrigin(entryOriginText)
		if !originsMatch(entryOrigin, requestedOrigin) {
			continue
		}
		entryKey := decodeKeyPayload(keyBytes)

		if e.IsDeletion {
			tombstoned[entryKey] = true
			delete(values, entryKey)
			continue
		}
		if tombstoned[entryKey] {
			continue
		}
		if _, exists := values[entryKey]; exists {
			continue
		}
		value, ok := DecodeText(e.Value)
		if !ok {
			continue
		}
		values[entryKey] = Record{
			Origin:         entryOrigin,
			Key:            entryKey,
			Value:          value,
			RawValueLength: len(e.Value),
		}
		order = append(order, entryKey)
	}

	out := make([]Record, 0, len(order))
	for _, k := range order {
		if rec, ok := values[k]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// ReadTextEntries decodes every merged entry's raw key and value as
// text, with no origin scoping and no tombstone folding.
func ReadTextEntries(entries []entry.Entry) []TextRecord {
	var out []TextRecord
	for _, e := range entries {
		key, ok := DecodeText(e.UserKey)
		if !ok {
			continue
		}
		value, ok := decodeValueLonger(e.Value)
		if !ok {
			continue
		}
		out = append(out, TextRecord{Key: key, Value: value})
	}
	return out
}

const defaultMinimumTokenLength = 60

// ReadTokenCandidates scans every merged entry's raw key and value bytes
// for maximal ASCII runs that look like embedded tokens: long runs, or
// runs shaped like a dot-separated credential with at least three
// segments.
func ReadTokenCandidates(entries []entry.Entry, minimumLength int) map[string]struct{} {
	if minimumLength <= 0 {
		minimumLength = defaultMinimumTokenLength
	}
	out := map[string]struct{}{}
	for _, e := range entries {
		scanTokens(e.UserKey, minimumLength, out)
		scanTokens(e.Value, minimumLength, out)
	}
	return out
}

func isTokenByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '.', '_', '-', '+', '/', '=':
		return true
	}
	return false
}

func scanTokens(b []byte, minimumLength int, out map[string]struct{}) {
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		run := b[start:end]
		if qualifiesAsToken(run, minimumLength) {
			out[string(run)] = struct{}{}
		}
		start = -1
	}
	for i, c := range b {
		if isTokenByte(c) {
			if start < 0 {
				start = i
			}
		} else {
			flush(i)
		}
	}
	flush(len(b))
}

func qualifiesAsToken(run []byte, minimumLength int) bool {
	if len(run) >= minimumLength {
		return true
	}
	segments := bytes.Split(run, []byte{'.'})
	if len(segments) < 3 {
		return false
	}
	for _, seg := range segments {
		if len(seg) == 0 {
			return false
		}
	}
	return true
}
