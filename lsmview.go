// Package lsmview reads Chromium's local-storage LevelDB database
// directly off disk: it merges the sorted tables and write-ahead logs in
// a directory into one entry stream and projects that stream into
// origin-scoped records, a flattened text view, and ASCII token
// candidates. Every entry point is a pure function of the directory's
// current contents; nothing here writes to the store or keeps state
// between calls.
package lsmview

import (
	"lsmview/entry"
	"lsmview/localstorage"
	"lsmview/store"
)

// Entry is one local-storage value recovered for a requested origin.
type Entry struct {
	Origin         string
	Key            string
	Value          string
	RawValueLength int
}

// TextEntry is one merged entry's key and value, decoded as text with
// no origin scoping applied.
type TextEntry struct {
	Key   string
	Value string
}

// Stats accumulates best-effort decode counters across one call, so a
// caller can tell "no matches because the origin is absent" apart from
// "no matches because the store itself didn't parse".
type Stats struct {
	FilesSeen      int
	FilesSkipped   int
	BlocksSkipped  int
	RecordsSkipped int
}

// ReadEntries returns every live local-storage record for origin found
// in the LevelDB directory dir.
func ReadEntries(dir, origin string, opts *Options) ([]Entry, Stats) {
	merged, stats := store.Merge(dir, store.Diagnostics(opts.diagnostics()))
	records := localstorage.ReadEntries(merged, origin)

	out := make([]Entry, len(records))
	for i, r := range records {
		out[i] = Entry{Origin: r.Origin, Key: r.Key, Value: r.Value, RawValueLength: r.RawValueLength}
	}
	return out, toStats(stats)
}

// ReadTextEntries decodes every entry in dir as text, regardless of
// origin or deletion state.
func ReadTextEntries(dir string, opts *Options) ([]TextEntry, Stats) {
	merged, stats := store.Merge(dir, store.Diagnostics(opts.diagnostics()))
	records := localstorage.ReadTextEntries(merged)

	out := make([]TextEntry, len(records))
	for i, r := range records {
		out[i] = TextEntry{Key: r.Key, Value: r.Value}
	}
	return out, toStats(stats)
}

// ReadTokenCandidates scans every entry in dir for ASCII runs shaped
// like an embedded credential or token.
func ReadTokenCandidates(dir string, opts *Options) (map[string]struct{}, Stats) {
	merged, stats := store.Merge(dir, store.Diagnostics(opts.diagnostics()))
	tokens := localstorage.ReadTokenCandidates(merged, opts.minimumTokenLength())
	return tokens, toStats(stats)
}

func toStats(s entry.Stats) Stats {
	return Stats{
		FilesSeen:      s.FilesSeen,
		FilesSkipped:   s.FilesSkipped,
		BlocksSkipped:  s.BlocksSkipped,
		RecordsSkipped: s.RecordsSkipped,
	}
}
