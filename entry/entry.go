// Package entry holds the raw (user_key, value, is_deletion) tuple shared
// between the table reader, the log reader, and the store merger. It is
// deliberately dependency-free so sstable, walog, and store can all import
// it without forming a cycle.
package entry

// Entry is a single decoded record, before any merge or projection logic
// has been applied.
type Entry struct {
	UserKey    []byte
	Value      []byte
	IsDeletion bool
}

// Stats accumulates best-effort decode counters across one top-level call.
// Nothing in this struct is fatal; it exists so a caller can tell "no
// matches because the origin is absent" apart from "no matches because
// nothing in the store parsed".
type Stats struct {
	FilesSeen      int
	FilesSkipped   int
	BlocksSkipped  int
	RecordsSkipped int
}
