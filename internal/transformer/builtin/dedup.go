package builtin

import "github.com/zeebo/xxh3"

// SeenTracker records keys already observed within one input file. The
// places loader uses it to count intra-file duplicate cities for the stage
// summary; duplicate rows are still sent to the store, whose upsert keeps
// the first row (the duplicate insert is a no-op there).
//
// Keys are stored as xxh3 hashes rather than the strings themselves, so the
// tracker stays small even for large files. Hash collisions would only skew
// the informational duplicate count, never the stored data.
type SeenTracker struct {
	keys map[uint64]struct{}
	dups int
}

// NewSeenTracker returns an empty tracker.
func NewSeenTracker() *SeenTracker {
	return &SeenTracker{keys: make(map[uint64]struct{})}
}

// Seen records key and reports whether it was already present.
func (t *SeenTracker) Seen(key string) bool {
	h := xxh3.HashString(key)
	if _, ok := t.keys[h]; ok {
		t.dups++
		return true
	}
	t.keys[h] = struct{}{}
	return false
}

// Duplicates returns how many Seen calls hit an already-present key.
func (t *SeenTracker) Duplicates() int { return t.dups }
