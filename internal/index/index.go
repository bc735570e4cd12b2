// Package index holds the in-memory map from a live key to the position of
// its most recent Set record. A position carries exactly what the store
// needs to locate that record again: segment id, byte offset, and byte
// length.
package index

import "sync"

// Position locates one command record: segment_id identifies the segment
// file, offset is the byte position the record begins at, and length is its
// encoded byte length. For any live index entry, reading length bytes at
// offset from segment segment_id must decode into a Set command whose key
// equals the index key.
type Position struct {
	SegmentID uint64
	Offset    int64
	Length    int64
}

// Index is the store's in-memory key → Position map. It is not safe to use
// the engine concurrently regardless of this mutex — the store is
// single-threaded by contract (internal/engine never calls Index methods
// from more than one goroutine) — the mutex exists so the type itself
// doesn't silently assume that discipline.
type Index struct {
	mu      sync.RWMutex
	entries map[string]Position
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[string]Position)}
}

// Get returns the position for key, if key is live.
func (ix *Index) Get(key string) (Position, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	p, ok := ix.entries[key]
	return p, ok
}

// Put inserts or replaces the position for key, returning the previous
// position and whether one existed — callers use the previous entry's
// length to update the engine's uncompacted byte count.
func (ix *Index) Put(key string, pos Position) (previous Position, hadPrevious bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	previous, hadPrevious = ix.entries[key]
	ix.entries[key] = pos
	return previous, hadPrevious
}

// Delete removes key from the index, returning the removed position and
// whether it existed.
func (ix *Index) Delete(key string) (removed Position, existed bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	removed, existed = ix.entries[key]
	if existed {
		delete(ix.entries, key)
	}
	return removed, existed
}

// Len returns the number of live keys.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Range calls visit once for every live entry, in unspecified order. visit
// must not mutate the index; compaction collects keys first and rewrites
// positions through Put afterward.
func (ix *Index) Range(visit func(key string, pos Position)) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for k, p := range ix.entries {
		visit(k, p)
	}
}
