package index

import (
	"sort"
	"sync"

	"github.com/Thejuampi/memris-sub005/pkg/rowid"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// RangeIndex accelerates ordered range lookups (GT, GTE, LT, LTE,
// BETWEEN) over one column; it has no prefix lookup. Keys are kept in a single sorted
// slice of (key, postings) entries; postings within an entry preserve
// insertion order, matching HashIndex's EQ tie-break rule. A plain
// sorted array with binary search is correct and simple for the
// access pattern a single-process, in-memory engine needs — no tree
// rebalancing to get right.
type RangeIndex struct {
	mu      sync.RWMutex
	code    typeset.Code
	entries []rangeEntry
}

type rangeEntry struct {
	key any
	ids []rowid.RowID
}

// NewRangeIndex creates an empty RangeIndex over columns of the given
// type code.
func NewRangeIndex(code typeset.Code) *RangeIndex {
	return &RangeIndex{code: code}
}

func (r *RangeIndex) cmp(a, b any) int {
	c, err := less(r.code, a, b)
	if err != nil {
		panic(err)
	}
	return c
}

// search returns the position of key in r.entries and whether it was
// found; when not found, the position is where it should be inserted
// to keep entries sorted.
func (r *RangeIndex) search(key any) (int, bool) {
	pos := sort.Search(len(r.entries), func(i int) bool {
		return r.cmp(r.entries[i].key, key) >= 0
	})
	if pos < len(r.entries) && r.cmp(r.entries[pos].key, key) == 0 {
		return pos, true
	}
	return pos, false
}

// Add registers one (key, id) posting.
func (r *RangeIndex) Add(key any, id rowid.RowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, found := r.search(key)
	if found {
		r.entries[pos].ids = append(r.entries[pos].ids, id)
		return
	}
	r.entries = append(r.entries, rangeEntry{})
	copy(r.entries[pos+1:], r.entries[pos:])
	r.entries[pos] = rangeEntry{key: key, ids: []rowid.RowID{id}}
}

// Remove drops a single (key, id) posting.
func (r *RangeIndex) Remove(key any, id rowid.RowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, found := r.search(key)
	if !found {
		return
	}
	ids := r.entries[pos].ids
	for i, existing := range ids {
		if existing == id {
			r.entries[pos].ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(r.entries[pos].ids) == 0 {
		r.entries = append(r.entries[:pos], r.entries[pos+1:]...)
	}
}

// RemoveAll drops every posting for key.
func (r *RangeIndex) RemoveAll(key any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, found := r.search(key)
	if !found {
		return
	}
	r.entries = append(r.entries[:pos], r.entries[pos+1:]...)
}

// Clear empties the index.
func (r *RangeIndex) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Lookup returns the ids registered for an exact key, in insertion
// order.
func (r *RangeIndex) Lookup(key any) []rowid.RowID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pos, found := r.search(key)
	if !found {
		return nil
	}
	out := make([]rowid.RowID, len(r.entries[pos].ids))
	copy(out, r.entries[pos].ids)
	return out
}

// Size returns the number of distinct keys registered.
func (r *RangeIndex) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// GreaterThan returns ids for every key strictly greater than key, in
// ascending key order.
func (r *RangeIndex) GreaterThan(key any) []rowid.RowID {
	return r.collect(func(k any) bool { return r.cmp(k, key) > 0 })
}

// GreaterThanOrEqual returns ids for every key >= key, ascending.
func (r *RangeIndex) GreaterThanOrEqual(key any) []rowid.RowID {
	return r.collect(func(k any) bool { return r.cmp(k, key) >= 0 })
}

// LessThan returns ids for every key strictly less than key, ascending.
func (r *RangeIndex) LessThan(key any) []rowid.RowID {
	return r.collect(func(k any) bool { return r.cmp(k, key) < 0 })
}

// LessThanOrEqual returns ids for every key <= key, ascending.
func (r *RangeIndex) LessThanOrEqual(key any) []rowid.RowID {
	return r.collect(func(k any) bool { return r.cmp(k, key) <= 0 })
}

// Between returns ids for every key in [lower, upper], ascending.
func (r *RangeIndex) Between(lower, upper any) []rowid.RowID {
	return r.collect(func(k any) bool { return r.cmp(k, lower) >= 0 && r.cmp(k, upper) <= 0 })
}

func (r *RangeIndex) collect(match func(key any) bool) []rowid.RowID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []rowid.RowID
	for _, e := range r.entries {
		if match(e.key) {
			out = append(out, e.ids...)
		}
	}
	return out
}
