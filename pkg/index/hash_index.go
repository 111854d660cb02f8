// Package index implements HashIndex, an equality-lookup accelerator,
// and RangeIndex, an ordered range-lookup accelerator, for one column
// each.
package index

import (
	"sync"

	"github.com/Thejuampi/memris-sub005/pkg/rowid"
)

// HashIndex accelerates equality lookups: key -> ordered multiset of
// RowID, in insertion order. Equality lookups with multiple matches
// return rows in the order they were added.
type HashIndex struct {
	mu       sync.RWMutex
	postings map[any][]rowid.RowID
}

// NewHashIndex creates an empty HashIndex.
func NewHashIndex() *HashIndex {
	return &HashIndex{postings: make(map[any][]rowid.RowID)}
}

// Add registers one (key, id) posting.
func (h *HashIndex) Add(key any, id rowid.RowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.postings[key] = append(h.postings[key], id)
}

// Remove drops a single (key, id) posting, used by update/delete to
// retract exactly the row being changed without disturbing other rows
// that share the same key.
func (h *HashIndex) Remove(key any, id rowid.RowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids, ok := h.postings[key]
	if !ok {
		return
	}
	for i, existing := range ids {
		if existing == id {
			h.postings[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(h.postings[key]) == 0 {
		delete(h.postings, key)
	}
}

// RemoveAll drops every posting for key.
func (h *HashIndex) RemoveAll(key any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.postings, key)
}

// Clear empties the index.
func (h *HashIndex) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.postings = make(map[any][]rowid.RowID)
}

// Lookup returns the ids registered for key, in insertion order.
func (h *HashIndex) Lookup(key any) []rowid.RowID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := h.postings[key]
	if len(ids) == 0 {
		return nil
	}
	out := make([]rowid.RowID, len(ids))
	copy(out, ids)
	return out
}

// Size returns the number of distinct keys registered.
func (h *HashIndex) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.postings)
}
