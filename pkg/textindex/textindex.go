// Package textindex implements TextIndex: an inverted token index that
// accelerates CONTAINING predicates over one string column (LIKE is
// not probed against it).
// Tokenization uses gojieba so CJK text is segmented by meaning rather
// than by whitespace; ASCII text falls through gojieba's own
// word-splitting. Matching folds case via golang.org/x/text/cases so a
// query token matches regardless of letter case.
//
// TextIndex is advisory: it narrows a lookup to a candidate row set,
// and RepositoryCore re-checks each candidate with a substring match,
// so it returns no false positives. A substring that straddles a token
// boundary can be absent from the postings, so a probe can miss rows
// that a full scan would return.
package textindex

import (
	"strings"
	"sync"

	"github.com/yanyiwu/gojieba"
	"golang.org/x/text/cases"

	"github.com/Thejuampi/memris-sub005/pkg/rowid"
)

// TextIndex maps token -> ordered multiset of RowID, in insertion
// order, the same posting-list shape HashIndex uses.
type TextIndex struct {
	mu       sync.RWMutex
	seg      *gojieba.Jieba
	fold     cases.Caser
	postings map[string][]rowid.RowID
}

// New creates an empty TextIndex backed by gojieba's default
// dictionary.
func New() *TextIndex {
	return &TextIndex{
		seg:      gojieba.NewJieba(),
		fold:     cases.Fold(),
		postings: make(map[string][]rowid.RowID),
	}
}

// Close releases the tokenizer's underlying dictionary resources. A
// closed TextIndex must not be used again.
func (x *TextIndex) Close() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.seg != nil {
		x.seg.Free()
		x.seg = nil
	}
}

// Tokenize splits text into its fold-cased search tokens.
func (x *TextIndex) Tokenize(text string) []string {
	x.mu.RLock()
	seg := x.seg
	x.mu.RUnlock()
	if seg == nil || text == "" {
		return nil
	}
	words := seg.CutForSearch(text, true)
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		out = append(out, x.fold.String(w))
	}
	return out
}

// Add tokenizes text and registers id under every distinct token it
// produces.
func (x *TextIndex) Add(text string, id rowid.RowID) {
	tokens := x.Tokenize(text)
	if len(tokens) == 0 {
		return
	}
	seen := make(map[string]bool, len(tokens))
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		x.postings[t] = append(x.postings[t], id)
	}
}

// Remove retracts id from every token text produces, used before an
// update overwrites the indexed column or a delete removes the row.
func (x *TextIndex) Remove(text string, id rowid.RowID) {
	tokens := x.Tokenize(text)
	if len(tokens) == 0 {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, t := range tokens {
		ids := x.postings[t]
		for i, existing := range ids {
			if existing == id {
				x.postings[t] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(x.postings[t]) == 0 {
			delete(x.postings, t)
		}
	}
}

// Probe tokenizes query and returns the union of postings for every
// token it produces, deduplicated but not ordered — callers must
// re-sort and re-verify candidates against the original predicate.
func (x *TextIndex) Probe(query string) []rowid.RowID {
	tokens := x.Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	seen := make(map[rowid.RowID]bool)
	var out []rowid.RowID
	for _, t := range tokens {
		for _, id := range x.postings[t] {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Clear empties the index without releasing the tokenizer.
func (x *TextIndex) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.postings = make(map[string][]rowid.RowID)
}

// Size returns the number of distinct tokens registered.
func (x *TextIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.postings)
}
