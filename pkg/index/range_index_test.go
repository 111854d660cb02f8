package index

import (
	"testing"

	"github.com/Thejuampi/memris-sub005/pkg/rowid"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

func seedPrices(r *RangeIndex) map[int64]rowid.RowID {
	prices := []int64{1000, 2999, 14999, 49999, 7999}
	ids := make(map[int64]rowid.RowID, len(prices))
	for i, p := range prices {
		id := rowid.New(0, uint32(i))
		ids[p] = id
		r.Add(p, id)
	}
	return ids
}

func TestRangeIndex_Between(t *testing.T) {
	r := NewRangeIndex(typeset.Int64)
	ids := seedPrices(r)

	got := r.Between(int64(5000), int64(20000))
	want := []rowid.RowID{ids[7999], ids[14999]}
	if len(got) != len(want) {
		t.Fatalf("between = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("between[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRangeIndex_GreaterThanOrEqual(t *testing.T) {
	r := NewRangeIndex(typeset.Int64)
	seedPrices(r)
	got := r.GreaterThanOrEqual(int64(14999))
	if len(got) != 2 {
		t.Fatalf("expected 2 matches >= 14999, got %d", len(got))
	}
}

func TestRangeIndex_LessThan(t *testing.T) {
	r := NewRangeIndex(typeset.Int64)
	seedPrices(r)
	got := r.LessThan(int64(2999))
	if len(got) != 1 {
		t.Fatalf("expected 1 match < 2999, got %d", len(got))
	}
}

func TestRangeIndex_ExactLookupAndRemove(t *testing.T) {
	r := NewRangeIndex(typeset.Int64)
	ids := seedPrices(r)

	got := r.Lookup(int64(2999))
	if len(got) != 1 || got[0] != ids[2999] {
		t.Fatalf("lookup(2999) = %v", got)
	}

	r.Remove(int64(2999), ids[2999])
	if got := r.Lookup(int64(2999)); got != nil {
		t.Fatalf("expected no postings after remove, got %v", got)
	}
	if r.Size() != 4 {
		t.Fatalf("expected 4 distinct keys after removing the last posting of one, got %d", r.Size())
	}
}

func TestRangeIndex_MultiplePostingsSameKeyInsertionOrder(t *testing.T) {
	r := NewRangeIndex(typeset.String)
	a, b, c := rowid.New(0, 1), rowid.New(0, 2), rowid.New(0, 3)
	r.Add("sku", a)
	r.Add("sku", b)
	r.Add("sku", c)

	got := r.Lookup("sku")
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("lookup order = %v", got)
	}
}

func TestRangeIndex_ClearEmpties(t *testing.T) {
	r := NewRangeIndex(typeset.Int64)
	seedPrices(r)
	r.Clear()
	if r.Size() != 0 {
		t.Fatalf("expected size 0 after Clear, got %d", r.Size())
	}
}
