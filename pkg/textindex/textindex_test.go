package textindex

import (
	"testing"

	"github.com/Thejuampi/memris-sub005/pkg/rowid"
)

func TestTokenize_FoldsCase(t *testing.T) {
	x := New()
	defer x.Close()

	tokens := x.Tokenize("Hello World")
	if len(tokens) == 0 {
		t.Fatal("expected at least one token")
	}
	for _, tok := range tokens {
		for _, r := range tok {
			if r >= 'A' && r <= 'Z' {
				t.Fatalf("token %q is not fold-cased", tok)
			}
		}
	}
}

func TestTokenize_EmptyStringYieldsNoTokens(t *testing.T) {
	x := New()
	defer x.Close()

	if tokens := x.Tokenize(""); tokens != nil {
		t.Fatalf("expected nil, got %v", tokens)
	}
}

func TestAddProbe_FindsRowByToken(t *testing.T) {
	x := New()
	defer x.Close()

	id := rowid.New(0, 1)
	x.Add("Hello World", id)

	got := x.Probe("hello")
	if len(got) != 1 || got[0] != id {
		t.Fatalf("expected [%v], got %v", id, got)
	}
}

func TestAddProbe_UnrelatedQueryFindsNothing(t *testing.T) {
	x := New()
	defer x.Close()

	x.Add("Hello World", rowid.New(0, 1))

	if got := x.Probe("goodbye"); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestAddProbe_DedupesAcrossSharedTokens(t *testing.T) {
	x := New()
	defer x.Close()

	id := rowid.New(0, 1)
	x.Add("hello hello world", id)

	got := x.Probe("hello world")
	if len(got) != 1 {
		t.Fatalf("expected a single deduped id, got %v", got)
	}
}

func TestRemove_RetractsId(t *testing.T) {
	x := New()
	defer x.Close()

	id := rowid.New(0, 1)
	x.Add("Hello World", id)
	x.Remove("Hello World", id)

	if got := x.Probe("hello"); len(got) != 0 {
		t.Fatalf("expected no matches after remove, got %v", got)
	}
	if x.Size() != 0 {
		t.Fatalf("expected empty posting map after removing last occupant, got size %d", x.Size())
	}
}

func TestRemove_LeavesOtherRowsUntouched(t *testing.T) {
	x := New()
	defer x.Close()

	a, b := rowid.New(0, 1), rowid.New(0, 2)
	x.Add("hello", a)
	x.Add("hello", b)
	x.Remove("hello", a)

	got := x.Probe("hello")
	if len(got) != 1 || got[0] != b {
		t.Fatalf("expected only %v to remain, got %v", b, got)
	}
}

func TestClear_RemovesAllPostingsButKeepsIndexUsable(t *testing.T) {
	x := New()
	defer x.Close()

	x.Add("hello world", rowid.New(0, 1))
	x.Clear()

	if x.Size() != 0 {
		t.Fatalf("expected size 0 after clear, got %d", x.Size())
	}
	x.Add("hello again", rowid.New(0, 2))
	if x.Size() == 0 {
		t.Fatal("expected index usable after clear")
	}
}

func TestSize_CountsDistinctTokens(t *testing.T) {
	x := New()
	defer x.Close()

	x.Add("alpha beta", rowid.New(0, 1))
	x.Add("beta gamma", rowid.New(0, 2))

	if got := x.Size(); got != 3 {
		t.Fatalf("expected 3 distinct tokens, got %d", got)
	}
}

func TestClose_MakesTokenizeReturnNil(t *testing.T) {
	x := New()
	x.Close()

	if tokens := x.Tokenize("hello"); tokens != nil {
		t.Fatalf("expected nil after close, got %v", tokens)
	}
}
