package index

import (
	"testing"

	"github.com/Thejuampi/memris-sub005/pkg/rowid"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

func TestManager_CreateAndLookup(t *testing.T) {
	m := NewManager()
	h, err := m.CreateHash("products", "sku")
	if err != nil {
		t.Fatalf("CreateHash: %v", err)
	}
	h.Add("SKU-1", rowid.New(0, 0))

	if got := m.Hash("products", "sku"); got != h {
		t.Fatalf("Hash lookup returned a different instance")
	}
	if got := m.Range("products", "sku"); got != nil {
		t.Fatalf("expected no range index registered, got %v", got)
	}
}

func TestManager_ConflictingKindRejected(t *testing.T) {
	m := NewManager()
	if _, err := m.CreateHash("products", "price"); err != nil {
		t.Fatalf("CreateHash: %v", err)
	}
	if _, err := m.CreateRange("products", "price", typeset.Int64); err == nil {
		t.Fatal("expected an error creating a conflicting index kind on the same column")
	}
}

func TestManager_DropTableRemovesAllItsIndexes(t *testing.T) {
	m := NewManager()
	if _, err := m.CreateHash("products", "sku"); err != nil {
		t.Fatalf("CreateHash: %v", err)
	}
	if _, err := m.CreateRange("products", "price", typeset.Int64); err != nil {
		t.Fatalf("CreateRange: %v", err)
	}
	if _, err := m.CreateHash("orders", "customerId"); err != nil {
		t.Fatalf("CreateHash: %v", err)
	}

	m.DropTable("products")

	if names := m.ColumnNames("products"); len(names) != 0 {
		t.Fatalf("expected no indexes left on products, got %v", names)
	}
	if names := m.ColumnNames("orders"); len(names) != 1 {
		t.Fatalf("expected orders indexes untouched, got %v", names)
	}
}

func TestManager_KindOf(t *testing.T) {
	m := NewManager()
	if _, err := m.CreateRange("products", "price", typeset.Int64); err != nil {
		t.Fatalf("CreateRange: %v", err)
	}
	kind, ok := m.KindOf("products", "price")
	if !ok || kind != KindRange {
		t.Fatalf("KindOf = %v, %v; want RANGE, true", kind, ok)
	}
	if _, ok := m.KindOf("products", "nonexistent"); ok {
		t.Fatal("expected KindOf to report false for an unindexed column")
	}
}

func TestManager_CreateTextAndLookup(t *testing.T) {
	m := NewManager()
	x, err := m.CreateText("products", "description")
	if err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	x.Add("a red widget", rowid.New(0, 0))

	if got := m.Text("products", "description"); got != x {
		t.Fatalf("Text lookup returned a different instance")
	}
	kind, ok := m.KindOf("products", "description")
	if !ok || kind != KindText {
		t.Fatalf("KindOf = %v, %v; want TEXT, true", kind, ok)
	}
}

func TestManager_CreateTextConflictsWithHash(t *testing.T) {
	m := NewManager()
	if _, err := m.CreateHash("products", "sku"); err != nil {
		t.Fatalf("CreateHash: %v", err)
	}
	if _, err := m.CreateText("products", "sku"); err == nil {
		t.Fatal("expected an error creating a text index on a column that already has a hash index")
	}
}

func TestManager_DropClosesTextIndex(t *testing.T) {
	m := NewManager()
	if _, err := m.CreateText("products", "description"); err != nil {
		t.Fatalf("CreateText: %v", err)
	}

	m.Drop("products", "description")

	if got := m.Text("products", "description"); got != nil {
		t.Fatalf("expected no text index after drop, got %v", got)
	}
	if _, ok := m.KindOf("products", "description"); ok {
		t.Fatal("expected KindOf to report false after drop")
	}
}

func TestManager_DropTableClosesTextIndexes(t *testing.T) {
	m := NewManager()
	if _, err := m.CreateText("products", "description"); err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	if _, err := m.CreateText("orders", "notes"); err != nil {
		t.Fatalf("CreateText: %v", err)
	}

	m.DropTable("products")

	if names := m.ColumnNames("products"); len(names) != 0 {
		t.Fatalf("expected no indexes left on products, got %v", names)
	}
	if got := m.Text("orders", "notes"); got == nil {
		t.Fatal("expected orders text index untouched")
	}
}
