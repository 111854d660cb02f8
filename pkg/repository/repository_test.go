package repository

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Thejuampi/memris-sub005/pkg/arena"
	"github.com/Thejuampi/memris-sub005/pkg/descriptor"
	"github.com/Thejuampi/memris-sub005/pkg/materialize"
	"github.com/Thejuampi/memris-sub005/pkg/query"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

type product struct {
	ID          int64   `memris:"column=id,id"`
	SKU         string  `memris:"column=sku,index=hash"`
	Price       float64 `memris:"column=price,index=range"`
	Description string  `memris:"column=description,index=text"`
}

func newProductCore(t *testing.T) (*arena.Arena, *descriptor.RecordDescriptor, *Core) {
	a := arena.New("a1", nil, nil)
	d, err := descriptor.Build(product{}, typeset.DefaultRegistry(), nil)
	require.NoError(t, err)
	_, err = a.GetOrCreateTable(d)
	require.NoError(t, err)
	repo := New(a, d, materialize.New(a), nil, nil)
	return a, d, repo
}

func TestSave_InsertsAndAssignsIdentityId(t *testing.T) {
	_, _, repo := newProductCore(t)

	id, err := repo.Save(&product{SKU: "SKU-1", Price: 9.99})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	rec, ok, err := repo.FindById(int64(1))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "SKU-1", rec.(*product).SKU)
}

func TestSave_UpdatePreservesId(t *testing.T) {
	_, _, repo := newProductCore(t)

	id, err := repo.Save(&product{SKU: "SKU-1", Price: 9.99})
	require.NoError(t, err)

	updated := &product{ID: id.(int64), SKU: "SKU-1", Price: 12.50}
	updatedID, err := repo.Save(updated)
	require.NoError(t, err)
	require.Equal(t, id, updatedID)

	rec, ok, err := repo.FindById(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 12.50, rec.(*product).Price)
	require.Equal(t, 1, repo.Count())
}

func TestFindBy_EqualityOnIndexedStringColumn(t *testing.T) {
	_, _, repo := newProductCore(t)
	_, err := repo.Save(&product{SKU: "SKU-1", Price: 1})
	require.NoError(t, err)
	_, err = repo.Save(&product{SKU: "SKU-2", Price: 2})
	require.NoError(t, err)

	q := &query.CompiledQuery{
		Kind:       query.Find,
		Conditions: []query.Condition{{ColumnName: "sku", Operator: query.EQ, ParameterIndexes: []int{0}}},
	}
	out, err := repo.FindBy(q, []any{"SKU-2"})
	require.NoError(t, err)

	recs := out.([]any)
	require.Len(t, recs, 1)
	require.Equal(t, "SKU-2", recs[0].(*product).SKU)
}

func TestFindBy_BetweenOnOrderedNumericColumn(t *testing.T) {
	_, _, repo := newProductCore(t)
	for i, price := range []float64{5, 15, 25, 35} {
		_, err := repo.Save(&product{SKU: "SKU", Price: price})
		require.NoError(t, err, "row %d", i)
	}

	q := &query.CompiledQuery{
		Kind: query.Find,
		Conditions: []query.Condition{
			{ColumnName: "price", Operator: query.BetweenOp, ParameterIndexes: []int{0, 1}},
		},
	}
	out, err := repo.FindBy(q, []any{10.0, 30.0})
	require.NoError(t, err)

	recs := out.([]any)
	require.Len(t, recs, 2)
}

func TestFindBy_TopKOrderedDescending(t *testing.T) {
	_, _, repo := newProductCore(t)
	for _, price := range []float64{5, 15, 25, 35} {
		_, err := repo.Save(&product{SKU: "SKU", Price: price})
		require.NoError(t, err)
	}

	q := &query.CompiledQuery{
		Kind:    query.Find,
		OrderBy: []query.OrderBy{{PropertyPath: "price", Ascending: false}},
		Limit:   2,
	}
	out, err := repo.FindBy(q, nil)
	require.NoError(t, err)

	recs := out.([]any)
	require.Len(t, recs, 2)
	require.Equal(t, 35.0, recs[0].(*product).Price)
	require.Equal(t, 25.0, recs[1].(*product).Price)
}

func TestFindBy_ContainingUsesTextIndexAndVerifiesCandidates(t *testing.T) {
	_, _, repo := newProductCore(t)
	_, err := repo.Save(&product{SKU: "SKU-1", Description: "a red widget"})
	require.NoError(t, err)
	_, err = repo.Save(&product{SKU: "SKU-2", Description: "a blue gadget"})
	require.NoError(t, err)

	q := &query.CompiledQuery{
		Kind:       query.Find,
		Conditions: []query.Condition{{ColumnName: "description", Operator: query.Containing, ParameterIndexes: []int{0}}},
	}
	out, err := repo.FindBy(q, []any{"widget"})
	require.NoError(t, err)

	recs := out.([]any)
	require.Len(t, recs, 1)
	require.Equal(t, "SKU-1", recs[0].(*product).SKU)
}

func TestDeleteById_RemovesRowAndItsPostings(t *testing.T) {
	_, _, repo := newProductCore(t)
	id, err := repo.Save(&product{SKU: "SKU-1", Price: 9.99, Description: "widget"})
	require.NoError(t, err)

	ok, err := repo.DeleteById(id)
	require.NoError(t, err)
	require.True(t, ok)

	_, found, err := repo.FindById(id)
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, 0, repo.Count())

	q := &query.CompiledQuery{
		Kind:       query.Find,
		Conditions: []query.Condition{{ColumnName: "sku", Operator: query.EQ, ParameterIndexes: []int{0}}},
	}
	out, err := repo.FindBy(q, []any{"SKU-1"})
	require.NoError(t, err)
	require.Empty(t, out.([]any))
}

func TestDeleteById_UnknownIdReportsFalse(t *testing.T) {
	_, _, repo := newProductCore(t)
	ok, err := repo.DeleteById(int64(999))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExistsById(t *testing.T) {
	_, _, repo := newProductCore(t)
	id, err := repo.Save(&product{SKU: "SKU-1", Price: 1})
	require.NoError(t, err)

	ok, err := repo.ExistsById(id)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ExistsById(int64(12345))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFindBy_CountAndExistsKinds(t *testing.T) {
	_, _, repo := newProductCore(t)
	_, err := repo.Save(&product{SKU: "SKU-1", Price: 1})
	require.NoError(t, err)
	_, err = repo.Save(&product{SKU: "SKU-2", Price: 2})
	require.NoError(t, err)

	countOut, err := repo.FindBy(&query.CompiledQuery{Kind: query.Count}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), countOut)

	existsOut, err := repo.FindBy(&query.CompiledQuery{
		Kind:       query.Exists,
		Conditions: []query.Condition{{ColumnName: "sku", Operator: query.EQ, ParameterIndexes: []int{0}}},
	}, []any{"SKU-1"})
	require.NoError(t, err)
	require.Equal(t, true, existsOut)
}

func TestFindBy_DeleteKindRemovesMatchingRows(t *testing.T) {
	_, _, repo := newProductCore(t)
	_, err := repo.Save(&product{SKU: "SKU-1", Price: 1})
	require.NoError(t, err)
	_, err = repo.Save(&product{SKU: "SKU-2", Price: 2})
	require.NoError(t, err)

	out, err := repo.FindBy(&query.CompiledQuery{
		Kind:       query.Delete,
		Conditions: []query.Condition{{ColumnName: "sku", Operator: query.EQ, ParameterIndexes: []int{0}}},
	}, []any{"SKU-1"})
	require.NoError(t, err)
	require.Equal(t, int64(1), out)
	require.Equal(t, 1, repo.Count())
}

func TestFindAll_ReturnsEveryLiveRecord(t *testing.T) {
	_, _, repo := newProductCore(t)
	_, err := repo.Save(&product{SKU: "SKU-1", Price: 1})
	require.NoError(t, err)
	_, err = repo.Save(&product{SKU: "SKU-2", Price: 2})
	require.NoError(t, err)

	out, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, out.([]any), 2)
}

func TestFindAllById_PreservesInputOrderAndSkipsMisses(t *testing.T) {
	_, _, repo := newProductCore(t)
	id1, err := repo.Save(&product{SKU: "SKU-1", Price: 1})
	require.NoError(t, err)
	id2, err := repo.Save(&product{SKU: "SKU-2", Price: 2})
	require.NoError(t, err)

	out, err := repo.FindAllById([]any{id2, int64(999), id1})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "SKU-2", out[0].(*product).SKU)
	require.Equal(t, "SKU-1", out[1].(*product).SKU)
}

func TestSaveAll_ReturnsIdsInOrder(t *testing.T) {
	_, _, repo := newProductCore(t)
	ids, err := repo.SaveAll([]any{&product{SKU: "SKU-1", Price: 1}, &product{SKU: "SKU-2", Price: 2}})
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, ids)
	require.Equal(t, 2, repo.Count())
}

func TestDelete_RemovesRecordByItsOwnId(t *testing.T) {
	_, _, repo := newProductCore(t)
	p := &product{SKU: "SKU-1", Price: 1}
	_, err := repo.Save(p)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(p))

	ok, err := repo.ExistsById(p.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteAllById_RemovesEveryListedRow(t *testing.T) {
	_, _, repo := newProductCore(t)
	id1, err := repo.Save(&product{SKU: "SKU-1", Price: 1})
	require.NoError(t, err)
	_, err = repo.Save(&product{SKU: "SKU-2", Price: 2})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAllById([]any{id1, int64(999)}))
	require.Equal(t, 1, repo.Count())
}

func TestDeleteAll_EmptiesTheTable(t *testing.T) {
	_, _, repo := newProductCore(t)
	_, err := repo.Save(&product{SKU: "SKU-1", Price: 1})
	require.NoError(t, err)
	_, err = repo.Save(&product{SKU: "SKU-2", Price: 2})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAll())
	require.Equal(t, 0, repo.Count())
}

func TestArenaIsolation_SeparateArenasDoNotShareRows(t *testing.T) {
	a1 := arena.New("a1", nil, nil)
	a2 := arena.New("a2", nil, nil)
	d, err := descriptor.Build(product{}, typeset.DefaultRegistry(), nil)
	require.NoError(t, err)

	_, err = a1.GetOrCreateTable(d)
	require.NoError(t, err)
	_, err = a2.GetOrCreateTable(d)
	require.NoError(t, err)

	repo1 := New(a1, d, materialize.New(a1), nil, nil)
	repo2 := New(a2, d, materialize.New(a2), nil, nil)

	_, err = repo1.Save(&product{SKU: "SKU-1", Price: 1})
	require.NoError(t, err)

	require.Equal(t, 1, repo1.Count())
	require.Equal(t, 0, repo2.Count())
}

type author struct {
	ID   int64  `memris:"column=id,id"`
	Name string `memris:"column=name"`
}

type book struct {
	ID      int64     `memris:"column=id,id"`
	Title   string    `memris:"column=title"`
	Authors []*author `memris:"relationship=many_to_many,joinTable=books_authors"`
}

func TestSave_ManyToManyPersistsJoinRows(t *testing.T) {
	a := arena.New("a1", nil, nil)
	registry := typeset.DefaultRegistry()

	authorDesc, err := descriptor.Build(author{}, registry, nil)
	require.NoError(t, err)
	targets := map[reflect.Type]*descriptor.RecordDescriptor{reflect.TypeOf(author{}): authorDesc}
	bookDesc, err := descriptor.Build(book{}, registry, targets)
	require.NoError(t, err)

	_, err = a.GetOrCreateTable(authorDesc)
	require.NoError(t, err)
	_, err = a.GetOrCreateTable(bookDesc)
	require.NoError(t, err)

	bookRepo := New(a, bookDesc, materialize.New(a), nil, nil)
	b := &book{Title: "Go in Practice", Authors: []*author{{Name: "Ada"}, {Name: "Grace"}}}
	bookID, err := bookRepo.Save(b)
	require.NoError(t, err)
	require.Equal(t, int64(1), bookID)

	joinTable, err := a.GetOrCreateRawTable("books_authors", nil)
	require.NoError(t, err)
	require.Equal(t, 2, joinTable.RowCount())

	authorRepo := New(a, authorDesc, materialize.New(a), nil, nil)
	require.Equal(t, 2, authorRepo.Count())
}
