package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Thejuampi/memris-sub005/pkg/config"
	"github.com/Thejuampi/memris-sub005/pkg/index"
	"github.com/Thejuampi/memris-sub005/pkg/query"
	"github.com/Thejuampi/memris-sub005/pkg/rowid"
	"github.com/Thejuampi/memris-sub005/pkg/table"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// sortIDs orders ids per orderBy, in place. cfg.SortAlgorithm picks the
// algorithm explicitly (INSERTION/COMPARISON/PARALLEL); AUTO, the
// default, chooses the way RepositoryCore's contract names: insertion
// sort under 100 elements, a stable comparison sort otherwise, and an
// optional two-way parallel merge past cfg's threshold. All three
// preserve insertion order for rows that compare equal on every key.
func sortIDs(t *table.Table, ids []rowid.RowID, orderBy []query.OrderBy, cfg *config.Config) error {
	if len(orderBy) == 0 || len(ids) < 2 {
		return nil
	}
	var sortErr error
	less := func(a, b rowid.RowID) bool {
		ok, err := lessByOrder(t, a, b, orderBy)
		if err != nil {
			sortErr = err
		}
		return ok
	}

	switch cfg.SortAlgorithm {
	case config.SortInsertion:
		insertionSort(ids, less)
	case config.SortComparison:
		sort.SliceStable(ids, func(i, j int) bool { return less(ids[i], ids[j]) })
	case config.SortParallel:
		parallelSort(ids, less)
	default:
		switch {
		case len(ids) < 100:
			insertionSort(ids, less)
		case cfg.ParallelSortEnabled && len(ids) >= cfg.ParallelSortThreshold:
			parallelSort(ids, less)
		default:
			sort.SliceStable(ids, func(i, j int) bool { return less(ids[i], ids[j]) })
		}
	}
	return sortErr
}

func insertionSort(ids []rowid.RowID, less func(a, b rowid.RowID) bool) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && less(ids[j], ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

// parallelSort splits ids into two halves, sorts each concurrently,
// then merges. Kept to a single helper goroutine rather than a full
// worker pool since the engine has no internal scheduler.
func parallelSort(ids []rowid.RowID, less func(a, b rowid.RowID) bool) {
	mid := len(ids) / 2
	left := append([]rowid.RowID(nil), ids[:mid]...)
	right := append([]rowid.RowID(nil), ids[mid:]...)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sort.SliceStable(left, func(i, j int) bool { return less(left[i], left[j]) })
	}()
	sort.SliceStable(right, func(i, j int) bool { return less(right[i], right[j]) })
	wg.Wait()

	merge(ids, left, right, less)
}

func merge(dst, left, right []rowid.RowID, less func(a, b rowid.RowID) bool) {
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if less(right[j], left[i]) {
			dst[k] = right[j]
			j++
		} else {
			dst[k] = left[i]
			i++
		}
		k++
	}
	for i < len(left) {
		dst[k] = left[i]
		i++
		k++
	}
	for j < len(right) {
		dst[k] = right[j]
		j++
		k++
	}
}

// lessByOrder compares two rows by orderBy, in declared order. Nulls
// sort first on ascending keys, last on descending ones. Each
// OrderBy.PropertyPath is looked up directly as a table column name;
// no property-path-to-column resolution is done, and a key that names
// no column is skipped.
func lessByOrder(t *table.Table, a, b rowid.RowID, orderBy []query.OrderBy) (bool, error) {
	for _, ob := range orderBy {
		rowA, rowB := a.RowIndex(t.PageSize()), b.RowIndex(t.PageSize())
		col := t.Column(ob.PropertyPath)
		if col == nil {
			continue
		}
		nullA, nullB := col.IsNull(rowA), col.IsNull(rowB)
		if nullA != nullB {
			if ob.Ascending {
				return nullA, nil
			}
			return nullB, nil
		}
		if nullA && nullB {
			continue
		}
		va, err := columnValue(t, ob.PropertyPath, col.TypeCode(), rowA)
		if err != nil {
			return false, err
		}
		vb, err := columnValue(t, ob.PropertyPath, col.TypeCode(), rowB)
		if err != nil {
			return false, err
		}
		cmp, err := index.Less(col.TypeCode(), va, vb)
		if err != nil {
			return false, err
		}
		if cmp == 0 {
			continue
		}
		if ob.Ascending {
			return cmp < 0, nil
		}
		return cmp > 0, nil
	}
	return false, nil
}

// columnValue reads the cell at (colName, row) boxed as any, dispatching
// on code the same way index.Less expects its operands typed.
func columnValue(t *table.Table, colName string, code typeset.Code, row int) (any, error) {
	switch code {
	case typeset.Int8:
		return t.GetInt8(colName, row)
	case typeset.Int16:
		return t.GetInt16(colName, row)
	case typeset.Int32:
		return t.GetInt32(colName, row)
	case typeset.Int64:
		return t.GetInt64(colName, row)
	case typeset.Char:
		return t.GetChar(colName, row)
	case typeset.Float32:
		return t.GetFloat32(colName, row)
	case typeset.Float64:
		return t.GetFloat64(colName, row)
	case typeset.String:
		return t.GetString(colName, row)
	case typeset.Bool:
		return t.GetBool(colName, row)
	default:
		return nil, fmt.Errorf("repository: no column reader for type code %s", code)
	}
}
