// Package table implements Table: named, ordered columns sharing one
// row count.
package table

import (
	"fmt"

	"github.com/kelindar/bitmap"

	"github.com/Thejuampi/memris-sub005/pkg/errs"
	"github.com/Thejuampi/memris-sub005/pkg/rowid"
	"github.com/Thejuampi/memris-sub005/pkg/storage"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// ColumnSpec describes one column to create when a Table is built.
type ColumnSpec struct {
	Name string
	Code typeset.Code
}

// Table binds a name and an ordered list of columns, guaranteeing
// every column's length equals rowCount between top-level calls.
//
// Delete does not shrink columns: it marks a row dead in a liveness
// bitset instead. Index entries pointing at a dead row are removed by
// the caller (RepositoryCore), but the cells stay put — ScanAll and
// Scan both skip dead rows so a deleted row never resurfaces through a
// query even though its storage is never reclaimed.
type Table struct {
	name     string
	order    []string
	columns  map[string]storage.Column
	pageSize int
	rowCount int
	dead     bitmap.Bitmap
}

// New creates a Table with the given columns, in the declared order.
// Column lookup is case-sensitive.
func New(name string, specs []ColumnSpec, pageSize int) *Table {
	t := &Table{
		name:     name,
		order:    make([]string, 0, len(specs)),
		columns:  make(map[string]storage.Column, len(specs)),
		pageSize: pageSize,
	}
	for _, s := range specs {
		t.order = append(t.order, s.Name)
		t.columns[s.Name] = storage.NewColumn(s.Name, s.Code, pageSize)
	}
	return t
}

func (t *Table) Name() string { return t.name }

// RowCount returns the table's current row count.
func (t *Table) RowCount() int { return t.rowCount }

// PageSize returns the page size rows/ids in this table are packed
// with.
func (t *Table) PageSize() int { return t.pageSize }

// ColumnNames returns the declared column order.
func (t *Table) ColumnNames() []string { return t.order }

// Column returns the named column, or nil if it does not exist.
func (t *Table) Column(name string) storage.Column {
	return t.columns[name]
}

// Value is a single column-value pair used to build an insert row in
// column order.
type Value struct {
	IsNull bool
	V      any
}

// Insert appends one row. values must be in the table's declared
// column order and length must equal the column count; conversion
// failures leave the table unchanged (InsertFailure).
func (t *Table) Insert(values []Value) (int, error) {
	if len(values) != len(t.order) {
		return 0, errs.NewInsertFailure(t.name, "value count does not match column count")
	}
	for i, name := range t.order {
		col := t.columns[name]
		if err := typeCheck(col.TypeCode(), values[i]); err != nil {
			return 0, errs.NewInsertFailure(t.name, err.Error())
		}
	}
	row := -1
	for i, name := range t.order {
		col := t.columns[name]
		r, err := appendTyped(col, values[i])
		if err != nil {
			// Partial append: every prior column in this row already
			// grew, and there is no undo log to roll those back with.
			// typeCheck above rules this branch out in practice; kept
			// as a guard against a storage-layer bug rather than a
			// reachable path.
			return 0, errs.NewInsertFailure(t.name, err.Error())
		}
		row = r
	}
	t.rowCount++
	return row, nil
}

// Update overwrites an existing row in place.
func (t *Table) Update(row int, values []Value) error {
	if row < 0 || row >= t.rowCount {
		return errs.NewOutOfRange(row, t.rowCount)
	}
	if len(values) != len(t.order) {
		return errs.NewInsertFailure(t.name, "value count does not match column count")
	}
	for i, name := range t.order {
		col := t.columns[name]
		if err := typeCheck(col.TypeCode(), values[i]); err != nil {
			return errs.NewTypeMismatch(name, col.TypeCode().String(), "")
		}
	}
	for i, name := range t.order {
		if err := setTyped(t.columns[name], row, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// ScanAll returns a Selection over every live row, in ascending row
// order.
func (t *Table) ScanAll() rowid.Selection {
	ids := make([]rowid.RowID, 0, t.rowCount)
	for i := 0; i < t.rowCount; i++ {
		if t.IsLive(i) {
			ids = append(ids, rowid.FromRow(i, t.pageSize))
		}
	}
	return rowid.NewSelection(ids)
}

// MarkDead flips row's liveness bit so it is skipped by ScanAll and
// Scan. It is idempotent.
func (t *Table) MarkDead(row int) error {
	if row < 0 || row >= t.rowCount {
		return errs.NewOutOfRange(row, t.rowCount)
	}
	t.dead.Set(uint32(row))
	return nil
}

// IsLive reports whether row is within bounds and has not been marked
// dead by a delete.
func (t *Table) IsLive(row int) bool {
	if row < 0 || row >= t.rowCount {
		return false
	}
	return !t.dead.Contains(uint32(row))
}

func typeCheck(code typeset.Code, v Value) error {
	if v.IsNull {
		if code != typeset.String {
			return errs.NewTypeMismatch("", code.String(), "null")
		}
		return nil
	}
	switch code {
	case typeset.Int8:
		_, ok := v.V.(int8)
		return mismatchIf(!ok, code, v.V)
	case typeset.Int16:
		_, ok := v.V.(int16)
		return mismatchIf(!ok, code, v.V)
	case typeset.Int32:
		_, ok := v.V.(int32)
		return mismatchIf(!ok, code, v.V)
	case typeset.Int64:
		_, ok := v.V.(int64)
		return mismatchIf(!ok, code, v.V)
	case typeset.Char:
		_, ok := v.V.(rune)
		return mismatchIf(!ok, code, v.V)
	case typeset.String:
		_, ok := v.V.(string)
		return mismatchIf(!ok, code, v.V)
	case typeset.Float32:
		_, ok := v.V.(float32)
		return mismatchIf(!ok, code, v.V)
	case typeset.Float64:
		_, ok := v.V.(float64)
		return mismatchIf(!ok, code, v.V)
	case typeset.Bool:
		_, ok := v.V.(bool)
		return mismatchIf(!ok, code, v.V)
	default:
		return errs.NewTypeMismatch("", code.String(), "unknown")
	}
}

func mismatchIf(cond bool, code typeset.Code, v any) error {
	if !cond {
		return nil
	}
	return errs.NewTypeMismatch("", code.String(), fmt.Sprintf("%T", v))
}

func appendTyped(col storage.Column, v Value) (int, error) {
	switch col.TypeCode() {
	case typeset.Int8:
		return storage.Append[int8](col, valueOr(v, int8(0)).(int8), v.IsNull)
	case typeset.Int16:
		return storage.Append[int16](col, valueOr(v, int16(0)).(int16), v.IsNull)
	case typeset.Int32:
		return storage.Append[int32](col, valueOr(v, int32(0)).(int32), v.IsNull)
	case typeset.Int64:
		return storage.Append[int64](col, valueOr(v, int64(0)).(int64), v.IsNull)
	case typeset.Char:
		return storage.Append[rune](col, valueOr(v, rune(0)).(rune), v.IsNull)
	case typeset.String:
		return storage.Append[string](col, valueOr(v, "").(string), v.IsNull)
	case typeset.Float32:
		return storage.Append[float32](col, valueOr(v, float32(0)).(float32), v.IsNull)
	case typeset.Float64:
		return storage.Append[float64](col, valueOr(v, float64(0)).(float64), v.IsNull)
	case typeset.Bool:
		return storage.Append[bool](col, valueOr(v, false).(bool), v.IsNull)
	default:
		return 0, errs.NewTypeMismatch(col.Name(), col.TypeCode().String(), "unknown")
	}
}

func setTyped(col storage.Column, row int, v Value) error {
	switch col.TypeCode() {
	case typeset.Int8:
		return storage.Set[int8](col, row, valueOr(v, int8(0)).(int8), v.IsNull)
	case typeset.Int16:
		return storage.Set[int16](col, row, valueOr(v, int16(0)).(int16), v.IsNull)
	case typeset.Int32:
		return storage.Set[int32](col, row, valueOr(v, int32(0)).(int32), v.IsNull)
	case typeset.Int64:
		return storage.Set[int64](col, row, valueOr(v, int64(0)).(int64), v.IsNull)
	case typeset.Char:
		return storage.Set[rune](col, row, valueOr(v, rune(0)).(rune), v.IsNull)
	case typeset.String:
		return storage.Set[string](col, row, valueOr(v, "").(string), v.IsNull)
	case typeset.Float32:
		return storage.Set[float32](col, row, valueOr(v, float32(0)).(float32), v.IsNull)
	case typeset.Float64:
		return storage.Set[float64](col, row, valueOr(v, float64(0)).(float64), v.IsNull)
	case typeset.Bool:
		return storage.Set[bool](col, row, valueOr(v, false).(bool), v.IsNull)
	default:
		return errs.NewTypeMismatch(col.Name(), col.TypeCode().String(), "unknown")
	}
}

func valueOr(v Value, zero any) any {
	if v.IsNull {
		return zero
	}
	return v.V
}

// GetInt8 through GetBool are the typed getters, one per type code.
// They return errs.TypeMismatch if the column's code does not match,
// or errs.OutOfRange if row is out of bounds.

func (t *Table) GetInt8(colName string, row int) (int8, error) {
	c, err := t.typed(colName, typeset.Int8)
	if err != nil {
		return 0, err
	}
	return storage.Get[int8](c, row)
}

func (t *Table) GetInt16(colName string, row int) (int16, error) {
	c, err := t.typed(colName, typeset.Int16)
	if err != nil {
		return 0, err
	}
	return storage.Get[int16](c, row)
}

func (t *Table) GetInt32(colName string, row int) (int32, error) {
	c, err := t.typed(colName, typeset.Int32)
	if err != nil {
		return 0, err
	}
	return storage.Get[int32](c, row)
}

func (t *Table) GetInt64(colName string, row int) (int64, error) {
	c, err := t.typed(colName, typeset.Int64)
	if err != nil {
		return 0, err
	}
	return storage.Get[int64](c, row)
}

func (t *Table) GetChar(colName string, row int) (rune, error) {
	c, err := t.typed(colName, typeset.Char)
	if err != nil {
		return 0, err
	}
	return storage.Get[rune](c, row)
}

func (t *Table) GetString(colName string, row int) (string, error) {
	c, err := t.typed(colName, typeset.String)
	if err != nil {
		return "", err
	}
	return storage.Get[string](c, row)
}

func (t *Table) GetFloat32(colName string, row int) (float32, error) {
	c, err := t.typed(colName, typeset.Float32)
	if err != nil {
		return 0, err
	}
	return storage.Get[float32](c, row)
}

func (t *Table) GetFloat64(colName string, row int) (float64, error) {
	c, err := t.typed(colName, typeset.Float64)
	if err != nil {
		return 0, err
	}
	return storage.Get[float64](c, row)
}

func (t *Table) GetBool(colName string, row int) (bool, error) {
	c, err := t.typed(colName, typeset.Bool)
	if err != nil {
		return false, err
	}
	return storage.Get[bool](c, row)
}

// IsNull reports whether the value at (colName, row) is the column's
// null marker.
func (t *Table) IsNull(colName string, row int) (bool, error) {
	col := t.columns[colName]
	if col == nil {
		return false, errs.NewUnknownColumn(t.name, colName)
	}
	return col.IsNull(row), nil
}

func (t *Table) typed(colName string, want typeset.Code) (storage.Column, error) {
	col := t.columns[colName]
	if col == nil {
		return nil, errs.NewUnknownColumn(t.name, colName)
	}
	if col.TypeCode() != want {
		return nil, errs.NewTypeMismatch(colName, want.String(), col.TypeCode().String())
	}
	return col, nil
}
