// Package storage implements the columnar store: typed, growable,
// page-backed vectors, one per Table column, with amortized O(1)
// append, O(1) random access, null tracking for reference-typed
// columns, and a typed "absent" sentinel (empty string) for String
// columns that the Materializer re-lifts to nil on the read path.
package storage

import (
	"github.com/kelindar/bitmap"

	"github.com/Thejuampi/memris-sub005/pkg/errs"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// DefaultPageSize is the column growth unit used when a Table does
// not override it; must be at least 1024 elements.
const DefaultPageSize = 1024

// Column is the typed-vector contract every ColumnStore implementation
// satisfies. A Table holds one Column per declared field.
type Column interface {
	Name() string
	TypeCode() typeset.Code
	Len() int
	// IsNull reports whether the value at row is the column's null
	// marker. Always false for non-nullable (primitive) columns.
	IsNull(row int) bool
}

// column is the concrete implementation shared by every type code; T
// is the Go representation used for storage (the typed primitive,
// string for String columns, rune for Char columns).
type column[T any] struct {
	name     string
	code     typeset.Code
	vec      *pagedVector[T]
	nullable bool
	nulls    bitmap.Bitmap // set bit = null, only meaningful when nullable
}

func newColumn[T any](name string, code typeset.Code, pageSize int, nullable bool) *column[T] {
	return &column[T]{
		name:     name,
		code:     code,
		vec:      newPagedVector[T](pageSize),
		nullable: nullable,
	}
}

func (c *column[T]) Name() string          { return c.name }
func (c *column[T]) TypeCode() typeset.Code { return c.code }
func (c *column[T]) Len() int              { return c.vec.Len() }

func (c *column[T]) IsNull(row int) bool {
	if !c.nullable {
		return false
	}
	return c.nulls.Contains(uint32(row))
}

// Get returns the stored value at row, or errs.OutOfRange.
func (c *column[T]) Get(row int) (T, error) {
	v, ok := c.vec.Get(row)
	if !ok {
		var zero T
		return zero, errs.NewOutOfRange(row, c.vec.Len())
	}
	return v, nil
}

// Set overwrites the value at row in place (used by update-in-place
// saves), or returns errs.OutOfRange.
func (c *column[T]) Set(row int, value T, isNull bool) error {
	if !c.vec.Set(row, value) {
		return errs.NewOutOfRange(row, c.vec.Len())
	}
	if c.nullable {
		if isNull {
			c.nulls.Set(uint32(row))
		} else {
			c.nulls.Remove(uint32(row))
		}
	}
	return nil
}

// Append adds value to the end of the column, returning the new row
// index.
func (c *column[T]) Append(value T, isNull bool) int {
	row := c.vec.Append(value)
	if c.nullable && isNull {
		c.nulls.Set(uint32(row))
	}
	return row
}

// NewColumn constructs the Column implementation appropriate for
// code. String columns are the only reference-typed (nullable)
// variant; every other code is a non-nullable primitive vector.
func NewColumn(name string, code typeset.Code, pageSize int) Column {
	switch code {
	case typeset.Int8:
		return newColumn[int8](name, code, pageSize, false)
	case typeset.Int16:
		return newColumn[int16](name, code, pageSize, false)
	case typeset.Int32:
		return newColumn[int32](name, code, pageSize, false)
	case typeset.Int64:
		return newColumn[int64](name, code, pageSize, false)
	case typeset.Char:
		return newColumn[rune](name, code, pageSize, false)
	case typeset.Float32:
		return newColumn[float32](name, code, pageSize, false)
	case typeset.Float64:
		return newColumn[float64](name, code, pageSize, false)
	case typeset.Bool:
		return newColumn[bool](name, code, pageSize, false)
	case typeset.String:
		return newColumn[string](name, code, pageSize, true)
	default:
		return newColumn[string](name, code, pageSize, true)
	}
}

// Typed accessor helpers. Table uses these after asserting the
// column's TypeCode matches, so a failed assertion here indicates an
// engine bug rather than caller error (the Table layer is the one that
// raises errs.TypeMismatch to callers).

func AsInt8(c Column) (*column[int8], bool)       { v, ok := c.(*column[int8]); return v, ok }
func AsInt16(c Column) (*column[int16], bool)     { v, ok := c.(*column[int16]); return v, ok }
func AsInt32(c Column) (*column[int32], bool)     { v, ok := c.(*column[int32]); return v, ok }
func AsInt64(c Column) (*column[int64], bool)     { v, ok := c.(*column[int64]); return v, ok }
func AsChar(c Column) (*column[rune], bool)       { v, ok := c.(*column[rune]); return v, ok }
func AsString(c Column) (*column[string], bool)   { v, ok := c.(*column[string]); return v, ok }
func AsFloat32(c Column) (*column[float32], bool) { v, ok := c.(*column[float32]); return v, ok }
func AsFloat64(c Column) (*column[float64], bool) { v, ok := c.(*column[float64]); return v, ok }
func AsBool(c Column) (*column[bool], bool)       { v, ok := c.(*column[bool]); return v, ok }

// Get reads the value at row from c, which must be the concrete
// column[T] for T — callers that already know the column's TypeCode
// (Table and the Materializer) use this instead of repeating the type
// switch in AsXxx.
func Get[T any](c Column, row int) (T, error) {
	v, ok := c.(*column[T])
	if !ok {
		var zero T
		return zero, errs.NewTypeMismatch(c.Name(), "", c.TypeCode().String())
	}
	return v.Get(row)
}

// Set overwrites the value at row in c. isNull is only honored for
// nullable (String) columns.
func Set[T any](c Column, row int, value T, isNull bool) error {
	v, ok := c.(*column[T])
	if !ok {
		return errs.NewTypeMismatch(c.Name(), "", c.TypeCode().String())
	}
	return v.Set(row, value, isNull)
}

// Append adds value to the end of c, returning the new row index.
func Append[T any](c Column, value T, isNull bool) (int, error) {
	v, ok := c.(*column[T])
	if !ok {
		return 0, errs.NewTypeMismatch(c.Name(), "", c.TypeCode().String())
	}
	return v.Append(value, isNull), nil
}
