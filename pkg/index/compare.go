package index

import (
	"fmt"

	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// Less exposes the same-type key comparison RangeIndex uses
// internally, so callers outside this package (RepositoryCore's sort
// step) can order values by typeset.Code without duplicating the
// per-code dispatch.
func Less(code typeset.Code, a, b any) (int, error) {
	return less(code, a, b)
}

// less compares two stored key values of the same typeset.Code,
// returning -1, 0, or 1. It is the single dispatch point every
// RangeIndex probe goes through: one exhaustive switch over the closed
// set of type codes, rather than a type switch on the Go value.
func less(code typeset.Code, a, b any) (int, error) {
	switch code {
	case typeset.Int8:
		return cmpOrdered(a.(int8), b.(int8)), nil
	case typeset.Int16:
		return cmpOrdered(a.(int16), b.(int16)), nil
	case typeset.Int32:
		return cmpOrdered(a.(int32), b.(int32)), nil
	case typeset.Int64:
		return cmpOrdered(a.(int64), b.(int64)), nil
	case typeset.Char:
		return cmpOrdered(a.(rune), b.(rune)), nil
	case typeset.Float32:
		return cmpOrdered(a.(float32), b.(float32)), nil
	case typeset.Float64:
		return cmpOrdered(a.(float64), b.(float64)), nil
	case typeset.String:
		return cmpOrdered(a.(string), b.(string)), nil
	case typeset.Bool:
		ab, bb := a.(bool), b.(bool)
		if ab == bb {
			return 0, nil
		}
		if !ab && bb {
			return -1, nil
		}
		return 1, nil
	default:
		return 0, fmt.Errorf("index: no ordering defined for type code %s", code)
	}
}

type ordered interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
