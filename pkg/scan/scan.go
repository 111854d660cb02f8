// Package scan implements the Scanner: predicate evaluation over a
// Table, producing a rowid.Selection in ascending row order. And/Or/Not
// composition is done with a bitset
// (github.com/kelindar/bitmap) rather than intermediate []RowID
// slices — bit-index order is row order for a within-table scan, so
// the ascending-order and stable-tie-break guarantees fall out of the
// bitmap's own iteration order.
package scan

import (
	"fmt"
	"strings"

	"github.com/kelindar/bitmap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Thejuampi/memris-sub005/pkg/errs"
	"github.com/Thejuampi/memris-sub005/pkg/query"
	"github.com/Thejuampi/memris-sub005/pkg/rowid"
	"github.com/Thejuampi/memris-sub005/pkg/table"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

var fold = cases.Lower(language.Und)

// Scan evaluates p against every row of t and returns the matching
// rows in ascending row order.
func Scan(t *table.Table, p query.Predicate) (rowid.Selection, error) {
	bm, err := eval(t, p)
	if err != nil {
		return rowid.Selection{}, err
	}
	return toSelection(bm, t), nil
}

func toSelection(bm bitmap.Bitmap, t *table.Table) rowid.Selection {
	ids := make([]rowid.RowID, 0, bm.Count())
	bm.Range(func(row uint32) {
		ids = append(ids, rowid.FromRow(int(row), t.PageSize()))
	})
	return rowid.NewSelection(ids)
}

func fullBitmap(t *table.Table) bitmap.Bitmap {
	var bm bitmap.Bitmap
	for i := 0; i < t.RowCount(); i++ {
		if t.IsLive(i) {
			bm.Set(uint32(i))
		}
	}
	return bm
}

func eval(t *table.Table, p query.Predicate) (bitmap.Bitmap, error) {
	switch n := p.(type) {
	case query.And:
		result := fullBitmap(t)
		for _, child := range n.Children {
			cb, err := eval(t, child)
			if err != nil {
				return nil, err
			}
			result.And(cb)
		}
		return result, nil
	case query.Or:
		var result bitmap.Bitmap
		for _, child := range n.Children {
			cb, err := eval(t, child)
			if err != nil {
				return nil, err
			}
			result.Or(cb)
		}
		return result, nil
	case query.Not:
		child, err := eval(t, n.Child)
		if err != nil {
			return nil, err
		}
		result := fullBitmap(t)
		result.AndNot(child)
		return result, nil
	case query.Between:
		return evalRows(t, func(row int) (bool, error) { return evalBetween(t, row, n) })
	case query.In:
		return evalRows(t, func(row int) (bool, error) { return evalIn(t, row, n) })
	case query.Comparison:
		return evalRows(t, func(row int) (bool, error) { return evalComparison(t, row, n, false) })
	case query.IgnoreCaseOf:
		return evalRows(t, func(row int) (bool, error) { return evalComparison(t, row, n.Inner, true) })
	default:
		return nil, fmt.Errorf("scan: unsupported predicate node %T", p)
	}
}

func evalRows(t *table.Table, match func(row int) (bool, error)) (bitmap.Bitmap, error) {
	var bm bitmap.Bitmap
	for row := 0; row < t.RowCount(); row++ {
		if !t.IsLive(row) {
			continue
		}
		ok, err := match(row)
		if err != nil {
			return nil, err
		}
		if ok {
			bm.Set(uint32(row))
		}
	}
	return bm, nil
}

func evalBetween(t *table.Table, row int, b query.Between) (bool, error) {
	ge, err := evalComparison(t, row, query.Comparison{Column: b.Column, Op: query.GTE, Value: b.Lower}, false)
	if err != nil || !ge {
		return false, err
	}
	return evalComparison(t, row, query.Comparison{Column: b.Column, Op: query.LTE, Value: b.Upper}, false)
}

func evalIn(t *table.Table, row int, in query.In) (bool, error) {
	for _, v := range in.Values {
		ok, err := evalComparison(t, row, query.Comparison{Column: in.Column, Op: query.EQ, Value: v}, false)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func evalComparison(t *table.Table, row int, c query.Comparison, ignoreCase bool) (bool, error) {
	col := t.Column(c.Column)
	if col == nil {
		return false, errs.NewUnknownColumn(t.Name(), c.Column)
	}

	switch c.Op {
	case query.IsNull:
		return col.IsNull(row), nil
	case query.IsNotNull:
		return !col.IsNull(row), nil
	}

	switch col.TypeCode() {
	case typeset.Bool:
		v, err := t.GetBool(c.Column, row)
		if err != nil {
			return false, err
		}
		switch c.Op {
		case query.IsTrue:
			return v, nil
		case query.IsFalse:
			return !v, nil
		case query.EQ:
			want, ok := c.Value.(bool)
			return ok && v == want, typeErrIf(!ok, c.Column, "bool")
		case query.NEQ:
			want, ok := c.Value.(bool)
			return ok && v != want, typeErrIf(!ok, c.Column, "bool")
		default:
			return false, fmt.Errorf("scan: operator %s not supported on bool column %q", c.Op, c.Column)
		}
	case typeset.String:
		return evalStringComparison(t, col.IsNull(row), row, c, ignoreCase)
	default:
		return evalNumericComparison(t, row, col.TypeCode(), c)
	}
}

func typeErrIf(cond bool, column, want string) error {
	if !cond {
		return nil
	}
	return errs.NewTypeMismatch(column, want, "other")
}

func evalStringComparison(t *table.Table, isNull bool, row int, c query.Comparison, ignoreCase bool) (bool, error) {
	v, err := t.GetString(c.Column, row)
	if err != nil {
		return false, err
	}
	want, ok := c.Value.(string)
	if !ok && c.Op != query.IsNull && c.Op != query.IsNotNull {
		return false, errs.NewTypeMismatch(c.Column, "string", fmt.Sprintf("%T", c.Value))
	}
	if ignoreCase {
		v = fold.String(v)
		want = fold.String(want)
	}
	switch c.Op {
	case query.EQ:
		return !isNull && v == want, nil
	case query.NEQ:
		return isNull || v != want, nil
	case query.GT:
		return !isNull && v > want, nil
	case query.GTE:
		return !isNull && v >= want, nil
	case query.LT:
		return !isNull && v < want, nil
	case query.LTE:
		return !isNull && v <= want, nil
	case query.Containing:
		return !isNull && strings.Contains(v, want), nil
	case query.NotContaining:
		return isNull || !strings.Contains(v, want), nil
	case query.StartingWith:
		return !isNull && strings.HasPrefix(v, want), nil
	case query.EndingWith:
		return !isNull && strings.HasSuffix(v, want), nil
	case query.LIKE:
		return !isNull && matchLike(v, want), nil
	case query.NotLike:
		return isNull || !matchLike(v, want), nil
	default:
		return false, fmt.Errorf("scan: operator %s not supported on string column %q", c.Op, c.Column)
	}
}

// matchLike implements SQL-style LIKE semantics: '%' matches any run
// of characters, '_' matches exactly one, everything else is literal.
func matchLike(value, pattern string) bool {
	return likeMatch([]rune(value), []rune(pattern))
}

func likeMatch(value, pattern []rune) bool {
	if len(pattern) == 0 {
		return len(value) == 0
	}
	switch pattern[0] {
	case '%':
		if likeMatch(value, pattern[1:]) {
			return true
		}
		for len(value) > 0 {
			value = value[1:]
			if likeMatch(value, pattern[1:]) {
				return true
			}
		}
		return false
	case '_':
		if len(value) == 0 {
			return false
		}
		return likeMatch(value[1:], pattern[1:])
	default:
		if len(value) == 0 || value[0] != pattern[0] {
			return false
		}
		return likeMatch(value[1:], pattern[1:])
	}
}

func evalNumericComparison(t *table.Table, row int, code typeset.Code, c query.Comparison) (bool, error) {
	v, err := numericValue(t, code, c.Column, row)
	if err != nil {
		return false, err
	}
	want, err := numericOperand(code, c.Column, c.Value)
	if err != nil {
		return false, err
	}
	switch c.Op {
	case query.EQ:
		return v == want, nil
	case query.NEQ:
		return v != want, nil
	case query.GT, query.After:
		return v > want, nil
	case query.GTE:
		return v >= want, nil
	case query.LT, query.Before:
		return v < want, nil
	case query.LTE:
		return v <= want, nil
	default:
		return false, fmt.Errorf("scan: operator %s not supported on numeric column %q", c.Op, c.Column)
	}
}

func numericValue(t *table.Table, code typeset.Code, column string, row int) (float64, error) {
	switch code {
	case typeset.Int8:
		v, err := t.GetInt8(column, row)
		return float64(v), err
	case typeset.Int16:
		v, err := t.GetInt16(column, row)
		return float64(v), err
	case typeset.Int32:
		v, err := t.GetInt32(column, row)
		return float64(v), err
	case typeset.Int64:
		v, err := t.GetInt64(column, row)
		return float64(v), err
	case typeset.Char:
		v, err := t.GetChar(column, row)
		return float64(v), err
	case typeset.Float32:
		v, err := t.GetFloat32(column, row)
		return float64(v), err
	case typeset.Float64:
		return t.GetFloat64(column, row)
	default:
		return 0, errs.NewTypeMismatch(column, "numeric", code.String())
	}
}

func numericOperand(code typeset.Code, column string, value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, errs.NewTypeMismatch(column, code.String(), fmt.Sprintf("%T", value))
	}
}
