package repository

import (
	"fmt"

	"github.com/Thejuampi/memris-sub005/pkg/query"
)

// bindPredicate turns a CompiledQuery's flat condition list into the
// predicate tree the Scanner (or an index probe) evaluates, expanding
// BetweenOp/InOp conditions into their richer Between/In predicate
// shapes once parameters are substituted.
func bindPredicate(q *query.CompiledQuery, args []any) (query.Predicate, error) {
	if len(q.Conditions) == 0 {
		return nil, nil
	}
	terms := make([]query.Predicate, 0, len(q.Conditions))
	for _, cond := range q.Conditions {
		p, err := bindCondition(cond, args)
		if err != nil {
			return nil, err
		}
		terms = append(terms, p)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	switch q.Connector {
	case query.ConnectorOr:
		return query.Or{Children: terms}, nil
	default:
		return query.And{Children: terms}, nil
	}
}

func bindCondition(cond query.Condition, args []any) (query.Predicate, error) {
	switch cond.Operator {
	case query.BetweenOp:
		if len(cond.ParameterIndexes) != 2 {
			return nil, fmt.Errorf("repository: BETWEEN on %q needs 2 parameters, got %d", cond.ColumnName, len(cond.ParameterIndexes))
		}
		lower, err := argAt(args, cond.ParameterIndexes[0])
		if err != nil {
			return nil, err
		}
		upper, err := argAt(args, cond.ParameterIndexes[1])
		if err != nil {
			return nil, err
		}
		return query.Between{Column: cond.ColumnName, Lower: lower, Upper: upper}, nil
	case query.InOp:
		values := make([]any, len(cond.ParameterIndexes))
		for i, idx := range cond.ParameterIndexes {
			v, err := argAt(args, idx)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return query.In{Column: cond.ColumnName, Values: values}, nil
	case query.IsNull, query.IsNotNull, query.IsTrue, query.IsFalse:
		return query.Comparison{Column: cond.ColumnName, Op: cond.Operator}, nil
	case query.IgnoreCase:
		if len(cond.ParameterIndexes) != 1 {
			return nil, fmt.Errorf("repository: %s on %q needs exactly 1 parameter, got %d", cond.Operator, cond.ColumnName, len(cond.ParameterIndexes))
		}
		v, err := argAt(args, cond.ParameterIndexes[0])
		if err != nil {
			return nil, err
		}
		return query.IgnoreCaseOf{Inner: query.Comparison{Column: cond.ColumnName, Op: query.EQ, Value: v}}, nil
	default:
		if len(cond.ParameterIndexes) != 1 {
			return nil, fmt.Errorf("repository: %s on %q needs exactly 1 parameter, got %d", cond.Operator, cond.ColumnName, len(cond.ParameterIndexes))
		}
		v, err := argAt(args, cond.ParameterIndexes[0])
		if err != nil {
			return nil, err
		}
		return query.Comparison{Column: cond.ColumnName, Op: cond.Operator, Value: v}, nil
	}
}

func argAt(args []any, idx int) (any, error) {
	if idx < 0 || idx >= len(args) {
		return nil, fmt.Errorf("repository: parameter index %d out of range for %d argument(s)", idx, len(args))
	}
	return args[idx], nil
}
