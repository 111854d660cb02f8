package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type order struct {
	ID         int
	CustomerID int
}

type customer struct {
	ID   int
	Name string
}

func TestHashJoin_MatchesOnEqualKeys(t *testing.T) {
	orders := []any{
		order{ID: 1, CustomerID: 10},
		order{ID: 2, CustomerID: 20},
		order{ID: 3, CustomerID: 10},
	}
	customers := []any{
		customer{ID: 10, Name: "Ada"},
		customer{ID: 20, Name: "Grace"},
	}

	pairs := HashJoin(orders, customers,
		func(r any) any { return r.(order).CustomerID },
		func(r any) any { return r.(customer).ID },
	)

	require.Len(t, pairs, 3)
	for _, p := range pairs {
		require.Equal(t, p.Left.(order).CustomerID, p.Right.(customer).ID)
	}
}

func TestHashJoin_NoMatchOmitsRow(t *testing.T) {
	orders := []any{order{ID: 1, CustomerID: 99}}
	customers := []any{customer{ID: 10, Name: "Ada"}}

	pairs := HashJoin(orders, customers,
		func(r any) any { return r.(order).CustomerID },
		func(r any) any { return r.(customer).ID },
	)

	require.Empty(t, pairs)
}

func TestHashJoin_EmptySides(t *testing.T) {
	require.Empty(t, HashJoin(nil, nil, func(r any) any { return r }, func(r any) any { return r }))
}

// TestHashJoin_OrdersPairsLeftWithinKeyThenRightAcrossKeys pins the
// emission order: within one right row's matches, left rows come out
// in their original left-side order; across right rows, pairs come
// out in right-side order.
func TestHashJoin_OrdersPairsLeftWithinKeyThenRightAcrossKeys(t *testing.T) {
	orders := []any{
		order{ID: 1, CustomerID: 10},
		order{ID: 2, CustomerID: 20},
		order{ID: 3, CustomerID: 10},
	}
	customers := []any{
		customer{ID: 20, Name: "Grace"},
		customer{ID: 10, Name: "Ada"},
	}

	pairs := HashJoin(orders, customers,
		func(r any) any { return r.(order).CustomerID },
		func(r any) any { return r.(customer).ID },
	)

	require.Equal(t, []Pair{
		{Left: order{ID: 2, CustomerID: 20}, Right: customer{ID: 20, Name: "Grace"}},
		{Left: order{ID: 1, CustomerID: 10}, Right: customer{ID: 10, Name: "Ada"}},
		{Left: order{ID: 3, CustomerID: 10}, Right: customer{ID: 10, Name: "Ada"}},
	}, pairs)
}
