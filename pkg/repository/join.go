package repository

// Pair is one matched (left, right) result of HashJoin.
type Pair struct {
	Left  any
	Right any
}

// HashJoin matches left and right records whose key functions produce
// equal keys, building an index over left first so the join runs in
// O(len(left)+len(right)) rather than the nested-loop O(n*m) a naive
// join would cost. Pairs come out in left-insertion order within a key,
// then in right-insertion order across keys.
func HashJoin(left, right []any, leftKey, rightKey func(record any) any) []Pair {
	byKey := make(map[any][]any, len(left))
	for _, l := range left {
		k := leftKey(l)
		byKey[k] = append(byKey[k], l)
	}
	var out []Pair
	for _, r := range right {
		k := rightKey(r)
		for _, l := range byKey[k] {
			out = append(out, Pair{Left: l, Right: r})
		}
	}
	return out
}
