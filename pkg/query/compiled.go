package query

// Kind selects the shape of a CompiledQuery's execution and result.
type Kind string

const (
	Find   Kind = "FIND"
	Count  Kind = "COUNT"
	Exists Kind = "EXISTS"
	Delete Kind = "DELETE"
)

// Connector joins a CompiledQuery's top-level Conditions.
type Connector string

const (
	ConnectorAnd Connector = "AND"
	ConnectorOr  Connector = "OR"
)

// Condition names one predicate term in parameter-indexed form, the
// shape a compiled query-method parser hands to RepositoryCore before
// parameter binding substitutes concrete values.
type Condition struct {
	ColumnName      string
	Operator        Operator
	ParameterIndexes []int
}

// OrderBy names one sort key and its direction.
type OrderBy struct {
	PropertyPath string
	Ascending    bool
}

// Projection selects a subset of columns or nested paths to
// materialize instead of the whole record.
type Projection struct {
	Paths []string
}

// CompiledQuery is the immutable plan RepositoryCore executes: an
// already-compiled description of what to find, in what order, with
// what limit, and how to shape the result. It is provided by an
// out-of-scope collaborator (the query-method-name parser or a
// JPQL-like frontend); RepositoryCore only consumes it.
type CompiledQuery struct {
	Kind       Kind
	Conditions []Condition
	Connector  Connector
	OrderBy    []OrderBy
	Limit      int // 0 means unlimited
	Distinct   bool
	Projection *Projection
}
