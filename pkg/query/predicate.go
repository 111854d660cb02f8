// Package query defines Memris's algebraic predicate tree and the
// CompiledQuery plan RepositoryCore executes. These are plain data:
// the text-based query-method-name parser and the JPQL-like query
// language that produce them are out-of-scope collaborators.
package query

// Operator is the closed set of comparison operators a Comparison
// predicate may use.
type Operator string

const (
	EQ            Operator = "EQ"
	NEQ           Operator = "NEQ"
	GT            Operator = "GT"
	GTE           Operator = "GTE"
	LT            Operator = "LT"
	LTE           Operator = "LTE"
	LIKE          Operator = "LIKE"
	NotLike       Operator = "NOT_LIKE"
	StartingWith  Operator = "STARTING_WITH"
	EndingWith    Operator = "ENDING_WITH"
	Containing    Operator = "CONTAINING"
	NotContaining Operator = "NOT_CONTAINING"
	IsTrue        Operator = "IS_TRUE"
	IsFalse       Operator = "IS_FALSE"
	IsNull        Operator = "IS_NULL"
	IsNotNull     Operator = "IS_NOT_NULL"
	IgnoreCase    Operator = "IGNORE_CASE"
	After         Operator = "AFTER"
	Before        Operator = "BEFORE"

	// BetweenOp and InOp are not evaluated directly by the Scanner (see
	// Between and In below) — they exist so a CompiledQuery's flat
	// {columnName, operator, parameterIndexes} shape can name these two
	// predicate kinds before RepositoryCore's parameter binding expands
	// them into the richer Between/In structs.
	BetweenOp Operator = "BETWEEN"
	InOp      Operator = "IN"
)

// Predicate is the sealed algebraic predicate tree. Each variant below
// implements it purely as a marker; the Scanner type-switches over the
// concrete types to evaluate.
type Predicate interface {
	predicateNode()
}

// Comparison tests one column against an operator and an optional
// value (IS_NULL/IS_NOT_NULL/IS_TRUE/IS_FALSE take no value).
// IgnoreCase wraps another predicate rather than appearing bare: see
// IgnoreCaseOf below.
type Comparison struct {
	Column string
	Op     Operator
	Value  any
}

func (Comparison) predicateNode() {}

// IgnoreCaseOf folds both sides of Inner's string comparison through a
// root-locale lowercase mapping before comparing. Inner must be a
// Comparison using a string-valued operator (LIKE,
// CONTAINING, STARTING_WITH, ENDING_WITH, EQ/NEQ on a String column).
type IgnoreCaseOf struct {
	Inner Comparison
}

func (IgnoreCaseOf) predicateNode() {}

// Between is inclusive on both Lower and Upper bounds.
type Between struct {
	Column string
	Lower  any
	Upper  any
}

func (Between) predicateNode() {}

// In matches rows whose column value is a member of Values.
type In struct {
	Column string
	Values []any
}

func (In) predicateNode() {}

// Not negates Child.
type Not struct {
	Child Predicate
}

func (Not) predicateNode() {}

// And requires every child predicate to match.
type And struct {
	Children []Predicate
}

func (And) predicateNode() {}

// Or requires at least one child predicate to match.
type Or struct {
	Children []Predicate
}

func (Or) predicateNode() {}
