package ast

// Clause is one step of a query pipeline. Clauses are processed in order;
// each narrows or reshapes the variable bindings flowing to the next.
type Clause interface {
	clause()
}

// MatchClause matches one or more pattern paths against the graph,
// optionally filtered by Where. Optional marks an OPTIONAL MATCH, whose
// unmatched rows carry nulls for the pattern's variables rather than being
// dropped.
type MatchClause struct {
	Patterns []PathPattern
	Where    Expression // nil if no WHERE attached
	Optional bool
}

func (MatchClause) clause() {}

// CreateClause creates new nodes/relationships described by its patterns.
// Variables bound in earlier clauses may appear as pattern endpoints
// (connecting to existing nodes); variables introduced here are bound to
// the newly created elements for clauses that follow.
type CreateClause struct {
	Patterns []PathPattern
}

func (CreateClause) clause() {}

// ReturnItem projects one expression into the result, optionally aliased.
type ReturnItem struct {
	Expr  Expression
	Alias Symbol // empty: column name derives from Expr.String()
}

// WithClause re-projects the current bindings (like RETURN, but the
// pipeline continues afterward) and may filter the projected rows.
type WithClause struct {
	Items    []ReturnItem
	Distinct bool
	Where    Expression // nil if no WHERE attached
}

func (WithClause) clause() {}

// ReturnClause is the terminal projection of a query.
type ReturnClause struct {
	Items    []ReturnItem
	Distinct bool
}

func (ReturnClause) clause() {}

// OrderByItem is one sort key.
type OrderByItem struct {
	Expr      Expression
	Ascending bool
}

// OrderByClause sorts the rows produced so far.
type OrderByClause struct {
	Items []OrderByItem // empty/nil: order by all columns ascending
}

func (OrderByClause) clause() {}

// SkipClause drops the first Count rows.
type SkipClause struct {
	Count Expression
}

func (SkipClause) clause() {}

// LimitClause keeps only the first Count rows.
type LimitClause struct {
	Count Expression
}

func (LimitClause) clause() {}

// Query is a full parsed query: an ordered clause pipeline plus the
// parameter names it references (for validating invocation params).
type Query struct {
	Clauses        []Clause
	ParameterNames []string
}
