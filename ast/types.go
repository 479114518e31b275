// Package ast defines the abstract syntax produced by the query parser:
// expressions, graph patterns, and clauses for the Cypher subset the core
// operator algebra covers (MATCH/OPTIONAL MATCH, WHERE, WITH, RETURN,
// ORDER BY, SKIP, LIMIT, CREATE). This is the engine's own minimal AST,
// not a binding to the full upstream Cypher grammar.
package ast

import "fmt"

// Symbol names a query variable, e.g. the "n" in "MATCH (n)".
type Symbol string

// Expression is any node in an expression tree: literals, variable
// references, property access, arithmetic/comparison/boolean operators,
// and function calls.
type Expression interface {
	// RequiredSymbols returns the variables this expression reads.
	RequiredSymbols() []Symbol
	String() string
}

// Literal is a constant value parsed directly from query text.
type Literal struct {
	Value interface{}
}

func (l Literal) RequiredSymbols() []Symbol { return nil }
func (l Literal) String() string            { return fmt.Sprintf("%v", l.Value) }

// Parameter is a reference to a query parameter, e.g. "$name". Resolved
// first against residual params extracted at parse time, then against the
// run's invocation params.
type Parameter struct {
	Name string
}

func (p Parameter) RequiredSymbols() []Symbol { return nil }
func (p Parameter) String() string            { return "$" + p.Name }

// VariableRef reads a bound variable, e.g. "n" in "RETURN n".
type VariableRef struct {
	Name Symbol
}

func (v VariableRef) RequiredSymbols() []Symbol { return []Symbol{v.Name} }
func (v VariableRef) String() string            { return string(v.Name) }

// PropertyAccess reads a property off an entity, e.g. "n.name".
type PropertyAccess struct {
	Target   Expression
	Property string
}

func (p PropertyAccess) RequiredSymbols() []Symbol { return p.Target.RequiredSymbols() }
func (p PropertyAccess) String() string            { return fmt.Sprintf("%s.%s", p.Target, p.Property) }

// BinaryOp is an arithmetic, comparison, or boolean infix operator.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpMod BinaryOp = "%"

	OpEQ  BinaryOp = "="
	OpNE  BinaryOp = "<>"
	OpLT  BinaryOp = "<"
	OpLTE BinaryOp = "<="
	OpGT  BinaryOp = ">"
	OpGTE BinaryOp = ">="

	OpAnd BinaryOp = "AND"
	OpOr  BinaryOp = "OR"
)

// BinaryExpr applies a BinaryOp to two sub-expressions.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (b BinaryExpr) RequiredSymbols() []Symbol {
	return append(b.Left.RequiredSymbols(), b.Right.RequiredSymbols()...)
}
func (b BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// UnaryOp is a prefix operator.
type UnaryOp string

const (
	OpNot UnaryOp = "NOT"
	OpNeg UnaryOp = "-"
)

// UnaryExpr applies a UnaryOp to a single sub-expression.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expression
}

func (u UnaryExpr) RequiredSymbols() []Symbol { return u.Operand.RequiredSymbols() }
func (u UnaryExpr) String() string            { return fmt.Sprintf("%s %s", u.Op, u.Operand) }

// FunctionCall invokes a named function (built-in or host procedure) with
// evaluated-expression arguments, e.g. "toUpper(n.name)".
type FunctionCall struct {
	Namespace string // empty for built-ins
	Name      string
	Args      []Expression
}

func (f FunctionCall) RequiredSymbols() []Symbol {
	var syms []Symbol
	for _, a := range f.Args {
		syms = append(syms, a.RequiredSymbols()...)
	}
	return syms
}
func (f FunctionCall) String() string {
	name := f.Name
	if f.Namespace != "" {
		name = f.Namespace + "." + f.Name
	}
	return fmt.Sprintf("%s(...)", name)
}

// ListLiteral is a bracketed list of expressions, e.g. "[1, 2, 3]".
type ListLiteral struct {
	Elements []Expression
}

func (l ListLiteral) RequiredSymbols() []Symbol {
	var syms []Symbol
	for _, e := range l.Elements {
		syms = append(syms, e.RequiredSymbols()...)
	}
	return syms
}
func (l ListLiteral) String() string { return "[...]" }
