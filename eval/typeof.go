package eval

import (
	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
)

// TypeOf statically infers the result type of expr given a column
// name -> type environment, without evaluating anything. Arithmetic
// between two Integer operands yields Integer; any other numeric mix
// yields Float; a type this function cannot determine (e.g. a function
// call's return type, or a variable absent from env) reports TypeAny.
func TypeOf(expr ast.Expression, env map[ast.Symbol]cyphergraph.Type) cyphergraph.Type {
	switch e := expr.(type) {
	case ast.Literal:
		return cyphergraph.CypherTypeOf(e.Value)
	case ast.Parameter:
		return cyphergraph.TypeAny
	case ast.VariableRef:
		if t, ok := env[e.Name]; ok {
			return t
		}
		return cyphergraph.TypeAny
	case ast.PropertyAccess:
		return cyphergraph.TypeAny
	case ast.ListLiteral:
		return cyphergraph.TypeList
	case ast.UnaryExpr:
		if e.Op == ast.OpNot {
			return cyphergraph.TypeBoolean
		}
		return TypeOf(e.Operand, env)
	case ast.BinaryExpr:
		return typeOfBinary(e, env)
	case ast.FunctionCall:
		return cyphergraph.TypeAny
	}
	return cyphergraph.TypeAny
}

func typeOfBinary(e ast.BinaryExpr, env map[ast.Symbol]cyphergraph.Type) cyphergraph.Type {
	switch e.Op {
	case ast.OpEQ, ast.OpNE, ast.OpLT, ast.OpLTE, ast.OpGT, ast.OpGTE, ast.OpAnd, ast.OpOr:
		return cyphergraph.TypeBoolean
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		left := TypeOf(e.Left, env)
		right := TypeOf(e.Right, env)
		if left == cyphergraph.TypeString && right == cyphergraph.TypeString && e.Op == ast.OpAdd {
			return cyphergraph.TypeString
		}
		if left == cyphergraph.TypeInteger && right == cyphergraph.TypeInteger {
			return cyphergraph.TypeInteger
		}
		if left == cyphergraph.TypeFloat || right == cyphergraph.TypeFloat {
			return cyphergraph.TypeFloat
		}
		return cyphergraph.TypeAny
	}
	return cyphergraph.TypeAny
}
