// Package eval evaluates ast.Expression trees against a row of bound
// variables and a query's parameters, producing runtime Values.
package eval

import (
	"fmt"
	"math"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
	"github.com/wbrown/cyphergraph/procedure"
)

// Context carries everything an expression needs to evaluate: the current
// row's variable bindings, the query's resolved parameters (residual
// params already merged with invocation params, residual taking
// precedence), and the procedure registry for function calls namespaced
// to a host-registered callable.
type Context struct {
	Bindings   map[ast.Symbol]cyphergraph.Value
	Params     map[string]cyphergraph.Value
	Procedures procedure.Lookup
}

// NewContext builds an evaluation context. procedures may be nil if the
// expression tree contains no namespaced function calls.
func NewContext(bindings map[ast.Symbol]cyphergraph.Value, params map[string]cyphergraph.Value, procedures procedure.Lookup) Context {
	return Context{Bindings: bindings, Params: params, Procedures: procedures}
}

// Eval evaluates expr against ctx, returning its runtime Value.
// EvaluationError is returned for type errors, missing bindings, division
// by zero, or calls to an unregistered function.
func Eval(expr ast.Expression, ctx Context) (cyphergraph.Value, error) {
	switch e := expr.(type) {
	case ast.Literal:
		return e.Value, nil

	case ast.Parameter:
		if v, ok := ctx.Params[e.Name]; ok {
			return v, nil
		}
		return nil, &cyphergraph.EvaluationError{Expr: expr.String(), Reason: fmt.Sprintf("unbound parameter $%s", e.Name)}

	case ast.VariableRef:
		v, ok := ctx.Bindings[e.Name]
		if !ok {
			return nil, &cyphergraph.EvaluationError{Expr: expr.String(), Reason: fmt.Sprintf("unbound variable %s", e.Name)}
		}
		return v, nil

	case ast.PropertyAccess:
		return evalPropertyAccess(e, ctx)

	case ast.UnaryExpr:
		return evalUnary(e, ctx)

	case ast.BinaryExpr:
		return evalBinary(e, ctx)

	case ast.FunctionCall:
		return evalFunctionCall(e, ctx)

	case ast.ListLiteral:
		out := make([]cyphergraph.Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := Eval(el, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, &cyphergraph.EvaluationError{Expr: expr.String(), Reason: "unsupported expression kind"}
}

func evalPropertyAccess(e ast.PropertyAccess, ctx Context) (cyphergraph.Value, error) {
	target, err := Eval(e.Target, ctx)
	if err != nil {
		return nil, err
	}
	if cyphergraph.IsNull(target) {
		return nil, nil
	}
	switch v := target.(type) {
	case cyphergraph.Node:
		prop, _ := v.Property(e.Property)
		return prop, nil
	case cyphergraph.Relationship:
		prop, _ := v.Property(e.Property)
		return prop, nil
	case map[string]cyphergraph.Value:
		return v[e.Property], nil
	default:
		return nil, &cyphergraph.EvaluationError{
			Expr:   e.String(),
			Reason: fmt.Sprintf("property access on non-entity value of type %s", cyphergraph.CypherTypeOf(target)),
		}
	}
}

func evalUnary(e ast.UnaryExpr, ctx Context) (cyphergraph.Value, error) {
	operand, err := Eval(e.Operand, ctx)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpNot:
		if cyphergraph.IsNull(operand) {
			return nil, nil
		}
		b, ok := operand.(bool)
		if !ok {
			return nil, &cyphergraph.EvaluationError{Expr: e.String(), Reason: "NOT requires a boolean operand"}
		}
		return !b, nil
	case ast.OpNeg:
		if cyphergraph.IsNull(operand) {
			return nil, nil
		}
		switch n := operand.(type) {
		case int64:
			return -n, nil
		case float64:
			return -n, nil
		}
		return nil, &cyphergraph.EvaluationError{Expr: e.String(), Reason: "unary minus requires a numeric operand"}
	}
	return nil, &cyphergraph.EvaluationError{Expr: e.String(), Reason: "unknown unary operator"}
}

func evalBinary(e ast.BinaryExpr, ctx Context) (cyphergraph.Value, error) {
	// AND/OR apply Cypher's three-valued logic and must short-circuit before
	// evaluating the right operand.
	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		return evalLogical(e, ctx)
	}

	left, err := Eval(e.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := Eval(e.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpEQ:
		if cyphergraph.IsNull(left) || cyphergraph.IsNull(right) {
			return nil, nil
		}
		return cyphergraph.ValuesEqual(left, right), nil
	case ast.OpNE:
		if cyphergraph.IsNull(left) || cyphergraph.IsNull(right) {
			return nil, nil
		}
		return !cyphergraph.ValuesEqual(left, right), nil
	case ast.OpLT, ast.OpLTE, ast.OpGT, ast.OpGTE:
		if cyphergraph.IsNull(left) || cyphergraph.IsNull(right) {
			return nil, nil
		}
		cmp := cyphergraph.CompareValues(left, right)
		switch e.Op {
		case ast.OpLT:
			return cmp < 0, nil
		case ast.OpLTE:
			return cmp <= 0, nil
		case ast.OpGT:
			return cmp > 0, nil
		case ast.OpGTE:
			return cmp >= 0, nil
		}
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return evalArithmetic(e.Op, left, right, e.String())
	}
	return nil, &cyphergraph.EvaluationError{Expr: e.String(), Reason: "unknown binary operator"}
}

func evalLogical(e ast.BinaryExpr, ctx Context) (cyphergraph.Value, error) {
	left, err := Eval(e.Left, ctx)
	if err != nil {
		return nil, err
	}
	lb, lIsBool := left.(bool)

	// Short-circuit: AND is false if either side is false; OR is true if
	// either side is true, regardless of the other side being null.
	if e.Op == ast.OpAnd && lIsBool && !lb {
		return false, nil
	}
	if e.Op == ast.OpOr && lIsBool && lb {
		return true, nil
	}

	right, err := Eval(e.Right, ctx)
	if err != nil {
		return nil, err
	}
	rb, rIsBool := right.(bool)

	if e.Op == ast.OpAnd {
		if rIsBool && !rb {
			return false, nil
		}
		if lIsBool && rIsBool {
			return lb && rb, nil
		}
		return nil, nil
	}
	// OpOr
	if rIsBool && rb {
		return true, nil
	}
	if lIsBool && rIsBool {
		return lb || rb, nil
	}
	return nil, nil
}

func evalArithmetic(op ast.BinaryOp, left, right cyphergraph.Value, exprText string) (cyphergraph.Value, error) {
	if cyphergraph.IsNull(left) || cyphergraph.IsNull(right) {
		return nil, nil
	}

	if op == ast.OpAdd {
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				return ls + rs, nil
			}
		}
	}

	lf, lok := numeric(left)
	rf, rok := numeric(right)
	if !lok || !rok {
		return nil, &cyphergraph.EvaluationError{Expr: exprText, Reason: "arithmetic requires numeric operands"}
	}

	_, lIsFloat := left.(float64)
	_, rIsFloat := right.(float64)
	resultIsFloat := lIsFloat || rIsFloat

	switch op {
	case ast.OpAdd:
		return numericResult(lf+rf, resultIsFloat), nil
	case ast.OpSub:
		return numericResult(lf-rf, resultIsFloat), nil
	case ast.OpMul:
		return numericResult(lf*rf, resultIsFloat), nil
	case ast.OpDiv:
		if rf == 0 {
			return nil, &cyphergraph.EvaluationError{Expr: exprText, Reason: "division by zero"}
		}
		return numericResult(lf/rf, resultIsFloat), nil
	case ast.OpMod:
		if rf == 0 {
			return nil, &cyphergraph.EvaluationError{Expr: exprText, Reason: "modulo by zero"}
		}
		return numericResult(math.Mod(lf, rf), resultIsFloat), nil
	}
	return nil, &cyphergraph.EvaluationError{Expr: exprText, Reason: "unknown arithmetic operator"}
}

func numeric(v cyphergraph.Value) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func numericResult(f float64, asFloat bool) cyphergraph.Value {
	if asFloat {
		return f
	}
	return int64(f)
}

func evalFunctionCall(e ast.FunctionCall, ctx Context) (cyphergraph.Value, error) {
	args := make([]cyphergraph.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := Eval(a, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if e.Namespace != "" {
		return callProcedure(e, args, ctx)
	}

	if fn, ok := builtins[e.Name]; ok {
		return fn(args)
	}
	return nil, &cyphergraph.EvaluationError{Expr: e.String(), Reason: fmt.Sprintf("unknown function %q", e.Name)}
}

func callProcedure(e ast.FunctionCall, args []cyphergraph.Value, ctx Context) (cyphergraph.Value, error) {
	if ctx.Procedures == nil {
		return nil, &cyphergraph.EvaluationError{Expr: e.String(), Reason: "no procedure registry available"}
	}
	proc, ok := ctx.Procedures.Get(e.Namespace, e.Name)
	if !ok {
		return nil, &cyphergraph.EvaluationError{Expr: e.String(), Reason: fmt.Sprintf("unregistered procedure %s.%s", e.Namespace, e.Name)}
	}
	rows, err := proc.Call(args)
	if err != nil {
		return nil, cyphergraph.WrapGraphModelError(e.String(), err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, nil
	}
	row := rows.Row()
	if len(row) == 0 {
		return nil, nil
	}
	if len(row) == 1 {
		return row[0], nil
	}
	out := make([]cyphergraph.Value, len(row))
	copy(out, row)
	return out, nil
}
