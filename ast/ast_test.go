package ast

import "testing"

func TestBinaryExprRequiredSymbols(t *testing.T) {
	expr := BinaryExpr{
		Op:   OpEQ,
		Left: PropertyAccess{Target: VariableRef{Name: "n"}, Property: "name"},
		Right: Literal{Value: "x"},
	}
	syms := expr.RequiredSymbols()
	if len(syms) != 1 || syms[0] != "n" {
		t.Fatalf("expected [n], got %v", syms)
	}
}

func TestFunctionCallRequiredSymbolsUnionsArgs(t *testing.T) {
	call := FunctionCall{
		Name: "coalesce",
		Args: []Expression{VariableRef{Name: "a"}, VariableRef{Name: "b"}},
	}
	syms := call.RequiredSymbols()
	if len(syms) != 2 {
		t.Fatalf("expected 2 symbols, got %v", syms)
	}
}
