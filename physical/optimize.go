package physical

import (
	"github.com/wbrown/cyphergraph/ast"
	"github.com/wbrown/cyphergraph/plan"
)

// maxOptimizePasses bounds the fixpoint loop below; real plans settle in
// one or two passes, this is a generous backstop against an oscillating
// rewrite.
const maxOptimizePasses = 10

// optimize rewrites a physical tree to a fixpoint: filters are pushed
// down toward the scan that can satisfy them, constant-true filters are
// elided, and Skip(0)/Take(unbounded) nodes are dropped.
func optimize(root plan.PPTNode) plan.PPTNode {
	for i := 0; i < maxOptimizePasses; i++ {
		rewritten, changed := rewriteOnce(root)
		root = rewritten
		if !changed {
			break
		}
	}
	return root
}

func rewriteOnce(n plan.PPTNode) (plan.PPTNode, bool) {
	changed := false

	switch node := n.(type) {
	case *filterNode:
		child, childChanged := rewriteOnce(node.child)
		changed = changed || childChanged
		node.child = child
		node.children = []plan.PPTNode{child}

		if isConstantTrue(node.predicate) {
			return child, true
		}
		if pushed, ok := pushFilterIntoScan(node.predicate, child); ok {
			return pushed, true
		}
		return node, changed

	case *skipNode:
		child, childChanged := rewriteOnce(node.child)
		changed = changed || childChanged
		node.child = child
		node.children = []plan.PPTNode{child}
		if lit, ok := node.count.(ast.Literal); ok {
			if n, ok := asInt(lit.Value); ok && n == 0 {
				return child, true
			}
		}
		return node, changed

	case *takeNode:
		child, childChanged := rewriteOnce(node.child)
		changed = changed || childChanged
		node.child = child
		node.children = []plan.PPTNode{child}
		if lit, ok := node.count.(ast.Literal); ok {
			if n, ok := asInt(lit.Value); ok && n < 0 {
				return child, true
			}
		}
		return node, changed

	case *projectNode:
		child, childChanged := rewriteOnce(node.child)
		node.child = child
		node.children = []plan.PPTNode{child}
		return node, childChanged

	case *distinctNode:
		child, childChanged := rewriteOnce(node.child)
		node.child = child
		node.children = []plan.PPTNode{child}
		return node, childChanged

	case *orderByNode:
		child, childChanged := rewriteOnce(node.child)
		node.child = child
		node.children = []plan.PPTNode{child}
		return node, childChanged

	case *returnNode:
		child, childChanged := rewriteOnce(node.child)
		node.child = child
		node.children = []plan.PPTNode{child}
		return node, childChanged

	case *createNode:
		child, childChanged := rewriteOnce(node.child)
		node.child = child
		node.children = []plan.PPTNode{child}
		return node, childChanged

	case *expandNode:
		child, childChanged := rewriteOnce(node.child)
		node.child = child
		node.children = []plan.PPTNode{child}
		return node, childChanged

	case *joinNode:
		left, leftChanged := rewriteOnce(node.left)
		right, rightChanged := rewriteOnce(node.right)
		node.left, node.right = left, right
		node.children = []plan.PPTNode{left, right}
		return node, leftChanged || rightChanged

	default:
		// scanNode, unitNode: leaves, nothing to rewrite.
		return n, false
	}
}

func isConstantTrue(expr ast.Expression) bool {
	lit, ok := expr.(ast.Literal)
	if !ok {
		return false
	}
	b, ok := lit.Value.(bool)
	return ok && b
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// pushFilterIntoScan merges a filter predicate into the scan immediately
// below it when the predicate references only that scan's own variable
// and takes the shape var.prop = <literal/param>, folding it into the
// scan's property filter instead of running as a separate frame.Filter.
func pushFilterIntoScan(predicate ast.Expression, child plan.PPTNode) (plan.PPTNode, bool) {
	scan, ok := child.(*scanNode)
	if !ok {
		return nil, false
	}

	eq, ok := predicate.(ast.BinaryExpr)
	if !ok || eq.Op != ast.OpEQ {
		return nil, false
	}
	prop, ok := eq.Left.(ast.PropertyAccess)
	if !ok {
		return nil, false
	}
	ref, ok := prop.Target.(ast.VariableRef)
	if !ok || ref.Name != scan.spec.Variable {
		return nil, false
	}
	if !isPushable(eq.Right) {
		return nil, false
	}

	merged := scan.spec
	merged.PropertyExprs = cloneProps(scan.spec.PropertyExprs)
	if merged.PropertyExprs == nil {
		merged.PropertyExprs = make(map[string]ast.Expression, 1)
	}
	merged.PropertyExprs[prop.Property] = eq.Right

	return &scanNode{node{kind: plan.KindScan, label: scan.label + " +pred"}, merged}, true
}

func isPushable(expr ast.Expression) bool {
	switch expr.(type) {
	case ast.Literal, ast.Parameter:
		return true
	default:
		return false
	}
}

func cloneProps(props map[string]ast.Expression) map[string]ast.Expression {
	if props == nil {
		return nil
	}
	out := make(map[string]ast.Expression, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
