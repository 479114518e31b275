// Package planner builds a schema-bearing, operator-independent logical
// plan tree (plan.LPTNode) from a parsed query and its semantic state.
// It decides what a query computes; physical lowering decides how.
package planner

import (
	"fmt"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
	"github.com/wbrown/cyphergraph/eval"
	"github.com/wbrown/cyphergraph/frame"
	"github.com/wbrown/cyphergraph/parser"
	"github.com/wbrown/cyphergraph/plan"
)

// ScanSpec is the payload of a Scan LPT node: enumerate nodes bound to
// Variable, filtered by Labels and by evaluating PropertyExprs.
type ScanSpec struct {
	Variable      ast.Symbol
	Labels        []string
	PropertyExprs map[string]ast.Expression
}

// ExpandSpec is the payload of an Expand LPT node: walk edges out of
// FromVar in Direction, emitting RelVar/ToVar columns.
type ExpandSpec struct {
	FromVar          ast.Symbol
	RelVar           ast.Symbol
	ToVar            ast.Symbol
	Direction        cyphergraph.Direction
	RelTypes         []string
	RelPropertyExprs map[string]ast.Expression
	ToLabels         []string
	ToPropertyExprs  map[string]ast.Expression
}

// ProjectSpec is the payload of a Project LPT node.
type ProjectSpec struct {
	Items    []ast.ReturnItem
	Distinct bool
}

// CreateSpec is the payload of a Create LPT node.
type CreateSpec struct {
	Patterns []ast.PathPattern
}

// Plan builds the logical plan tree for q. semantic supplies variable
// type information gathered while parsing.
func Plan(q *ast.Query, semantic *parser.SemanticState) (*plan.LPTNode, error) {
	types := make(map[ast.Symbol]cyphergraph.Type)
	if semantic != nil {
		for k, v := range semantic.VariableTypes {
			types[k] = v
		}
	}

	running := unitNode()
	for _, clause := range q.Clauses {
		var err error
		running, err = planClause(running, clause, types)
		if err != nil {
			return nil, err
		}
	}
	return running, nil
}

func unitNode() *plan.LPTNode {
	return plan.NewLPTNode(plan.KindProject, frame.Schema{}, "unit")
}

func planClause(running *plan.LPTNode, clause ast.Clause, types map[ast.Symbol]cyphergraph.Type) (*plan.LPTNode, error) {
	switch c := clause.(type) {
	case ast.MatchClause:
		return planMatch(running, c, types)
	case ast.CreateClause:
		schema := append(append(frame.Schema{}, running.Schema...), patternColumns(c.Patterns, running.Schema)...)
		node := plan.NewLPTNode(plan.KindCreate, schema, "", running)
		node.Payload = CreateSpec{Patterns: c.Patterns}
		return node, nil
	case ast.WithClause:
		schema := projectSchema(c.Items, running.Schema, types)
		node := plan.NewLPTNode(plan.KindProject, schema, projectDetail(c.Items), running)
		node.Payload = ProjectSpec{Items: c.Items, Distinct: c.Distinct}
		if c.Distinct {
			node = plan.NewLPTNode(plan.KindDistinct, schema, "", node)
		}
		if c.Where != nil {
			node = plan.NewLPTNode(plan.KindFilter, schema, c.Where.String(), node)
			node.Payload = c.Where
		}
		return node, nil
	case ast.ReturnClause:
		schema := projectSchema(c.Items, running.Schema, types)
		node := plan.NewLPTNode(plan.KindProject, schema, projectDetail(c.Items), running)
		node.Payload = ProjectSpec{Items: c.Items, Distinct: c.Distinct}
		if c.Distinct {
			node = plan.NewLPTNode(plan.KindDistinct, schema, "", node)
		}
		ret := plan.NewLPTNode(plan.KindReturn, schema, projectDetail(c.Items), node)
		return ret, nil
	case ast.OrderByClause:
		node := plan.NewLPTNode(plan.KindOrderBy, running.Schema, "", running)
		node.Payload = c.Items
		return node, nil
	case ast.SkipClause:
		node := plan.NewLPTNode(plan.KindSkip, running.Schema, c.Count.String(), running)
		node.Payload = c.Count
		return node, nil
	case ast.LimitClause:
		node := plan.NewLPTNode(plan.KindTake, running.Schema, c.Count.String(), running)
		node.Payload = c.Count
		return node, nil
	default:
		return nil, fmt.Errorf("cyphergraph: unsupported clause %T", clause)
	}
}

func planMatch(running *plan.LPTNode, c ast.MatchClause, types map[ast.Symbol]cyphergraph.Type) (*plan.LPTNode, error) {
	var legs []*plan.LPTNode
	for _, path := range c.Patterns {
		leg, err := planPath(path, types)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg...)
	}

	matched := legs[0]
	for _, leg := range legs[1:] {
		schema := joinSchema(matched.Schema, leg.Schema)
		matched = plan.NewLPTNode(plan.KindJoin, schema, "", matched, leg)
	}

	if c.Where != nil {
		matched = plan.NewLPTNode(plan.KindFilter, matched.Schema, c.Where.String(), matched)
		matched.Payload = c.Where
	}

	schema := joinSchema(running.Schema, matched.Schema)
	joined := plan.NewLPTNode(plan.KindJoin, schema, "", running, matched)
	if c.Optional {
		joined.Detail = "optional"
	}
	joined.Payload = c.Optional
	return joined, nil
}

// planPath lowers one pattern path into a single leg: a Scan for the
// first node with one Expand per edge chained on top of it. A
// single-node pattern (no relationships) yields just the Scan.
func planPath(path ast.PathPattern, types map[ast.Symbol]cyphergraph.Type) ([]*plan.LPTNode, error) {
	first := scanNode(path.Nodes[0], types)
	if len(path.Rels) == 0 {
		return []*plan.LPTNode{first}, nil
	}

	legs := make([]*plan.LPTNode, 0, len(path.Rels))
	prev := first
	for i, rel := range path.Rels {
		to := path.Nodes[i+1]
		relProps := rel.Properties
		toProps := to.Properties
		schema := append(append(frame.Schema{}, prev.Schema...),
			frame.Column{Name: string(rel.Variable), Type: cyphergraph.TypeRelationship},
			frame.Column{Name: string(to.Variable), Type: cyphergraph.TypeNode})

		spec := ExpandSpec{
			FromVar:          path.Nodes[i].Variable,
			RelVar:           rel.Variable,
			ToVar:            to.Variable,
			Direction:        rel.Direction,
			RelTypes:         rel.Types,
			RelPropertyExprs: relProps,
			ToLabels:         to.Labels,
			ToPropertyExprs:  toProps,
		}
		node := plan.NewLPTNode(plan.KindExpand, schema, expandDetail(spec), prev)
		node.Payload = spec
		legs = append(legs, node)
		prev = node
	}
	return []*plan.LPTNode{legs[len(legs)-1]}, nil
}

func scanNode(np ast.NodePattern, types map[ast.Symbol]cyphergraph.Type) *plan.LPTNode {
	t := cyphergraph.TypeNode
	if np.Variable != "" {
		if tt, ok := types[np.Variable]; ok {
			t = tt
		}
	}
	schema := frame.Schema{{Name: string(np.Variable), Type: t}}
	node := plan.NewLPTNode(plan.KindScan, schema, scanDetail(np))
	node.Payload = ScanSpec{Variable: np.Variable, Labels: np.Labels, PropertyExprs: np.Properties}
	return node
}

func patternColumns(patterns []ast.PathPattern, existing frame.Schema) frame.Schema {
	var cols frame.Schema
	for _, p := range patterns {
		for _, n := range p.Nodes {
			if existing.IndexOf(string(n.Variable)) < 0 {
				cols = append(cols, frame.Column{Name: string(n.Variable), Type: cyphergraph.TypeNode})
			}
		}
		for _, r := range p.Rels {
			cols = append(cols, frame.Column{Name: string(r.Variable), Type: cyphergraph.TypeRelationship})
		}
	}
	return cols
}

func joinSchema(a, b frame.Schema) frame.Schema {
	seen := make(map[string]bool, len(a))
	out := append(frame.Schema{}, a...)
	for _, c := range a {
		seen[c.Name] = true
	}
	for _, c := range b {
		if !seen[c.Name] {
			out = append(out, c)
			seen[c.Name] = true
		}
	}
	return out
}

func projectSchema(items []ast.ReturnItem, src frame.Schema, types map[ast.Symbol]cyphergraph.Type) frame.Schema {
	env := make(map[ast.Symbol]cyphergraph.Type, len(src))
	for _, c := range src {
		env[ast.Symbol(c.Name)] = c.Type
	}
	for k, v := range types {
		if _, ok := env[k]; !ok {
			env[k] = v
		}
	}
	schema := make(frame.Schema, len(items))
	for i, item := range items {
		name := string(item.Alias)
		if name == "" {
			name = item.Expr.String()
		}
		schema[i] = frame.Column{Name: name, Type: eval.TypeOf(item.Expr, env)}
	}
	return schema
}

func projectDetail(items []ast.ReturnItem) string {
	s := ""
	for i, item := range items {
		if i > 0 {
			s += ", "
		}
		if item.Alias != "" {
			s += item.Expr.String() + " AS " + string(item.Alias)
		} else {
			s += item.Expr.String()
		}
	}
	return s
}

func scanDetail(np ast.NodePattern) string {
	s := string(np.Variable)
	for _, l := range np.Labels {
		s += ":" + l
	}
	return s
}

func expandDetail(spec ExpandSpec) string {
	return fmt.Sprintf("%s-[%s]->%s", spec.FromVar, spec.RelVar, spec.ToVar)
}
