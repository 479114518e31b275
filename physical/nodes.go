// Package physical lowers a logical plan tree into a physical one whose
// nodes know how to execute: scans and expansions bind to graph.Model,
// filter/project/join/etc. bind to the frame operator algebra.
package physical

import (
	"fmt"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
	"github.com/wbrown/cyphergraph/eval"
	"github.com/wbrown/cyphergraph/frame"
	"github.com/wbrown/cyphergraph/graph"
	"github.com/wbrown/cyphergraph/plan"
	"github.com/wbrown/cyphergraph/planctx"
	"github.com/wbrown/cyphergraph/planner"
)

// node is the common embeddable base every physical node shares: it
// implements Treeable and Kind() so concrete nodes only need Execute.
type node struct {
	kind     plan.NodeKind
	label    string
	children []plan.PPTNode
}

func (n *node) Kind() plan.NodeKind    { return n.kind }
func (n *node) Label() string          { return n.label }
func (n *node) Children() []plan.Treeable {
	out := make([]plan.Treeable, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func evalEmpty(expr ast.Expression, env frame.EvalEnv) (cyphergraph.Value, error) {
	return eval.Eval(expr, eval.NewContext(nil, env.Params, env.Procedures))
}

func evalProperties(props map[string]ast.Expression, env frame.EvalEnv) (map[string]cyphergraph.Value, error) {
	if len(props) == 0 {
		return nil, nil
	}
	out := make(map[string]cyphergraph.Value, len(props))
	for k, expr := range props {
		v, err := evalEmpty(expr, env)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func evalRowProperties(props map[string]ast.Expression, bindings map[ast.Symbol]cyphergraph.Value, env frame.EvalEnv) (map[string]cyphergraph.Value, error) {
	if len(props) == 0 {
		return nil, nil
	}
	ctx := eval.NewContext(bindings, env.Params, env.Procedures)
	out := make(map[string]cyphergraph.Value, len(props))
	for k, expr := range props {
		v, err := eval.Eval(expr, ctx)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func evalCount(expr ast.Expression, env frame.EvalEnv) (int, error) {
	v, err := evalEmpty(expr, env)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("cyphergraph: SKIP/LIMIT count must be an integer, got %T", v)
	}
}

// unitNode produces the single-row, zero-column frame that seeds a plan
// with no upstream bindings.
type unitNode struct{ node }

func (n *unitNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		return frame.FromRows(frame.Schema{}, []frame.Row{{}}), nil
	})
}

// scanNode enumerates nodes matching a label/property filter.
type scanNode struct {
	node
	spec planner.ScanSpec
}

func (n *scanNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		props, err := evalProperties(n.spec.PropertyExprs, ctx.Env())
		if err != nil {
			return nil, err
		}
		filter := cyphergraph.NodeFilter{Labels: n.spec.Labels, Properties: props}
		it, err := ctx.Model().NodesFiltered(filter)
		if err != nil {
			return nil, err
		}
		schema := frame.Schema{{Name: string(n.spec.Variable), Type: cyphergraph.TypeNode}}
		rows, err := drainNodes(it)
		if err != nil {
			return nil, err
		}
		return frame.FromRows(schema, rows), nil
	})
}

func drainNodes(it graph.NodeIterator) ([]frame.Row, error) {
	defer it.Close()
	var rows []frame.Row
	for it.Next() {
		rows = append(rows, frame.Row{it.Node()})
	}
	return rows, it.Err()
}

// expandNode walks, per input row, the edges out of FromVar, skipping any
// relationship the row already binds so one path never reuses an edge.
type expandNode struct {
	node
	spec  planner.ExpandSpec
	child plan.PPTNode
}

func (n *expandNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		childFrame, err := n.child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		srcSchema := childFrame.Schema()
		fromIdx := srcSchema.IndexOf(string(n.spec.FromVar))
		if fromIdx < 0 {
			return nil, fmt.Errorf("cyphergraph: expand source variable %q not bound", n.spec.FromVar)
		}
		schema := append(append(frame.Schema{}, srcSchema...),
			frame.Column{Name: string(n.spec.RelVar), Type: cyphergraph.TypeRelationship},
			frame.Column{Name: string(n.spec.ToVar), Type: cyphergraph.TypeNode})

		relProps, err := evalProperties(n.spec.RelPropertyExprs, ctx.Env())
		if err != nil {
			return nil, err
		}
		toProps, err := evalProperties(n.spec.ToPropertyExprs, ctx.Env())
		if err != nil {
			return nil, err
		}
		relFilter := cyphergraph.RelationshipFilter{Types: n.spec.RelTypes, Properties: relProps}
		endFilter := cyphergraph.NodeFilter{Labels: n.spec.ToLabels, Properties: toProps}

		srcRows, err := drainFrame(childFrame)
		if err != nil {
			return nil, err
		}

		var rows []frame.Row
		for _, row := range srcRows {
			startNode, ok := row[fromIdx].(cyphergraph.Node)
			if !ok {
				continue
			}
			pit, err := ctx.Model().Expand(startNode.ID, n.spec.Direction, relFilter, endFilter)
			if err != nil {
				return nil, err
			}
			for pit.Next() {
				triple := pit.Triple()
				reused := false
				for _, v := range row {
					if r, ok := v.(cyphergraph.Relationship); ok && r.ID.Equal(triple.Rel.ID) {
						reused = true
						break
					}
				}
				if reused {
					continue
				}
				out := make(frame.Row, 0, len(row)+2)
				out = append(out, row...)
				out = append(out, triple.Rel, triple.EndNode)
				rows = append(rows, out)
			}
			if err := pit.Err(); err != nil {
				pit.Close()
				return nil, err
			}
			pit.Close()
		}
		return frame.FromRows(schema, rows), nil
	})
}

func drainFrame(f *frame.Frame) ([]frame.Row, error) {
	it, err := f.Rows()
	if err != nil {
		return nil, err
	}
	return frame.Drain(it)
}

// filterNode wraps frame.Filter.
type filterNode struct {
	node
	predicate ast.Expression
	child     plan.PPTNode
}

func (n *filterNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		cf, err := n.child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		return cf.Filter(n.predicate, ctx.Env()), nil
	})
}

// projectNode wraps frame.Project.
type projectNode struct {
	node
	spec  planner.ProjectSpec
	child plan.PPTNode
}

func (n *projectNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		cf, err := n.child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]frame.ProjectItem, len(n.spec.Items))
		for i, it := range n.spec.Items {
			name := string(it.Alias)
			if name == "" {
				name = it.Expr.String()
			}
			items[i] = frame.ProjectItem{Name: name, Expr: it.Expr}
		}
		return cf.Project(items, ctx.Env()), nil
	})
}

// distinctNode wraps frame.Distinct.
type distinctNode struct {
	node
	child plan.PPTNode
}

func (n *distinctNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		cf, err := n.child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		return cf.Distinct(), nil
	})
}

// skipNode/takeNode wrap frame.Skip/frame.Take, evaluating their count
// expression once against the run's parameters.
type skipNode struct {
	node
	count ast.Expression
	child plan.PPTNode
}

func (n *skipNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		cf, err := n.child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		count, err := evalCount(n.count, ctx.Env())
		if err != nil {
			return nil, err
		}
		return cf.Skip(count), nil
	})
}

type takeNode struct {
	node
	count ast.Expression
	child plan.PPTNode
}

func (n *takeNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		cf, err := n.child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		count, err := evalCount(n.count, ctx.Env())
		if err != nil {
			return nil, err
		}
		return cf.Take(count), nil
	})
}

// orderByNode projects temporary sort-key columns, sorts, then drops
// them, so a sort key can be any expression, not just an existing column.
type orderByNode struct {
	node
	items []ast.OrderByItem
	child plan.PPTNode
}

func (n *orderByNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		cf, err := n.child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		if len(n.items) == 0 {
			return cf.OrderBy(nil), nil
		}

		baseCols := cf.Schema().Names()
		items := make([]frame.ProjectItem, 0, len(baseCols)+len(n.items))
		for _, name := range baseCols {
			items = append(items, frame.ProjectItem{Name: name, Expr: ast.VariableRef{Name: ast.Symbol(name)}})
		}
		keys := make([]frame.OrderByKey, len(n.items))
		for i, item := range n.items {
			keyName := fmt.Sprintf("__sort%d", i)
			items = append(items, frame.ProjectItem{Name: keyName, Expr: item.Expr})
			keys[i] = frame.OrderByKey{Column: len(baseCols) + i, Ascending: item.Ascending}
		}

		withKeys := cf.Project(items, ctx.Env())
		sorted := withKeys.OrderBy(keys)

		selectCols := make([]frame.SelectColumn, len(baseCols))
		for i, name := range baseCols {
			selectCols[i] = frame.SelectColumn{Source: name}
		}
		return sorted.Select(selectCols)
	})
}

// joinNode wraps frame.Join for inner matches. When optional is true, it
// instead performs a left-outer merge: driving rows with no match on the
// right still appear, padded with nulls for the right's new columns.
type joinNode struct {
	node
	optional    bool
	left, right plan.PPTNode
}

func (n *joinNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		lf, err := n.left.Execute(ctx)
		if err != nil {
			return nil, err
		}
		rf, err := n.right.Execute(ctx)
		if err != nil {
			return nil, err
		}
		if !n.optional {
			return lf.Join(rf)
		}
		return leftOuterJoin(lf, rf)
	})
}

// leftOuterJoin matches OPTIONAL MATCH semantics: every left row appears
// at least once. Rows with a match are extended per match (minus
// duplicate-relationship bindings, same as an inner join); rows with no
// match are extended with nulls for the right side's new columns.
func leftOuterJoin(left, right *frame.Frame) (*frame.Frame, error) {
	inner, err := left.Join(right)
	if err != nil {
		return nil, err
	}

	leftRows, err := drainFrame(left)
	if err != nil {
		return nil, err
	}
	innerRows, err := drainFrame(inner)
	if err != nil {
		return nil, err
	}

	leftSchema := left.Schema()
	matched := make(map[string]bool, len(innerRows))
	for _, row := range innerRows {
		key := leftKey(row, leftSchema)
		matched[key] = true
	}

	rightOnly := nonJoinColumns(right.Schema(), left.Schema())
	schema := inner.Schema()
	if len(schema) == 0 {
		schema = append(append(frame.Schema{}, leftSchema...), rightOnly...)
	}

	out := append([]frame.Row{}, innerRows...)
	for _, row := range leftRows {
		key := leftKey(row, leftSchema)
		if matched[key] {
			continue
		}
		padded := make(frame.Row, 0, len(row)+len(rightOnly))
		padded = append(padded, row...)
		for range rightOnly {
			padded = append(padded, nil)
		}
		out = append(out, padded)
	}

	return frame.FromRows(schema, out), nil
}

func leftKey(row frame.Row, schema frame.Schema) string {
	s := ""
	for i := range schema {
		s += fmt.Sprintf("%v\x1f", row[i])
	}
	return s
}

func nonJoinColumns(right, left frame.Schema) frame.Schema {
	leftNames := make(map[string]bool, len(left))
	for _, c := range left {
		leftNames[c.Name] = true
	}
	var out frame.Schema
	for _, c := range right {
		if !leftNames[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

// createNode performs a bulk CreateElements call for every row of its
// child, then appends the freshly created node/relationship bindings to
// each row.
type createNode struct {
	node
	spec  planner.CreateSpec
	child plan.PPTNode
}

// pendingNodePrefix marks a relationship endpoint that refers to a node
// being created in the same CreateElements call, by that node's position
// in the call's nodes slice. GraphModel implementations resolve it against
// the identity they assign to nodes[idx] before storing the edge.
const pendingNodePrefix = "__cyphergraph_pending:"

func pendingNodeID(idx int) cyphergraph.NodeID {
	return cyphergraph.NewNodeID(fmt.Sprintf("%s%d", pendingNodePrefix, idx))
}

func (n *createNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return ctx.Node(n.label, func() (*frame.Frame, error) {
		cf, err := n.child.Execute(ctx)
		if err != nil {
			return nil, err
		}
		rows, err := drainFrame(cf)
		if err != nil {
			return nil, err
		}
		srcSchema := cf.Schema()
		newCols := patternNewColumns(n.spec.Patterns, srcSchema)
		schema := append(append(frame.Schema{}, srcSchema...), newCols...)

		var reqNodes []cyphergraph.Node
		var reqRels []cyphergraph.Relationship
		nodeCounts := make([]int, len(rows))
		relCounts := make([]int, len(rows))

		for ri, row := range rows {
			bindings := make(map[ast.Symbol]cyphergraph.Value, len(srcSchema))
			for i, c := range srcSchema {
				bindings[ast.Symbol(c.Name)] = row[i]
			}

			for _, path := range n.spec.Patterns {
				nodeIDs := make([]cyphergraph.NodeID, len(path.Nodes))
				for i, np := range path.Nodes {
					if existing, ok := bindings[np.Variable]; ok {
						if existingNode, ok := existing.(cyphergraph.Node); ok {
							nodeIDs[i] = existingNode.ID
							continue
						}
					}
					props, err := evalRowProperties(np.Properties, bindings, ctx.Env())
					if err != nil {
						return nil, err
					}
					idx := len(reqNodes)
					reqNodes = append(reqNodes, cyphergraph.NewNode(pendingNodeID(idx), np.Labels, props))
					nodeIDs[i] = pendingNodeID(idx)
					nodeCounts[ri]++
				}
				for i, rp := range path.Rels {
					props, err := evalRowProperties(rp.Properties, bindings, ctx.Env())
					if err != nil {
						return nil, err
					}
					relType := ""
					if len(rp.Types) > 0 {
						relType = rp.Types[0]
					}
					reqRels = append(reqRels, cyphergraph.NewRelationship(cyphergraph.RelID{}, relType, nodeIDs[i], nodeIDs[i+1], props))
					relCounts[ri]++
				}
			}
		}

		var created graph.CreatedElements
		if len(reqNodes) > 0 || len(reqRels) > 0 {
			err := ctx.Model().CreateElements(reqNodes, reqRels, func(c graph.CreatedElements) {
				created = c
			})
			if err != nil {
				return nil, err
			}
		}

		out := make([]frame.Row, len(rows))
		nodeOff, relOff := 0, 0
		for ri, row := range rows {
			nEnd, rEnd := nodeOff+nodeCounts[ri], relOff+relCounts[ri]
			out[ri] = buildCreateRow(row, graph.CreatedElements{
				Nodes:         created.Nodes[nodeOff:nEnd],
				Relationships: created.Relationships[relOff:rEnd],
			})
			nodeOff, relOff = nEnd, rEnd
		}
		return frame.FromRows(schema, out), nil
	})
}

// patternNewColumns lists the columns a Create node adds: relationship
// variables are always freshly created, but a node variable already
// present in srcSchema names an existing bound node (a CREATE pattern
// reusing a MATCHed endpoint) and contributes no new column.
func patternNewColumns(patterns []ast.PathPattern, srcSchema frame.Schema) frame.Schema {
	var cols frame.Schema
	for _, p := range patterns {
		for _, n := range p.Nodes {
			if n.Variable != "" && srcSchema.IndexOf(string(n.Variable)) < 0 {
				cols = append(cols, frame.Column{Name: string(n.Variable), Type: cyphergraph.TypeNode})
			}
		}
		for _, r := range p.Rels {
			if r.Variable != "" {
				cols = append(cols, frame.Column{Name: string(r.Variable), Type: cyphergraph.TypeRelationship})
			}
		}
	}
	return cols
}

func buildCreateRow(row frame.Row, created graph.CreatedElements) frame.Row {
	out := append(frame.Row{}, row...)
	for _, n := range created.Nodes {
		out = append(out, n)
	}
	for _, r := range created.Relationships {
		out = append(out, r)
	}
	return out
}

// returnNode is a cosmetic pass-through marking the pipeline's terminal
// projection in plan introspection.
type returnNode struct {
	node
	child plan.PPTNode
}

func (n *returnNode) Execute(ctx planctx.Context) (*frame.Frame, error) {
	return n.child.Execute(ctx)
}
