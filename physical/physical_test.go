package physical

import (
	"testing"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/frame"
	"github.com/wbrown/cyphergraph/graph/memgraph"
	"github.com/wbrown/cyphergraph/parser"
	"github.com/wbrown/cyphergraph/plan"
	"github.com/wbrown/cyphergraph/planctx"
	"github.com/wbrown/cyphergraph/planner"
)

func lowerQuery(t *testing.T, query string) plan.PPTNode {
	t.Helper()
	q, _, semantic, err := parser.Parse(query)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	lpt, err := planner.Plan(q, semantic)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	ppt, err := Lower(lpt)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	return ppt
}

func TestLowerEqualityFilterIsPushedIntoScan(t *testing.T) {
	ppt := lowerQuery(t, "MATCH (n:Person) WHERE n.name = 'Alice' RETURN n")
	var sawFilter, sawPushedScan bool
	var walk func(plan.Treeable)
	walk = func(n plan.Treeable) {
		switch n.(type) {
		case *filterNode:
			sawFilter = true
		case *scanNode:
			if n.(*scanNode).spec.PropertyExprs["name"] != nil {
				sawPushedScan = true
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(ppt)
	if sawFilter {
		t.Error("expected the pushable equality filter to be folded into the scan, not left as a separate Filter node")
	}
	if !sawPushedScan {
		t.Error("expected the scan's PropertyExprs to carry the pushed predicate")
	}
}

func TestLowerZeroSkipIsElided(t *testing.T) {
	ppt := lowerQuery(t, "MATCH (n) RETURN n SKIP 0")
	var walk func(plan.Treeable) bool
	walk = func(n plan.Treeable) bool {
		if _, ok := n.(*skipNode); ok {
			return true
		}
		for _, c := range n.Children() {
			if walk(c) {
				return true
			}
		}
		return false
	}
	if walk(ppt) {
		t.Error("expected SKIP 0 to be optimized away")
	}
}

func TestExecuteMatchReturnAgainstMemgraph(t *testing.T) {
	g := memgraph.New()
	g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Alice"})
	g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Bob"})

	ppt := lowerQuery(t, "MATCH (n:Person) RETURN n.name AS name ORDER BY name")
	ctx := planctx.New(g, frame.EvalEnv{}, nil)
	f, err := ppt.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	it, err := f.Rows()
	if err != nil {
		t.Fatal(err)
	}
	rows, err := frame.Drain(it)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "Alice" || rows[1][0] != "Bob" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestExecuteExpandJoinsOnSharedVariable(t *testing.T) {
	g := memgraph.New()
	a := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Alice"})
	b := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Bob"})
	g.AddRelationship("KNOWS", a.ID, b.ID, nil)

	ppt := lowerQuery(t, "MATCH (a:Person)-[:KNOWS]->(b:Person) RETURN a.name AS a, b.name AS b")
	ctx := planctx.New(g, frame.EvalEnv{}, nil)
	f, err := ppt.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	it, err := f.Rows()
	if err != nil {
		t.Fatal(err)
	}
	rows, err := frame.Drain(it)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0] != "Alice" || rows[0][1] != "Bob" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestExecuteCreateNodeAddsToModel(t *testing.T) {
	g := memgraph.New()
	ppt := lowerQuery(t, "CREATE (n:Person {name: 'Dana'})")
	ctx := planctx.New(g, frame.EvalEnv{}, nil)
	if _, err := ppt.Execute(ctx); err != nil {
		t.Fatal(err)
	}

	it, err := g.Nodes()
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	count := 0
	for it.Next() {
		count++
	}
	if count != 1 {
		t.Fatalf("expected 1 node after CREATE, got %d", count)
	}
}
