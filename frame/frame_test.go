package frame

import (
	"testing"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
)

func col(name string, t cyphergraph.Type) Column { return Column{Name: name, Type: t} }

func strFrame(colName string, values ...string) *Frame {
	schema := Schema{col(colName, cyphergraph.TypeString)}
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{v}
	}
	return FromRows(schema, rows)
}

func drainAll(t *testing.T, f *Frame) []Row {
	t.Helper()
	it, err := f.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	rows, err := Drain(it)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	return rows
}

func TestSelectRenamesAndSubsets(t *testing.T) {
	schema := Schema{col("a", cyphergraph.TypeInteger), col("b", cyphergraph.TypeString)}
	f := FromRows(schema, []Row{{int64(1), "x"}, {int64(2), "y"}})

	out, err := f.Select([]SelectColumn{{Source: "b", Alias: "label"}})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := out.Schema().Names(); len(got) != 1 || got[0] != "label" {
		t.Fatalf("schema = %v, want [label]", got)
	}
	rows := drainAll(t, out)
	if rows[0][0] != "x" || rows[1][0] != "y" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestSelectUnknownColumnErrors(t *testing.T) {
	f := strFrame("a", "1")
	_, err := f.Select([]SelectColumn{{Source: "missing"}})
	if _, ok := err.(*cyphergraph.SchemaError); !ok {
		t.Fatalf("expected *cyphergraph.SchemaError, got %v", err)
	}
}

func TestProjectEvaluatesExpression(t *testing.T) {
	schema := Schema{col("n", cyphergraph.TypeInteger)}
	f := FromRows(schema, []Row{{int64(1)}, {int64(2)}})

	out := f.Project([]ProjectItem{
		{Name: "doubled", Expr: ast.BinaryExpr{Op: ast.OpAdd, Left: ast.VariableRef{Name: "n"}, Right: ast.VariableRef{Name: "n"}}},
	}, EvalEnv{})

	rows := drainAll(t, out)
	if rows[0][0] != int64(2) || rows[1][0] != int64(4) {
		t.Fatalf("rows = %v", rows)
	}
}

func TestFilterKeepsOnlyTruthyRows(t *testing.T) {
	schema := Schema{col("n", cyphergraph.TypeInteger)}
	f := FromRows(schema, []Row{{int64(1)}, {int64(2)}, {int64(3)}})

	out := f.Filter(ast.BinaryExpr{
		Op:    ast.OpGT,
		Left:  ast.VariableRef{Name: "n"},
		Right: ast.Literal{Value: int64(1)},
	}, EvalEnv{})

	rows := drainAll(t, out)
	if len(rows) != 2 || rows[0][0] != int64(2) || rows[1][0] != int64(3) {
		t.Fatalf("rows = %v", rows)
	}
}

func TestSkipAndTake(t *testing.T) {
	f := strFrame("v", "a", "b", "c", "d")

	skipped := drainAll(t, f.Skip(2))
	if len(skipped) != 2 || skipped[0][0] != "c" {
		t.Fatalf("skip: %v", skipped)
	}

	taken := drainAll(t, f.Take(2))
	if len(taken) != 2 || taken[1][0] != "b" {
		t.Fatalf("take: %v", taken)
	}

	if got := drainAll(t, f.Skip(10)); len(got) != 0 {
		t.Fatalf("skip past end: %v", got)
	}
	if got := drainAll(t, f.Take(0)); len(got) != 0 {
		t.Fatalf("take(0): %v", got)
	}
}

// TestFilterThenOrderBy exercises the filter-then-sort chain (S3-style:
// filter a column, then verify the survivors in order).
func TestFilterThenOrderBy(t *testing.T) {
	schema := Schema{col("name", cyphergraph.TypeString), col("age", cyphergraph.TypeInteger)}
	f := FromRows(schema, []Row{
		{"carol", int64(40)},
		{"alice", int64(30)},
		{"bob", int64(17)},
	})

	adults := f.Filter(ast.BinaryExpr{
		Op:    ast.OpGTE,
		Left:  ast.VariableRef{Name: "age"},
		Right: ast.Literal{Value: int64(18)},
	}, EvalEnv{})

	ordered := adults.OrderBy([]OrderByKey{{Column: 0, Ascending: true}})
	rows := drainAll(t, ordered)
	if len(rows) != 2 || rows[0][0] != "alice" || rows[1][0] != "carol" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestOrderBySortsNullGreatestAscending(t *testing.T) {
	schema := Schema{col("v", cyphergraph.TypeInteger)}
	f := FromRows(schema, []Row{{int64(2)}, {nil}, {int64(1)}})

	out := f.OrderBy([]OrderByKey{{Column: 0, Ascending: true}})
	rows := drainAll(t, out)
	if rows[0][0] != int64(1) || rows[1][0] != int64(2) || rows[2][0] != nil {
		t.Fatalf("rows = %v", rows)
	}
}

// TestOrderByStableOnEqualKeys mirrors a stability scenario: rows with
// equal sort-key values must keep their relative input order.
func TestOrderByStableOnEqualKeys(t *testing.T) {
	schema := Schema{col("label", cyphergraph.TypeString), col("rank", cyphergraph.TypeInteger)}
	f := FromRows(schema, []Row{
		{"a", int64(1)},
		{"b", int64(1)},
		{"c", int64(1)},
	})

	out := f.OrderBy([]OrderByKey{{Column: 1, Ascending: true}})
	rows := drainAll(t, out)
	if rows[0][0] != "a" || rows[1][0] != "b" || rows[2][0] != "c" {
		t.Fatalf("stability violated: %v", rows)
	}
}

func TestDistinctPreservesFirstOccurrenceOrder(t *testing.T) {
	f := strFrame("v", "a", "b", "a", "c", "b")
	rows := drainAll(t, f.Distinct())
	if len(rows) != 3 || rows[0][0] != "a" || rows[1][0] != "b" || rows[2][0] != "c" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestJoinOnCommonColumn(t *testing.T) {
	left := FromRows(
		Schema{col("id", cyphergraph.TypeInteger), col("name", cyphergraph.TypeString)},
		[]Row{{int64(1), "alice"}, {int64(2), "bob"}},
	)
	right := FromRows(
		Schema{col("id", cyphergraph.TypeInteger), col("city", cyphergraph.TypeString)},
		[]Row{{int64(1), "nyc"}, {int64(2), "sf"}, {int64(3), "la"}},
	)

	out, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	names := out.Schema().Names()
	if len(names) != 3 {
		t.Fatalf("schema = %v", names)
	}
	rows := drainAll(t, out)
	if len(rows) != 2 {
		t.Fatalf("expected 2 matched rows, got %v", rows)
	}
}

// TestJoinDropsDuplicateRelationshipBindings covers the case of a pattern
// like (a)-[r]-(b)-[p]-(c): a result row binding the same relationship
// identity to two columns must be dropped.
func TestJoinDropsDuplicateRelationshipBindings(t *testing.T) {
	n1 := cyphergraph.NewNodeID("n1")
	n2 := cyphergraph.NewNodeID("n2")
	n3 := cyphergraph.NewNodeID("n3")
	r1 := cyphergraph.NewRelationship(cyphergraph.NewRelID("r1"), "KNOWS", n1, n2, nil)
	r2 := cyphergraph.NewRelationship(cyphergraph.NewRelID("r2"), "KNOWS", n2, n3, nil)

	left := FromRows(
		Schema{col("b", cyphergraph.TypeNode), col("r", cyphergraph.TypeRelationship)},
		[]Row{
			{cyphergraph.NewNode(n2, nil, nil), r1},
			{cyphergraph.NewNode(n2, nil, nil), r2},
		},
	)
	right := FromRows(
		Schema{col("b", cyphergraph.TypeNode), col("p", cyphergraph.TypeRelationship)},
		[]Row{
			{cyphergraph.NewNode(n2, nil, nil), r1},
			{cyphergraph.NewNode(n2, nil, nil), r2},
		},
	)

	out, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	rows := drainAll(t, out)
	// Of the 2x2 cross product on matching b, the two combinations that
	// reuse the same relationship for both r and p must be dropped,
	// leaving only the two where r != p.
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after dedup, got %d: %v", len(rows), rows)
	}
	for _, row := range rows {
		r := row[1].(cyphergraph.Relationship)
		p := row[2].(cyphergraph.Relationship)
		if r.ID.Equal(p.ID) {
			t.Fatalf("row retained duplicate relationship binding: %v", row)
		}
	}
}

func TestJoinWithNoCommonColumnsIsCrossProduct(t *testing.T) {
	left := FromRows(Schema{col("a", cyphergraph.TypeString)}, []Row{{"x"}, {"y"}})
	right := FromRows(Schema{col("b", cyphergraph.TypeString)}, []Row{{"1"}, {"2"}, {"3"}})

	out, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	rows := drainAll(t, out)
	if len(rows) != 6 {
		t.Fatalf("expected cross product of 6, got %d", len(rows))
	}
}
