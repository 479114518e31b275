package runner

import (
	"strings"
	"testing"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/graph/memgraph"
)

func seededGraph() *memgraph.Graph {
	g := memgraph.New()
	alice := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Alice", "age": int64(30)})
	bob := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Bob", "age": int64(25)})
	charlie := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Charlie", "age": int64(35)})
	g.AddRelationship("KNOWS", alice.ID, bob.ID, nil)
	g.AddRelationship("KNOWS", alice.ID, charlie.ID, nil)
	g.AddRelationship("KNOWS", bob.ID, charlie.ID, nil)
	return g
}

func TestRunMatchReturnYieldsExpectedRows(t *testing.T) {
	r := NewRunner(seededGraph())
	result, err := r.Run("MATCH (n:Person) RETURN n.name AS name ORDER BY name", nil)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := result.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row[0].(string)
	}
	want := []string{"Alice", "Bob", "Charlie"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("row %d: got %q, want %q", i, names[i], n)
		}
	}
}

func TestResultRecordsIsMemoizedAcrossCalls(t *testing.T) {
	r := NewRunner(seededGraph())
	result, err := r.Run("MATCH (n:Person) RETURN n", nil)
	if err != nil {
		t.Fatal(err)
	}
	first, err := result.Records()
	if err != nil {
		t.Fatal(err)
	}
	second, err := result.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("second call returned a different row count: %d vs %d", len(second), len(first))
	}
}

func TestShowRendersATableWithHeaderAndRows(t *testing.T) {
	r := NewRunner(seededGraph())
	result, err := r.Run("MATCH (n:Person) RETURN n.name AS name ORDER BY name", nil)
	if err != nil {
		t.Fatal(err)
	}
	table, err := result.Show(0)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"NAME", "Alice", "Bob", "Charlie"} {
		if !strings.Contains(table, want) {
			t.Errorf("rendered table missing %q:\n%s", want, table)
		}
	}
}

func TestShowRespectsLimit(t *testing.T) {
	r := NewRunner(seededGraph())
	result, err := r.Run("MATCH (n:Person) RETURN n.name AS name ORDER BY name", nil)
	if err != nil {
		t.Fatal(err)
	}
	table, err := result.Show(1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(table, "Alice") {
		t.Errorf("expected first row Alice in limited output:\n%s", table)
	}
	if strings.Contains(table, "Charlie") {
		t.Errorf("limit=1 should not include Charlie:\n%s", table)
	}
}

func TestInvocationParamResolvesWhereParameter(t *testing.T) {
	r := NewRunner(seededGraph())
	result, err := r.Run("MATCH (n:Person) WHERE n.name = $name RETURN n.name AS name", map[string]cyphergraph.Value{"name": "Bob"})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := result.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0] != "Bob" {
		t.Fatalf("expected a single Bob row, got %v", rows)
	}
}

func TestCreateClauseAddsNodesVisibleToSubsequentQueries(t *testing.T) {
	g := seededGraph()
	r := NewRunner(g)
	if _, err := r.Run("CREATE (n:Person {name: 'Dana'})", nil); err != nil {
		t.Fatal(err)
	}
	result, err := r.Run("MATCH (n:Person) RETURN n.name AS name", nil)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := result.Records()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 people after CREATE, got %d", len(rows))
	}
}

func TestAnnotationsCollectNodeExecutionEvents(t *testing.T) {
	r := NewRunner(seededGraph())
	r.EnableAnnotations(true)
	result, err := r.Run("MATCH (n:Person) RETURN n", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := result.Records(); err != nil {
		t.Fatal(err)
	}
	if len(r.collector.Events) == 0 {
		t.Error("expected at least one recorded plan-execution event with annotations enabled")
	}
}

func TestLogicalAndPhysicalPlanRenderNonEmptyTrees(t *testing.T) {
	r := NewRunner(seededGraph())
	compiled, err := r.Compile("MATCH (n:Person) RETURN n.name AS name")
	if err != nil {
		t.Fatal(err)
	}
	result, err := r.RunCompiled(compiled, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.LogicalPlan(), "Return") {
		t.Errorf("expected logical plan to mention Return:\n%s", result.LogicalPlan())
	}
	if result.PhysicalPlan() == "" {
		t.Error("expected a non-empty physical plan render")
	}
}

func TestCompileIsCachedAcrossIdenticalQueryText(t *testing.T) {
	r := NewRunner(seededGraph())
	query := "MATCH (n:Person) RETURN n"
	if _, err := r.Compile(query); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Compile(query); err != nil {
		t.Fatal(err)
	}
	_, misses, _ := r.cache.Stats()
	if misses != 1 {
		t.Errorf("expected exactly one cache miss for repeated identical query text, got %d", misses)
	}
}
