package parser

import (
	"testing"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
)

func TestParseSimpleMatchReturn(t *testing.T) {
	q, _, _, err := Parse("MATCH (a)-[r]->(b) RETURN a, r, b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(q.Clauses))
	}
	match, ok := q.Clauses[0].(ast.MatchClause)
	if !ok {
		t.Fatalf("expected MatchClause, got %T", q.Clauses[0])
	}
	if len(match.Patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(match.Patterns))
	}
	pp := match.Patterns[0]
	if len(pp.Nodes) != 2 || len(pp.Rels) != 1 {
		t.Fatalf("expected 2 nodes/1 rel, got %d/%d", len(pp.Nodes), len(pp.Rels))
	}
	if pp.Rels[0].Direction != cyphergraph.Outgoing {
		t.Fatalf("expected OUTGOING direction, got %v", pp.Rels[0].Direction)
	}

	ret, ok := q.Clauses[1].(ast.ReturnClause)
	if !ok {
		t.Fatalf("expected ReturnClause, got %T", q.Clauses[1])
	}
	if len(ret.Items) != 3 {
		t.Fatalf("expected 3 return items, got %d", len(ret.Items))
	}
}

func TestParseIncomingDirection(t *testing.T) {
	q, _, _, err := Parse("MATCH (a)<-[r]-(b) RETURN a, r, b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	match := q.Clauses[0].(ast.MatchClause)
	if match.Patterns[0].Rels[0].Direction != cyphergraph.Incoming {
		t.Fatalf("expected INCOMING direction, got %v", match.Patterns[0].Rels[0].Direction)
	}
}

func TestParseUndirectedRelationship(t *testing.T) {
	q, _, _, err := Parse("MATCH (a)-[r]-(b)-[p]-(c) RETURN a, r, b, p, c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	match := q.Clauses[0].(ast.MatchClause)
	pp := match.Patterns[0]
	if len(pp.Nodes) != 3 || len(pp.Rels) != 2 {
		t.Fatalf("expected 3 nodes/2 rels, got %d/%d", len(pp.Nodes), len(pp.Rels))
	}
	for _, r := range pp.Rels {
		if r.Direction != cyphergraph.Both {
			t.Fatalf("expected BOTH direction, got %v", r.Direction)
		}
	}
}

func TestParseWhereFilterBecomesParameter(t *testing.T) {
	q, residuals, _, err := Parse("MATCH (n:Person) WHERE n.name = 'x' RETURN n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	match := q.Clauses[0].(ast.MatchClause)
	if match.Patterns[0].Nodes[0].Labels[0] != "Person" {
		t.Fatalf("expected label Person, got %v", match.Patterns[0].Nodes[0].Labels)
	}
	be, ok := match.Where.(ast.BinaryExpr)
	if !ok || be.Op != ast.OpEQ {
		t.Fatalf("expected equality BinaryExpr, got %#v", match.Where)
	}
	param, ok := be.Right.(ast.Parameter)
	if !ok {
		t.Fatalf("expected literal to be lifted to a Parameter, got %#v", be.Right)
	}
	if residuals[param.Name] != "x" {
		t.Fatalf("expected residual param %q = x, got %v", param.Name, residuals[param.Name])
	}
}

func TestParseOrderBySkipLimit(t *testing.T) {
	q, _, _, err := Parse("MATCH (n) RETURN n ORDER BY n.age DESC SKIP 1 LIMIT 10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Clauses) != 5 {
		t.Fatalf("expected 5 clauses, got %d", len(q.Clauses))
	}
	ob := q.Clauses[2].(ast.OrderByClause)
	if ob.Items[0].Ascending {
		t.Fatalf("expected descending order")
	}
	if _, ok := q.Clauses[3].(ast.SkipClause); !ok {
		t.Fatalf("expected SkipClause, got %T", q.Clauses[3])
	}
	if _, ok := q.Clauses[4].(ast.LimitClause); !ok {
		t.Fatalf("expected LimitClause, got %T", q.Clauses[4])
	}
}

func TestParseCreateClause(t *testing.T) {
	q, _, _, err := Parse("CREATE (a:Person {name: 'Ada'})-[r:KNOWS]->(b:Person {name: 'Bob'})")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	create, ok := q.Clauses[0].(ast.CreateClause)
	if !ok {
		t.Fatalf("expected CreateClause, got %T", q.Clauses[0])
	}
	if len(create.Patterns[0].Nodes) != 2 || len(create.Patterns[0].Rels) != 1 {
		t.Fatalf("unexpected pattern shape: %+v", create.Patterns[0])
	}
	if create.Patterns[0].Rels[0].Types[0] != "KNOWS" {
		t.Fatalf("expected relationship type KNOWS, got %v", create.Patterns[0].Rels[0].Types)
	}
}

func TestParseWithClauseChaining(t *testing.T) {
	q, _, _, err := Parse("MATCH (n) WITH n, n.age AS age WHERE age > 18 RETURN n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	with, ok := q.Clauses[1].(ast.WithClause)
	if !ok {
		t.Fatalf("expected WithClause, got %T", q.Clauses[1])
	}
	if with.Items[1].Alias != "age" {
		t.Fatalf("expected alias 'age', got %q", with.Items[1].Alias)
	}
	if with.Where == nil {
		t.Fatalf("expected WITH ... WHERE to attach a filter")
	}
}

func TestParseOptionalMatch(t *testing.T) {
	q, _, _, err := Parse("OPTIONAL MATCH (a)-[r]->(b) RETURN a, r, b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	match := q.Clauses[0].(ast.MatchClause)
	if !match.Optional {
		t.Fatalf("expected Optional=true")
	}
}

func TestParseExplicitParameter(t *testing.T) {
	q, _, _, err := Parse("MATCH (n) WHERE n.name = $name RETURN n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.ParameterNames) != 1 || q.ParameterNames[0] != "name" {
		t.Fatalf("expected ParameterNames [name], got %v", q.ParameterNames)
	}
}

func TestParseUnterminatedStringReturnsParsingError(t *testing.T) {
	_, _, _, err := Parse("MATCH (n) WHERE n.name = 'x RETURN n")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	if _, ok := err.(*cyphergraph.ParsingError); !ok {
		t.Fatalf("expected *cyphergraph.ParsingError, got %T", err)
	}
}

func TestCacheReturnsSameASTPointerOnHit(t *testing.T) {
	c := NewCache(4)
	q1, _, _, err := c.Parse("MATCH (n) RETURN n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q2, _, _, err := c.Parse("MATCH (n) RETURN n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q1 != q2 {
		t.Fatalf("expected cache hit to return the same AST pointer")
	}
	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Fatalf("unexpected stats: hits=%d misses=%d size=%d", hits, misses, size)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	mustParse := func(q string) *ast.Query {
		r, _, _, err := c.Parse(q)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return r
	}

	first := mustParse("MATCH (a) RETURN a")
	mustParse("MATCH (b) RETURN b")
	// touch "a" again so "b" becomes the least recently used entry.
	if again, _, _, err := c.Parse("MATCH (a) RETURN a"); err != nil || again != first {
		t.Fatalf("expected cache hit for 'a', err=%v", err)
	}
	mustParse("MATCH (c) RETURN c") // evicts "b"

	_, missesBefore, _ := c.Stats()
	c.Parse("MATCH (b) RETURN b")
	_, missesAfter, _ := c.Stats()
	if missesAfter != missesBefore+1 {
		t.Fatalf("expected re-parsing evicted 'b' to register as a miss")
	}
}
