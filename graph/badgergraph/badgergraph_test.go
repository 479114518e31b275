package badgergraph

import (
	"testing"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/graph"
)

func openTestGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func drainTriples(t *testing.T, it graph.PathIterator) []cyphergraph.PathTriple {
	t.Helper()
	defer it.Close()
	var out []cyphergraph.PathTriple
	for it.Next() {
		out = append(out, it.Triple())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	return out
}

func TestNodeRoundTripsLabelsAndProperties(t *testing.T) {
	g := openTestGraph(t)
	n, err := g.AddNode([]string{"Person", "Employee"}, map[string]cyphergraph.Value{"name": "Ada", "age": int64(36)})
	if err != nil {
		t.Fatal(err)
	}

	it, err := g.NodesFiltered(cyphergraph.NodeFilter{Labels: []string{"Person"}})
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	if !it.Next() {
		t.Fatal("expected one matching node")
	}
	got := it.Node()
	if !got.ID.Equal(n.ID) {
		t.Errorf("got node %v, want %v", got.ID, n.ID)
	}
	if !got.HasLabel("Employee") {
		t.Error("labels did not round-trip")
	}
	name, ok := got.Property("name")
	if !ok || name != "Ada" {
		t.Errorf("property did not round-trip: %v", name)
	}
	age, ok := got.Property("age")
	if !ok || age != int64(36) {
		t.Errorf("integer property did not round-trip: %v (%T)", age, age)
	}
}

func TestExpandOutgoingAndIncoming(t *testing.T) {
	g := openTestGraph(t)
	a, err := g.AddNode([]string{"Person"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.AddNode([]string{"Person"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rel, err := g.AddRelationship("KNOWS", a.ID, b.ID, nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := g.Expand(a.ID, cyphergraph.Outgoing, cyphergraph.RelationshipFilter{}, cyphergraph.NodeFilter{})
	if err != nil {
		t.Fatal(err)
	}
	triples := drainTriples(t, out)
	if len(triples) != 1 || !triples[0].Rel.ID.Equal(rel.ID) || triples[0].Reversed {
		t.Fatalf("unexpected outgoing expand result: %+v", triples)
	}

	in, err := g.Expand(b.ID, cyphergraph.Incoming, cyphergraph.RelationshipFilter{}, cyphergraph.NodeFilter{})
	if err != nil {
		t.Fatal(err)
	}
	triples = drainTriples(t, in)
	if len(triples) != 1 || !triples[0].Reversed || !triples[0].StartNode.ID.Equal(b.ID) {
		t.Fatalf("unexpected incoming expand result: %+v", triples)
	}
}

func TestPathsBothYieldsTwicePerEdge(t *testing.T) {
	g := openTestGraph(t)
	a, err := g.AddNode([]string{"Person"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.AddNode([]string{"Person"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddRelationship("KNOWS", a.ID, b.ID, nil); err != nil {
		t.Fatal(err)
	}

	it, err := g.Paths(cyphergraph.NodeFilter{}, cyphergraph.RelationshipFilter{}, cyphergraph.NodeFilter{}, cyphergraph.Both)
	if err != nil {
		t.Fatal(err)
	}
	triples := drainTriples(t, it)
	if len(triples) != 2 {
		t.Fatalf("BOTH should yield 2 triples for 1 relationship, got %d", len(triples))
	}
}

func TestCreateElementsAssignsIdentitiesAndRemapsEndpoints(t *testing.T) {
	g := openTestGraph(t)
	placeholderA := cyphergraph.NewNodeID("tmp-a")
	placeholderB := cyphergraph.NewNodeID("tmp-b")

	nodes := []cyphergraph.Node{
		cyphergraph.NewNode(placeholderA, []string{"Person"}, nil),
		cyphergraph.NewNode(placeholderB, []string{"Person"}, nil),
	}
	rels := []cyphergraph.Relationship{
		cyphergraph.NewRelationship(cyphergraph.NewRelID("tmp-r"), "KNOWS", placeholderA, placeholderB, nil),
	}

	var created graph.CreatedElements
	if err := g.CreateElements(nodes, rels, func(c graph.CreatedElements) { created = c }); err != nil {
		t.Fatal(err)
	}
	if len(created.Nodes) != 2 || len(created.Relationships) != 1 {
		t.Fatalf("expected 2 created nodes and 1 created rel, got %d/%d", len(created.Nodes), len(created.Relationships))
	}
	if created.Nodes[0].ID.Equal(placeholderA) {
		t.Error("CreateElements should assign fresh identities, not reuse placeholders")
	}
	rel := created.Relationships[0]
	if !rel.StartID.Equal(created.Nodes[0].ID) || !rel.EndID.Equal(created.Nodes[1].ID) {
		t.Error("CreateElements should remap relationship endpoints to the freshly assigned node ids")
	}
}

func TestIndexesPersistAcrossCreateIndex(t *testing.T) {
	g := openTestGraph(t)
	if err := g.CreateIndex("Person", []string{"name"}); err != nil {
		t.Fatal(err)
	}
	indexes := g.Indexes()
	if len(indexes) != 1 || indexes[0].Label != "Person" {
		t.Fatalf("unexpected indexes: %+v", indexes)
	}
}

func TestReopenSeesPreviouslyWrittenNodes(t *testing.T) {
	dir := t.TempDir()
	g, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	n, err := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Ada"})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	it, err := reopened.Nodes()
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()
	if !it.Next() {
		t.Fatal("expected the previously written node to survive a reopen")
	}
	if !it.Node().ID.Equal(n.ID) {
		t.Error("reopened graph returned a different node identity")
	}
}
