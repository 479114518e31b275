package memgraph

import (
	"testing"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/graph"
)

func drainTriples(t *testing.T, it interface {
	Next() bool
	Triple() cyphergraph.PathTriple
	Err() error
	Close() error
}) []cyphergraph.PathTriple {
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

func TestExpandOutgoingAndIncoming(t *testing.T) {
	g := New()
	a := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "A"})
	b := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "B"})
	rel := g.AddRelationship("KNOWS", a.ID, b.ID, nil)

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
	g := New()
	a := g.AddNode([]string{"Person"}, nil)
	b := g.AddNode([]string{"Person"}, nil)
	g.AddRelationship("KNOWS", a.ID, b.ID, nil)

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
	g := New()
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
	err := g.CreateElements(nodes, rels, func(c graph.CreatedElements) {
		created = c
	})
	if err != nil {
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
