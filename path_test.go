package cyphergraph

import "testing"

func mkRel(id, relType string, startID, endID NodeID) Relationship {
	return NewRelationship(NewRelID(id), relType, startID, endID, nil)
}

func TestPathTripleRevertRoundTrip(t *testing.T) {
	a := NewNode(NewNodeID("a"), []string{"Person"}, nil)
	b := NewNode(NewNodeID("b"), []string{"Person"}, nil)
	rel := mkRel("r1", "KNOWS", a.ID, b.ID)

	triple := NewCanonicalTriple(a, rel, b)
	reverted := triple.Revert()

	if !reverted.Reversed {
		t.Error("reverted triple should have Reversed = true")
	}
	if !reverted.StartNode.ID.Equal(b.ID) || !reverted.EndNode.ID.Equal(a.ID) {
		t.Error("revert should swap endpoints")
	}
	if !reverted.Rel.ID.Equal(rel.ID) {
		t.Error("revert must preserve the underlying relationship identity")
	}

	roundTrip := reverted.Revert()
	if roundTrip.Reversed != triple.Reversed {
		t.Error("double revert should restore the original Reversed flag")
	}
	if !roundTrip.StartNode.ID.Equal(triple.StartNode.ID) || !roundTrip.EndNode.ID.Equal(triple.EndNode.ID) {
		t.Error("double revert should restore the original endpoints")
	}
}

func TestNodeFilterEmptyLabelsMatchesAny(t *testing.T) {
	n := NewNode(NewNodeID("a"), []string{"Person"}, map[string]Value{"name": "x"})
	f := NodeFilter{Properties: map[string]Value{"name": "x"}}
	if !f.Matches(n) {
		t.Error("empty label filter should match any labels")
	}
	f.Properties["name"] = "y"
	if f.Matches(n) {
		t.Error("property mismatch should fail the filter")
	}
}

func TestRelationshipFilterEmptyTypeIsWildcard(t *testing.T) {
	r := mkRel("r1", "", NewNodeID("a"), NewNodeID("b"))
	f := RelationshipFilter{}
	if !f.Matches(r) {
		t.Error("empty type filter should match any relationship")
	}
	f.Types = []string{"KNOWS"}
	if f.Matches(r) {
		t.Error("relationship with absent type should fail a non-empty type filter")
	}
}
