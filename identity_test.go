package cyphergraph

import "testing"

func TestNodeIDEquality(t *testing.T) {
	a := NewNodeID("person:1")
	b := NewNodeID("person:1")
	c := NewNodeID("person:2")

	if !a.Equal(b) {
		t.Error("identical strings should produce equal NodeIDs")
	}
	if a.Equal(c) {
		t.Error("different strings should produce unequal NodeIDs")
	}
	if a.String() != "person:1" {
		t.Errorf("String() = %q, want %q", a.String(), "person:1")
	}
}

func TestNodeIDFromHashStable(t *testing.T) {
	var hash [20]byte
	hash[0] = 7
	a := NodeIDFromHash(hash)
	b := NodeIDFromHash(hash)
	if !a.Equal(b) {
		t.Error("same hash should produce equal NodeIDs")
	}
	if a.String() == "" {
		t.Error("hash-derived NodeID should still have a printable form")
	}
}

func TestRelIDCompareIsTotal(t *testing.T) {
	a := NewRelID("r1")
	b := NewRelID("r2")
	if a.Compare(b) == 0 {
		t.Fatal("distinct ids should not compare equal")
	}
	if a.Compare(a) != 0 {
		t.Error("identical ids should compare equal")
	}
	// antisymmetry
	if (a.Compare(b) < 0) == (b.Compare(a) < 0) {
		t.Error("compare should be antisymmetric")
	}
}
