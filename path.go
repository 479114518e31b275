package cyphergraph

// Direction selects how a traversal interprets a stored Relationship's
// start/end pair.
type Direction int

const (
	// Outgoing yields the canonical (stored) triple.
	Outgoing Direction = iota
	// Incoming yields the canonical triple's revert.
	Incoming
	// Both yields the canonical triple and its revert.
	Both
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "OUTGOING"
	case Incoming:
		return "INCOMING"
	case Both:
		return "BOTH"
	default:
		return "UNKNOWN"
	}
}

// PathTriple is a (startNode, relationship, endNode, reversed) tuple
// describing one oriented traversal of a single edge. The underlying
// Relationship's identity and stored endpoints never change; Reverted only
// flips how the triple is read.
type PathTriple struct {
	StartNode Node
	Rel       Relationship
	EndNode   Node
	Reversed  bool
}

// NewCanonicalTriple builds a PathTriple in the relationship's stored
// (outgoing) direction. It panics if the nodes don't match the
// relationship's stored endpoints, since that would violate invariant 4
// (rel.start_node_id in {startNode.id, endNode.id}).
func NewCanonicalTriple(start Node, rel Relationship, end Node) PathTriple {
	if !rel.StartID.Equal(start.ID) || !rel.EndID.Equal(end.ID) {
		panic("cyphergraph: canonical triple endpoints do not match relationship")
	}
	return PathTriple{StartNode: start, Rel: rel, EndNode: end}
}

// Revert swaps the triple's endpoints and flips the Reversed flag. It never
// mutates the stored Relationship identity or its StartID/EndID: direction
// is an interpretation layered on top, not a write to the edge.
func (t PathTriple) Revert() PathTriple {
	return PathTriple{
		StartNode: t.EndNode,
		Rel:       t.Rel,
		EndNode:   t.StartNode,
		Reversed:  !t.Reversed,
	}
}

// NodeFilter selects nodes by a required label set (empty = any labels) and
// an equality mapping over properties (always applied).
type NodeFilter struct {
	Labels     []string
	Properties map[string]Value
}

// Matches reports whether a node satisfies the filter.
func (f NodeFilter) Matches(n Node) bool {
	for _, label := range f.Labels {
		if !n.HasLabel(label) {
			return false
		}
	}
	for k, want := range f.Properties {
		got, ok := n.Property(k)
		if !ok || !ValuesEqual(got, want) {
			return false
		}
	}
	return true
}

// RelationshipFilter selects relationships by an acceptable type set (empty
// = any type) and an equality mapping over properties. A relationship whose
// type is absent (empty string) fails any non-empty type filter.
type RelationshipFilter struct {
	Types      []string
	Properties map[string]Value
}

// Matches reports whether a relationship satisfies the filter.
func (f RelationshipFilter) Matches(r Relationship) bool {
	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if r.Type != "" && r.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for k, want := range f.Properties {
		got, ok := r.Property(k)
		if !ok || !ValuesEqual(got, want) {
			return false
		}
	}
	return true
}
