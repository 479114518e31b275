package cyphergraph

// Path is the Value-level representation of a multi-hop traversal: an
// ordered sequence of PathTriples where consecutive triples share a node
// (triple[i].EndNode == triple[i+1].StartNode). A single MATCH edge pattern
// produces a one-triple Path; longer patterns concatenate triples as the
// planner expands them.
type Path struct {
	Triples []PathTriple
}

// Nodes returns the path's nodes in traversal order (length = len(Triples)+1
// for a non-empty path).
func (p Path) Nodes() []Node {
	if len(p.Triples) == 0 {
		return nil
	}
	nodes := make([]Node, 0, len(p.Triples)+1)
	nodes = append(nodes, p.Triples[0].StartNode)
	for _, t := range p.Triples {
		nodes = append(nodes, t.EndNode)
	}
	return nodes
}

// Relationships returns the path's relationships in traversal order.
func (p Path) Relationships() []Relationship {
	rels := make([]Relationship, len(p.Triples))
	for i, t := range p.Triples {
		rels[i] = t.Rel
	}
	return rels
}

// Length returns the number of edges in the path.
func (p Path) Length() int { return len(p.Triples) }
