package graph

import "github.com/wbrown/cyphergraph"

// SliceNodeIterator adapts a pre-materialized slice of nodes to
// NodeIterator, useful for small or already-buffered host backends.
type SliceNodeIterator struct {
	nodes []cyphergraph.Node
	pos   int
}

// NewSliceNodeIterator wraps nodes as a NodeIterator.
func NewSliceNodeIterator(nodes []cyphergraph.Node) *SliceNodeIterator {
	return &SliceNodeIterator{nodes: nodes, pos: -1}
}

func (it *SliceNodeIterator) Next() bool {
	it.pos++
	return it.pos < len(it.nodes)
}

func (it *SliceNodeIterator) Node() cyphergraph.Node {
	if it.pos < 0 || it.pos >= len(it.nodes) {
		return cyphergraph.Node{}
	}
	return it.nodes[it.pos]
}

func (it *SliceNodeIterator) Err() error   { return nil }
func (it *SliceNodeIterator) Close() error { return nil }

// SlicePathIterator adapts a pre-materialized slice of triples to
// PathIterator.
type SlicePathIterator struct {
	triples []cyphergraph.PathTriple
	pos     int
}

// NewSlicePathIterator wraps triples as a PathIterator.
func NewSlicePathIterator(triples []cyphergraph.PathTriple) *SlicePathIterator {
	return &SlicePathIterator{triples: triples, pos: -1}
}

func (it *SlicePathIterator) Next() bool {
	it.pos++
	return it.pos < len(it.triples)
}

func (it *SlicePathIterator) Triple() cyphergraph.PathTriple {
	if it.pos < 0 || it.pos >= len(it.triples) {
		return cyphergraph.PathTriple{}
	}
	return it.triples[it.pos]
}

func (it *SlicePathIterator) Err() error   { return nil }
func (it *SlicePathIterator) Close() error { return nil }

// FilterNodes drains a NodeIterator into a slice of nodes matching filter.
// Small helper shared by in-memory/host GraphModel implementations so they
// don't each reimplement the same loop.
func FilterNodes(it NodeIterator, filter cyphergraph.NodeFilter) ([]cyphergraph.Node, error) {
	defer it.Close()
	var out []cyphergraph.Node
	for it.Next() {
		if n := it.Node(); filter.Matches(n) {
			out = append(out, n)
		}
	}
	return out, it.Err()
}

// FilterTriples drains a PathIterator into a slice of triples matching the
// given start/rel/end filters.
func FilterTriples(it PathIterator, start cyphergraph.NodeFilter, rel cyphergraph.RelationshipFilter, end cyphergraph.NodeFilter) ([]cyphergraph.PathTriple, error) {
	defer it.Close()
	var out []cyphergraph.PathTriple
	for it.Next() {
		t := it.Triple()
		if start.Matches(t.StartNode) && rel.Matches(t.Rel) && end.Matches(t.EndNode) {
			out = append(out, t)
		}
	}
	return out, it.Err()
}
