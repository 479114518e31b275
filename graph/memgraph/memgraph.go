// Package memgraph is a volatile, in-memory reference implementation of the
// graph.Model contract: a lock-guarded set of adjacency indexes over plain
// Go maps. It exists primarily so the engine's own tests (and small
// embedders) have a GraphModel to run queries against without standing up
// a real store.
package memgraph

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/graph"
	"github.com/wbrown/cyphergraph/procedure"
)

// Graph is a volatile, in-memory property graph.
type Graph struct {
	mu sync.RWMutex

	nodes map[cyphergraph.NodeID]cyphergraph.Node
	rels  map[cyphergraph.RelID]cyphergraph.Relationship

	// outAdj/inAdj index relationship ids by the node they start/end at,
	// so Expand doesn't have to scan every relationship.
	outAdj map[cyphergraph.NodeID][]cyphergraph.RelID
	inAdj  map[cyphergraph.NodeID][]cyphergraph.RelID

	indexes    []graph.IndexSpec
	procedures *procedure.Registry
}

var _ graph.Model = (*Graph)(nil)

// New creates an empty in-memory graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[cyphergraph.NodeID]cyphergraph.Node),
		rels:       make(map[cyphergraph.RelID]cyphergraph.Relationship),
		outAdj:     make(map[cyphergraph.NodeID][]cyphergraph.RelID),
		inAdj:      make(map[cyphergraph.NodeID][]cyphergraph.RelID),
		procedures: procedure.NewRegistry(),
	}
}

// AddNode inserts a node with a freshly generated identity and returns it.
func (g *Graph) AddNode(labels []string, props map[string]cyphergraph.Value) cyphergraph.Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := cyphergraph.NewNodeID(uuid.NewString())
	n := cyphergraph.NewNode(id, labels, props)
	g.nodes[id] = n
	return n
}

// AddRelationship inserts a relationship with a freshly generated identity
// between two existing nodes and returns it.
func (g *Graph) AddRelationship(relType string, start, end cyphergraph.NodeID, props map[string]cyphergraph.Value) cyphergraph.Relationship {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := cyphergraph.NewRelID(uuid.NewString())
	r := cyphergraph.NewRelationship(id, relType, start, end, props)
	g.rels[id] = r
	g.outAdj[start] = append(g.outAdj[start], id)
	g.inAdj[end] = append(g.inAdj[end], id)
	return r
}

// RegisterProcedure exposes p through Procedure(p.Namespace(), p.Name()).
func (g *Graph) RegisterProcedure(p procedure.Procedure) {
	g.procedures.Register(p)
}

func (g *Graph) Nodes() (graph.NodeIterator, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]cyphergraph.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	return graph.NewSliceNodeIterator(nodes), nil
}

func (g *Graph) NodesFiltered(filter cyphergraph.NodeFilter) (graph.NodeIterator, error) {
	all, err := g.Nodes()
	if err != nil {
		return nil, err
	}
	matched, err := graph.FilterNodes(all, filter)
	if err != nil {
		return nil, err
	}
	return graph.NewSliceNodeIterator(matched), nil
}

func (g *Graph) Relationships() (graph.PathIterator, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	triples := make([]cyphergraph.PathTriple, 0, len(g.rels))
	for _, r := range g.rels {
		start, ok := g.nodes[r.StartID]
		if !ok {
			continue
		}
		end, ok := g.nodes[r.EndID]
		if !ok {
			continue
		}
		triples = append(triples, cyphergraph.NewCanonicalTriple(start, r, end))
	}
	return graph.NewSlicePathIterator(triples), nil
}

func (g *Graph) Paths(start cyphergraph.NodeFilter, rel cyphergraph.RelationshipFilter, end cyphergraph.NodeFilter, dir cyphergraph.Direction) (graph.PathIterator, error) {
	canonical, err := g.Relationships()
	if err != nil {
		return nil, err
	}
	defer canonical.Close()

	var oriented []cyphergraph.PathTriple
	for canonical.Next() {
		t := canonical.Triple()
		switch dir {
		case cyphergraph.Outgoing:
			oriented = append(oriented, t)
		case cyphergraph.Incoming:
			oriented = append(oriented, t.Revert())
		case cyphergraph.Both:
			oriented = append(oriented, t, t.Revert())
		}
	}
	if err := canonical.Err(); err != nil {
		return nil, err
	}

	matched, err := graph.FilterTriples(graph.NewSlicePathIterator(oriented), start, rel, end)
	if err != nil {
		return nil, err
	}
	return graph.NewSlicePathIterator(matched), nil
}

func (g *Graph) Expand(nodeID cyphergraph.NodeID, dir cyphergraph.Direction, relFilter cyphergraph.RelationshipFilter, endFilter cyphergraph.NodeFilter) (graph.PathIterator, error) {
	g.mu.RLock()
	var relIDs []cyphergraph.RelID
	switch dir {
	case cyphergraph.Outgoing:
		relIDs = g.outAdj[nodeID]
	case cyphergraph.Incoming:
		relIDs = g.inAdj[nodeID]
	case cyphergraph.Both:
		relIDs = append(append([]cyphergraph.RelID{}, g.outAdj[nodeID]...), g.inAdj[nodeID]...)
	}

	var triples []cyphergraph.PathTriple
	for _, rid := range relIDs {
		r, ok := g.rels[rid]
		if !ok {
			continue
		}
		start, okS := g.nodes[r.StartID]
		end, okE := g.nodes[r.EndID]
		if !okS || !okE {
			continue
		}
		canonical := cyphergraph.NewCanonicalTriple(start, r, end)
		if canonical.StartNode.ID.Equal(nodeID) {
			triples = append(triples, canonical)
		} else {
			triples = append(triples, canonical.Revert())
		}
	}
	g.mu.RUnlock()

	matched, err := graph.FilterTriples(graph.NewSlicePathIterator(triples), cyphergraph.NodeFilter{}, relFilter, endFilter)
	if err != nil {
		return nil, err
	}
	return graph.NewSlicePathIterator(matched), nil
}

func (g *Graph) CreateElements(nodes []cyphergraph.Node, rels []cyphergraph.Relationship, onCreated func(graph.CreatedElements)) error {
	g.mu.Lock()

	created := graph.CreatedElements{
		Nodes:         make([]cyphergraph.Node, len(nodes)),
		Relationships: make([]cyphergraph.Relationship, len(rels)),
	}

	remap := make(map[cyphergraph.NodeID]cyphergraph.NodeID, len(nodes))
	for i, n := range nodes {
		id := cyphergraph.NewNodeID(uuid.NewString())
		remap[n.ID] = id
		created.Nodes[i] = cyphergraph.NewNode(id, n.Labels, n.Properties)
		g.nodes[id] = created.Nodes[i]
	}

	for i, r := range rels {
		start := r.StartID
		if mapped, ok := remap[start]; ok {
			start = mapped
		}
		end := r.EndID
		if mapped, ok := remap[end]; ok {
			end = mapped
		}
		id := cyphergraph.NewRelID(uuid.NewString())
		created.Relationships[i] = cyphergraph.NewRelationship(id, r.Type, start, end, r.Properties)
		g.rels[id] = created.Relationships[i]
		g.outAdj[start] = append(g.outAdj[start], id)
		g.inAdj[end] = append(g.inAdj[end], id)
	}

	g.mu.Unlock()

	if onCreated != nil {
		onCreated(created)
	}
	return nil
}

func (g *Graph) CreateIndex(label string, propertyKeys []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.indexes = append(g.indexes, graph.IndexSpec{Label: label, PropertyKeys: propertyKeys})
	return nil
}

func (g *Graph) Indexes() []graph.IndexSpec {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]graph.IndexSpec, len(g.indexes))
	copy(out, g.indexes)
	return out
}

func (g *Graph) Procedure(namespace, name string) (procedure.Procedure, bool) {
	return g.procedures.Get(namespace, name)
}
