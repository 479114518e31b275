// Package graph defines the contract a host implements to expose its
// property graph to the engine: abstract enumeration and creation of graph
// elements. The core engine only depends on this interface; storage,
// snapshot isolation, and cross-run identity stability are the host's
// responsibility.
package graph

import (
	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/procedure"
)

// NodeIterator is a lazy, single-pass sequence of nodes.
type NodeIterator interface {
	Next() bool
	Node() cyphergraph.Node
	Err() error
	Close() error
}

// PathIterator is a lazy, single-pass sequence of oriented edge traversals.
type PathIterator interface {
	Next() bool
	Triple() cyphergraph.PathTriple
	Err() error
	Close() error
}

// IndexSpec describes a previously registered advisory index.
type IndexSpec struct {
	Label        string
	PropertyKeys []string
}

// CreatedElements is passed to the onCreated continuation of CreateElements
// once the host has assigned identities to the freshly created nodes and
// relationships, in the same order they were requested.
type CreatedElements struct {
	Nodes         []cyphergraph.Node
	Relationships []cyphergraph.Relationship
}

// Model is the contract a host program implements to expose its graph to
// the engine. Every sequence-returning method must return a lazy,
// single-pass iterator; the model need only guarantee consistent
// iteration within a single logical operation, not cross-operation
// snapshot isolation.
type Model interface {
	// Nodes enumerates every node in the graph.
	Nodes() (NodeIterator, error)
	// NodesFiltered enumerates nodes matching filter.
	NodesFiltered(filter cyphergraph.NodeFilter) (NodeIterator, error)

	// Relationships enumerates every relationship, canonicalized to the
	// OUTGOING direction.
	Relationships() (PathIterator, error)

	// Paths enumerates traversals matching the three filters under the
	// given direction. OUTGOING yields canonical triples; INCOMING yields
	// their revert; BOTH yields both per edge.
	Paths(start cyphergraph.NodeFilter, rel cyphergraph.RelationshipFilter, end cyphergraph.NodeFilter, dir cyphergraph.Direction) (PathIterator, error)

	// Expand enumerates triples whose StartNode.ID == nodeID under dir,
	// after applying relFilter/endFilter.
	Expand(nodeID cyphergraph.NodeID, dir cyphergraph.Direction, relFilter cyphergraph.RelationshipFilter, endFilter cyphergraph.NodeFilter) (PathIterator, error)

	// CreateElements performs a transactional bulk create. Atomicity is the
	// host's responsibility; onCreated receives the freshly assigned
	// identities so plan execution can continue (e.g. bind RETURN
	// variables to the created elements).
	CreateElements(nodes []cyphergraph.Node, rels []cyphergraph.Relationship, onCreated func(CreatedElements)) error

	// CreateIndex registers an advisory index; the core engine does not
	// itself consult it.
	CreateIndex(label string, propertyKeys []string) error
	// Indexes lists previously registered advisory indexes.
	Indexes() []IndexSpec

	// Procedure looks up a host-registered callable procedure.
	Procedure(namespace, name string) (procedure.Procedure, bool)
}
