package ast

import "github.com/wbrown/cyphergraph"

// NodePattern is one node slot in a graph pattern, e.g. "(n:Person {name:
// 'x'})". An empty Variable means the node is anonymous.
type NodePattern struct {
	Variable   Symbol
	Labels     []string
	Properties map[string]Expression
}

// RelPattern is one relationship slot in a graph pattern, e.g.
// "-[r:KNOWS]->" . Direction follows cyphergraph.Direction so the planner
// can hand it straight to GraphModel.Expand/Paths.
type RelPattern struct {
	Variable   Symbol
	Types      []string
	Properties map[string]Expression
	Direction  cyphergraph.Direction
}

// PathPattern is one full pattern path from a MATCH/CREATE clause: an
// alternating sequence of nodes and relationships, Nodes[i] connected to
// Nodes[i+1] by Rels[i]. A named path ("p = (a)-[r]->(b)") sets Variable.
type PathPattern struct {
	Variable Symbol
	Nodes    []NodePattern
	Rels     []RelPattern
}
