// Package cyphergraph is an embeddable execution engine for a property-graph
// query language in the Cypher family. A host program implements the
// GraphModel contract (see the graph package), hands a query string and a
// parameter bag to a Runner, and receives a lazily evaluated tabular Result
// with a declared schema.
//
// The core pipeline is parse -> logical plan -> physical plan -> optimize ->
// execute, against a lazy row-stream algebra (see the frame package). This
// package holds the shared value model: typed Values, Nodes, Relationships,
// and PathTriples that flow through every stage.
package cyphergraph
