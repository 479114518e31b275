// Package procedure defines the registry contract for host-implemented
// callable procedures. The engine only needs the shape of inputs/outputs
// and a row-producing call; procedure bodies are always host-supplied and
// out of scope for the core.
package procedure

import "github.com/wbrown/cyphergraph"

// Param names one typed input or output column of a Procedure.
type Param struct {
	Name string
	Type cyphergraph.Type
}

// RowIterator yields procedure output rows lazily, one at a time. Row arity
// always equals the procedure's Outputs() arity.
type RowIterator interface {
	Next() bool
	Row() []cyphergraph.Value
	Err() error
	Close() error
}

// Procedure is a host-registered callable with typed inputs/outputs and a
// tabular result.
type Procedure interface {
	Namespace() string
	Name() string
	Inputs() []Param
	Outputs() []Param
	Call(args []cyphergraph.Value) (RowIterator, error)
}

// SliceRowIterator adapts a pre-computed slice of rows to RowIterator, for
// procedures whose output is cheap to materialize eagerly.
type SliceRowIterator struct {
	rows []([]cyphergraph.Value)
	pos  int
}

// NewSliceRowIterator wraps rows as a RowIterator.
func NewSliceRowIterator(rows [][]cyphergraph.Value) *SliceRowIterator {
	return &SliceRowIterator{rows: rows, pos: -1}
}

func (it *SliceRowIterator) Next() bool {
	it.pos++
	return it.pos < len(it.rows)
}

func (it *SliceRowIterator) Row() []cyphergraph.Value {
	if it.pos < 0 || it.pos >= len(it.rows) {
		return nil
	}
	return it.rows[it.pos]
}

func (it *SliceRowIterator) Err() error   { return nil }
func (it *SliceRowIterator) Close() error { return nil }
