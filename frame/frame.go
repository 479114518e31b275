// Package frame implements the lazy row-stream algebra queries execute
// against: a DataFrame whose schema is computed eagerly and whose record
// producer is deferred until Rows() is called. Operators build a new
// Frame rather than mutating the source, so a frame can be pulled more
// than once as long as its producer itself is re-invocable.
package frame

import (
	"github.com/wbrown/cyphergraph"
)

// Column describes one schema slot: its output name and static type.
type Column struct {
	Name string
	Type cyphergraph.Type
}

// Schema is an ordered list of columns; Row values are positional against it.
type Schema []Column

// IndexOf returns the position of name in the schema, or -1.
func (s Schema) IndexOf(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the schema's column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Name
	}
	return out
}

// TypeOf returns the static type of a named column, or TypeAny if absent.
func (s Schema) TypeOf(name string) cyphergraph.Type {
	if i := s.IndexOf(name); i >= 0 {
		return s[i].Type
	}
	return cyphergraph.TypeAny
}

// Row is one record, positional against its Frame's Schema.
type Row []cyphergraph.Value

// RowIterator is a lazy, single-pass sequence of rows.
type RowIterator interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

// Producer builds a fresh RowIterator. Frame operators call it once per
// Rows() invocation so a frame can be iterated repeatedly (e.g. by
// Result.records()) as long as the upstream producer supports it.
type Producer func() (RowIterator, error)

// Frame is a lazy view over a row sequence: an eagerly known Schema and a
// deferred Producer.
type Frame struct {
	schema   Schema
	produce  Producer
}

// New builds a Frame from a schema and a producer.
func New(schema Schema, produce Producer) *Frame {
	return &Frame{schema: schema, produce: produce}
}

// Schema returns the frame's column list.
func (f *Frame) Schema() Schema { return f.schema }

// Rows invokes the frame's producer, returning a fresh RowIterator.
func (f *Frame) Rows() (RowIterator, error) { return f.produce() }

// sliceIterator adapts a pre-materialized row slice to RowIterator.
type sliceIterator struct {
	rows []Row
	pos  int
}

func newSliceIterator(rows []Row) *sliceIterator { return &sliceIterator{rows: rows, pos: -1} }

func (it *sliceIterator) Next() bool {
	it.pos++
	return it.pos < len(it.rows)
}

func (it *sliceIterator) Row() Row {
	if it.pos < 0 || it.pos >= len(it.rows) {
		return nil
	}
	return it.rows[it.pos]
}

func (it *sliceIterator) Err() error   { return nil }
func (it *sliceIterator) Close() error { return nil }

// Drain fully consumes it into a slice, closing it afterward.
func Drain(it RowIterator) ([]Row, error) {
	defer it.Close()
	var rows []Row
	for it.Next() {
		row := make(Row, len(it.Row()))
		copy(row, it.Row())
		rows = append(rows, row)
	}
	return rows, it.Err()
}

// FromRows builds a Frame whose producer replays a fixed, pre-materialized
// row slice on every Rows() call.
func FromRows(schema Schema, rows []Row) *Frame {
	return New(schema, func() (RowIterator, error) {
		return newSliceIterator(rows), nil
	})
}
