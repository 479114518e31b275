package frame

import (
	"fmt"
	"strings"

	"github.com/wbrown/cyphergraph"
)

// Distinct emits each distinct row exactly once, preserving
// first-occurrence order. Row equality is element-wise value equality.
// A single pass suffices; only the set of keys seen so far is buffered.
func (f *Frame) Distinct() *Frame {
	produce := func() (RowIterator, error) {
		src, err := f.Rows()
		if err != nil {
			return nil, err
		}
		return &distinctIterator{src: src, seen: make(map[string]struct{})}, nil
	}
	return New(f.schema, produce)
}

type distinctIterator struct {
	src  RowIterator
	seen map[string]struct{}
	row  Row
}

func (it *distinctIterator) Next() bool {
	for it.src.Next() {
		row := it.src.Row()
		key := rowKey(row)
		if _, ok := it.seen[key]; ok {
			continue
		}
		it.seen[key] = struct{}{}
		it.row = row
		return true
	}
	return false
}

func (it *distinctIterator) Row() Row     { return it.row }
func (it *distinctIterator) Err() error   { return it.src.Err() }
func (it *distinctIterator) Close() error { return it.src.Close() }

// rowKey builds a string key for row equality/dedup purposes. Entities
// key on their stable identity rather than their full property set, so
// two references to the same node/relationship are the same key even if
// their cached property snapshots differ.
func rowKey(row Row) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(valueKey(v))
	}
	return b.String()
}

func valueKey(v cyphergraph.Value) string {
	if cyphergraph.IsNull(v) {
		return "\x00"
	}
	switch val := v.(type) {
	case cyphergraph.Node:
		return "N:" + val.ID.String()
	case cyphergraph.Relationship:
		return "R:" + val.ID.String()
	case cyphergraph.NodeID:
		return "N:" + val.String()
	case cyphergraph.RelID:
		return "R:" + val.String()
	case []cyphergraph.Value:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(valueKey(e))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}
