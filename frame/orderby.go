package frame

import (
	"sort"

	"github.com/wbrown/cyphergraph"
)

// OrderByKey is one sort key: a column index into the frame's schema and
// a sort direction.
type OrderByKey struct {
	Column    int
	Ascending bool
}

// OrderBy sorts rows by keys, stably and totally: comparison proceeds
// left-to-right across keys, the first unequal key decides, and
// ascending/descending applies per key. A nil keys slice orders by every
// column ascending, left to right. Null sorts greater than any non-null
// value under ascending order (and therefore first under descending).
// Materializes the full row set, since sorting requires seeing every row.
func (f *Frame) OrderBy(keys []OrderByKey) *Frame {
	if keys == nil {
		keys = make([]OrderByKey, len(f.schema))
		for i := range f.schema {
			keys[i] = OrderByKey{Column: i, Ascending: true}
		}
	}

	produce := func() (RowIterator, error) {
		src, err := f.Rows()
		if err != nil {
			return nil, err
		}
		rows, err := Drain(src)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rowLess(rows[i], rows[j], keys)
		})
		return newSliceIterator(rows), nil
	}
	return New(f.schema, produce)
}

func rowLess(a, b Row, keys []OrderByKey) bool {
	for _, k := range keys {
		av, bv := a[k.Column], b[k.Column]
		cmp := compareNullable(av, bv)
		if cmp == 0 {
			continue
		}
		if k.Ascending {
			return cmp < 0
		}
		return cmp > 0
	}
	return false
}

// compareNullable orders null greater than any non-null value so OrderBy
// can reuse cyphergraph.CompareValues (which treats nil as least) for the
// non-null case while keeping a single, documented null placement.
func compareNullable(a, b cyphergraph.Value) int {
	aNull, bNull := cyphergraph.IsNull(a), cyphergraph.IsNull(b)
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return 1
	case bNull:
		return -1
	default:
		return cyphergraph.CompareValues(a, b)
	}
}
