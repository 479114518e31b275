package frame

import (
	"github.com/wbrown/cyphergraph"
)

// Join performs an inner equi-join with other on the intersection of
// column names. The smaller side (by record count) is materialized into
// a hash map keyed by its join-column values; the larger side supplies
// the output order. Result schema is the small side's schema followed by
// the large side's non-join columns. A resulting row that holds the same
// relationship identity in two positions is dropped (distinct pattern
// relationships must bind to distinct edges).
//
// Determining which side is smaller requires a count, which for a lazy
// frame means draining it; both sides are materialized as a result, and
// so is the join's output.
func (f *Frame) Join(other *Frame) (*Frame, error) {
	leftRows, err := drainFrame(f)
	if err != nil {
		return nil, err
	}
	rightRows, err := drainFrame(other)
	if err != nil {
		return nil, err
	}

	joinCols := intersectColumns(f.schema, other.schema)

	var smallSchema, largeSchema Schema
	var smallRows, largeRows []Row
	if len(leftRows) <= len(rightRows) {
		smallSchema, largeSchema = f.schema, other.schema
		smallRows, largeRows = leftRows, rightRows
	} else {
		smallSchema, largeSchema = other.schema, f.schema
		smallRows, largeRows = rightRows, leftRows
	}

	smallJoinIdx := columnIndices(smallSchema, joinCols)
	largeJoinIdx := columnIndices(largeSchema, joinCols)
	largeKeepIdx := nonJoinIndices(largeSchema, joinCols)

	schema := make(Schema, 0, len(smallSchema)+len(largeKeepIdx))
	schema = append(schema, smallSchema...)
	for _, idx := range largeKeepIdx {
		schema = append(schema, largeSchema[idx])
	}

	hash := make(map[string][]Row, len(smallRows))
	for _, row := range smallRows {
		key := rowKey(projectIndices(row, smallJoinIdx))
		hash[key] = append(hash[key], row)
	}

	var out []Row
	for _, largeRow := range largeRows {
		key := rowKey(projectIndices(largeRow, largeJoinIdx))
		matches, ok := hash[key]
		if !ok {
			continue
		}
		largeKeep := projectIndices(largeRow, largeKeepIdx)
		for _, smallRow := range matches {
			combined := make(Row, 0, len(smallRow)+len(largeKeep))
			combined = append(combined, smallRow...)
			combined = append(combined, largeKeep...)
			if hasDuplicateRelationship(combined) {
				continue
			}
			out = append(out, combined)
		}
	}

	return FromRows(schema, out), nil
}

func drainFrame(f *Frame) ([]Row, error) {
	it, err := f.Rows()
	if err != nil {
		return nil, err
	}
	return Drain(it)
}

func intersectColumns(a, b Schema) []string {
	bNames := make(map[string]bool, len(b))
	for _, c := range b {
		bNames[c.Name] = true
	}
	var out []string
	for _, c := range a {
		if bNames[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}

func columnIndices(s Schema, names []string) []int {
	out := make([]int, len(names))
	for i, n := range names {
		out[i] = s.IndexOf(n)
	}
	return out
}

func nonJoinIndices(s Schema, joinNames []string) []int {
	joined := make(map[string]bool, len(joinNames))
	for _, n := range joinNames {
		joined[n] = true
	}
	var out []int
	for i, c := range s {
		if !joined[c.Name] {
			out = append(out, i)
		}
	}
	return out
}

func projectIndices(row Row, idx []int) Row {
	out := make(Row, len(idx))
	for i, j := range idx {
		out[i] = row[j]
	}
	return out
}

// hasDuplicateRelationship reports whether row carries the same
// relationship identity in two or more positions.
func hasDuplicateRelationship(row Row) bool {
	var seen []cyphergraph.RelID
	for _, v := range row {
		rel, ok := v.(cyphergraph.Relationship)
		if !ok {
			continue
		}
		for _, s := range seen {
			if s.Equal(rel.ID) {
				return true
			}
		}
		seen = append(seen, rel.ID)
	}
	return false
}
