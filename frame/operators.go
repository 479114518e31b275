package frame

import (
	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
	"github.com/wbrown/cyphergraph/eval"
	"github.com/wbrown/cyphergraph/procedure"
)

// SelectColumn names one source column to carry through, with an
// optional rename.
type SelectColumn struct {
	Source string
	Alias  string // empty: output name is Source
}

// Select projects a frame down to a set of existing columns by name,
// renaming any that have an Alias. Preserves row order. Fails eagerly
// with a *cyphergraph.SchemaError if a source name does not exist.
func (f *Frame) Select(columns []SelectColumn) (*Frame, error) {
	indices := make([]int, len(columns))
	schema := make(Schema, len(columns))
	for i, c := range columns {
		idx := f.schema.IndexOf(c.Source)
		if idx < 0 {
			return nil, &cyphergraph.SchemaError{Column: c.Source, Schema: f.schema.Names()}
		}
		indices[i] = idx
		name := c.Alias
		if name == "" {
			name = c.Source
		}
		schema[i] = Column{Name: name, Type: f.schema[idx].Type}
	}

	produce := func() (RowIterator, error) {
		src, err := f.Rows()
		if err != nil {
			return nil, err
		}
		return &selectIterator{src: src, indices: indices}, nil
	}
	return New(schema, produce), nil
}

type selectIterator struct {
	src     RowIterator
	indices []int
	row     Row
}

func (it *selectIterator) Next() bool {
	if !it.src.Next() {
		return false
	}
	src := it.src.Row()
	row := make(Row, len(it.indices))
	for i, idx := range it.indices {
		row[i] = src[idx]
	}
	it.row = row
	return true
}

func (it *selectIterator) Row() Row   { return it.row }
func (it *selectIterator) Err() error { return it.src.Err() }
func (it *selectIterator) Close() error { return it.src.Close() }

// ProjectItem names an output column computed by evaluating Expr against
// the current row's bindings.
type ProjectItem struct {
	Name string
	Expr ast.Expression
}

// EvalEnv supplies the parameters and procedure registry project/filter
// need to evaluate expressions; both are typically fixed for a whole
// query run.
type EvalEnv struct {
	Params     map[string]cyphergraph.Value
	Procedures procedure.Lookup
}

// Project computes new columns by evaluating exprs against each row's
// current bindings, extended with env's parameters. Result schema types
// are derived with eval.TypeOf against the source schema.
func (f *Frame) Project(items []ProjectItem, env EvalEnv) *Frame {
	typeEnv := make(map[ast.Symbol]cyphergraph.Type, len(f.schema))
	for _, c := range f.schema {
		typeEnv[ast.Symbol(c.Name)] = c.Type
	}

	schema := make(Schema, len(items))
	for i, it := range items {
		schema[i] = Column{Name: it.Name, Type: eval.TypeOf(it.Expr, typeEnv)}
	}

	srcNames := f.schema.Names()
	produce := func() (RowIterator, error) {
		src, err := f.Rows()
		if err != nil {
			return nil, err
		}
		return &projectIterator{src: src, items: items, srcNames: srcNames, env: env}, nil
	}
	return New(schema, produce)
}

type projectIterator struct {
	src      RowIterator
	items    []ProjectItem
	srcNames []string
	env      EvalEnv
	row      Row
	err      error
}

func (it *projectIterator) Next() bool {
	if !it.src.Next() {
		return false
	}
	srcRow := it.src.Row()
	bindings := make(map[ast.Symbol]cyphergraph.Value, len(it.srcNames))
	for i, name := range it.srcNames {
		bindings[ast.Symbol(name)] = srcRow[i]
	}
	ctx := eval.NewContext(bindings, it.env.Params, it.env.Procedures)

	row := make(Row, len(it.items))
	for i, item := range it.items {
		v, err := eval.Eval(item.Expr, ctx)
		if err != nil {
			it.err = err
			return false
		}
		row[i] = v
	}
	it.row = row
	return true
}

func (it *projectIterator) Row() Row   { return it.row }
func (it *projectIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.src.Err()
}
func (it *projectIterator) Close() error { return it.src.Close() }

// Filter keeps only rows for which predicate evaluates to logical true
// (not null, not false); null and false are indistinguishable to
// downstream operators. Schema is unchanged.
func (f *Frame) Filter(predicate ast.Expression, env EvalEnv) *Frame {
	srcNames := f.schema.Names()
	produce := func() (RowIterator, error) {
		src, err := f.Rows()
		if err != nil {
			return nil, err
		}
		return &filterIterator{src: src, predicate: predicate, srcNames: srcNames, env: env}, nil
	}
	return New(f.schema, produce)
}

type filterIterator struct {
	src       RowIterator
	predicate ast.Expression
	srcNames  []string
	env       EvalEnv
	row       Row
	err       error
}

func (it *filterIterator) Next() bool {
	for it.src.Next() {
		row := it.src.Row()
		bindings := make(map[ast.Symbol]cyphergraph.Value, len(it.srcNames))
		for i, name := range it.srcNames {
			bindings[ast.Symbol(name)] = row[i]
		}
		ctx := eval.NewContext(bindings, it.env.Params, it.env.Procedures)
		v, err := eval.Eval(it.predicate, ctx)
		if err != nil {
			it.err = err
			return false
		}
		if cyphergraph.IsTruthy(v) {
			it.row = row
			return true
		}
	}
	return false
}

func (it *filterIterator) Row() Row   { return it.row }
func (it *filterIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.src.Err()
}
func (it *filterIterator) Close() error { return it.src.Close() }

// Skip drops the first n rows of the underlying sequence. Skipping past
// the end yields an empty frame.
func (f *Frame) Skip(n int) *Frame {
	produce := func() (RowIterator, error) {
		src, err := f.Rows()
		if err != nil {
			return nil, err
		}
		return &skipIterator{src: src, remaining: n}, nil
	}
	return New(f.schema, produce)
}

type skipIterator struct {
	src       RowIterator
	remaining int
}

func (it *skipIterator) Next() bool {
	for it.remaining > 0 {
		if !it.src.Next() {
			return false
		}
		it.remaining--
	}
	return it.src.Next()
}

func (it *skipIterator) Row() Row     { return it.src.Row() }
func (it *skipIterator) Err() error   { return it.src.Err() }
func (it *skipIterator) Close() error { return it.src.Close() }

// Take keeps only the first n rows. take(0) yields an empty frame; take
// beyond the underlying size yields all rows.
func (f *Frame) Take(n int) *Frame {
	produce := func() (RowIterator, error) {
		src, err := f.Rows()
		if err != nil {
			return nil, err
		}
		return &takeIterator{src: src, remaining: n}, nil
	}
	return New(f.schema, produce)
}

type takeIterator struct {
	src       RowIterator
	remaining int
}

func (it *takeIterator) Next() bool {
	if it.remaining <= 0 {
		return false
	}
	it.remaining--
	return it.src.Next()
}

func (it *takeIterator) Row() Row     { return it.src.Row() }
func (it *takeIterator) Err() error   { return it.src.Err() }
func (it *takeIterator) Close() error { return it.src.Close() }
