package runner

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/frame"
	"github.com/wbrown/cyphergraph/plan"
)

// Result wraps the frame produced by a query run with table display and
// plan introspection. It is returned lazily: the first call to Records
// or Show drains the underlying frame once and caches the rows so
// later calls never touch the graph model again.
type Result struct {
	frame    *frame.Frame
	compiled *Compiled

	cached bool
	rows   []frame.Row
	err    error
}

// Schema returns the result's column names and types.
func (r *Result) Schema() frame.Schema {
	return r.frame.Schema()
}

// cache drains the underlying frame exactly once, memoizing rows and any
// draining error for every subsequent call.
func (r *Result) cache() ([]frame.Row, error) {
	if r.cached {
		return r.rows, r.err
	}
	it, err := r.frame.Rows()
	if err != nil {
		r.cached = true
		r.err = err
		return nil, err
	}
	rows, err := frame.Drain(it)
	r.cached = true
	r.rows = rows
	r.err = err
	return rows, err
}

// Records returns every row of the result, draining the underlying frame
// on first call and replaying the cached rows on every call after.
func (r *Result) Records() ([]frame.Row, error) {
	return r.cache()
}

// Show renders up to limit rows as a Unicode-bordered table; limit <= 0
// means no limit.
func (r *Result) Show(limit int) (string, error) {
	rows, err := r.cache()
	if err != nil {
		return "", err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	schema := r.frame.Schema()
	if len(rows) == 0 {
		return "(no rows)", nil
	}

	var b strings.Builder
	table := tablewriter.NewTable(&b)
	table.Header(schema.Names())
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		table.Append(cells)
	}
	table.Render()
	return b.String(), nil
}

func formatValue(v cyphergraph.Value) string {
	if cyphergraph.IsNull(v) {
		return "null"
	}
	switch t := v.(type) {
	case cyphergraph.Node:
		return fmt.Sprintf("(%s%s)", t.ID, labelSuffix(t.Labels))
	case cyphergraph.Relationship:
		return fmt.Sprintf("[%s:%s]", t.ID, t.Type)
	case float64:
		return fmt.Sprintf("%g", t)
	case []cyphergraph.Value:
		cells := make([]string, len(t))
		for i, el := range t {
			cells[i] = formatValue(el)
		}
		return "[" + strings.Join(cells, ", ") + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}

func labelSuffix(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return ":" + strings.Join(labels, ":")
}

// AST returns the parsed query tree for the compiled query behind this
// result.
func (r *Result) AST() interface{} {
	return r.compiled.AST
}

// LogicalPlan renders the result's logical plan tree as a box-drawing
// diagram.
func (r *Result) LogicalPlan() string {
	return plan.RenderTree(r.compiled.LPT)
}

// PhysicalPlan renders the result's physical plan tree as a box-drawing
// diagram.
func (r *Result) PhysicalPlan() string {
	return plan.RenderTree(r.compiled.PPT)
}
