// Package planctx defines the context threaded through plan construction
// and execution: a shared, immutable handle on the evaluator inputs and
// graph model every physical node needs, plus an optional annotation
// collector for callers that want visibility into plan execution without
// paying for it when they don't.
package planctx

import (
	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
	"github.com/wbrown/cyphergraph/frame"
	"github.com/wbrown/cyphergraph/graph"
)

// Context is what every physical node's Execute receives: the graph
// model to scan/expand against, the parameters and procedures an
// evaluator needs, and annotation hooks a caller can observe plan
// execution through. Node is a zero-overhead pass-through unless a
// Collector is attached.
type Context interface {
	// Model is the graph model scans and expansions run against.
	Model() graph.Model
	// Env bundles the parameter/procedure inputs frame operators need to
	// evaluate expressions.
	Env() frame.EvalEnv
	// Node wraps execution of a single physical node for annotation
	// purposes; fn is always called exactly once.
	Node(label string, fn func() (*frame.Frame, error)) (*frame.Frame, error)
	// Collector returns the attached annotation collector, or nil.
	Collector() *Collector
}

// Event is one recorded annotation: a node label and the row count its
// execution produced (-1 if execution errored before a count was known).
type Event struct {
	Label string
	Rows  int
	Err   error
}

// Collector accumulates Events in execution order. Its zero value is
// ready to use.
type Collector struct {
	Events []Event
}

func (c *Collector) add(e Event) {
	if c == nil {
		return
	}
	c.Events = append(c.Events, e)
}

// baseContext is the no-op implementation: Node just calls fn.
type baseContext struct {
	model     graph.Model
	env       frame.EvalEnv
	collector *Collector
}

// New builds a Context over model and env. If collector is non-nil, Node
// executions are recorded to it; pass nil for zero-overhead execution.
func New(model graph.Model, env frame.EvalEnv, collector *Collector) Context {
	return &baseContext{model: model, env: env, collector: collector}
}

func (c *baseContext) Model() graph.Model    { return c.model }
func (c *baseContext) Env() frame.EvalEnv    { return c.env }
func (c *baseContext) Collector() *Collector { return c.collector }

// Node drains and re-wraps the produced frame when a collector is
// attached, trading streaming for a row count to annotate with; with no
// collector it is a pure pass-through and nothing is materialized early.
func (c *baseContext) Node(label string, fn func() (*frame.Frame, error)) (*frame.Frame, error) {
	if c.collector == nil {
		return fn()
	}
	f, err := fn()
	rows := -1
	if err == nil && f != nil {
		if it, rerr := f.Rows(); rerr == nil {
			if drained, derr := frame.Drain(it); derr == nil {
				rows = len(drained)
				f = frame.FromRows(f.Schema(), drained)
			}
		}
	}
	c.collector.add(Event{Label: label, Rows: rows, Err: err})
	return f, err
}

// TypeEnv builds the ast.Symbol -> cyphergraph.Type environment eval.TypeOf
// needs from a frame schema.
func TypeEnv(schema frame.Schema) map[ast.Symbol]cyphergraph.Type {
	env := make(map[ast.Symbol]cyphergraph.Type, len(schema))
	for _, c := range schema {
		env[ast.Symbol(c.Name)] = c.Type
	}
	return env
}
