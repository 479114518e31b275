// Package runner is the engine's host-facing entry point: it compiles
// query text into a plan, runs it against a graph model, and wraps the
// resulting frame in a Result with table display and plan introspection.
package runner

import (
	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/ast"
	"github.com/wbrown/cyphergraph/frame"
	"github.com/wbrown/cyphergraph/graph"
	"github.com/wbrown/cyphergraph/parser"
	"github.com/wbrown/cyphergraph/physical"
	"github.com/wbrown/cyphergraph/plan"
	"github.com/wbrown/cyphergraph/planctx"
	"github.com/wbrown/cyphergraph/planner"
	"github.com/wbrown/cyphergraph/procedure"
)

// Runner compiles and executes queries against a fixed graph model, with
// a bounded LRU cache over parsing; logical and physical planning run on
// every Compile.
type Runner struct {
	model      graph.Model
	cache      *parser.Cache
	collector  *planctx.Collector
}

// NewRunner builds a Runner over model, with the default parse cache size.
func NewRunner(model graph.Model) *Runner {
	return &Runner{model: model, cache: parser.NewCache(parser.DefaultCacheSize)}
}

// EnableAnnotations attaches one fresh planctx.Collector that every
// subsequent Run call's execution context records into; pass false to
// detach it again.
func (r *Runner) EnableAnnotations(enabled bool) {
	if enabled {
		r.collector = &planctx.Collector{}
	} else {
		r.collector = nil
	}
}

// Compiled is a query bound to its AST, residual parameters, logical
// plan, and physical plan, ready to Run with host-supplied parameters.
type Compiled struct {
	Query     string
	AST       *ast.Query
	Residuals map[string]cyphergraph.Value
	LPT       *plan.LPTNode
	PPT       plan.PPTNode
}

// Compile parses (or retrieves from cache) query and lowers it through
// the logical and physical planners.
func (r *Runner) Compile(query string) (*Compiled, error) {
	q, residuals, semantic, err := r.cache.Parse(query)
	if err != nil {
		return nil, err
	}
	lpt, err := planner.Plan(q, semantic)
	if err != nil {
		return nil, err
	}
	ppt, err := physical.Lower(lpt)
	if err != nil {
		return nil, err
	}
	return &Compiled{Query: query, AST: q, Residuals: residuals, LPT: lpt, PPT: ppt}, nil
}

// Run compiles query (served from cache on repeat text) and executes it
// with params merged under the query's residual literal parameters (a
// residual wins over an invocation param of the same name).
func (r *Runner) Run(query string, params map[string]cyphergraph.Value) (*Result, error) {
	compiled, err := r.Compile(query)
	if err != nil {
		return nil, err
	}
	return r.RunCompiled(compiled, params)
}

// RunCompiled executes an already-compiled query, so a caller that wants
// to inspect the plan before running it doesn't pay to compile twice.
func (r *Runner) RunCompiled(c *Compiled, params map[string]cyphergraph.Value) (*Result, error) {
	merged := make(map[string]cyphergraph.Value, len(c.Residuals)+len(params))
	for k, v := range params {
		merged[k] = v
	}
	for k, v := range c.Residuals {
		merged[k] = v
	}

	env := frame.EvalEnv{Params: merged, Procedures: modelProcedures{r.model}}
	ctx := planctx.New(r.model, env, r.collector)

	f, err := c.PPT.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{frame: f, compiled: c}, nil
}

// modelProcedures satisfies procedure.Lookup by asking the model for each
// procedure on demand instead of requiring a Runner to pre-populate a
// registry of its own.
type modelProcedures struct {
	model graph.Model
}

func (m modelProcedures) Get(namespace, name string) (procedure.Procedure, bool) {
	return m.model.Procedure(namespace, name)
}
