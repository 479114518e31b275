// Package plan defines the tree node kinds shared by the logical and
// physical plan stages (LPTNode, PPTNode) and a uniform pretty-printer
// for both.
package plan

import (
	"github.com/wbrown/cyphergraph/frame"
	"github.com/wbrown/cyphergraph/planctx"
)

// NodeKind names an algebraic operation a plan node performs. The same
// kinds apply at both the logical and physical level; the physical tree
// additionally knows how to execute.
type NodeKind string

const (
	KindScan     NodeKind = "Scan"
	KindExpand   NodeKind = "Expand"
	KindFilter   NodeKind = "Filter"
	KindProject  NodeKind = "Project"
	KindOrderBy  NodeKind = "OrderBy"
	KindSkip     NodeKind = "Skip"
	KindTake     NodeKind = "Take"
	KindJoin     NodeKind = "Join"
	KindDistinct NodeKind = "Distinct"
	KindCreate   NodeKind = "Create"
	KindReturn   NodeKind = "Return"
)

// Treeable is the capability RenderTree needs: an ordered child sequence
// and a one-line label for itself.
type Treeable interface {
	Children() []Treeable
	Label() string
}

// LPTNode is a logical plan node: schema-bearing, operator-independent.
// It describes what a query computes, not how.
type LPTNode struct {
	Kind     NodeKind
	Schema   frame.Schema
	Children []*LPTNode

	// Detail carries kind-specific, display-only metadata (e.g. a scan's
	// label filter, a project's column list) rendered by Label.
	Detail string

	// Payload carries the kind-specific AST fragment (ScanSpec,
	// ExpandSpec, ProjectSpec, ast.Expression, ...) physical lowering
	// needs to bind an executable node. Its concrete type is determined
	// by Kind; see package planner.
	Payload interface{}
}

// NewLPTNode builds a logical node with the given children.
func NewLPTNode(kind NodeKind, schema frame.Schema, detail string, children ...*LPTNode) *LPTNode {
	return &LPTNode{Kind: kind, Schema: schema, Children: children, Detail: detail}
}

// Treeable adapts LPTNode's typed children to plan.Treeable for RenderTree.
func (n *LPTNode) Children() []Treeable {
	out := make([]Treeable, len(n.Children))
	for i, c := range n.Children {
		out[i] = c
	}
	return out
}

func (n *LPTNode) Label() string {
	if n.Detail == "" {
		return string(n.Kind)
	}
	return string(n.Kind) + " " + n.Detail
}

// PPTNode is a physical plan node: a logical node bound to a concrete
// execution strategy. Execute runs this node (and, through it, its
// children) and returns the resulting frame.
type PPTNode interface {
	Treeable
	Kind() NodeKind
	Execute(ctx planctx.Context) (*frame.Frame, error)
}
