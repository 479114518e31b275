package physical

import (
	"fmt"

	"github.com/wbrown/cyphergraph/ast"
	"github.com/wbrown/cyphergraph/plan"
	"github.com/wbrown/cyphergraph/planner"
)

// Lower binds a logical plan tree to concrete execution strategies,
// producing a physical plan tree, then applies the optimizer to it.
func Lower(lpt *plan.LPTNode) (plan.PPTNode, error) {
	ppt, err := lower(lpt)
	if err != nil {
		return nil, err
	}
	return optimize(ppt), nil
}

func lower(n *plan.LPTNode) (plan.PPTNode, error) {
	switch n.Kind {
	case plan.KindProject:
		if n.Payload == nil && len(n.Children) == 0 {
			return &unitNode{node{kind: plan.KindProject, label: "Unit"}}, nil
		}
		child, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		spec := n.Payload.(planner.ProjectSpec)
		return &projectNode{node{kind: plan.KindProject, label: n.Label(), children: []plan.PPTNode{child}}, spec, child}, nil

	case plan.KindScan:
		spec := n.Payload.(planner.ScanSpec)
		return &scanNode{node{kind: plan.KindScan, label: n.Label()}, spec}, nil

	case plan.KindExpand:
		child, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		spec := n.Payload.(planner.ExpandSpec)
		return &expandNode{node{kind: plan.KindExpand, label: n.Label(), children: []plan.PPTNode{child}}, spec, child}, nil

	case plan.KindFilter:
		child, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		pred := n.Payload.(ast.Expression)
		return &filterNode{node{kind: plan.KindFilter, label: n.Label(), children: []plan.PPTNode{child}}, pred, child}, nil

	case plan.KindDistinct:
		child, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &distinctNode{node{kind: plan.KindDistinct, label: n.Label(), children: []plan.PPTNode{child}}, child}, nil

	case plan.KindOrderBy:
		child, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		items := n.Payload.([]ast.OrderByItem)
		return &orderByNode{node{kind: plan.KindOrderBy, label: n.Label(), children: []plan.PPTNode{child}}, items, child}, nil

	case plan.KindSkip:
		child, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		count := n.Payload.(ast.Expression)
		return &skipNode{node{kind: plan.KindSkip, label: n.Label(), children: []plan.PPTNode{child}}, count, child}, nil

	case plan.KindTake:
		child, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		count := n.Payload.(ast.Expression)
		return &takeNode{node{kind: plan.KindTake, label: n.Label(), children: []plan.PPTNode{child}}, count, child}, nil

	case plan.KindJoin:
		left, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := lower(n.Children[1])
		if err != nil {
			return nil, err
		}
		optional, _ := n.Payload.(bool)
		return &joinNode{node{kind: plan.KindJoin, label: n.Label(), children: []plan.PPTNode{left, right}}, optional, left, right}, nil

	case plan.KindCreate:
		child, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		spec := n.Payload.(planner.CreateSpec)
		return &createNode{node{kind: plan.KindCreate, label: n.Label(), children: []plan.PPTNode{child}}, spec, child}, nil

	case plan.KindReturn:
		child, err := lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &returnNode{node{kind: plan.KindReturn, label: n.Label(), children: []plan.PPTNode{child}}, child}, nil

	default:
		return nil, fmt.Errorf("cyphergraph: unsupported logical node kind %q", n.Kind)
	}
}
