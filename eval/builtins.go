package eval

import (
	"fmt"
	"strings"

	"github.com/wbrown/cyphergraph"
)

type builtinFunc func(args []cyphergraph.Value) (cyphergraph.Value, error)

var builtins = map[string]builtinFunc{
	"toUpper":  builtinToUpper,
	"toLower":  builtinToLower,
	"coalesce": builtinCoalesce,
	"size":     builtinSize,
	"type":     builtinType,
	"labels":   builtinLabels,
	"id":       builtinID,
}

func builtinToUpper(args []cyphergraph.Value) (cyphergraph.Value, error) {
	s, err := arg1String(args, "toUpper")
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	return strings.ToUpper(*s), nil
}

func builtinToLower(args []cyphergraph.Value) (cyphergraph.Value, error) {
	s, err := arg1String(args, "toLower")
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	return strings.ToLower(*s), nil
}

func builtinCoalesce(args []cyphergraph.Value) (cyphergraph.Value, error) {
	for _, a := range args {
		if !cyphergraph.IsNull(a) {
			return a, nil
		}
	}
	return nil, nil
}

func builtinSize(args []cyphergraph.Value) (cyphergraph.Value, error) {
	if len(args) != 1 {
		return nil, &cyphergraph.EvaluationError{Expr: "size(...)", Reason: "size() takes exactly one argument"}
	}
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return int64(len(v)), nil
	case []cyphergraph.Value:
		return int64(len(v)), nil
	}
	return nil, &cyphergraph.EvaluationError{Expr: "size(...)", Reason: "size() requires a string or list"}
}

func builtinType(args []cyphergraph.Value) (cyphergraph.Value, error) {
	if len(args) != 1 {
		return nil, &cyphergraph.EvaluationError{Expr: "type(...)", Reason: "type() takes exactly one argument"}
	}
	rel, ok := args[0].(cyphergraph.Relationship)
	if !ok {
		return nil, &cyphergraph.EvaluationError{Expr: "type(...)", Reason: "type() requires a relationship"}
	}
	return rel.Type, nil
}

func builtinLabels(args []cyphergraph.Value) (cyphergraph.Value, error) {
	if len(args) != 1 {
		return nil, &cyphergraph.EvaluationError{Expr: "labels(...)", Reason: "labels() takes exactly one argument"}
	}
	node, ok := args[0].(cyphergraph.Node)
	if !ok {
		return nil, &cyphergraph.EvaluationError{Expr: "labels(...)", Reason: "labels() requires a node"}
	}
	out := make([]cyphergraph.Value, len(node.Labels))
	for i, l := range node.Labels {
		out[i] = l
	}
	return out, nil
}

func builtinID(args []cyphergraph.Value) (cyphergraph.Value, error) {
	if len(args) != 1 {
		return nil, &cyphergraph.EvaluationError{Expr: "id(...)", Reason: "id() takes exactly one argument"}
	}
	switch v := args[0].(type) {
	case cyphergraph.Node:
		return v.ID.String(), nil
	case cyphergraph.Relationship:
		return v.ID.String(), nil
	}
	return nil, &cyphergraph.EvaluationError{Expr: "id(...)", Reason: "id() requires a node or relationship"}
}

func arg1String(args []cyphergraph.Value, name string) (*string, error) {
	if len(args) != 1 {
		return nil, &cyphergraph.EvaluationError{Expr: fmt.Sprintf("%s(...)", name), Reason: fmt.Sprintf("%s() takes exactly one argument", name)}
	}
	if cyphergraph.IsNull(args[0]) {
		return nil, nil
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, &cyphergraph.EvaluationError{Expr: fmt.Sprintf("%s(...)", name), Reason: fmt.Sprintf("%s() requires a string argument", name)}
	}
	return &s, nil
}
