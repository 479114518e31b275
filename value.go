package cyphergraph

import "fmt"

// Value is any runtime value the engine can hold in a row, a property, or
// an evaluated expression result. It is implemented as interface{}
// carrying a direct Go type rather than a boxed variant struct;
// CypherTypeOf below recovers the closed type tag.
//
// Valid dynamic types:
//   - nil              (Null)
//   - bool             (Boolean)
//   - int64            (Integer)
//   - float64          (Float)
//   - string           (String)
//   - []Value          (List)
//   - map[string]Value (Map)
//   - Node
//   - Relationship
//   - Path
type Value interface{}

// Type is the closed set of type tags a Value can carry.
type Type int

const (
	TypeAny Type = iota
	TypeNull
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeString
	TypeNode
	TypeRelationship
	TypePath
	TypeList
	TypeMap
)

func (t Type) String() string {
	switch t {
	case TypeAny:
		return "Any"
	case TypeNull:
		return "Null"
	case TypeBoolean:
		return "Boolean"
	case TypeInteger:
		return "Integer"
	case TypeFloat:
		return "Float"
	case TypeString:
		return "String"
	case TypeNode:
		return "Node"
	case TypeRelationship:
		return "Relationship"
	case TypePath:
		return "Path"
	case TypeList:
		return "List"
	case TypeMap:
		return "Map"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// CypherTypeOf returns the closed type tag for a runtime Value.
func CypherTypeOf(v Value) Type {
	switch v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case int64:
		return TypeInteger
	case int:
		return TypeInteger
	case float64:
		return TypeFloat
	case string:
		return TypeString
	case Node:
		return TypeNode
	case Relationship:
		return TypeRelationship
	case Path:
		return TypePath
	case []Value:
		return TypeList
	case map[string]Value:
		return TypeMap
	default:
		return TypeAny
	}
}

// AsInt64 normalizes int/int64 values produced by the parser or evaluator.
func AsInt64(v Value) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// IsTruthy applies Cypher's three-valued logic: only a non-null boolean true
// is truthy. Null and false are indistinguishable to callers that only test
// truthiness (spec: "Null and false are indistinguishable to downstream").
func IsTruthy(v Value) bool {
	b, ok := v.(bool)
	return ok && b
}

// IsNull reports whether v represents the Cypher null value.
func IsNull(v Value) bool {
	return v == nil
}
