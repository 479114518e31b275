package badgergraph

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wbrown/cyphergraph"
)

// Value encoding: one type-tag byte followed by a type-specific payload.
// Strings, lists, and maps carry a length prefix so decoding never has to
// guess where a nested value ends.
const (
	tagNull byte = iota
	tagBool
	tagInt
	tagFloat
	tagString
	tagList
	tagMap
)

func encodeValue(v cyphergraph.Value) []byte {
	var buf []byte
	return appendValue(buf, v)
}

func appendValue(buf []byte, v cyphergraph.Value) []byte {
	if cyphergraph.IsNull(v) {
		return append(buf, tagNull)
	}
	switch x := v.(type) {
	case bool:
		b := byte(0)
		if x {
			b = 1
		}
		return append(buf, tagBool, b)
	case int64:
		buf = append(buf, tagInt)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(x))
		return append(buf, tmp[:]...)
	case int:
		return appendValue(buf, int64(x))
	case float64:
		buf = append(buf, tagFloat)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(x))
		return append(buf, tmp[:]...)
	case string:
		return appendString(buf, x)
	case []cyphergraph.Value:
		buf = append(buf, tagList)
		buf = appendUint32(buf, uint32(len(x)))
		for _, el := range x {
			buf = appendValue(buf, el)
		}
		return buf
	case map[string]cyphergraph.Value:
		buf = append(buf, tagMap)
		buf = appendUint32(buf, uint32(len(x)))
		for k, val := range x {
			buf = appendString(buf, k)
			buf = appendValue(buf, val)
		}
		return buf
	default:
		panic(fmt.Sprintf("badgergraph: value of type %T has no encoding", v))
	}
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, tagString)
	buf = appendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendUint32(buf []byte, n uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], n)
	return append(buf, tmp[:]...)
}

func decodeValue(data []byte) (cyphergraph.Value, []byte, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("badgergraph: empty value encoding")
	}
	tag, rest := data[0], data[1:]
	switch tag {
	case tagNull:
		return nil, rest, nil
	case tagBool:
		if len(rest) < 1 {
			return nil, nil, fmt.Errorf("badgergraph: truncated bool")
		}
		return rest[0] != 0, rest[1:], nil
	case tagInt:
		if len(rest) < 8 {
			return nil, nil, fmt.Errorf("badgergraph: truncated int")
		}
		return int64(binary.BigEndian.Uint64(rest[:8])), rest[8:], nil
	case tagFloat:
		if len(rest) < 8 {
			return nil, nil, fmt.Errorf("badgergraph: truncated float")
		}
		return math.Float64frombits(binary.BigEndian.Uint64(rest[:8])), rest[8:], nil
	case tagString:
		s, rest, err := decodeString(rest)
		return s, rest, err
	case tagList:
		if len(rest) < 4 {
			return nil, nil, fmt.Errorf("badgergraph: truncated list length")
		}
		n := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		out := make([]cyphergraph.Value, n)
		for i := uint32(0); i < n; i++ {
			var v cyphergraph.Value
			var err error
			v, rest, err = decodeValue(rest)
			if err != nil {
				return nil, nil, err
			}
			out[i] = v
		}
		return out, rest, nil
	case tagMap:
		if len(rest) < 4 {
			return nil, nil, fmt.Errorf("badgergraph: truncated map length")
		}
		n := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		out := make(map[string]cyphergraph.Value, n)
		for i := uint32(0); i < n; i++ {
			var k string
			var v cyphergraph.Value
			var err error
			k, rest, err = decodeString(rest)
			if err != nil {
				return nil, nil, err
			}
			v, rest, err = decodeValue(rest)
			if err != nil {
				return nil, nil, err
			}
			out[k] = v
		}
		return out, rest, nil
	default:
		return nil, nil, fmt.Errorf("badgergraph: unknown value tag %d", tag)
	}
}

func decodeString(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", nil, fmt.Errorf("badgergraph: truncated string length")
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	if uint32(len(data)) < n {
		return "", nil, fmt.Errorf("badgergraph: truncated string body")
	}
	return string(data[:n]), data[n:], nil
}

func encodeProperties(props map[string]cyphergraph.Value) []byte {
	return appendValue(nil, props)
}

func decodeProperties(data []byte) (map[string]cyphergraph.Value, error) {
	v, _, err := decodeValue(data)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]cyphergraph.Value)
	if !ok {
		return nil, fmt.Errorf("badgergraph: expected a property map")
	}
	return m, nil
}

func encodeStrings(ss []string) []byte {
	values := make([]cyphergraph.Value, len(ss))
	for i, s := range ss {
		values[i] = s
	}
	return appendValue(nil, values)
}

func decodeStrings(data []byte) ([]string, error) {
	v, _, err := decodeValue(data)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]cyphergraph.Value)
	if !ok {
		return nil, nil
	}
	out := make([]string, len(list))
	for i, el := range list {
		s, _ := el.(string)
		out[i] = s
	}
	return out, nil
}

// encodeNode serializes a Node's labels and properties (identity lives in
// the key, not the value).
func encodeNode(n cyphergraph.Node) []byte {
	buf := appendUint32(nil, uint32(len(n.Labels)))
	for _, l := range n.Labels {
		buf = appendString(buf, l)
	}
	return append(buf, encodeProperties(n.Properties)...)
}

func decodeNode(id cyphergraph.NodeID, data []byte) (cyphergraph.Node, error) {
	if len(data) < 4 {
		return cyphergraph.Node{}, fmt.Errorf("badgergraph: truncated node")
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	labels := make([]string, n)
	var err error
	for i := uint32(0); i < n; i++ {
		labels[i], data, err = decodeString(data)
		if err != nil {
			return cyphergraph.Node{}, err
		}
	}
	props, err := decodeProperties(data)
	if err != nil {
		return cyphergraph.Node{}, err
	}
	return cyphergraph.NewNode(id, labels, props), nil
}

// encodeRel serializes a Relationship's type, endpoints, and properties
// (identity lives in the key, not the value).
func encodeRel(r cyphergraph.Relationship) []byte {
	buf := appendString(nil, r.Type)
	buf = appendString(buf, r.StartID.String())
	buf = appendString(buf, r.EndID.String())
	return append(buf, encodeProperties(r.Properties)...)
}

func decodeRel(id cyphergraph.RelID, data []byte) (cyphergraph.Relationship, error) {
	relType, data, err := decodeString(data)
	if err != nil {
		return cyphergraph.Relationship{}, err
	}
	startStr, data, err := decodeString(data)
	if err != nil {
		return cyphergraph.Relationship{}, err
	}
	endStr, data, err := decodeString(data)
	if err != nil {
		return cyphergraph.Relationship{}, err
	}
	props, err := decodeProperties(data)
	if err != nil {
		return cyphergraph.Relationship{}, err
	}
	return cyphergraph.NewRelationship(id, relType, cyphergraph.NewNodeID(startStr), cyphergraph.NewNodeID(endStr), props), nil
}
