package lang

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Node type tags used in the map form of a tree.
const (
	tagTemplate         = "Template"
	tagLiteral          = "Literal"
	tagVariable         = "Variable"
	tagIndirectVariable = "IndirectVariable"
	tagArray            = "Array"
	tagCrossProduct     = "CrossProduct"
	tagConditional      = "Conditional"
	tagFunctionCall     = "FunctionCall"
)

// MarshalNode encodes n as JSON. See [ToMap] for the shape of each node.
func MarshalNode(n Node) ([]byte, error) {
	return json.Marshal(ToMap(n))
}

// ToMap converts a tree to native Go maps and slices. Each node becomes a
// map with a "type" key naming its kind; absent children are omitted.
func ToMap(n Node) map[string]any {
	if isNil(n) {
		return nil
	}

	switch n := n.(type) {
	case *Template:
		return map[string]any{"type": tagTemplate, "body": toList(n.Body)}

	case *Literal:
		return map[string]any{"type": tagLiteral, "value": n.Value}

	case *Variable:
		return map[string]any{"type": tagVariable, "name": ToMap(n.Name), "raw": n.Raw}

	case *IndirectVariable:
		return map[string]any{"type": tagIndirectVariable, "name": ToMap(n.Name), "raw": n.Raw}

	case *Array:
		return map[string]any{"type": tagArray, "name": ToMap(n.Name)}

	case *CrossProduct:
		m := map[string]any{
			"type":       tagCrossProduct,
			"template":   ToMap(n.Template),
			"terminator": n.Terminator,
		}

		if n.Iterator != nil {
			m["iterator"] = ToMap(n.Iterator)
		}

		if n.Delimiter != nil {
			m["delimiter"] = *n.Delimiter
		}

		if !isNil(n.Slice) {
			m["sliceTemplate"] = ToMap(n.Slice)
		}

		return m

	case *Conditional:
		m := map[string]any{"type": tagConditional, "condition": ToMap(n.Condition)}

		if !isNil(n.True) {
			m["trueBranch"] = ToMap(n.True)
		}

		if !isNil(n.False) {
			m["falseBranch"] = ToMap(n.False)
		}

		return m

	case *FunctionCall:
		return map[string]any{
			"type":         tagFunctionCall,
			"functionName": n.Name,
			"args":         toList(n.Args),
		}

	default:
		return nil
	}
}

func toList(ns []Node) []any {
	out := make([]any, len(ns))
	for i, n := range ns {
		out[i] = ToMap(n)
	}

	return out
}

// UnmarshalNode decodes a tree encoded by [MarshalNode], or by any other
// producer of the same shape.
func UnmarshalNode(b []byte) (Node, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, ErrInvalidAST.Wrap(err)
	}

	return FromMap(m)
}

// FromMap is the inverse of [ToMap].
func FromMap(m map[string]any) (Node, error) {
	if m == nil {
		return nil, nil
	}

	d := decoder{m: m}

	typ := d.string("type")

	var n Node

	switch typ {
	case tagTemplate:
		n = &Template{Body: d.list("body")}

	case tagLiteral:
		n = &Literal{Value: d.string("value")}

	case tagVariable:
		n = &Variable{Name: d.node("name"), Raw: d.string("raw")}

	case tagIndirectVariable:
		n = &IndirectVariable{Name: d.node("name"), Raw: d.string("raw")}

	case tagArray:
		n = &Array{Name: d.node("name")}

	case tagCrossProduct:
		cp := &CrossProduct{
			Template:   d.node("template"),
			Terminator: d.string("terminator"),
			Slice:      d.node("sliceTemplate"),
		}

		if it, ok := d.node("iterator").(*Array); ok {
			cp.Iterator = it
		} else if d.err == nil {
			d.err = fmt.Errorf("cross product iterator must be %s", tagArray)
		}

		if _, ok := m["delimiter"]; ok {
			delim := d.string("delimiter")
			cp.Delimiter = &delim
		}

		n = cp

	case tagConditional:
		n = &Conditional{
			Condition: d.node("condition"),
			True:      d.node("trueBranch"),
			False:     d.node("falseBranch"),
		}

	case tagFunctionCall:
		n = &FunctionCall{Name: d.string("functionName"), Args: d.list("args")}

	default:
		return nil, ErrInvalidAST.
			Wrapf("unknown node type %q", typ).
			With(slog.String("type", typ))
	}

	if d.err != nil {
		return nil, ErrInvalidAST.Wrap(d.err).With(slog.String("type", typ))
	}

	return n, nil
}

// decoder reads typed fields from a node map, keeping the first error.
type decoder struct {
	m   map[string]any
	err error
}

func (d *decoder) fail(key, want string) {
	if d.err == nil {
		d.err = fmt.Errorf("field %q: expected %s, got %T", key, want, d.m[key])
	}
}

func (d *decoder) string(key string) string {
	v, ok := d.m[key]
	if !ok || v == nil {
		return ""
	}

	s, ok := v.(string)
	if !ok {
		d.fail(key, "string")
	}

	return s
}

func (d *decoder) node(key string) Node {
	v, ok := d.m[key]
	if !ok || v == nil {
		return nil
	}

	m, ok := v.(map[string]any)
	if !ok {
		d.fail(key, "object")

		return nil
	}

	n, err := FromMap(m)
	if err != nil && d.err == nil {
		d.err = err
	}

	return n
}

func (d *decoder) list(key string) []Node {
	v, ok := d.m[key]
	if !ok || v == nil {
		return nil
	}

	items, ok := v.([]any)
	if !ok {
		d.fail(key, "array")

		return nil
	}

	if len(items) == 0 {
		return nil
	}

	out := make([]Node, 0, len(items))

	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			d.fail(key, "array of objects")

			return nil
		}

		n, err := FromMap(m)
		if err != nil {
			if d.err == nil {
				d.err = err
			}

			return nil
		}

		out = append(out, n)
	}

	return out
}
