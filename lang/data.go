package lang

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Value is a datum held by [Data]: nil (absent), a string, a number, a bool,
// a nested *Data, or a []Value.
type Value = any

// Data is an immutable mapping from keys to values used as the context of a
// render. A Data may be layered over a parent: lookups consult the layer
// first and then its ancestors, so a child can shadow keys without copying
// or modifying the parent.
//
// The nil *Data is an empty context.
type Data struct {
	parent *Data
	vars   map[string]Value
}

// NewData builds a Data from m. Nested maps become *Data, and slices become
// []Value, recursively. m is not retained.
func NewData(m map[string]any) *Data {
	vars := make(map[string]Value, len(m))
	for k, v := range m {
		vars[k] = normalize(v)
	}

	return &Data{vars: vars}
}

// With returns a child layer of d holding vars, which shadow d's entries.
// Neither d nor vars is modified.
func (d *Data) With(vars map[string]any) *Data {
	child := NewData(vars)
	child.parent = d

	return child
}

// layer is With without copying or normalizing vars. The caller must not
// retain vars.
func (d *Data) layer(vars map[string]Value) *Data {
	return &Data{parent: d, vars: vars}
}

// Lookup returns the value stored under key. A key mapped to nil is absent.
func (d *Data) Lookup(key string) (Value, bool) {
	for l := d; l != nil; l = l.parent {
		if v, ok := l.vars[key]; ok {
			return v, v != nil
		}
	}

	return nil, false
}

// Keys returns the sorted keys visible through d, excluding absent ones.
func (d *Data) Keys() []string {
	return slices.Sorted(maps.Keys(d.flatten()))
}

// Len returns the number of keys visible through d.
func (d *Data) Len() int { return len(d.flatten()) }

// All iterates over the visible entries of d in key order.
func (d *Data) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		flat := d.flatten()
		for _, k := range slices.Sorted(maps.Keys(flat)) {
			if !yield(k, flat[k]) {
				return
			}
		}
	}
}

// Map returns a deep copy of d as plain Go maps and slices, suitable for
// encoding.
func (d *Data) Map() map[string]any {
	flat := d.flatten()
	out := make(map[string]any, len(flat))

	for k, v := range flat {
		out[k] = plain(v)
	}

	return out
}

// MarshalJSON encodes the visible entries of d as a JSON object.
func (d *Data) MarshalJSON() ([]byte, error) { return json.Marshal(d.Map()) }

// MarshalYAML encodes the visible entries of d as a YAML mapping.
func (d *Data) MarshalYAML() (any, error) { return d.Map(), nil }

// LogValue implements slog.LogValuer.
func (d *Data) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("keys", d.Len()))
}

// flatten merges all layers, nearest first, dropping absent entries.
func (d *Data) flatten() map[string]Value {
	var chain []*Data
	for l := d; l != nil; l = l.parent {
		chain = append(chain, l)
	}

	flat := make(map[string]Value)

	for _, l := range slices.Backward(chain) {
		for k, v := range l.vars {
			if v == nil {
				delete(flat, k)
			} else {
				flat[k] = v
			}
		}
	}

	return flat
}

// normalize converts decoded documents and host values into the Value
// shapes the evaluator understands.
func normalize(v any) Value {
	switch v := v.(type) {
	case nil, string, bool, json.Number, *Data,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case map[string]any:
		return NewData(v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, x := range v {
			m[fmt.Sprint(k)] = x
		}

		return NewData(m)
	case []any:
		out := make([]Value, len(v))
		for i, x := range v {
			out[i] = normalize(x)
		}

		return out
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]Value, rv.Len())
		for i := range rv.Len() {
			out[i] = normalize(rv.Index(i).Interface())
		}

		return out

	case reflect.Map:
		m := make(map[string]any, rv.Len())

		it := rv.MapRange()
		for it.Next() {
			m[fmt.Sprint(it.Key().Interface())] = it.Value().Interface()
		}

		return NewData(m)

	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}

		return normalize(rv.Elem().Interface())

	default:
		return fmt.Sprint(v)
	}
}

// plain converts a Value back to encodable Go values.
func plain(v Value) any {
	switch v := v.(type) {
	case *Data:
		return v.Map()
	case []Value:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = plain(x)
		}

		return out
	default:
		return v
	}
}

// Stringify converts a Value to the text substituted into a template.
//
// Numbers use their shortest exact decimal form, lists are joined with ",",
// and nested mappings are encoded as JSON objects.
func Stringify(v Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(v).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case *Data:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}

		return string(b)
	case []Value:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = Stringify(x)
		}

		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// DataFromJSON decodes a JSON object into a Data. Numbers keep their
// original text.
func DataFromJSON(r io.Reader) (*Data, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewData(nil), nil
		}

		return nil, ErrInvalidData.Wrap(err).With(slog.String("format", "json"))
	}

	return document(doc, "json")
}

// DataFromYAML decodes a YAML mapping into a Data.
func DataFromYAML(r io.Reader) (*Data, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewData(nil), nil
		}

		return nil, ErrInvalidData.Wrap(err).With(slog.String("format", "yaml"))
	}

	return document(doc, "yaml")
}

// document checks that a decoded document is a mapping.
func document(doc any, format string) (*Data, error) {
	if doc == nil {
		return NewData(nil), nil
	}

	d, ok := normalize(doc).(*Data)
	if !ok {
		return nil, ErrInvalidData.
			Wrapf("top level must be a mapping, got %T", doc).
			With(slog.String("format", format))
	}

	return d, nil
}

// formatNumber prints a JSON number the way it would print after decoding to
// a float, so "1.0" is "1" and "1e3" is "1000". Integer literals are kept
// verbatim to stay exact beyond float64 precision.
func formatNumber(n json.Number) string {
	s := n.String()
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}

	if strings.Trim(s, "-0123456789") == "" {
		return s
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
