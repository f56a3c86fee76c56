package lang

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestNewData_Normalize(t *testing.T) {
	n := 7

	d := NewData(map[string]any{
		"map":      map[string]any{"k": "v"},
		"anymap":   map[any]any{1: "one"},
		"intmap":   map[string]int{"x": 1},
		"list":     []any{"a", map[string]any{"k": "v"}},
		"strings":  []string{"a", "b"},
		"rows":     []map[string]any{{"id": 1}},
		"duration": 2 * time.Second,
		"pointer":  &n,
		"nilptr":   (*int)(nil),
	})

	if _, ok := d.Lookup("map"); !ok {
		t.Fatal("expected map entry")
	}

	if v, _ := d.Lookup("map"); !isData(v) {
		t.Errorf("expected map to become *Data, got %T", v)
	}

	if v, _ := ResolveKey(d, "anymap.1"); v != "one" {
		t.Errorf("expected map[any]any keys to be stringified, got %v", v)
	}

	if v, _ := ResolveKey(d, "intmap.x"); v != 1 {
		t.Errorf("expected typed map to become *Data, got %v", v)
	}

	list, _ := d.Lookup("list")
	if items, ok := list.([]Value); !ok || len(items) != 2 || !isData(items[1]) {
		t.Errorf("expected []Value with nested *Data, got %#v", list)
	}

	if v, _ := d.Lookup("strings"); Stringify(v) != "a,b" {
		t.Errorf("expected []string to become a list, got %#v", v)
	}

	rows, _ := d.Lookup("rows")
	if items, ok := rows.([]Value); !ok || len(items) != 1 || !isData(items[0]) {
		t.Errorf("expected rows to become []Value of *Data, got %#v", rows)
	}

	if v, _ := d.Lookup("duration"); v != "2s" {
		t.Errorf("expected Stringer to become its text, got %#v", v)
	}

	if v, _ := d.Lookup("pointer"); v != 7 {
		t.Errorf("expected pointer to be dereferenced, got %#v", v)
	}

	if _, ok := d.Lookup("nilptr"); ok {
		t.Error("expected nil pointer to be absent")
	}
}

func isData(v Value) bool {
	_, ok := v.(*Data)

	return ok
}

func TestData_Layers(t *testing.T) {
	parent := NewData(map[string]any{"a": "1", "b": "2", "c": "3"})
	child := parent.With(map[string]any{"b": "override", "c": nil, "d": "4"})

	tests := []struct {
		key   string
		want  any
		found bool
	}{
		{"a", "1", true},
		{"b", "override", true},
		{"c", nil, false},
		{"d", "4", true},
	}

	for _, tt := range tests {
		got, ok := child.Lookup(tt.key)
		if ok != tt.found || (ok && got != tt.want) {
			t.Errorf("Lookup(%q) = (%v, %v), want (%v, %v)", tt.key, got, ok, tt.want, tt.found)
		}
	}

	if v, _ := parent.Lookup("b"); v != "2" {
		t.Errorf("parent modified: b = %v", v)
	}

	if _, ok := parent.Lookup("d"); ok {
		t.Error("parent modified: d present")
	}

	if keys := child.Keys(); !slices.Equal(keys, []string{"a", "b", "d"}) {
		t.Errorf("expected keys [a b d], got %v", keys)
	}

	if child.Len() != 3 {
		t.Errorf("expected 3 keys, got %d", child.Len())
	}

	var seen []string
	for k := range child.All() {
		seen = append(seen, k)
	}

	if !slices.Equal(seen, []string{"a", "b", "d"}) {
		t.Errorf("expected sorted iteration, got %v", seen)
	}
}

func TestData_Nil(t *testing.T) {
	var d *Data

	if _, ok := d.Lookup("x"); ok {
		t.Error("expected nil data to be empty")
	}

	if d.Len() != 0 || len(d.Keys()) != 0 {
		t.Error("expected nil data to have no keys")
	}

	child := d.With(map[string]any{"x": "1"})
	if v, _ := child.Lookup("x"); v != "1" {
		t.Errorf("expected layer over nil data, got %v", v)
	}
}

func TestData_Map(t *testing.T) {
	d := NewData(map[string]any{
		"n":    map[string]any{"k": "v"},
		"list": []any{"a", map[string]any{"x": 1}},
	})

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"list":["a",{"x":1}],"n":{"k":"v"}}`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{true, "true"},
		{42, "42"},
		{int64(-3), "-3"},
		{uint8(7), "7"},
		{1.5, "1.5"},
		{float64(2), "2"},
		{float32(0.25), "0.25"},
		{1e21, "1000000000000000000000"},
		{json.Number("1.50"), "1.5"},
		{json.Number("1.0"), "1"},
		{json.Number("1e3"), "1000"},
		{json.Number("-2.5E-1"), "-0.25"},
		{json.Number("12345678901234567890123"), "12345678901234567890123"},
		{[]Value{"a", 1, []Value{"b"}}, "a,1,b"},
		{NewData(map[string]any{"b": 1, "a": "x"}), `{"a":"x","b":1}`},
	}

	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDataFromJSON(t *testing.T) {
	d, err := DataFromJSON(strings.NewReader(`{"price": 1.50, "users": [{"id": 1}], "on": true}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if v, _ := d.Lookup("price"); Stringify(v) != "1.50" {
		t.Errorf("expected number text to be preserved, got %v", v)
	}

	if v, _ := d.Lookup("on"); Stringify(v) != "true" {
		t.Errorf("expected bool, got %v", v)
	}

	users, _ := d.Lookup("users")
	if items, ok := users.([]Value); !ok || len(items) != 1 || !isData(items[0]) {
		t.Errorf("expected rows, got %#v", users)
	}

	empty, err := DataFromJSON(strings.NewReader(""))
	if err != nil || empty.Len() != 0 {
		t.Errorf("expected empty data for empty input, got %v (%v)", empty, err)
	}

	for _, src := range []string{`[1, 2]`, `"text"`, `{"a":`} {
		if _, err := DataFromJSON(strings.NewReader(src)); !errors.Is(err, ErrInvalidData) {
			t.Errorf("%s: expected ErrInvalidData, got %v", src, err)
		}
	}
}

func TestDataFromYAML(t *testing.T) {
	src := `
title: Report
count: 3
ratio: 1.5
owner:
  name: ada
users:
  - id: 1
    name: a
  - id: 2
    name: b
`

	d, err := DataFromYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"title", "Report"},
		{"count", "3"},
		{"ratio", "1.5"},
		{"owner.name", "ada"},
	}

	for _, tt := range tests {
		v, ok := ResolveKey(d, tt.key)
		if !ok || Stringify(v) != tt.want {
			t.Errorf("%s: expected %q, got %v (found=%v)", tt.key, tt.want, v, ok)
		}
	}

	users, _ := d.Lookup("users")
	if items, ok := users.([]Value); !ok || len(items) != 2 || !isData(items[1]) {
		t.Errorf("expected rows, got %#v", users)
	}

	if _, err := DataFromYAML(strings.NewReader("- a\n- b\n")); !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData for top-level list, got %v", err)
	}
}
