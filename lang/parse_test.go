package lang

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func TestParse_Trees(t *testing.T) {
	comma := ","
	none := ""

	tests := []struct {
		name string
		src  string
		want *Template
	}{
		{
			name: "empty",
			src:  "",
			want: &Template{},
		},
		{
			name: "plain text",
			src:  "a < b <= c",
			want: Text("a < b <= c"),
		},
		{
			name: "variable",
			src:  "Hello <#name#>!",
			want: &Template{Body: []Node{
				&Literal{Value: "Hello "},
				&Variable{Name: Text("name"), Raw: "<#name#>"},
				&Literal{Value: "!"},
			}},
		},
		{
			name: "computed variable name",
			src:  "<#<#kind#>_id#>",
			want: &Template{Body: []Node{
				&Variable{
					Name: &Template{Body: []Node{
						&Variable{Name: Text("kind"), Raw: "<#kind#>"},
						&Literal{Value: "_id"},
					}},
					Raw: "<#<#kind#>_id#>",
				},
			}},
		},
		{
			name: "indirect variable",
			src:  "<##ref##>",
			want: &Template{Body: []Node{
				&IndirectVariable{Name: Text("ref"), Raw: "<##ref##>"},
			}},
		},
		{
			name: "function call",
			src:  "<{ join( a , <#b#> ) }>",
			want: &Template{Body: []Node{
				&FunctionCall{Name: "join", Args: []Node{
					Text("a"),
					&Template{Body: []Node{&Variable{Name: Text("b"), Raw: "<#b#>"}}},
				}},
			}},
		},
		{
			name: "function without arguments",
			src:  "<{now()}>",
			want: &Template{Body: []Node{&FunctionCall{Name: "now"}}},
		},
		{
			name: "cross product",
			src:  "<~<`x`><*><[rows]>~>",
			want: &Template{Body: []Node{
				&CrossProduct{
					Template: Text("x"),
					Iterator: &Array{Name: Text("rows")},
				},
			}},
		},
		{
			name: "cross product with slice and delimiter",
			src:  "<~{2,3}<`x`><*?,:;><[rows]>~>",
			want: &Template{Body: []Node{
				&CrossProduct{
					Template:   Text("x"),
					Iterator:   &Array{Name: Text("rows")},
					Delimiter:  &comma,
					Terminator: ";",
					Slice:      Text("2,3"),
				},
			}},
		},
		{
			name: "empty delimiter",
			src:  "<~<`x`><*?><[rows]>~>",
			want: &Template{Body: []Node{
				&CrossProduct{
					Template:  Text("x"),
					Iterator:  &Array{Name: Text("rows")},
					Delimiter: &none,
				},
			}},
		},
		{
			name: "conditional",
			src:  "<~<+><`yes`><-><`no`><?c?>~>",
			want: &Template{Body: []Node{
				&Conditional{Condition: Text("c"), True: Text("yes"), False: Text("no")},
			}},
		},
		{
			name: "conditional parts in any order",
			src:  "<~<?c?><-><`no`>~>",
			want: &Template{Body: []Node{
				&Conditional{Condition: Text("c"), False: Text("no")},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(t.Context(), tt.src)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tree mismatch\nwant: %s\ngot:  %s", mustJSON(t, tt.want), mustJSON(t, got))
			}
		})
	}
}

func mustJSON(t *testing.T, n Node) string {
	t.Helper()

	b, err := MarshalNode(n)
	if err != nil {
		t.Fatalf("MarshalNode failed: %v", err)
	}

	return string(b)
}

func TestParse_BraceVariables(t *testing.T) {
	src := "Hi {{ name }}!"

	plain, err := Parse(t.Context(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if !reflect.DeepEqual(plain, Text(src)) {
		t.Errorf("expected braces to be literal text by default, got %s", mustJSON(t, plain))
	}

	got, err := Parse(t.Context(), src, WithBraceVariables(true))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	want := &Template{Body: []Node{
		&Literal{Value: "Hi "},
		&Variable{Name: Text("name"), Raw: "{{ name }}"},
		&Literal{Value: "!"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tree mismatch\nwant: %s\ngot:  %s", mustJSON(t, want), mustJSON(t, got))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src      string
		msg      string
		line     int
		column   int
		expected []string
	}{
		{"<#abc", "unterminated variable", 1, 1, []string{"#>"}},
		{"ab <##x#>", "unterminated indirect variable", 1, 4, []string{"##>"}},
		{"<{ (x)}>", "missing function name", 1, 4, []string{"identifier"}},
		{"<{f x}>", "malformed function call", 1, 5, []string{"("}},
		{"<{f(x}>", "unterminated function call", 1, 1, []string{",", ")"}},
		{"<{f(x) >", "malformed function call", 1, 8, []string{"}>"}},
		{"<~<+><`a`>~>", "conditional without condition", 1, 1, []string{"<?"}},
		{"<~<?a?><?b?>~>", "duplicate conditional part", 1, 8, nil},
		{"<~x~>", "malformed block", 1, 3, []string{"<`", "{", "<+>", "<->", "<?", "~>"}},
		{"<~<`a`><[x]>~>", "malformed cross product", 1, 8, []string{"<*"}},
		{"<~<`a`><*><x>~>", "malformed cross product", 1, 11, []string{"<["}},
		{"<~<`a`><*><[x]>", "unterminated block", 1, 16, []string{"~>"}},
		{"line one\n  <~<`x`>", "malformed cross product", 2, 10, []string{"<*"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(t.Context(), tt.src)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}

			if pe.Msg != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, pe.Msg)
			}

			if pe.Line != tt.line || pe.Column != tt.column {
				t.Errorf("expected position %d:%d, got %s", tt.line, tt.column, pe.Position)
			}

			if !slices.Equal(pe.Expected, tt.expected) {
				t.Errorf("expected tokens %q, got %q", tt.expected, pe.Expected)
			}
		})
	}
}

func TestParseError_Format(t *testing.T) {
	_, err := Parse(t.Context(), "<#abc")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	want := `line 1, column 1: unterminated variable (expected "#>")`
	if pe.Error() != want {
		t.Errorf("expected %q, got %q", want, pe.Error())
	}

	snippet := "  1 | <#abc\n      ^\n"
	if pe.Snippet() != snippet {
		t.Errorf("expected snippet %q, got %q", snippet, pe.Snippet())
	}

	if (&ParseError{}).Snippet() != "" {
		t.Error("expected empty snippet without source")
	}
}
