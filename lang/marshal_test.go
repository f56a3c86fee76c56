package lang

import (
	"errors"
	"reflect"
	"testing"
)

func TestToMap(t *testing.T) {
	tpl, err := Parse(t.Context(), "<~{1}<`<#name#>`><*?,:;><[rows]>~>")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	cp := ToMap(tpl.Body[0])

	if cp["type"] != "CrossProduct" {
		t.Errorf("expected type CrossProduct, got %v", cp["type"])
	}

	if cp["delimiter"] != "," || cp["terminator"] != ";" {
		t.Errorf("expected delimiter and terminator, got %v and %v", cp["delimiter"], cp["terminator"])
	}

	it, ok := cp["iterator"].(map[string]any)
	if !ok || it["type"] != "Array" {
		t.Errorf("expected Array iterator, got %v", cp["iterator"])
	}

	if _, ok := cp["sliceTemplate"].(map[string]any); !ok {
		t.Errorf("expected sliceTemplate, got %v", cp["sliceTemplate"])
	}

	cond := ToMap(&Conditional{Condition: Text("c")})
	if _, ok := cond["trueBranch"]; ok {
		t.Error("expected absent branch to be omitted")
	}

	if ToMap(nil) != nil {
		t.Error("expected nil map for nil node")
	}
}

func TestMarshalNode_RoundTrip(t *testing.T) {
	sources := []string{
		"Hello <#name#>, <##ref##>!",
		"INSERT <~{2,<#n#>}<`(<#id#>)`><*?,\n:;><[rows]>~>",
		"<~<+><`<{upper(<#a#>, b)}>`><-><``><?<#flag#>?>~>",
		"<{now()}><~<`x`><*><[<#which#>]>~>",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			want, err := Parse(t.Context(), src)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			b, err := MarshalNode(want)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}

			got, err := UnmarshalNode(b)
			if err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}

			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch\nwant: %s\ngot:  %s", b, mustJSON(t, got))
			}
		})
	}
}

func TestUnmarshalNode_HostTree(t *testing.T) {
	src := `{
		"type": "Template",
		"body": [
			{"type": "Literal", "value": "Hi "},
			{"type": "Variable", "raw": "<#name#>",
			 "name": {"type": "Template", "body": [{"type": "Literal", "value": "name"}]}},
			{"type": "FunctionCall", "functionName": "upper",
			 "args": [{"type": "Literal", "value": "!"}]}
		]
	}`

	n, err := UnmarshalNode([]byte(src))
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	ev, err := MakeEvaluator(testFunctions())
	if err != nil {
		t.Fatalf("MakeEvaluator failed: %v", err)
	}

	got, err := ev.Evaluate(t.Context(), n, NewData(map[string]any{"name": "ada"}))
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	if got != "Hi ada!" {
		t.Errorf("expected %q, got %q", "Hi ada!", got)
	}
}

func TestUnmarshalNode_Errors(t *testing.T) {
	tests := []string{
		`not json`,
		`{"type": "Bogus"}`,
		`{"type": "Literal", "value": 3}`,
		`{"type": "Template", "body": "x"}`,
		`{"type": "Template", "body": [1]}`,
		`{"type": "Variable", "name": {"type": "Nope"}}`,
		`{"type": "CrossProduct", "template": {"type": "Literal", "value": "x"}}`,
	}

	for _, src := range tests {
		if _, err := UnmarshalNode([]byte(src)); !errors.Is(err, ErrInvalidAST) {
			t.Errorf("%s: expected ErrInvalidAST, got %v", src, err)
		}
	}
}
