package repl

import (
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{name: "plain_text", input: "greeting", cursor: 8},
		{name: "variable_tag", input: "<#name#>", cursor: 8},
		{name: "name_only", input: "<{env", cursor: 5},
		{
			name:       "first_arg",
			input:      "<{env(",
			cursor:     6,
			wantName:   "env",
			wantInCall: true,
		},
		{
			name:       "second_arg",
			input:      "<{env(HOME, ",
			cursor:     12,
			wantName:   "env",
			wantIndex:  1,
			wantInCall: true,
		},
		{
			name:       "dotted_name",
			input:      "<{path.cat(a, b, c",
			cursor:     18,
			wantName:   "path.cat",
			wantIndex:  2,
			wantInCall: true,
		},
		{name: "closed_call", input: "<{env(HOME)}>", cursor: 13},
		{
			name:       "second_call_after_text",
			input:      "<{upper(a)}> and <{lower(",
			cursor:     25,
			wantName:   "lower",
			wantInCall: true,
		},
		{
			name:       "cursor_before_end",
			input:      "<{env(HOME, x)}>",
			cursor:     7,
			wantName:   "env",
			wantInCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)

			if got.name != tt.wantName ||
				got.argIndex != tt.wantIndex ||
				got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%s %d %v}",
					tt.input, tt.cursor, got,
					tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	sig, params := signature("env")
	if sig != "env(name, default?)" {
		t.Errorf("signature(env) = %q", sig)
	}

	if len(params) != 2 {
		t.Errorf("params(env) = %v", params)
	}

	if sig, _ := signature("no.such.func"); sig != "" {
		t.Errorf("unknown function has signature %q", sig)
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		params    []string
		argIdx    int
		wantEmpty bool
		contains  []string
	}{
		{name: "empty", wantEmpty: true},
		{
			name:      "no_params",
			signature: "cwd()",
			contains:  []string{"cwd", "()"},
		},
		{
			name:      "first_param",
			signature: "env(name, default?)",
			params:    []string{"name", "default?"},
			contains:  []string{"env", "name", "default?"},
		},
		{
			name:      "variadic_beyond_params",
			signature: "path.cat(...elem)",
			params:    []string{"...elem"},
			argIdx:    3,
			contains:  []string{"path.cat", "...elem"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.signature, tt.params, tt.argIdx)

			if tt.wantEmpty {
				if got != "" {
					t.Errorf("expected empty hint, got %q", got)
				}

				return
			}

			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("hint %q does not contain %q", got, want)
				}
			}
		})
	}
}
