package repl

import (
	"strings"
	"testing"

	"github.com/ardnew/tagmacro/lang"
)

func TestModel_Render(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"variable", "hello <#name#>", "hello Ada"},
		{"nested", "<#user.address.city#>", "London"},
		{"function", "<{upper(<#name#>)}>", "ADA"},
		{"unresolved", "<#missing#>", "<#missing#>"},
		{"empty", "<~<+><`T`><?0?>~>", "(empty)"},
		{"parse_error", "<#abc", "unterminated variable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.render(tt.input); !strings.Contains(got, tt.want) {
				t.Errorf("render(%q) = %q, want it to contain %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModel_ExecuteSet(t *testing.T) {
	m := testModel(t)

	m, _ = m.executeCommand("set greeting hi there")

	if got := m.render("<#greeting#>, <#name#>"); !strings.Contains(got, "hi there, Ada") {
		t.Errorf("render after set = %q", got)
	}

	if m.history.Len() != 0 {
		t.Errorf("executeCommand should not record history")
	}
}

func TestModel_ExecuteInput(t *testing.T) {
	m := testModel(t)

	m = typed(m, ":set x 1")
	m, _ = m.executeInput()

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	entry, err := m.history.Entry(0)
	if err != nil {
		t.Fatal(err)
	}

	if entry.Mode != modeCtrl || entry.Line != "set x 1" {
		t.Errorf("history entry = %+v", entry)
	}

	if m.mode != modeEval {
		t.Errorf("colon prefix should not change the mode")
	}

	m = typed(m, ":quit")
	m, _ = m.executeInput()

	if !m.quitting {
		t.Errorf("quit command did not quit")
	}
}

func TestModel_ListKeys(t *testing.T) {
	m := testModel(t)

	out := m.listKeys("")
	for _, key := range []string{"name", "user", "users"} {
		if !strings.Contains(out, key) {
			t.Errorf("listKeys missing %q:\n%s", key, out)
		}
	}

	if out := m.listKeys("user.address"); !strings.Contains(out, "city") {
		t.Errorf("listKeys(user.address) = %q", out)
	}

	if out := m.listKeys("nope"); !strings.Contains(out, "no such key") {
		t.Errorf("listKeys(nope) = %q", out)
	}
}

func TestModel_ListFuncs(t *testing.T) {
	m := testModel(t)

	if out := m.listFuncs("env"); !strings.Contains(out, "env(name, default?)") {
		t.Errorf("listFuncs(env) = %q", out)
	}
}

func TestModel_ToggleModePreservesInput(t *testing.T) {
	m := typed(testModel(t), "<#na")

	m, _ = m.toggleMode()
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("ctrl mode: mode=%d value=%q", m.mode, m.input.Value())
	}

	m, _ = m.toggleMode()
	if m.mode != modeEval || m.input.Value() != "<#na" {
		t.Errorf("eval mode: mode=%d value=%q", m.mode, m.input.Value())
	}
}

func TestFormatPreview(t *testing.T) {
	tests := []struct {
		value lang.Value
		want  string
	}{
		{"short", "short"},
		{strings.Repeat("x", 50), strings.Repeat("x", 37) + "..."},
		{lang.NewData(map[string]any{"a": 1, "b": 2}), "{ 2 keys }"},
		{[]lang.Value{"a", "b", "c"}, "[ 3 items ]"},
	}

	for _, tt := range tests {
		if got := formatPreview(tt.value); got != tt.want {
			t.Errorf("formatPreview(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
