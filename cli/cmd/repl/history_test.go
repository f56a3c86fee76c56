package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_AddAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.utf8")
	h := NewHistory(path)

	if err := h.Load(); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}

	for _, add := range []struct {
		line string
		mode inputMode
	}{
		{"<#name#>", modeEval},
		{"keys", modeCtrl},
		{"keys", modeCtrl},
		{"  ", modeEval},
	} {
		if err := h.Add(add.line, add.mode); err != nil {
			t.Fatalf("Add(%q): %v", add.line, err)
		}
	}

	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "R:<#name#>\nC:keys\n"; string(content) != want {
		t.Errorf("file = %q, want %q", content, want)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(reloaded.Entries(), h.Entries()) {
		t.Errorf("reloaded %v, want %v", reloaded.Entries(), h.Entries())
	}
}

func TestHistory_MovesDuplicateToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.utf8")
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "a"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{{Line: "b", Mode: modeEval}, {Line: "a", Mode: modeEval}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(content) != "R:b\nR:a\n" {
		t.Errorf("file = %q", content)
	}
}

func TestHistory_LoadUnprefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.utf8")

	err := os.WriteFile(path, []byte("plain\nC:quit\n\nR:<#x#>\n"), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{Line: "plain", Mode: modeEval},
		{Line: "quit", Mode: modeCtrl},
		{Line: "<#x#>", Mode: modeEval},
	}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestHistory_EntryOutOfBounds(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("x", modeEval); err != nil {
		t.Fatal(err)
	}

	if _, err := h.Entry(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(1) error = %v, want ErrOutOfBounds", err)
	}

	if e, err := h.Entry(0); err != nil || e.Line != "x" {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}
}
