package cmd

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/tagmacro/lang/builtin"
)

func TestMatchNames(t *testing.T) {
	names := []string{"env", "file.exists", "path.abs", "upper"}

	if got := matchNames("", names); !slices.Equal(got, names) {
		t.Errorf("empty pattern = %v", got)
	}

	if got := matchNames("fex", names); !slices.Equal(got, []string{"file.exists"}) {
		t.Errorf("matchNames(fex) = %v", got)
	}

	if got := matchNames("zzz", names); len(got) != 0 {
		t.Errorf("matchNames(zzz) = %v", got)
	}
}

func TestFuncs_Run(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")

	if err := (&Funcs{Output: out}).Run(t.Context()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(readFile(t, out), "\n"), "\n")
	if !slices.Equal(lines, builtin.Names()) {
		t.Errorf("got %v, want %v", lines, builtin.Names())
	}
}

func TestFuncs_Long(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")

	if err := (&Funcs{Long: true, Pattern: "path.rel", Output: out}).Run(t.Context()); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, out); !strings.HasPrefix(got, "path.rel(base, target)\n") {
		t.Errorf("got %q", got)
	}
}
