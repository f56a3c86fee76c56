package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	return string(b)
}

func TestOpenSources_Order(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.txt", "first ")
	b := writeTemp(t, dir, "b.txt", "second")

	srcs, err := openSources([]string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	defer srcs.Close()

	got, err := io.ReadAll(srcs)
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != "first second" {
		t.Errorf("got %q, want %q", got, "first second")
	}
}

func TestOpenSources_Dedup(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.txt", "once")

	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	rel, err := filepath.Rel(wd, a)
	if err != nil {
		t.Fatal(err)
	}

	srcs, err := openSources([]string{a, link, rel, a})
	if err != nil {
		t.Fatal(err)
	}
	defer srcs.Close()

	if len(srcs.files) != 1 {
		t.Errorf("opened %d files, want 1", len(srcs.files))
	}

	got, err := io.ReadAll(srcs)
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != "once" {
		t.Errorf("got %q, want %q", got, "once")
	}
}

func TestOpenSources_Stdin(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.txt", "x")

	srcs, err := openSources([]string{"-", a, "-"})
	if err != nil {
		t.Fatal(err)
	}
	defer srcs.Close()

	if !srcs.hasStdin || len(srcs.files) != 1 {
		t.Errorf("hasStdin=%v files=%d", srcs.hasStdin, len(srcs.files))
	}
}

func TestOpenSources_Missing(t *testing.T) {
	_, err := openSources([]string{filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, ErrOpenFile) {
		t.Errorf("error = %v, want ErrOpenFile", err)
	}
}

func TestWriteOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	if err := writeOutput(path, "hello"); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, path); got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestWriteOutput_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.txt")

	if err := writeOutput(path, "x"); !errors.Is(err, ErrWriteOutput) {
		t.Errorf("error = %v, want ErrWriteOutput", err)
	}
}
