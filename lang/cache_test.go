package lang

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
)

func TestParseString_Cached(t *testing.T) {
	ClearCache()

	src := "cached <#name#>"

	first, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	second, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if first != second {
		t.Error("expected the cached tree to be returned")
	}

	braced, err := ParseString(t.Context(), src, WithBraceVariables(true))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if braced == first {
		t.Error("expected options to select a separate cache entry")
	}

	ClearCache()

	third, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if third == first {
		t.Error("expected a fresh tree after ClearCache")
	}
}

func TestParseString_PlainTextBypass(t *testing.T) {
	first, err := ParseString(t.Context(), "no tags here")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	second, err := ParseString(t.Context(), "no tags here")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if first == second {
		t.Error("expected plain text to bypass the cache")
	}

	if Format(first) != "no tags here" {
		t.Errorf("unexpected tree for plain text: %q", Format(first))
	}
}

func TestParseString_CachesErrors(t *testing.T) {
	ClearCache()

	_, err1 := ParseString(t.Context(), "broken <#tag")
	_, err2 := ParseString(t.Context(), "broken <#tag")

	if !errors.Is(err1, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err1)
	}

	if err1 != err2 {
		t.Error("expected the cached error to be returned")
	}
}

func TestParseString_Concurrent(t *testing.T) {
	ClearCache()

	const n = 32

	var wg sync.WaitGroup

	trees := make([]*Template, n)
	errs := make([]error, n)

	for i := range n {
		wg.Go(func() {
			trees[i], errs[i] = ParseString(t.Context(), "<~<`<#x#>`><*><[rows]>~>")
		})
	}

	wg.Wait()

	for i := range n {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}

		if trees[i] != trees[0] {
			t.Fatalf("goroutine %d got a different tree", i)
		}
	}
}

func TestParseReader(t *testing.T) {
	tpl, err := ParseReader(t.Context(), strings.NewReader("Hello <#name#>"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(tpl.Body) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(tpl.Body))
	}

	_, err = ParseReader(t.Context(), iotest.ErrReader(errors.New("disk on fire")))
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	plain := makeParseConfig()
	braces := makeParseConfig(WithBraceVariables(true))

	if cacheKey("x", plain) != cacheKey("x", plain) {
		t.Error("expected stable cache keys")
	}

	if cacheKey("x", plain) == cacheKey("y", plain) {
		t.Error("expected source to change the key")
	}

	if cacheKey("x", plain) == cacheKey("x", braces) {
		t.Error("expected options to change the key")
	}
}
