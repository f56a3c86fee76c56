package builtin

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func upper(_ context.Context, args ...string) (any, error) {
	return strings.ToUpper(joined(args)), nil
}

func lower(_ context.Context, args ...string) (any, error) {
	return strings.ToLower(joined(args)), nil
}

// title capitalizes each word using English casing rules.
func title(_ context.Context, args ...string) (any, error) {
	return cases.Title(language.English).String(joined(args)), nil
}

func trim(_ context.Context, args ...string) (any, error) {
	return strings.TrimSpace(joined(args)), nil
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(_ context.Context, args ...string) (any, error) {
	for _, a := range args {
		if strings.TrimSpace(a) != "" {
			return a, nil
		}
	}

	return "", nil
}

// markdown converts Markdown to HTML with GitHub-flavored extensions.
func markdown(_ context.Context, args ...string) (any, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(joined(args)), &buf); err != nil {
		return nil, err
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}
