package cmd

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tagmacro/lang/builtin"
)

// Funcs lists the builtin functions available to templates.
type Funcs struct {
	Long   bool   `help:"Print parameter lists"                        short:"l"`
	Output string `default:"-" help:"Output file or '-' for stdout" short:"o"`

	Pattern string `arg:"" help:"Fuzzy filter applied to function names" optional:""`
}

// Run executes the funcs command.
func (f *Funcs) Run(context.Context) error {
	names := matchNames(f.Pattern, builtin.Names())
	if len(names) == 0 {
		return writeOutput(f.Output, "")
	}

	if f.Long {
		for i, name := range names {
			names[i] = builtin.Signature(name)
		}
	}

	return writeOutput(f.Output, strings.Join(names, "\n")+"\n")
}

// matchNames returns names matching pattern, best match first. An empty
// pattern matches every name in its original order.
func matchNames(pattern string, names []string) []string {
	if pattern == "" {
		return names
	}

	matches := fuzzy.Find(pattern, names)

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}

	return out
}
