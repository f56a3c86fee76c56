package builtin

import "strings"

// params lists the parameter names of each builtin. A leading "..." marks a
// variadic parameter and a trailing "?" an optional one.
//
//nolint:gochecknoglobals
var params = map[string][]string{
	"toUpperCase": {"text"},
	"upper":       {"text"},
	"toLowerCase": {"text"},
	"lower":       {"text"},
	"title":       {"text"},
	"trim":        {"text"},
	"default":     {"...value"},
	"markdown":    {"text"},

	"add":  {"...number"},
	"calc": {"expr", "...arg"},

	"date":      {"value", "layout?"},
	"localdate": {"value", "locale", "layout?"},

	"env":      {"name", "default?"},
	"target":   {"field?"},
	"platform": {"field?"},
	"hostname": {},
	"user":     {},
	"shell":    {},
	"cwd":      {},

	"file.exists":    {"path"},
	"file.isDir":     {"path"},
	"file.isRegular": {"path"},
	"file.isSymlink": {"path"},

	"path.abs":      {"path"},
	"path.cat":      {"...elem"},
	"path.rel":      {"base", "target"},
	"pathprefix":    {"list", "...item"},
	"pathprefixdir": {"list", "...item"},
}

// Params returns the parameter names of the named builtin.
func Params(name string) ([]string, bool) {
	p, ok := params[name]
	if !ok {
		return nil, false
	}

	return append([]string(nil), p...), true
}

// Signature returns the call form of the named builtin, e.g.
// "env(name, default?)", or "" if there is no such builtin.
func Signature(name string) string {
	p, ok := params[name]
	if !ok {
		return ""
	}

	return name + "(" + strings.Join(p, ", ") + ")"
}
