// Package builtin provides ready-made host functions for templates.
//
// Every function is a top-level declaration, so the registry is accepted by
// evaluators built with [lang.SandboxStrict].
package builtin

import (
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/tagmacro/lang"
)

//nolint:gochecknoglobals
var registry = lang.FunctionRegistry{
	// Text
	"toUpperCase": upper,
	"upper":       upper,
	"toLowerCase": lower,
	"lower":       lower,
	"title":       title,
	"trim":        trim,
	"default":     firstNonEmpty,
	"markdown":    markdown,

	// Arithmetic
	"add":  add,
	"calc": calc,

	// Dates
	"date":      date,
	"localdate": localdate,

	// System
	"env":      env,
	"target":   target,
	"platform": platform,
	"hostname": hostname,
	"user":     username,
	"shell":    shell,
	"cwd":      cwd,

	// Filesystem
	"file.exists":    fileExists,
	"file.isDir":     fileIsDir,
	"file.isRegular": fileIsRegular,
	"file.isSymlink": fileIsSymlink,

	// Paths
	"path.abs":      pathAbs,
	"path.cat":      pathCat,
	"path.rel":      pathRel,
	"pathprefix":    pathPrefix,
	"pathprefixdir": pathPrefixDir,
}

// Functions returns a new registry holding every builtin function.
func Functions() lang.FunctionRegistry {
	return maps.Clone(registry)
}

// Names returns the sorted names of the builtin functions.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

// joined rejoins arguments the call syntax split on commas.
func joined(args []string) string {
	return strings.Join(args, ", ")
}

// arg returns args[i], or "" if there are not enough arguments.
func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}

	return ""
}
