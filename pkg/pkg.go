//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the tagmacro module embedded at build
// time, with surrounding whitespace removed.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier. It names the
	// executable in help text and the default configuration directory.
	Name = "tagmacro"
	// Description is a short summary used in help output.
	Description = "Tag-based macro text generator"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
