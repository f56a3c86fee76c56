// Package cmd implements the tagmacro subcommands: render, fmt, funcs, init,
// and repl.
//
// Each command is a kong command struct whose Run method receives a
// [context.Context] carrying the parsed [kong.Context] (see [WithContext]).
// Template sources named on the command line are read in order, with stdin
// ("-") read last and files that resolve to the same inode read once.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the configuration file, and the name of the namespace within it that
	// holds flag defaults.
	ConfigIdentifier = "config"
)
