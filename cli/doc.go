// Package cli contains the command line interface for tagmacro.
//
// # Usage
//
//	tagmacro [flags] <command> [args]
//
// The render command is the default, so a bare invocation renders a
// template against a data file:
//
//	tagmacro -t report.tpl -d data.yaml
//	echo '<#greeting#>, <#name#>' | tagmacro -d data.json
//
// Other commands print the parsed tree of a template (fmt), list the builtin
// functions (funcs), write the configuration file (init), and start an
// interactive renderer (repl).
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory, and from a config.json beside it. Settings live under a
// top-level "config" mapping:
//
//	config:
//	  log-level: debug
//	  render:
//	    strict: true
//	    concurrency: 4
//
// Command-line flags override configuration values. The init command writes
// a file containing the current values of all flags.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-file: Append log output to a file instead of standard error
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// Logs are written to standard error unless --log-file is given. Evaluation traces are emitted at the
// trace level.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
