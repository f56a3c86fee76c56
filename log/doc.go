// Package log provides a concurrency-safe leveled logger built on
// [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
// The zero value of [Logger] discards all messages, which lets libraries
// accept an optional logger without nil checks.
//
// # Levels
//
// In addition to the four [slog] levels, [LevelTrace] sits below
// [LevelDebug] for per-node evaluation detail that is too noisy for
// everyday debugging.
//
// # Default Logger
//
// Package-level functions such as [Info] and [Debug] write through a default
// logger that emits to standard error. [Config] reconfigures it.
//
// # Pretty Output
//
// [WithPretty] selects colorized handlers for both [FormatText] and
// [FormatJSON]. Colors are chosen by a [lipgloss] renderer bound to the
// output, so redirecting to a file yields plain text.
//
// [lipgloss]: https://github.com/charmbracelet/lipgloss
package log
