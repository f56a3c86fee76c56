package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/tagmacro/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Info("rendered template", slog.Int("bytes", 42))
	logger.Debug("suppressed below info")

	// Output:
	// level=INFO msg="rendered template" bytes=42
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.ParseLevel("trace")),
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Trace("visit", slog.String("node", "Variable"))

	// Output:
	// {"level":"TRACE","msg":"visit","node":"Variable"}
}
