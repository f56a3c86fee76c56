package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tagmacro/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, so that errors reported while kong is still
// parsing already use the requested format.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing via
// encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"${logLevel}"  enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"${logFormat}" enum:"${logFormatEnum}" help:"Set log format."`
	File       string    `                                               help:"Append log messages to file instead of stderr."`
	TimeLayout string    `default:"RFC3339"                              help:"Set timestamp format (a time package layout name or literal)."`
	Caller     bool      `default:"false"                                help:"Include caller information."                     negatable:""`
	Pretty     bool      `default:"true"                                 help:"Enable colorized pretty printing."               negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevel":      "info",
		"logLevelEnum":  "trace,debug,info,warn,error",
		"logFormat":     "text",
		"logFormatEnum": "json,text",
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

// start applies the final logger configuration and returns a function that
// closes the log file, if any.
func (f *logConfig) start(ctx context.Context) func() {
	var (
		out  io.Writer = os.Stderr
		stop           = func() {}
	)

	if f.File != "" {
		file, err := os.OpenFile(f.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			log.WarnContext(ctx, "cannot open log file, using stderr",
				slog.String("file", f.File),
				slog.Any("error", err),
			)
		} else {
			out = file
			stop = func() { _ = file.Close() }
		}
	}

	log.Config(
		log.WithOutput(out),
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty && f.File == ""),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("file", f.File),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return stop
}

// scan applies logger flags found in args before kong begins parsing, so
// the logger is configured regardless of where the flags appear on the
// command line. Level and format also configure the logger as kong parses
// them, but negatable booleans never pass through a TextUnmarshaler.
func (f *logConfig) scan(args []string) {
	toggles := map[string]func(bool){
		"pretty": func(v bool) {
			f.Pretty = v
			log.Config(log.WithPretty(v))
		},
		"caller": func(v bool) {
			f.Caller = v
			log.Config(log.WithCaller(v))
		},
	}

	for i := 0; i < len(args); i++ {
		name, value, assigned := strings.Cut(args[i], "=")

		negated := strings.HasPrefix(name, "--no-log-")

		name, ok := strings.CutPrefix(strings.Replace(name, "--no-log-", "--log-", 1), "--log-")
		if !ok {
			continue
		}

		if toggle, ok := toggles[name]; ok {
			v := true
			if assigned {
				parsed, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				v = parsed
			}

			toggle(v != negated)

			continue
		}

		// Remaining flags take a value, either assigned or as the next arg.
		if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			value = args[i+1]
			i++
		}

		switch name {
		case "level":
			_ = f.Level.UnmarshalText([]byte(value))

		case "format":
			_ = f.Format.UnmarshalText([]byte(value))
		}
	}
}
