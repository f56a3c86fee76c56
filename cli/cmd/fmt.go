package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/tagmacro/lang"
	"github.com/ardnew/tagmacro/log"
)

// Fmt parses a template and prints its tree in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as tag syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON syntax tree."`
	YAML   YAML   `cmd:""                    help:"Format as YAML syntax tree."`
}

// Input holds the flags shared by every fmt format.
type Input struct {
	Braces bool   `help:"Enable {{ name }} variable syntax"`
	Output string `default:"-" help:"Output file or '-' for stdout" short:"o"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// format parses the source and writes it to the output with write.
func (s *Input) format(
	ctx context.Context,
	name string,
	write func(w io.Writer, node lang.Node) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	srcs, err := openSources([]string{s.Source})
	if err != nil {
		return err
	}
	defer srcs.Close()

	tpl, err := lang.ParseReader(ctx, srcs,
		lang.WithBraceVariables(s.Braces),
		lang.WithParseLogger(log.Default()),
	)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("format", name))
	}

	w, err := openOutput(s.Output)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = ErrWriteOutput.Wrap(cerr)
		}
	}()

	if err := write(w, tpl); err != nil {
		return ErrWriteOutput.With(slog.String("format", name)).Wrap(err)
	}

	return nil
}

// Native formats input as tag syntax.
type Native struct {
	Input `embed:""`
}

// Run executes the native command.
func (n *Native) Run(ctx context.Context) error {
	return n.Input.format(ctx, "native", func(w io.Writer, node lang.Node) error {
		_, err := io.WriteString(w, lang.Format(node))

		return err
	})
}

// JSON formats input as a JSON syntax tree.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Input `embed:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return j.Input.format(ctx, "json", func(w io.Writer, node lang.Node) error {
		return lang.FormatJSON(ctx, w, node, j.Indent)
	})
}

// YAML formats input as a YAML syntax tree.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Input `embed:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return y.Input.format(ctx, "yaml", func(w io.Writer, node lang.Node) error {
		return lang.FormatYAML(ctx, w, node, y.Indent)
	})
}
