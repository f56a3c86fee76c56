package cmd

import (
	"context"
	"log/slog"
	"os"
	"slices"

	"github.com/ardnew/tagmacro/lang"
	"github.com/ardnew/tagmacro/lang/builtin"
	"github.com/ardnew/tagmacro/log"
)

// Render renders a template against a data file.
type Render struct {
	Template    []string          `default:"-"  help:"Template file(s) read in order, or '-' for stdin"                          short:"t"`
	Data        string            `             help:"Data file (.json, .yaml, .yml) or '-' for stdin"                           short:"d"`
	Set         map[string]string `             help:"Set a top-level variable, overriding the data file"                        short:"s"`
	AST         string            `             help:"Render a JSON syntax tree from file instead of parsing a template"                   type:"existingfile"`
	Strict      bool              `             help:"Reject functions that are not top-level declarations"`
	MaxDepth    int               `default:"50" help:"Maximum re-parse depth"`
	Concurrency int               `default:"0"  help:"Concurrent renders per node list (0 uses all CPUs, negative is unbounded)"`
	Braces      bool              `             help:"Enable {{ name }} variable syntax"`
	Output      string            `default:"-"  help:"Output file or '-' for stdout"                                             short:"o"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	if r.Data == stdinSource && r.AST == "" && slices.Contains(r.Template, stdinSource) {
		return ErrStdinTwice.With(slog.String("flags", "--template --data"))
	}

	data, err := LoadData(r.Data)
	if err != nil {
		return err
	}

	if len(r.Set) > 0 {
		vars := make(map[string]any, len(r.Set))
		for key, value := range r.Set {
			vars[key] = value
		}

		data = data.With(vars)
	}

	eval, err := lang.MakeEvaluator(builtin.Functions(), r.options()...)
	if err != nil {
		return ErrRender.Wrap(err)
	}

	var out string

	if r.AST != "" {
		out, err = r.renderAST(ctx, eval, data)
	} else {
		out, err = r.renderTemplate(ctx, eval, data)
	}

	if err != nil {
		return err
	}

	log.DebugContext(ctx, "rendered",
		slog.Int("length", len(out)),
		slog.String("output", r.Output),
	)

	return writeOutput(r.Output, out)
}

// options returns the evaluator options selected by flags.
func (r *Render) options() []lang.Option {
	logger := log.Default()

	opts := []lang.Option{
		lang.WithLogger(logger),
		lang.WithMaxDepth(r.MaxDepth),
		lang.WithParser(lang.MakeParser(
			lang.WithBraceVariables(r.Braces),
			lang.WithParseLogger(logger),
		)),
	}

	if r.Strict {
		opts = append(opts, lang.WithSandbox(lang.SandboxStrict))
	}

	if r.Concurrency != 0 {
		opts = append(opts, lang.WithConcurrency(r.Concurrency))
	}

	return opts
}

func (r *Render) renderTemplate(
	ctx context.Context,
	eval *lang.Evaluator,
	data *lang.Data,
) (string, error) {
	srcs, err := openSources(r.Template)
	if err != nil {
		return "", err
	}
	defer srcs.Close()

	src, err := lang.ReadAll(srcs)
	if err != nil {
		return "", err
	}

	out, err := eval.Render(ctx, string(src), data)
	if err != nil {
		return "", ErrRender.Wrap(err)
	}

	return out, nil
}

func (r *Render) renderAST(
	ctx context.Context,
	eval *lang.Evaluator,
	data *lang.Data,
) (string, error) {
	src, err := os.ReadFile(r.AST)
	if err != nil {
		return "", ErrOpenFile.With(slog.String("path", r.AST)).Wrap(err)
	}

	node, err := lang.UnmarshalNode(src)
	if err != nil {
		return "", ErrRender.With(slog.String("ast", r.AST)).Wrap(err)
	}

	out, err := eval.Evaluate(ctx, node, data)
	if err != nil {
		return "", ErrRender.With(slog.String("ast", r.AST)).Wrap(err)
	}

	return out, nil
}
