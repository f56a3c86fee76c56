package cmd

import (
	"context"

	"github.com/ardnew/tagmacro/cli/cmd/repl"
	"github.com/ardnew/tagmacro/lang"
	"github.com/ardnew/tagmacro/lang/builtin"
	"github.com/ardnew/tagmacro/log"
	"github.com/ardnew/tagmacro/pkg"
)

// Repl starts an interactive session rendering templates against data.
type Repl struct {
	Data      string `help:"Data file (.json, .yaml, .yml) or '-' for stdin" short:"d"`
	Strict    bool   `help:"Reject functions that are not top-level declarations"`
	MaxDepth  int    `default:"50" help:"Maximum re-parse depth"`
	Braces    bool   `help:"Enable {{ name }} variable syntax"`
	NoHistory bool   `help:"Do not read or write the history file"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	data, err := LoadData(r.Data)
	if err != nil {
		return err
	}

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

	eval, err := lang.MakeEvaluator(builtin.Functions(), opts...)
	if err != nil {
		return ErrREPL.Wrap(err)
	}

	path := pkg.HistoryFile()
	if r.NoHistory {
		path = ""
	}

	if err := repl.Run(ctx, eval, data, repl.NewHistory(path), logger); err != nil {
		return ErrREPL.Wrap(err)
	}

	return nil
}
