package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/tagmacro/cli"
	"github.com/ardnew/tagmacro/lang"
	"github.com/ardnew/tagmacro/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error(
			"run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()

		// Point at the offending source for template syntax errors.
		var perr *lang.ParseError
		if errors.As(err, &perr) {
			fmt.Fprint(os.Stderr, perr.Snippet())
		}

		os.Exit(1)
	}
}
