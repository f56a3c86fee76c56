package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// add returns the sum of its arguments.
func add(_ context.Context, args ...string) (any, error) {
	var sum float64

	for _, a := range args {
		n, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, fmt.Errorf("add: %q is not a number", a)
		}

		sum += n
	}

	return sum, nil
}

// calc evaluates the expression in its first argument. The remaining
// arguments are available as a1, a2, ... and as the list args; those that
// look like numbers are numbers.
func calc(_ context.Context, args ...string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("calc: missing expression")
	}

	env := exprEnv(args[1:])

	program, err := expr.Compile(args[0], expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("calc: %w", err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("calc: %w", err)
	}

	switch out.(type) {
	case string, bool, int, int64, float64:
		return out, nil
	default:
		return fmt.Sprint(out), nil
	}
}

func exprEnv(args []string) map[string]any {
	list := make([]any, len(args))
	env := make(map[string]any, len(args)+1)

	for i, a := range args {
		var v any = a
		if n, err := strconv.ParseFloat(strings.TrimSpace(a), 64); err == nil {
			v = n
		}

		list[i] = v
		env["a"+strconv.Itoa(i+1)] = v
	}

	env["args"] = list

	return env
}
