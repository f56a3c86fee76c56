package lang

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"regexp"
	"runtime"
	"slices"
)

// Function is a host-supplied callable invoked by a [FunctionCall]. It
// receives the rendered arguments and must return a string, number, or bool.
// Functions may block; they should honor ctx.
type Function func(ctx context.Context, args ...string) (any, error)

// FunctionRegistry maps function names to host functions.
type FunctionRegistry map[string]Function

// Names returns the sorted function names in r.
func (r FunctionRegistry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// Sandbox selects how strictly an [Evaluator] vets registered functions.
type Sandbox int

const (
	// SandboxCopy snapshots the registry so later changes to the caller's map
	// have no effect on the evaluator.
	SandboxCopy Sandbox = iota
	// SandboxStrict additionally requires every function to be a top-level
	// function declaration. Function literals, which may capture variables
	// of the enclosing scope, and bound method values, which capture their
	// receiver, are rejected.
	SandboxStrict
)

func (s Sandbox) String() string {
	switch s {
	case SandboxCopy:
		return "copy"
	case SandboxStrict:
		return "strict"
	default:
		return fmt.Sprintf("Sandbox(%d)", int(s))
	}
}

// capturing matches the symbol names the Go toolchain assigns to function
// literals ("pkg.Outer.func1", "pkg.init.func2.1", "pkg.glob..func3") and
// to method values ("pkg.T.Method-fm").
var capturing = regexp.MustCompile(`(\.func\d+(\.\d+)*|-fm)$`)

// symbol returns the toolchain name of fn's code.
func symbol(fn Function) string {
	if f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()); f != nil {
		return f.Name()
	}

	return ""
}

// newRegistry returns a private snapshot of funcs vetted at level.
func newRegistry(funcs FunctionRegistry, level Sandbox) (FunctionRegistry, error) {
	snapshot := maps.Clone(funcs)
	if snapshot == nil {
		snapshot = FunctionRegistry{}
	}

	for _, name := range snapshot.Names() {
		fn := snapshot[name]
		if fn == nil {
			return nil, ErrNilFunction.With(slog.String("function", name))
		}

		if level < SandboxStrict {
			continue
		}

		if sym := symbol(fn); sym == "" || capturing.MatchString(sym) {
			return nil, ErrCapturingFunction.
				Wrapf("%q is implemented by %s", name, sym).
				With(slog.String("function", name), slog.String("symbol", sym))
		}
	}

	return snapshot, nil
}

// call invokes fn, converting a panic into [ErrFunctionPanic] and the
// result into text.
func call(ctx context.Context, name string, fn Function, args []string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrFunctionPanic.
				Wrapf("%s: %v", name, r).
				With(slog.String("function", name))
		}
	}()

	res, err := fn(ctx, args...)
	if err != nil {
		return "", ErrFunctionCall.Wrap(err).With(slog.String("function", name))
	}

	switch res.(type) {
	case string, bool, fmt.Stringer,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Stringify(res), nil
	default:
		return "", ErrInvalidResult.
			Wrapf("%s returned %T", name, res).
			With(slog.String("function", name))
	}
}
