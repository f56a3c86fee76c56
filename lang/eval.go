package lang

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/tagmacro/log"
)

// DefaultMaxDepth is the default limit on nested value-as-template renders.
const DefaultMaxDepth = 50

// Evaluator renders template trees against a [Data] context using a private
// snapshot of host functions. It holds no per-render state and is safe for
// concurrent use.
type Evaluator struct {
	funcs       FunctionRegistry
	parser      Parser
	logger      log.Logger
	maxDepth    int
	concurrency int
	sandbox     Sandbox
}

// Option configures an [Evaluator].
type Option func(*Evaluator)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithParser sets the parser used to re-parse resolved values. By default
// values are parsed with [ParseString] and no options.
func WithParser(p Parser) Option {
	return func(e *Evaluator) { e.parser = p }
}

// WithMaxDepth sets how many value-as-template renders may nest before
// evaluation fails with [ErrDepthExceeded].
func WithMaxDepth(depth int) Option {
	return func(e *Evaluator) { e.maxDepth = depth }
}

// WithSandbox sets how registered functions are vetted. See [Sandbox].
func WithSandbox(level Sandbox) Option {
	return func(e *Evaluator) { e.sandbox = level }
}

// WithConcurrency bounds the goroutines used to render each group of sibling
// nodes. A limit of 1 renders sequentially; a limit below 1 removes the
// bound. The default is [runtime.GOMAXPROCS].
func WithConcurrency(limit int) Option {
	return func(e *Evaluator) { e.concurrency = limit }
}

// MakeEvaluator returns an Evaluator calling the functions in funcs. The
// registry is copied, so later changes to funcs do not affect it.
func MakeEvaluator(funcs FunctionRegistry, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		maxDepth:    DefaultMaxDepth,
		concurrency: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if e.parser == nil {
		e.parser = MakeParser(WithParseLogger(e.logger))
	}

	snapshot, err := newRegistry(funcs, e.sandbox)
	if err != nil {
		return nil, err
	}

	e.funcs = snapshot

	e.logger.Debug("evaluator ready",
		slog.Int("functions", len(snapshot)),
		slog.String("sandbox", e.sandbox.String()),
		slog.Int("max_depth", e.maxDepth),
		slog.Int("concurrency", e.concurrency))

	return e, nil
}

// Functions returns the sorted names of the registered functions.
func (e *Evaluator) Functions() []string { return e.funcs.Names() }

// Render parses src with the evaluator's parser and evaluates it.
func (e *Evaluator) Render(ctx context.Context, src string, data *Data) (string, error) {
	node, err := e.parser.Parse(ctx, src)
	if err != nil {
		return "", WrapError(err).With(slog.Int("source_length", len(src)))
	}

	return e.Evaluate(ctx, node, data)
}

// Evaluate renders node against data. data is never modified; a nil data
// is an empty context.
func (e *Evaluator) Evaluate(ctx context.Context, node Node, data *Data) (string, error) {
	e.logger.TraceContext(ctx, "render start", slog.String("kind", kindOf(node)))

	out, err := e.eval(ctx, node, data, 0)
	if err != nil {
		e.logger.DebugContext(ctx, "render failed", slog.Any("error", err))

		return "", err
	}

	e.logger.TraceContext(ctx, "render complete", slog.Int("length", len(out)))

	return out, nil
}

func kindOf(n Node) string {
	if isNil(n) {
		return "nil"
	}

	return n.Kind().String()
}

func (e *Evaluator) eval(ctx context.Context, n Node, data *Data, depth int) (string, error) {
	if depth > e.maxDepth {
		return "", ErrDepthExceeded.
			Wrapf("depth %d exceeds limit %d", depth, e.maxDepth).
			With(slog.Int("depth", depth))
	}

	if ctx.Err() != nil {
		return "", context.Cause(ctx)
	}

	if isNil(n) {
		return "", nil
	}

	switch n := n.(type) {
	case *Template:
		parts, err := e.nodes(ctx, n.Body, data, depth)

		return strings.Join(parts, ""), err

	case *Literal:
		return n.Value, nil

	case *Variable:
		return e.evalVariable(ctx, n, data, depth)

	case *IndirectVariable:
		return e.evalIndirect(ctx, n, data, depth)

	case *Array:
		return "", ErrInvalidAST.Wrapf("standalone Array node")

	case *CrossProduct:
		return e.evalCrossProduct(ctx, n, data, depth)

	case *Conditional:
		return e.evalConditional(ctx, n, data, depth)

	case *FunctionCall:
		return e.evalFunctionCall(ctx, n, data, depth)

	default:
		return "", ErrUnhandledNode.With(slog.String("type", fmt.Sprintf("%T", n)))
	}
}

func (e *Evaluator) evalVariable(ctx context.Context, v *Variable, data *Data, depth int) (string, error) {
	key, err := e.eval(ctx, v.Name, data, depth)
	if err != nil {
		return "", err
	}

	val, ok := ResolveKey(data, key)

	e.logger.TraceContext(ctx, "variable resolved",
		slog.String("key", key),
		slog.Bool("found", ok),
		slog.Int("depth", depth))

	if !ok {
		return v.Raw, nil
	}

	return e.reparse(ctx, Stringify(val), data, depth+1)
}

func (e *Evaluator) evalIndirect(ctx context.Context, v *IndirectVariable, data *Data, depth int) (string, error) {
	key, err := e.eval(ctx, v.Name, data, depth)
	if err != nil {
		return "", err
	}

	cur, ok := ResolveKey(data, key)
	if !ok {
		return v.Raw, nil
	}

	visited := []string{key}

	for {
		s, isString := cur.(string)
		if !isString {
			break
		}

		next, ok := ResolveKey(data, s)
		if !ok {
			key = s

			break
		}

		if slices.Contains(visited, s) {
			return "", ErrCircularReference.
				Wrap(&CycleError{Chain: append(visited, s)}).
				With(slog.String("key", visited[0]))
		}

		visited = append(visited, s)
		key, cur = s, next
	}

	e.logger.TraceContext(ctx, "indirect chain",
		slog.Any("chain", visited),
		slog.String("result", key))

	return e.reparse(ctx, key, data, depth+1)
}

// reparse renders a resolved value as a template of its own.
func (e *Evaluator) reparse(ctx context.Context, src string, data *Data, depth int) (string, error) {
	node, err := e.parser.Parse(ctx, src)
	if err != nil {
		return "", WrapError(err).With(slog.String("value", src))
	}

	return e.eval(ctx, node, data, depth)
}

func (e *Evaluator) evalCrossProduct(ctx context.Context, cp *CrossProduct, data *Data, depth int) (string, error) {
	if cp.Iterator == nil {
		return "", ErrInvalidAST.Wrapf("cross product without iterator")
	}

	name, err := e.eval(ctx, cp.Iterator.Name, data, depth)
	if err != nil {
		return "", err
	}

	raw, _ := ResolveKey(data, name)

	list, ok := raw.([]Value)
	if !ok || len(list) == 0 {
		e.logger.TraceContext(ctx, "cross product skipped",
			slog.String("array", name),
			slog.Bool("found", raw != nil))

		return "", nil
	}

	start, end := FullSlice(len(list))

	if !isNil(cp.Slice) {
		spec, err := e.eval(ctx, cp.Slice, data, depth)
		if err != nil {
			return "", err
		}

		start, end = ParseSlice(spec, len(list))
	}

	e.logger.TraceContext(ctx, "cross product",
		slog.String("array", name),
		slog.Int("length", len(list)),
		slog.Int("start", start),
		slog.Int("end", end))

	rows := list[start:end]

	parts, err := e.each(ctx, len(rows), func(ctx context.Context, i int) (string, error) {
		row, ok := rows[i].(*Data)
		if !ok {
			return "", nil
		}

		flat := row.flatten()
		flat[name+".elementindex"] = start + i + 1
		flat[name+".numberofelements"] = len(list)
		flat[name+".index"] = start + i
		flat[name+".length"] = len(list)

		return e.eval(ctx, cp.Template, data.layer(flat), depth)
	})
	if err != nil {
		return "", err
	}

	if cp.Delimiter == nil {
		return strings.Join(parts, ""), nil
	}

	return strings.Join(parts, *cp.Delimiter) + cp.Terminator, nil
}

func (e *Evaluator) evalConditional(ctx context.Context, c *Conditional, data *Data, depth int) (string, error) {
	cond, err := e.eval(ctx, c.Condition, data, depth)
	if err != nil {
		return "", err
	}

	if Truthy(cond) {
		return e.eval(ctx, c.True, data, depth)
	}

	return e.eval(ctx, c.False, data, depth)
}

// Truthy reports whether a rendered condition selects the true branch:
// anything other than "" and "0".
func Truthy(s string) bool { return s != "" && s != "0" }

func (e *Evaluator) evalFunctionCall(ctx context.Context, fc *FunctionCall, data *Data, depth int) (string, error) {
	fn, ok := e.funcs[fc.Name]
	if !ok {
		return "", ErrUnregisteredFunction.
			Wrapf("%q", fc.Name).
			With(slog.String("function", fc.Name))
	}

	args, err := e.nodes(ctx, fc.Args, data, depth)
	if err != nil {
		return "", err
	}

	e.logger.TraceContext(ctx, "function call",
		slog.String("function", fc.Name),
		slog.Int("argc", len(args)))

	return call(ctx, fc.Name, fn, args)
}

// nodes renders siblings, inlining literals, and returns their output in
// order.
func (e *Evaluator) nodes(ctx context.Context, ns []Node, data *Data, depth int) ([]string, error) {
	out := make([]string, len(ns))
	pending := make([]int, 0, len(ns))

	for i, n := range ns {
		if lit, ok := n.(*Literal); ok && lit != nil {
			out[i] = lit.Value
		} else if !isNil(n) {
			pending = append(pending, i)
		}
	}

	parts, err := e.each(ctx, len(pending), func(ctx context.Context, i int) (string, error) {
		return e.eval(ctx, ns[pending[i]], data, depth)
	})
	if err != nil {
		return nil, err
	}

	for i, s := range parts {
		out[pending[i]] = s
	}

	return out, nil
}

// each calls render for 0..n-1, concurrently up to the configured limit,
// and returns the results by index. The first error cancels the rest.
func (e *Evaluator) each(
	ctx context.Context,
	n int,
	render func(ctx context.Context, i int) (string, error),
) ([]string, error) {
	out := make([]string, n)

	if n <= 1 || e.concurrency == 1 {
		for i := range n {
			s, err := render(ctx, i)
			if err != nil {
				return nil, err
			}

			out[i] = s
		}

		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 1 {
		g.SetLimit(e.concurrency)
	}

	for i := range n {
		g.Go(func() error {
			s, err := render(gctx, i)
			if err != nil {
				return err
			}

			out[i] = s

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
