package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values). Copies made by [Error.Wrap] and
// [Error.With] still match their sentinel with [errors.Is].
var (
	ErrDepthExceeded        = NewError("maximum evaluation depth exceeded")
	ErrCircularReference    = NewError("circular indirect reference")
	ErrUnregisteredFunction = NewError("unregistered function")
	ErrInvalidAST           = NewError("invalid AST")
	ErrUnhandledNode        = NewError("unhandled node type")
	ErrFunctionCall         = NewError("function call failed")
	ErrFunctionPanic        = NewError("function panicked")
	ErrInvalidResult        = NewError("invalid function result")
	ErrCapturingFunction    = NewError("function is not a top-level declaration")
	ErrNilFunction          = NewError("nil function")
	ErrParse                = NewError("parse error")
	ErrReadInput            = NewError("failed to read input")
	ErrInvalidData          = NewError("invalid data")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	base  *Error      // Sentinel this error derives from
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.base = e

	return e
}

// WrapError returns the first *Error in err's chain, or wraps err in a new
// Error if there is none.
func WrapError(err error) *Error {
	if err == nil {
		return nil
	}

	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface as "<msg>: <cause>", omitting
// whichever part is empty.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.base != nil && e.base == t.base
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns the structured attributes attached with [Error.With].
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{base: e.base, msg: e.msg, err: err, attrs: e.attrs}
}

// Wrapf creates a new Error wrapping a formatted cause.
func (e *Error) Wrapf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(merged, e.attrs...)
	merged = append(merged, attrs...)

	return &Error{base: e.base, msg: e.msg, err: e.err, attrs: merged}
}

// CycleError describes a circular key chain found while following an
// indirect variable. Its message is the chain joined by " -> ", e.g.
// "a -> b -> a".
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string { return strings.Join(e.Chain, " -> ") }

// Position identifies a location in template source.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, in runes
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// ParseError describes malformed template source. Parsers wrap it in
// [ErrParse].
type ParseError struct {
	Position

	Msg      string   // What went wrong
	Expected []string // Tokens that would have been accepted
	Source   string   // The original source input
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("line ")
	buf.WriteString(strconv.Itoa(e.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Column))
	buf.WriteString(": ")
	buf.WriteString(e.Msg)

	if len(e.Expected) > 0 {
		quoted := make([]string, len(e.Expected))
		for i, s := range e.Expected {
			quoted[i] = strconv.Quote(s)
		}

		buf.WriteString(" (expected ")
		buf.WriteString(strings.Join(quoted, " or "))
		buf.WriteByte(')')
	}

	return buf.String()
}

// Snippet returns the offending source line with a caret under the error
// column, or "" when the source is unknown.
func (e *ParseError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Source == "" || e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.Line)

	var src strings.Builder

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(lines[e.Line-1])
	src.WriteByte('\n')

	// 2 leading spaces + " | "
	src.WriteString(strings.Repeat(" ", len(num)+5+max(e.Column-1, 0)))
	src.WriteString("^\n")

	return src.String()
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
		slog.String("message", e.Msg),
		slog.Any("expected", e.Expected),
	)
}
