package lang

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/tagmacro/log"
)

// Parser turns template source into a tree. The evaluator calls it again
// for every resolved value, so implementations must be safe for concurrent
// use.
type Parser interface {
	Parse(ctx context.Context, src string) (Node, error)
}

// ParserFunc adapts a function to the [Parser] interface.
type ParserFunc func(ctx context.Context, src string) (Node, error)

// Parse calls f.
func (f ParserFunc) Parse(ctx context.Context, src string) (Node, error) {
	return f(ctx, src)
}

// ParseOption configures parsing.
type ParseOption func(*parseConfig)

type parseConfig struct {
	braces bool
	logger log.Logger
}

// WithBraceVariables enables the "{{ name }}" variable syntax alongside the
// tag syntax.
func WithBraceVariables(enable bool) ParseOption {
	return func(c *parseConfig) { c.braces = enable }
}

// WithParseLogger sets the logger used for trace output while parsing.
func WithParseLogger(logger log.Logger) ParseOption {
	return func(c *parseConfig) { c.logger = logger }
}

func makeParseConfig(opts ...ParseOption) parseConfig {
	var c parseConfig

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}

// MakeParser returns a [Parser] that parses with [ParseString] and opts.
func MakeParser(opts ...ParseOption) Parser {
	return ParserFunc(func(ctx context.Context, src string) (Node, error) {
		return ParseString(ctx, src, opts...)
	})
}

// Parse parses src without consulting the parse cache.
func Parse(ctx context.Context, src string, opts ...ParseOption) (*Template, error) {
	cfg := makeParseConfig(opts...)

	p := &parser{input: src, line: 1, col: 1, braces: cfg.braces}

	tpl, err := p.parseTemplate()
	if err != nil {
		cfg.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_length", len(src)),
		slog.Int("node_count", len(tpl.Body)))

	return tpl, nil
}

// parser holds the parser state.
type parser struct {
	input  string
	pos    int
	line   int
	col    int
	braces bool
}

// parseTemplate parses text and tags until one of stops is next or the
// input ends. The stop itself is not consumed.
func (p *parser) parseTemplate(stops ...string) (*Template, error) {
	tpl := &Template{}

	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			tpl.Body = append(tpl.Body, &Literal{Value: text.String()})
			text.Reset()
		}
	}

	for !p.eof() {
		if p.atAny(stops...) {
			break
		}

		tag, err := p.parseTag()
		if err != nil {
			return nil, err
		}

		if tag == nil {
			// Copy source bytes as-is so invalid UTF-8 survives.
			before := p.pos
			p.advance()
			text.WriteString(p.input[before:p.pos])

			continue
		}

		flush()

		tpl.Body = append(tpl.Body, tag)
	}

	flush()

	return tpl, nil
}

// parseTag parses the tag at the cursor, or returns nil without consuming
// anything if no tag starts there.
func (p *parser) parseTag() (Node, error) {
	switch {
	case p.at("<##"):
		return p.parseIndirect()
	case p.at("<#"):
		return p.parseVariable()
	case p.at("<{"):
		return p.parseFunction()
	case p.at("<~"):
		return p.parseBlock()
	case p.braces && p.at("{{"):
		return p.parseBraceVariable()
	default:
		return nil, nil
	}
}

// parseVariable parses: '<#' Template '#>'.
func (p *parser) parseVariable() (Node, error) {
	start := p.position()
	p.skip("<#")

	name, err := p.parseEnclosed(start, "variable", "#>")
	if err != nil {
		return nil, err
	}

	return &Variable{Name: name, Raw: p.input[start.Offset:p.pos]}, nil
}

// parseIndirect parses: '<##' Template '##>'.
func (p *parser) parseIndirect() (Node, error) {
	start := p.position()
	p.skip("<##")

	name, err := p.parseEnclosed(start, "indirect variable", "##>")
	if err != nil {
		return nil, err
	}

	return &IndirectVariable{Name: name, Raw: p.input[start.Offset:p.pos]}, nil
}

// parseBraceVariable parses: '{{' Template '}}', trimming the name.
func (p *parser) parseBraceVariable() (Node, error) {
	start := p.position()
	p.skip("{{")

	name, err := p.parseEnclosed(start, "variable", "}}")
	if err != nil {
		return nil, err
	}

	return &Variable{Name: trim(name), Raw: p.input[start.Offset:p.pos]}, nil
}

// parseEnclosed parses a Template up to and including closer.
func (p *parser) parseEnclosed(open Position, what, closer string) (*Template, error) {
	tpl, err := p.parseTemplate(closer)
	if err != nil {
		return nil, err
	}

	if !p.skip(closer) {
		return nil, p.errorAt(open, "unterminated "+what, closer)
	}

	return tpl, nil
}

// parseFunction parses: '<{' Ident '(' [Arg (',' Arg)*] ')' '}>'.
func (p *parser) parseFunction() (Node, error) {
	start := p.position()
	p.skip("<{")
	p.skipSpace()

	name := p.parseIdentifier()
	if name == "" {
		return nil, p.errorAt(p.position(), "missing function name", "identifier")
	}

	p.skipSpace()

	if !p.skip("(") {
		return nil, p.errorAt(p.position(), "malformed function call", "(")
	}

	call := &FunctionCall{Name: name}

	p.skipSpace()

	if !p.skip(")") {
		for {
			arg, err := p.parseTemplate(",", ")")
			if err != nil {
				return nil, err
			}

			call.Args = append(call.Args, trim(arg))

			if p.skip(",") {
				continue
			}

			if p.skip(")") {
				break
			}

			return nil, p.errorAt(start, "unterminated function call", ",", ")")
		}
	}

	p.skipSpace()

	if !p.skip("}>") {
		return nil, p.errorAt(p.position(), "malformed function call", "}>")
	}

	return call, nil
}

// parseBlock parses a cross product or a conditional:
//
//	'<~' ['{' Template '}'] Body '<*' ['?' Delim [':' Term]] '>' '<[' Template ']>' '~>'
//	'<~' (('<+>' | '<->') Body | '<?' Template '?>')+ '~>'
func (p *parser) parseBlock() (Node, error) {
	start := p.position()
	p.skip("<~")

	var (
		node Node
		err  error
	)

	if p.at("{") || p.at("<`") {
		node, err = p.parseCrossProduct(start)
	} else {
		node, err = p.parseConditional(start)
	}

	if err != nil {
		return nil, err
	}

	if !p.skip("~>") {
		return nil, p.errorAt(p.position(), "unterminated block", "~>")
	}

	return node, nil
}

func (p *parser) parseCrossProduct(start Position) (*CrossProduct, error) {
	cp := &CrossProduct{}

	if open := p.position(); p.skip("{") {
		slice, err := p.parseEnclosed(open, "slice", "}")
		if err != nil {
			return nil, err
		}

		cp.Slice = slice
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	cp.Template = body

	if !p.skip("<*") {
		return nil, p.errorAt(p.position(), "malformed cross product", "<*")
	}

	if p.skip("?") {
		delim := p.scanUntil(":>")
		cp.Delimiter = &delim

		if p.skip(":") {
			cp.Terminator = p.scanUntil(">")
		}
	}

	if !p.skip(">") {
		return nil, p.errorAt(start, "unterminated multiplier", ">")
	}

	open := p.position()
	if !p.skip("<[") {
		return nil, p.errorAt(open, "malformed cross product", "<[")
	}

	name, err := p.parseEnclosed(open, "array", "]>")
	if err != nil {
		return nil, err
	}

	cp.Iterator = &Array{Name: name}

	return cp, nil
}

func (p *parser) parseConditional(start Position) (*Conditional, error) {
	cond := &Conditional{}

	var seen [3]bool // true branch, false branch, condition

	for !p.at("~>") {
		var (
			slot int
			err  error
		)

		open := p.position()

		switch {
		case p.skip("<+>"):
			slot = 0
			cond.True, err = p.parseBody()
		case p.skip("<->"):
			slot = 1
			cond.False, err = p.parseBody()
		case p.skip("<?"):
			slot = 2
			cond.Condition, err = p.parseEnclosed(open, "condition", "?>")
		default:
			return nil, p.errorAt(p.position(), "malformed block",
				"<`", "{", "<+>", "<->", "<?", "~>")
		}

		if err != nil {
			return nil, err
		}

		if seen[slot] {
			return nil, p.errorAt(open, "duplicate conditional part")
		}

		seen[slot] = true
	}

	if !seen[2] {
		return nil, p.errorAt(start, "conditional without condition", "<?")
	}

	return cond, nil
}

// parseBody parses: '<`' Template '`>'.
func (p *parser) parseBody() (*Template, error) {
	open := p.position()
	if !p.skip("<`") {
		return nil, p.errorAt(open, "missing template body", "<`")
	}

	return p.parseEnclosed(open, "template body", "`>")
}

// parseIdentifier consumes a function name.
func (p *parser) parseIdentifier() string {
	start := p.pos

	for !p.eof() {
		r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
		if !isIdentifier(r) {
			break
		}

		p.advance()
	}

	return p.input[start:p.pos]
}

func isIdentifier(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == '$' ||
		unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanUntil consumes and returns text up to the first byte in set.
func (p *parser) scanUntil(set string) string {
	start := p.pos

	for !p.eof() && !strings.ContainsRune(set, rune(p.input[p.pos])) {
		p.advance()
	}

	return p.input[start:p.pos]
}

// trim removes leading whitespace from the first literal of t and trailing
// whitespace from the last, dropping literals left empty.
func trim(t *Template) *Template {
	body := t.Body

	if n := len(body); n > 0 {
		if lit, ok := body[0].(*Literal); ok {
			body[0] = &Literal{Value: strings.TrimLeftFunc(lit.Value, unicode.IsSpace)}
		}

		if lit, ok := body[n-1].(*Literal); ok {
			body[n-1] = &Literal{Value: strings.TrimRightFunc(lit.Value, unicode.IsSpace)}
		}
	}

	out := body[:0]

	for _, n := range body {
		if lit, ok := n.(*Literal); ok && lit.Value == "" {
			continue
		}

		out = append(out, n)
	}

	if len(out) == 0 {
		out = nil
	}

	t.Body = out

	return t
}

// Helper methods

func (p *parser) at(s string) bool { return strings.HasPrefix(p.input[p.pos:], s) }

func (p *parser) atAny(s ...string) bool {
	for _, x := range s {
		if p.at(x) {
			return true
		}
	}

	return false
}

// skip consumes s if it is next.
func (p *parser) skip(s string) bool {
	if !p.at(s) {
		return false
	}

	for end := p.pos + len(s); p.pos < end; {
		p.advance()
	}

	return true
}

func (p *parser) skipSpace() {
	for !p.eof() {
		r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}

		p.advance()
	}
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) position() Position {
	return Position{Offset: p.pos, Line: p.line, Column: p.col}
}

func (p *parser) errorAt(pos Position, msg string, expected ...string) error {
	pe := &ParseError{
		Position: pos,
		Msg:      msg,
		Expected: expected,
		Source:   p.input,
	}

	return ErrParse.Wrap(pe).With(slog.String("position", pos.String()))
}
