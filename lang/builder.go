package lang

// Builder provides a programmatic API for constructing trees without
// parsing source text. Hosts that produce templates with their own parser
// can hand the result straight to [Evaluator.Evaluate].
//
// Example:
//
//	b := lang.NewBuilder()
//	tpl := b.Template(
//	    b.Literal("Hello "),
//	    b.Var("name"),
//	    b.Each("users", b.Template(b.Var("id")), b.Delimit(",", ";")),
//	)
//
// Names given as strings become single-literal templates; use the *Node
// variants for computed names.
type Builder struct{}

// NewBuilder creates a new tree builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Template creates a [Template] of the given children.
func (b *Builder) Template(body ...Node) *Template {
	return &Template{Body: body}
}

// Literal creates a [Literal].
func (b *Builder) Literal(s string) *Literal {
	return &Literal{Value: s}
}

// Var creates a [Variable] with a literal name.
func (b *Builder) Var(name string) *Variable {
	return b.VarNode(Text(name))
}

// VarNode creates a [Variable] whose name is rendered from name.
func (b *Builder) VarNode(name Node) *Variable {
	return &Variable{Name: name, Raw: "<#" + Format(name) + "#>"}
}

// Indirect creates an [IndirectVariable] with a literal name.
func (b *Builder) Indirect(name string) *IndirectVariable {
	return b.IndirectNode(Text(name))
}

// IndirectNode creates an [IndirectVariable] whose name is rendered from
// name.
func (b *Builder) IndirectNode(name Node) *IndirectVariable {
	return &IndirectVariable{Name: name, Raw: "<##" + Format(name) + "##>"}
}

// EachOption configures a [CrossProduct] made by [Builder.Each].
type EachOption func(*CrossProduct)

// Delimit joins rows with delim and appends term after the last row.
func (b *Builder) Delimit(delim, term string) EachOption {
	return func(cp *CrossProduct) {
		cp.Delimiter = &delim
		cp.Terminator = term
	}
}

// Slice selects the rows named by the rendered spec. See [ParseSlice].
func (b *Builder) Slice(spec Node) EachOption {
	return func(cp *CrossProduct) { cp.Slice = spec }
}

// Each creates a [CrossProduct] rendering tpl once per row of array.
func (b *Builder) Each(array string, tpl Node, opts ...EachOption) *CrossProduct {
	cp := &CrossProduct{Template: tpl, Iterator: &Array{Name: Text(array)}}

	for _, opt := range opts {
		opt(cp)
	}

	return cp
}

// If creates a [Conditional]. Either branch may be nil.
func (b *Builder) If(cond, then, otherwise Node) *Conditional {
	return &Conditional{Condition: cond, True: then, False: otherwise}
}

// Call creates a [FunctionCall].
func (b *Builder) Call(name string, args ...Node) *FunctionCall {
	return &FunctionCall{Name: name, Args: args}
}
