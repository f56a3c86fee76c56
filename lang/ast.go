package lang

// Node is an element of a parsed template. The set of node types is closed:
// only this package can implement Node.
//
// A nil Node renders as the empty string. Trees may be shared between
// goroutines and cached, so they must not be modified once built.
type Node interface {
	Kind() Kind
	node()
}

// Kind identifies the concrete type of a [Node].
type Kind int

const (
	KindInvalid Kind = iota
	KindTemplate
	KindLiteral
	KindVariable
	KindIndirectVariable
	KindArray
	KindCrossProduct
	KindConditional
	KindFunctionCall
)

// String returns the node type name used in serialized trees.
func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "Template"
	case KindLiteral:
		return "Literal"
	case KindVariable:
		return "Variable"
	case KindIndirectVariable:
		return "IndirectVariable"
	case KindArray:
		return "Array"
	case KindCrossProduct:
		return "CrossProduct"
	case KindConditional:
		return "Conditional"
	case KindFunctionCall:
		return "FunctionCall"
	default:
		return "Invalid"
	}
}

// Template is the concatenation of its children.
type Template struct {
	Body []Node
}

// Literal is verbatim text.
type Literal struct {
	Value string
}

// Variable substitutes the value found under the key its Name renders to.
// The value is itself rendered as a template. Raw is the original tag text,
// emitted unchanged when the key is absent.
type Variable struct {
	Name Node
	Raw  string
}

// IndirectVariable follows a chain of keys, treating each string value as
// the next key, and renders the last key reached.
type IndirectVariable struct {
	Name Node
	Raw  string
}

// Array names the list iterated by a [CrossProduct]. It is only valid as a
// CrossProduct's Iterator.
type Array struct {
	Name Node
}

// CrossProduct renders Template once per row of the list named by Iterator.
//
// Slice, when set, renders to an "offset,limit" or "limit" range selecting
// the rows. Delimiter, when set, is placed between rendered rows, and
// Terminator follows the last one.
type CrossProduct struct {
	Template   Node
	Iterator   *Array
	Delimiter  *string
	Terminator string
	Slice      Node
}

// Conditional renders True when Condition renders to anything other than ""
// or "0", and False otherwise.
type Conditional struct {
	Condition Node
	True      Node
	False     Node
}

// FunctionCall invokes a registered host function with its rendered
// arguments.
type FunctionCall struct {
	Name string
	Args []Node
}

func (*Template) Kind() Kind         { return KindTemplate }
func (*Literal) Kind() Kind          { return KindLiteral }
func (*Variable) Kind() Kind         { return KindVariable }
func (*IndirectVariable) Kind() Kind { return KindIndirectVariable }
func (*Array) Kind() Kind            { return KindArray }
func (*CrossProduct) Kind() Kind     { return KindCrossProduct }
func (*Conditional) Kind() Kind      { return KindConditional }
func (*FunctionCall) Kind() Kind     { return KindFunctionCall }

func (*Template) node()         {}
func (*Literal) node()          {}
func (*Variable) node()         {}
func (*IndirectVariable) node() {}
func (*Array) node()            {}
func (*CrossProduct) node()     {}
func (*Conditional) node()      {}
func (*FunctionCall) node()     {}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Template:
		return n == nil
	case *Literal:
		return n == nil
	case *Variable:
		return n == nil
	case *IndirectVariable:
		return n == nil
	case *Array:
		return n == nil
	case *CrossProduct:
		return n == nil
	case *Conditional:
		return n == nil
	case *FunctionCall:
		return n == nil
	default:
		return false
	}
}

// Text returns a Template holding the single literal s. It is convenient for
// building the Name of a [Variable], [IndirectVariable], or [Array].
func Text(s string) *Template {
	return &Template{Body: []Node{&Literal{Value: s}}}
}
