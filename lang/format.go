package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format prints a tree in tag syntax. Parsing the result yields an
// equivalent tree.
func Format(n Node) string {
	var buf strings.Builder

	formatNode(&buf, n)

	return buf.String()
}

// FormatJSON writes the tree as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, n Node, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(ToMap(n), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(ToMap(n))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the tree as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, n Node, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ToMap(n), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

func formatNode(buf *strings.Builder, n Node) {
	if isNil(n) {
		return
	}

	switch n := n.(type) {
	case *Template:
		for _, child := range n.Body {
			formatNode(buf, child)
		}

	case *Literal:
		buf.WriteString(n.Value)

	case *Variable:
		if strings.HasPrefix(n.Raw, "{{") {
			buf.WriteString("{{ ")
			formatNode(buf, n.Name)
			buf.WriteString(" }}")

			return
		}

		buf.WriteString("<#")
		formatNode(buf, n.Name)
		buf.WriteString("#>")

	case *IndirectVariable:
		buf.WriteString("<##")
		formatNode(buf, n.Name)
		buf.WriteString("##>")

	case *Array:
		buf.WriteString("<[")
		formatNode(buf, n.Name)
		buf.WriteString("]>")

	case *CrossProduct:
		buf.WriteString("<~")

		if !isNil(n.Slice) {
			buf.WriteByte('{')
			formatNode(buf, n.Slice)
			buf.WriteByte('}')
		}

		formatBody(buf, n.Template)
		buf.WriteString("<*")

		if n.Delimiter != nil {
			buf.WriteByte('?')
			buf.WriteString(*n.Delimiter)

			if n.Terminator != "" {
				buf.WriteByte(':')
				buf.WriteString(n.Terminator)
			}
		}

		buf.WriteByte('>')
		formatNode(buf, n.Iterator)
		buf.WriteString("~>")

	case *Conditional:
		buf.WriteString("<~")

		if !isNil(n.True) {
			buf.WriteString("<+>")
			formatBody(buf, n.True)
		}

		if !isNil(n.False) {
			buf.WriteString("<->")
			formatBody(buf, n.False)
		}

		buf.WriteString("<?")
		formatNode(buf, n.Condition)
		buf.WriteString("?>~>")

	case *FunctionCall:
		buf.WriteString("<{")
		buf.WriteString(n.Name)
		buf.WriteByte('(')

		for i, arg := range n.Args {
			if i > 0 {
				buf.WriteString(", ")
			}

			formatNode(buf, arg)
		}

		buf.WriteString(")}>")
	}
}

func formatBody(buf *strings.Builder, n Node) {
	buf.WriteString("<`")
	formatNode(buf, n)
	buf.WriteString("`>")
}
